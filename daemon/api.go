// -*- Mode: Go; indent-tabs-mode: t -*-

/*
 * Copyright (C) 2026 DeviceOS Authors
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License version 3 as
 * published by the Free Software Foundation.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 *
 */

package daemon

import (
	"encoding/json"
	"net/http"
)

var api = []*Command{
	rootCmd,
	systemInfoCmd,
	autosuspendCmd,
}

var (
	rootCmd = &Command{
		Path: "/",
		GET:  nil,
	}

	systemInfoCmd = &Command{
		Path: "/v1/system-info",
		GET:  systemInfo,
	}

	autosuspendCmd = &Command{
		Path: "/v1/autosuspend",
		GET:  getAutosuspend,
		POST: postAutosuspend,
	}
)

func systemInfo(c *Command, r *http.Request) Response {
	m := map[string]interface{}{
		"version": c.d.Version,
	}
	return SyncResponse(m)
}

type autosuspendStatus struct {
	Enabled bool   `json:"enabled"`
	Backend string `json:"backend,omitempty"`
}

func getAutosuspend(c *Command, r *http.Request) Response {
	return SyncResponse(&autosuspendStatus{
		Enabled: c.d.autosuspend.Enabled(),
		Backend: c.d.autosuspend.BackendName(),
	})
}

type autosuspendInstruction struct {
	Action string `json:"action"`
}

func postAutosuspend(c *Command, r *http.Request) Response {
	var inst autosuspendInstruction
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&inst); err != nil {
		return BadRequest("cannot decode request body: %v", err)
	}

	switch inst.Action {
	case "enable":
		if err := c.d.autosuspend.Enable(); err != nil {
			return InternalError("cannot enable autosuspend: %v", err)
		}
	case "disable":
		if err := c.d.autosuspend.Disable(); err != nil {
			return InternalError("cannot disable autosuspend: %v", err)
		}
	default:
		return BadRequest("unknown autosuspend action %q", inst.Action)
	}

	return SyncResponse(&autosuspendStatus{
		Enabled: c.d.autosuspend.Enabled(),
		Backend: c.d.autosuspend.BackendName(),
	})
}
