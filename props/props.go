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

// Package props gives read access to the powerd property store, a flat
// key=value file. A missing store is not an error, every lookup then
// reports its fallback value.
package props

import (
	"os"

	"github.com/mvo5/goconfigparser"

	"github.com/deviceos/powerd/logger"
)

// Well-known property names.
const (
	// UseEarlySuspend selects the early-suspend protocol over the
	// wakeup-count protocol.
	UseEarlySuspend = "sleep.earlysuspend"

	// SleepState overrides the sleep state written to the kernel.
	SleepState = "sleep.state"

	// PowerBtnDoubleClick enables double-click detection on the
	// power button.
	PowerBtnDoubleClick = "poweroff.doubleclick"
)

// Store is a read-only view of a property file.
type Store struct {
	cfg *goconfigparser.ConfigParser
}

// Load reads the property file at the given path. A missing file yields
// an empty store.
func Load(path string) (*Store, error) {
	cfg := goconfigparser.New()
	cfg.AllowNoSectionHeader = true

	if err := cfg.ReadFile(path); err != nil {
		if os.IsNotExist(err) {
			return &Store{cfg: nil}, nil
		}
		return nil, err
	}

	return &Store{cfg: cfg}, nil
}

// GetString returns the value of the given property, or dflt if it is
// not set.
func (s *Store) GetString(key, dflt string) string {
	if s.cfg == nil {
		return dflt
	}
	val, err := s.cfg.Get("", key)
	if err != nil || val == "" {
		return dflt
	}
	return val
}

// GetBool returns the boolean value of the given property, or dflt if
// it is not set or cannot be interpreted as a boolean.
func (s *Store) GetBool(key string, dflt bool) bool {
	val := s.GetString(key, "")
	switch val {
	case "":
		return dflt
	case "1", "y", "yes", "true", "on":
		return true
	case "0", "n", "no", "false", "off":
		return false
	}
	logger.Noticef("cannot interpret property %s=%q as bool, using %v", key, val, dflt)
	return dflt
}
