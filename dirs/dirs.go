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

// Package dirs centralizes the kernel and device file paths used by
// powerd so that tests can re-point the whole surface below a scratch
// directory with SetRootDir.
package dirs

import (
	"path/filepath"
)

var (
	// GlobalRootDir is the root directory below which all other
	// paths are anchored, "/" outside of tests.
	GlobalRootDir string

	// SysPowerState accepts a sleep state name on write and lists
	// the supported state names on read.
	SysPowerState string

	// SysPowerWakeupCount is the kernel wakeup-count handshake file.
	SysPowerWakeupCount string

	// SysWaitForFBSleep and SysWaitForFBWake block on read until the
	// framebuffer sleeps or wakes respectively.
	SysWaitForFBSleep string
	SysWaitForFBWake  string

	// DevInput is the directory of input event device nodes.
	DevInput string

	// DevUinput is the user-level input device used to create the
	// virtual power button.
	DevUinput string

	// PowerdConfFile is the property store consumed by powerd.
	PowerdConfFile string

	// PowerdSocket is the REST API unix socket.
	PowerdSocket string
)

// SetRootDir allows settings a new global root directory, this is useful
// for testing.
func SetRootDir(rootdir string) {
	if rootdir == "" {
		rootdir = "/"
	}
	GlobalRootDir = rootdir

	SysPowerState = filepath.Join(rootdir, "/sys/power/state")
	SysPowerWakeupCount = filepath.Join(rootdir, "/sys/power/wakeup_count")
	SysWaitForFBSleep = filepath.Join(rootdir, "/sys/power/wait_for_fb_sleep")
	SysWaitForFBWake = filepath.Join(rootdir, "/sys/power/wait_for_fb_wake")

	DevInput = filepath.Join(rootdir, "/dev/input")
	DevUinput = filepath.Join(rootdir, "/dev/uinput")

	PowerdConfFile = filepath.Join(rootdir, "/etc/powerd/powerd.conf")
	PowerdSocket = filepath.Join(rootdir, "/run/powerd.socket")
}

func init() {
	SetRootDir("/")
}
