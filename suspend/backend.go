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

// Package suspend decides when the device may enter a low-power sleep
// state. It arbitrates between competing "do not sleep yet" requests
// and drives the kernel suspend transition through one of two kernel
// protocols, selected at runtime with a fallback chain.
package suspend

// A Backend drives one kernel suspend protocol. At most one backend is
// active process-wide; it is selected once by Autosuspend and keeps its
// background goroutines for the lifetime of the process.
type Backend interface {
	// Enable allows the device to suspend.
	Enable() error
	// Disable keeps the device awake.
	Disable() error
	// Name identifies the backend.
	Name() string
}
