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

package powerbtn

import (
	"time"

	evdev "github.com/gvalkov/golang-evdev"
)

func MockDoubleClickWindow(d time.Duration) (restore func()) {
	old := doubleClickWindow
	doubleClickWindow = d
	return func() {
		doubleClickWindow = old
	}
}

func MockPowerKeyHold(d time.Duration) (restore func()) {
	old := powerKeyHold
	powerKeyHold = d
	return func() {
		powerKeyHold = old
	}
}

// RunLoop starts the classification loop without any devices attached,
// events are injected directly.
func (m *Monitor) RunLoop() {
	m.started = true
	m.tomb.Go(m.loop)
}

// InjectEvent feeds one input event into the classification loop.
func (m *Monitor) InjectEvent(typ, code uint16, value int32) {
	m.events <- evdev.InputEvent{Type: typ, Code: code, Value: value}
}
