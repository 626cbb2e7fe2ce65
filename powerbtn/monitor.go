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

// Package powerbtn watches the physical power button devices and turns
// raw button events into synthetic power-key presses: short for a tap
// or a wake from suspend, long for a deliberate double-click power
// action.
package powerbtn

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	evdev "github.com/gvalkov/golang-evdev"
	"gopkg.in/tomb.v2"

	"github.com/deviceos/powerd/dirs"
	"github.com/deviceos/powerd/logger"
	"github.com/deviceos/powerd/uinput"
)

const (
	// only devices literally named like the ACPI power button are
	// monitored
	powerButtonName = "Power Button"

	maxPowerButtons = 3
)

var (
	// window within which a second release makes a double-click
	doubleClickWindow = time.Second

	// how long the synthetic key is held down for a long press
	powerKeyHold = 2 * time.Second
)

// Monitor watches the power button devices and feeds classified
// presses into the virtual input device.
type Monitor struct {
	emitter     uinput.KeyEmitter
	doubleClick bool

	events  chan evdev.InputEvent
	devices []*evdev.InputDevice
	started bool
	tomb    tomb.Tomb
}

// New returns a power button monitor that injects presses through the
// given emitter. With doubleClick set, a lone release is held back for
// up to a second waiting for a second click.
func New(emitter uinput.KeyEmitter, doubleClick bool) *Monitor {
	return &Monitor{
		emitter:     emitter,
		doubleClick: doubleClick,
		events:      make(chan evdev.InputEvent),
	}
}

func (m *Monitor) openDevices() ([]*evdev.InputDevice, error) {
	devices, err := evdev.ListInputDevices(filepath.Join(dirs.DevInput, "event*"))
	if err != nil {
		return nil, err
	}

	var kept []*evdev.InputDevice
	for _, dev := range devices {
		if len(kept) < maxPowerButtons && dev.Name == powerButtonName {
			logger.Noticef("monitoring power button %s", dev.Fn)
			kept = append(kept, dev)
			continue
		}
		dev.File.Close()
	}
	return kept, nil
}

// Start discovers the power button devices and starts monitoring them.
// Finding no power button is not an error, power-button wake is then
// simply unavailable.
func (m *Monitor) Start() error {
	devices, err := m.openDevices()
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		logger.Noticef("no power button found")
		return nil
	}
	m.devices = devices
	m.started = true

	for _, dev := range devices {
		dev := dev
		m.tomb.Go(func() error {
			return m.readEvents(dev)
		})
	}
	m.tomb.Go(m.loop)
	return nil
}

// Stop terminates the monitor and closes the button devices.
func (m *Monitor) Stop() error {
	if !m.started {
		return nil
	}
	m.tomb.Kill(nil)
	for _, dev := range m.devices {
		dev.File.Close()
	}
	err := m.tomb.Wait()
	if err != nil && !errors.Is(err, os.ErrClosed) {
		return err
	}
	return nil
}

// readEvents forwards events from one button device into the
// classification loop.
func (m *Monitor) readEvents(dev *evdev.InputDevice) error {
	for {
		events, err := dev.Read()
		if err != nil {
			logger.Noticef("cannot read from %s: %v", dev.Fn, err)
			return err
		}
		for _, ev := range events {
			select {
			case m.events <- ev:
			case <-m.tomb.Dying():
				return tomb.ErrDying
			}
		}
	}
}

// loop classifies button gestures. The long-press flag starts out set:
// a double-click within the window emits a long press, while a resume
// marker clears the flag so the release that follows a wake comes out
// as a plain short press.
func (m *Monitor) loop() error {
	longpress := true
	var window <-chan time.Time

	for {
		select {
		case <-m.tomb.Dying():
			return tomb.ErrDying

		case <-window:
			// a lone click, the second one never came
			logger.Debugf("double-click window expired, sending one power key")
			m.sendPowerKey(false)
			window = nil
			longpress = true

		case ev := <-m.events:
			switch {
			case ev.Type == evdev.EV_KEY && ev.Code == evdev.KEY_POWER && ev.Value == 0:
				switch {
				case window != nil:
					m.sendPowerKey(longpress)
					window = nil
					longpress = true
				case !m.doubleClick:
					m.sendPowerKey(false)
				default:
					window = time.After(doubleClickWindow)
				}
			case ev.Type == evdev.EV_SYN && ev.Code == evdev.SYN_REPORT && ev.Value != 0:
				// the device just resumed because of this
				// button; the matching release must not
				// turn into a long press
				logger.Debugf("got a resuming event")
				longpress = false
				window = time.After(doubleClickWindow)
			}
		}
	}
}

// sendPowerKey injects a power key press. A long press keeps the key
// down as long as a deliberate physical hold would.
func (m *Monitor) sendPowerKey(long bool) {
	if m.emitter == nil {
		return
	}
	if err := m.emitter.EmitKey(evdev.KEY_POWER, 1); err != nil {
		logger.Noticef("cannot emit power key: %v", err)
		return
	}
	if long {
		time.Sleep(powerKeyHold)
	}
	if err := m.emitter.EmitKey(evdev.KEY_POWER, 0); err != nil {
		logger.Noticef("cannot emit power key: %v", err)
	}
}
