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

// Package uinput creates a virtual input device through the kernel
// uinput interface and injects synthetic key events through it. The
// injected events are indistinguishable from hardware-generated ones
// for the rest of the platform.
package uinput

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"

	evdev "github.com/gvalkov/golang-evdev"
	"golang.org/x/sys/unix"

	"github.com/deviceos/powerd/dirs"
	"github.com/deviceos/powerd/logger"
)

// ioctl requests from linux/uinput.h
const (
	uiSetEvBit   = 0x40045564 // UI_SET_EVBIT
	uiSetKeyBit  = 0x40045565 // UI_SET_KEYBIT
	uiDevCreate  = 0x00005501 // UI_DEV_CREATE
	uiDevDestroy = 0x00005502 // UI_DEV_DESTROY

	// sizeof(struct uinput_user_dev): name[80], input_id, ff_effects_max,
	// absmax/absmin/absfuzz/absflat[64] each
	userDevSize = 80 + 4*2 + 4 + 4*64*4

	maxNameSize = 80
)

// A KeyEmitter injects a single key event followed by a sync report.
type KeyEmitter interface {
	EmitKey(code int, value int32) error
}

// Device is a virtual input device backed by /dev/uinput.
type Device struct {
	f    *os.File
	name string
}

// New creates a virtual input device with the given name and the power
// and wake key capabilities.
func New(name string) (*Device, error) {
	if len(name) >= maxNameSize {
		return nil, fmt.Errorf("cannot create virtual input device: name %q too long", name)
	}

	f, err := os.OpenFile(dirs.DevUinput, os.O_WRONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("cannot open uinput device: %v", err)
	}

	fd := int(f.Fd())
	for _, req := range []struct {
		ioctl int
		arg   int
	}{
		{uiSetEvBit, evdev.EV_KEY},
		{uiSetKeyBit, evdev.KEY_POWER},
		{uiSetKeyBit, evdev.KEY_WAKEUP},
	} {
		if err := unix.IoctlSetInt(fd, uint(req.ioctl), req.arg); err != nil {
			f.Close()
			return nil, fmt.Errorf("cannot configure uinput device: %v", err)
		}
	}

	// struct uinput_user_dev with only the name set, ids zeroed
	buf := make([]byte, userDevSize)
	copy(buf[:maxNameSize-1], name)
	if _, err := f.Write(buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("cannot write uinput device description: %v", err)
	}

	if err := unix.IoctlSetInt(fd, uiDevCreate, 0); err != nil {
		f.Close()
		return nil, fmt.Errorf("cannot create uinput device %q: %v", name, err)
	}

	return &Device{f: f, name: name}, nil
}

// Name returns the device name given at creation time.
func (d *Device) Name() string {
	return d.name
}

// EmitKey writes a key event with the given code and value, followed by
// a sync report.
func (d *Device) EmitKey(code int, value int32) error {
	var buf bytes.Buffer
	events := []evdev.InputEvent{
		{Type: evdev.EV_KEY, Code: uint16(code), Value: value},
		{Type: evdev.EV_SYN, Code: evdev.SYN_REPORT, Value: 0},
	}
	for _, ev := range events {
		if err := binary.Write(&buf, binary.LittleEndian, &ev); err != nil {
			return err
		}
	}
	if _, err := d.f.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("cannot emit key %d (%d): %v", code, value, err)
	}
	logger.Debugf("sent key %d (%d) on %q", code, value, d.name)
	return nil
}

// Close destroys the virtual device.
func (d *Device) Close() error {
	if err := unix.IoctlSetInt(int(d.f.Fd()), uiDevDestroy, 0); err != nil {
		logger.Noticef("cannot destroy uinput device %q: %v", d.name, err)
	}
	return d.f.Close()
}
