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

package suspend

import (
	"os"
	"strings"

	"github.com/deviceos/powerd/dirs"
	"github.com/deviceos/powerd/osutil"
)

// WakeupCounter is the kernel wakeup-count handshake. The count read
// with ReadCount must be written back unchanged with CommitCount to
// commit to suspending; the commit fails if any wakeup event happened
// in between.
type WakeupCounter interface {
	ReadCount() (string, error)
	CommitCount(count string) error
}

// PowerStater is the kernel power-state file. States lists the sleep
// states the kernel supports, SetState enters one of them (or "on").
type PowerStater interface {
	States() ([]string, error)
	SetState(state string) error
}

// FBNotifier delivers framebuffer power transitions. WaitSleep and
// WaitWake block until the framebuffer sleeps or wakes respectively.
type FBNotifier interface {
	Available() bool
	WaitSleep() error
	WaitWake() error
}

// SysfsPower implements WakeupCounter, PowerStater and FBNotifier on
// top of the real /sys/power files.
type SysfsPower struct{}

// NewSysfsPower returns the kernel-backed power interface.
func NewSysfsPower() *SysfsPower {
	return &SysfsPower{}
}

func (s *SysfsPower) ReadCount() (string, error) {
	buf, err := os.ReadFile(dirs.SysPowerWakeupCount)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(buf)), nil
}

func (s *SysfsPower) CommitCount(count string) error {
	f, err := os.OpenFile(dirs.SysPowerWakeupCount, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(count)
	return err
}

func (s *SysfsPower) States() ([]string, error) {
	buf, err := os.ReadFile(dirs.SysPowerState)
	if err != nil {
		return nil, err
	}
	return strings.Fields(string(buf)), nil
}

func (s *SysfsPower) SetState(state string) error {
	f, err := os.OpenFile(dirs.SysPowerState, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()
	// blocks until resume for states like "mem"
	_, err = f.WriteString(state)
	return err
}

func (s *SysfsPower) Available() bool {
	return osutil.FileExists(dirs.SysWaitForFBSleep) && osutil.FileExists(dirs.SysWaitForFBWake)
}

// waitEvent blocks reading the given notification file until the
// corresponding framebuffer transition happens.
func (s *SysfsPower) waitEvent(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	var buf [1]byte
	_, err = f.Read(buf[:])
	return err
}

func (s *SysfsPower) WaitSleep() error {
	return s.waitEvent(dirs.SysWaitForFBSleep)
}

func (s *SysfsPower) WaitWake() error {
	return s.waitEvent(dirs.SysWaitForFBWake)
}
