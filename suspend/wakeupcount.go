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
	"fmt"
	"time"

	evdev "github.com/gvalkov/golang-evdev"
	"gopkg.in/tomb.v2"

	"github.com/deviceos/powerd/logger"
	"github.com/deviceos/powerd/uinput"
)

// rate limits the suspend protocol and coalesces enable/disable churn
var suspendRetryInterval = 100 * time.Millisecond

// WakeupCountBackend implements the race-safe wakeup-count suspend
// protocol. A dedicated suspend loop reads the current wakeup count,
// waits for permission on the suspend gate, commits the count back and
// only then writes the sleep state. The kernel rejects the commit if
// any wakeup event happened since the read, which aborts that attempt
// without losing the wakeup.
type WakeupCountBackend struct {
	wakeup     WakeupCounter
	power      PowerStater
	sleepState func() string
	emitter    uinput.KeyEmitter
	notify     func(success bool)

	gate *Gate
	tomb tomb.Tomb
}

// NewWakeupCountBackend verifies that the kernel interfaces are usable
// and starts the suspend loop. The gate starts with no grants, so the
// loop stays parked until the first Enable. The notify function, if
// not nil, is invoked after every committed suspend attempt.
func NewWakeupCountBackend(wakeup WakeupCounter, power PowerStater, sleepState func() string, emitter uinput.KeyEmitter, notify func(success bool)) (*WakeupCountBackend, error) {
	if _, err := power.States(); err != nil {
		return nil, fmt.Errorf("cannot access power state interface: %v", err)
	}
	if _, err := wakeup.ReadCount(); err != nil {
		return nil, fmt.Errorf("cannot access wakeup count interface: %v", err)
	}

	b := &WakeupCountBackend{
		wakeup:     wakeup,
		power:      power,
		sleepState: sleepState,
		emitter:    emitter,
		notify:     notify,
		gate:       NewGate(),
	}
	b.tomb.Go(b.run)
	return b, nil
}

func (b *WakeupCountBackend) Name() string {
	return "wakeup-count"
}

// Enable adds one "allow suspend" grant.
func (b *WakeupCountBackend) Enable() error {
	logger.Debugf("wakeup count enable")
	b.gate.Post()
	return nil
}

// Disable takes one grant back. Taking back a grant that was never
// given is rejected, not applied.
func (b *WakeupCountBackend) Disable() error {
	logger.Debugf("wakeup count disable")
	if err := b.gate.TryWait(); err != nil {
		logger.Noticef("cannot disable autosuspend: %v", err)
		return err
	}
	return nil
}

func (b *WakeupCountBackend) run() error {
	for {
		select {
		case <-b.tomb.Dying():
			return tomb.ErrDying
		case <-time.After(suspendRetryInterval):
		}

		count, err := b.wakeup.ReadCount()
		if err != nil {
			logger.Noticef("cannot read wakeup count: %v", err)
			continue
		}
		if count == "" {
			logger.Noticef("empty wakeup count")
			continue
		}

		// backpressure point: parked here while suspend is disabled
		if err := b.gate.Wait(); err != nil {
			return err
		}

		if err := b.wakeup.CommitCount(count); err != nil {
			// a wakeup happened since the read, try again later
			logger.Debugf("wakeup count %q rejected: %v", count, err)
		} else {
			success := true
			state := b.sleepState()
			logger.Debugf("suspending with %q", state)
			if err := b.power.SetState(state); err != nil {
				logger.Noticef("cannot write %q to power state: %v", state, err)
				success = false
			} else if b.emitter != nil {
				// back from resume, tell the platform
				sendKeyWakeup(b.emitter)
			}
			if b.notify != nil {
				b.notify(success)
			}
		}

		b.gate.Post()
	}
}

func (b *WakeupCountBackend) stop() error {
	b.tomb.Kill(nil)
	b.gate.Close()
	err := b.tomb.Wait()
	if err == ErrGateClosed {
		return nil
	}
	return err
}

func sendKeyWakeup(e uinput.KeyEmitter) {
	if err := e.EmitKey(evdev.KEY_WAKEUP, 1); err != nil {
		logger.Noticef("cannot emit wake key: %v", err)
		return
	}
	if err := e.EmitKey(evdev.KEY_WAKEUP, 0); err != nil {
		logger.Noticef("cannot emit wake key: %v", err)
	}
}
