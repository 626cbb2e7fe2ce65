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
	"sync"

	"gopkg.in/tomb.v2"

	"github.com/deviceos/powerd/logger"
)

type earlySuspendState int

const (
	displayOn earlySuspendState = iota
	memSuspended
)

// EarlySuspendBackend implements the early-suspend notification
// protocol. Enable and Disable write the sleep state and, when the
// companion monitor is running, block until the monitored framebuffer
// state confirms the transition. Without the monitor the writes are
// fire-and-forget; that is a degraded mode, not an error.
type EarlySuspendBackend struct {
	power      PowerStater
	sleepState func() string
	notifier   FBNotifier

	mu       sync.Mutex
	cond     *sync.Cond
	state    earlySuspendState
	blocking bool

	started bool
	tomb    tomb.Tomb
}

// NewEarlySuspendBackend verifies the power state interface and starts
// the framebuffer monitor if the notification files are present.
func NewEarlySuspendBackend(power PowerStater, sleepState func() string, notifier FBNotifier) (*EarlySuspendBackend, error) {
	if _, err := power.States(); err != nil {
		return nil, fmt.Errorf("cannot access power state interface: %v", err)
	}

	b := &EarlySuspendBackend{
		power:      power,
		sleepState: sleepState,
		notifier:   notifier,
		state:      displayOn,
	}
	b.cond = sync.NewCond(&b.mu)
	b.startMonitor()
	return b, nil
}

func (b *EarlySuspendBackend) startMonitor() {
	if b.notifier == nil || !b.notifier.Available() {
		logger.Noticef("framebuffer notifications unavailable, early suspend runs non-blocking")
		return
	}
	// drain a pending wake notification so the monitor starts from a
	// known display-on state
	if err := b.notifier.WaitWake(); err != nil {
		logger.Noticef("cannot drain framebuffer wake notification: %v", err)
		return
	}

	logger.Noticef("starting early suspend monitor")
	b.blocking = true
	b.started = true
	b.tomb.Go(b.run)
}

func (b *EarlySuspendBackend) run() error {
	for {
		if err := b.notifier.WaitSleep(); err != nil {
			return b.degrade(fmt.Errorf("cannot wait for framebuffer sleep: %v", err))
		}
		b.setState(memSuspended)

		if err := b.notifier.WaitWake(); err != nil {
			return b.degrade(fmt.Errorf("cannot wait for framebuffer wake: %v", err))
		}
		b.setState(displayOn)

		select {
		case <-b.tomb.Dying():
			return tomb.ErrDying
		default:
		}
	}
}

// degrade switches the backend to non-blocking mode for good and wakes
// up anybody currently blocked on a transition.
func (b *EarlySuspendBackend) degrade(reason error) error {
	logger.Noticef("stopping early suspend monitor: %v", reason)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.blocking = false
	b.cond.Broadcast()
	return reason
}

func (b *EarlySuspendBackend) setState(state earlySuspendState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = state
	b.cond.Broadcast()
}

func (b *EarlySuspendBackend) waitState(state earlySuspendState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for b.blocking && b.state != state {
		b.cond.Wait()
	}
}

func (b *EarlySuspendBackend) Name() string {
	return "early-suspend"
}

// Enable writes the sleep state and waits for the framebuffer to sleep.
func (b *EarlySuspendBackend) Enable() error {
	state := b.sleepState()
	logger.Debugf("early suspend enable (%s)", state)
	if err := b.power.SetState(state); err != nil {
		return fmt.Errorf("cannot write %q to power state: %v", state, err)
	}
	b.waitState(memSuspended)
	return nil
}

// Disable writes the "on" state and waits for the framebuffer to wake.
// A failing write is logged but not fatal, the kernel may already be
// awake.
func (b *EarlySuspendBackend) Disable() error {
	logger.Debugf("early suspend disable")
	if err := b.power.SetState(powerStateOn); err != nil {
		logger.Debugf("cannot write %q to power state: %v", powerStateOn, err)
	}
	b.waitState(displayOn)
	return nil
}

func (b *EarlySuspendBackend) stop() error {
	if !b.started {
		return nil
	}
	b.tomb.Kill(nil)
	return b.tomb.Wait()
}
