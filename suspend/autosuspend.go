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

	"github.com/deviceos/powerd/logger"
	"github.com/deviceos/powerd/props"
	"github.com/deviceos/powerd/uinput"
)

// Options carries the process-wide collaborators of Autosuspend.
type Options struct {
	// Props is the property store consulted for backend selection
	// and the sleep state override.
	Props *props.Store

	// Emitter is the virtual input device used to signal a completed
	// wake; it may be nil when the device could not be created.
	Emitter uinput.KeyEmitter
}

// Autosuspend coordinates suspend enablement. The first Enable or
// Disable call selects and initializes exactly one backend: the
// early-suspend backend if configured and available, the wakeup-count
// backend otherwise. Enable and Disable are idempotent.
type Autosuspend struct {
	opts *Options

	mu      sync.Mutex
	inited  bool
	initErr error
	backend Backend
	enabled bool

	hook wakeCallbackSlot
}

// New returns an Autosuspend coordinator; no backend is initialized
// until the first Enable or Disable call.
func New(opts *Options) *Autosuspend {
	if opts == nil {
		opts = &Options{}
	}
	if opts.Props == nil {
		st, _ := props.Load("/dev/null")
		opts.Props = st
	}
	return &Autosuspend{opts: opts}
}

var (
	newEarlySuspendBackend = func(power PowerStater, sleepState func() string, notifier FBNotifier) (Backend, error) {
		return NewEarlySuspendBackend(power, sleepState, notifier)
	}
	newWakeupCountBackend = func(wakeup WakeupCounter, power PowerStater, sleepState func() string, emitter uinput.KeyEmitter, notify func(bool)) (Backend, error) {
		return NewWakeupCountBackend(wakeup, power, sleepState, emitter, notify)
	}
)

func (a *Autosuspend) selectBackend() (Backend, error) {
	sysfs := NewSysfsPower()
	resolver := NewSleepStateResolver(a.opts.Props, sysfs)

	if a.opts.Props.GetBool(props.UseEarlySuspend, true) {
		b, err := newEarlySuspendBackend(sysfs, resolver.State, sysfs)
		if err == nil {
			logger.Noticef("selected early suspend")
			return b, nil
		}
		logger.Noticef("cannot initialize early suspend backend: %v", err)
	}

	b, err := newWakeupCountBackend(sysfs, sysfs, resolver.State, a.opts.Emitter, a.hook.invoke)
	if err != nil {
		return nil, fmt.Errorf("cannot initialize any suspend backend: %v", err)
	}
	logger.Noticef("selected wakeup count")
	return b, nil
}

// initBackend performs the one-time backend selection. The outcome,
// including failure, is memoized: a failed selection is reported to
// every subsequent call instead of being retried.
func (a *Autosuspend) initBackend() error {
	if a.inited {
		return a.initErr
	}
	a.inited = true
	a.backend, a.initErr = a.selectBackend()
	return a.initErr
}

// Enable allows the device to suspend. Calling Enable while already
// enabled is a no-op.
func (a *Autosuspend) Enable() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.initBackend(); err != nil {
		return err
	}

	logger.Debugf("autosuspend enable")
	if a.enabled {
		return nil
	}
	if err := a.backend.Enable(); err != nil {
		return err
	}
	a.enabled = true
	return nil
}

// Disable keeps the device awake. Calling Disable while already
// disabled is a no-op.
func (a *Autosuspend) Disable() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.initBackend(); err != nil {
		return err
	}

	logger.Debugf("autosuspend disable")
	if !a.enabled {
		return nil
	}
	if err := a.backend.Disable(); err != nil {
		return err
	}
	a.enabled = false
	return nil
}

// Enabled tells whether autosuspend is currently enabled.
func (a *Autosuspend) Enabled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.enabled
}

// BackendName returns the name of the selected backend, or "" while no
// backend has been selected yet.
func (a *Autosuspend) BackendName() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.backend == nil {
		return ""
	}
	return a.backend.Name()
}

// SetWakeCallback registers the wake notification callback. Only the
// first registration takes effect, later ones are rejected with
// ErrCallbackAlreadySet.
func (a *Autosuspend) SetWakeCallback(cb WakeCallback) error {
	return a.hook.set(cb)
}
