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
	"sync"

	"github.com/deviceos/powerd/logger"
	"github.com/deviceos/powerd/props"
)

const (
	defaultSleepState  = "mem"
	fallbackSleepState = "freeze"

	// powerStateOn wakes the display back up on early-suspend kernels
	powerStateOn = "on"
)

// SleepStateResolver picks the sleep state written to the kernel power
// state file: an explicit property override wins, else "mem" if the
// kernel supports it, else "freeze". The result is cached for the
// lifetime of the process.
type SleepStateResolver struct {
	props *props.Store
	power PowerStater

	once  sync.Once
	state string
}

func NewSleepStateResolver(st *props.Store, power PowerStater) *SleepStateResolver {
	return &SleepStateResolver{props: st, power: power}
}

func (r *SleepStateResolver) supported(state string) bool {
	states, err := r.power.States()
	if err != nil {
		logger.Noticef("cannot read supported power states: %v", err)
		return false
	}
	for _, s := range states {
		if s == state {
			return true
		}
	}
	return false
}

// State returns the resolved sleep state.
func (r *SleepStateResolver) State() string {
	r.once.Do(func() {
		if override := r.props.GetString(props.SleepState, ""); override != "" {
			logger.Debugf("using sleep state from property store (%s)", override)
			r.state = override
		} else if r.supported(defaultSleepState) {
			logger.Debugf("using default sleep state (%s)", defaultSleepState)
			r.state = defaultSleepState
		} else {
			logger.Noticef("sleep state %q unavailable, using fallback %q", defaultSleepState, fallbackSleepState)
			r.state = fallbackSleepState
		}
	})
	return r.state
}
