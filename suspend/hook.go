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
	"errors"
	"sync"

	"github.com/deviceos/powerd/logger"
)

// ErrCallbackAlreadySet is reported when a wake callback was already
// registered; the original registration is kept.
var ErrCallbackAlreadySet = errors.New("wake callback already set")

// A WakeCallback is invoked after every committed suspend attempt;
// success tells whether the device actually suspended and resumed.
type WakeCallback func(success bool)

// wakeCallbackSlot holds at most one WakeCallback, first writer wins.
type wakeCallbackSlot struct {
	mu sync.Mutex
	cb WakeCallback
}

func (s *wakeCallbackSlot) set(cb WakeCallback) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cb != nil {
		logger.Noticef("duplicate wake callback registration, keeping original")
		return ErrCallbackAlreadySet
	}
	s.cb = cb
	return nil
}

func (s *wakeCallbackSlot) invoke(success bool) {
	s.mu.Lock()
	cb := s.cb
	s.mu.Unlock()

	if cb != nil {
		cb(success)
	}
}
