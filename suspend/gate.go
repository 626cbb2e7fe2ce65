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
)

var (
	// ErrGateClosed is reported by Wait once the gate has been shut
	// down for good.
	ErrGateClosed = errors.New("suspend gate is closed")

	// ErrNoGrant is reported by TryWait when there is no outstanding
	// grant to take back.
	ErrNoGrant = errors.New("cannot take back suspend grant: no grant outstanding")
)

// A Gate is a counting semaphore used to arbitrate suspend permission.
// Every Post adds one "allow suspend" grant; Wait blocks until at least
// one grant exists and takes it. TryWait fails fast instead of driving
// the counter negative, which would be a programming error on the
// caller's side.
type Gate struct {
	mu     sync.Mutex
	cond   *sync.Cond
	count  int
	closed bool
}

// NewGate returns a gate with no outstanding grants, i.e. suspend is
// not allowed until the first Post.
func NewGate() *Gate {
	g := &Gate{}
	g.cond = sync.NewCond(&g.mu)
	return g
}

// Post adds one grant and wakes up a waiter, if any.
func (g *Gate) Post() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.count++
	g.cond.Signal()
}

// Wait blocks until at least one grant exists, then takes it. It
// reports ErrGateClosed if the gate is shut down while waiting.
func (g *Gate) Wait() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for g.count == 0 && !g.closed {
		g.cond.Wait()
	}
	if g.closed {
		return ErrGateClosed
	}
	g.count--
	return nil
}

// TryWait takes a grant if one exists and reports ErrNoGrant otherwise,
// it never blocks.
func (g *Gate) TryWait() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return ErrGateClosed
	}
	if g.count == 0 {
		return ErrNoGrant
	}
	g.count--
	return nil
}

// Count returns the number of outstanding grants.
func (g *Gate) Count() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.count
}

// Close shuts the gate down and unblocks all waiters.
func (g *Gate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.closed = true
	g.cond.Broadcast()
}
