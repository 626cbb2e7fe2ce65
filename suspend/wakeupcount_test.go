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

package suspend_test

import (
	"fmt"
	"sync"
	"time"

	evdev "github.com/gvalkov/golang-evdev"
	. "gopkg.in/check.v1"

	"github.com/deviceos/powerd/logger"
	"github.com/deviceos/powerd/suspend"
	"github.com/deviceos/powerd/testutil"
)

// fakeWakeup is a scriptable WakeupCounter. With reads set, ReadCount
// blocks on the channel so tests control the suspend loop step by
// step; a closed channel yields empty counts which the loop treats as
// recoverable.
type fakeWakeup struct {
	mu       sync.Mutex
	current  string
	reads    chan string
	commits  []string
	rejected []string
	commitCh chan string
}

func (w *fakeWakeup) ReadCount() (string, error) {
	if w.reads != nil {
		return <-w.reads, nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current, nil
}

func (w *fakeWakeup) CommitCount(count string) error {
	w.mu.Lock()
	if count != w.current {
		w.rejected = append(w.rejected, count)
		w.mu.Unlock()
		return fmt.Errorf("wakeup count changed")
	}
	w.commits = append(w.commits, count)
	ch := w.commitCh
	w.mu.Unlock()
	if ch != nil {
		select {
		case ch <- count:
		default:
		}
	}
	return nil
}

func (w *fakeWakeup) bump(count string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.current = count
}

func (w *fakeWakeup) rejectedCounts() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.rejected...)
}

func (w *fakeWakeup) committedCounts() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.commits...)
}

type keyEvent struct {
	code  int
	value int32
}

type fakeEmitter struct {
	mu   sync.Mutex
	keys []keyEvent
}

func (e *fakeEmitter) EmitKey(code int, value int32) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.keys = append(e.keys, keyEvent{code, value})
	return nil
}

func (e *fakeEmitter) emitted() []keyEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]keyEvent(nil), e.keys...)
}

type wakeupCountSuite struct {
	testutil.BaseTest
}

var _ = Suite(&wakeupCountSuite{})

func (s *wakeupCountSuite) SetUpTest(c *C) {
	s.BaseTest.SetUpTest(c)

	_, restore := logger.MockLogger()
	s.AddCleanup(restore)
}

func memState() string { return "mem" }

func (s *wakeupCountSuite) TestInitFailsWithoutPowerState(c *C) {
	power := &fakePower{statesErr: fmt.Errorf("no such file")}
	wakeup := &fakeWakeup{current: "1"}

	_, err := suspend.NewWakeupCountBackend(wakeup, power, memState, nil, nil)
	c.Assert(err, ErrorMatches, "cannot access power state interface: no such file")
}

func (s *wakeupCountSuite) TestEnableDisableAdjustGate(c *C) {
	// park the suspend loop so only enable/disable touch the gate
	restore := suspend.MockSuspendRetryInterval(time.Hour)
	s.AddCleanup(restore)

	power := &fakePower{states: []string{"mem"}}
	wakeup := &fakeWakeup{current: "1"}

	b, err := suspend.NewWakeupCountBackend(wakeup, power, memState, nil, nil)
	c.Assert(err, IsNil)
	defer b.Stop()

	c.Check(b.Name(), Equals, "wakeup-count")
	c.Check(b.GateCount(), Equals, 0)

	c.Assert(b.Enable(), IsNil)
	c.Assert(b.Enable(), IsNil)
	c.Check(b.GateCount(), Equals, 2)

	c.Assert(b.Disable(), IsNil)
	c.Assert(b.Disable(), IsNil)
	c.Check(b.GateCount(), Equals, 0)

	// one disable too many is rejected, not applied
	c.Check(b.Disable(), Equals, suspend.ErrNoGrant)
	c.Check(b.GateCount(), Equals, 0)
}

func (s *wakeupCountSuite) TestSuspendHappyPath(c *C) {
	restore := suspend.MockSuspendRetryInterval(time.Millisecond)
	s.AddCleanup(restore)

	writeCh := make(chan string, 16)
	power := &fakePower{states: []string{"mem"}, writeCh: writeCh}
	wakeup := &fakeWakeup{current: "42"}
	emitter := &fakeEmitter{}
	notifyCh := make(chan bool, 16)

	b, err := suspend.NewWakeupCountBackend(wakeup, power, memState, emitter,
		func(success bool) {
			select {
			case notifyCh <- success:
			default:
			}
		})
	c.Assert(err, IsNil)
	defer b.Stop()

	c.Assert(b.Enable(), IsNil)

	select {
	case state := <-writeCh:
		c.Check(state, Equals, "mem")
	case <-time.After(5 * time.Second):
		c.Fatal("timeout waiting for suspend")
	}
	select {
	case success := <-notifyCh:
		c.Check(success, Equals, true)
	case <-time.After(5 * time.Second):
		c.Fatal("timeout waiting for wake notification")
	}

	c.Assert(b.Stop(), IsNil)

	keys := emitter.emitted()
	c.Assert(len(keys) >= 2, Equals, true)
	c.Check(keys[0], Equals, keyEvent{evdev.KEY_WAKEUP, 1})
	c.Check(keys[1], Equals, keyEvent{evdev.KEY_WAKEUP, 0})
	c.Check(wakeup.committedCounts()[0], Equals, "42")
}

func (s *wakeupCountSuite) TestWakeupRaceAbortsAttempt(c *C) {
	restore := suspend.MockSuspendRetryInterval(time.Millisecond)
	s.AddCleanup(restore)

	reads := make(chan string, 1)
	reads <- "7" // consumed by the constructor probe

	writeCh := make(chan string, 16)
	power := &fakePower{states: []string{"mem"}, writeCh: writeCh}
	wakeup := &fakeWakeup{current: "7", reads: reads, commitCh: make(chan string, 16)}

	b, err := suspend.NewWakeupCountBackend(wakeup, power, memState, nil, nil)
	c.Assert(err, IsNil)
	defer func() {
		close(reads)
		b.Stop()
	}()

	// the loop reads the snapshot "7" and parks on the gate
	reads <- "7"
	// a wakeup arrives before the loop is allowed to commit
	wakeup.bump("8")
	c.Assert(b.Enable(), IsNil)

	// the stale snapshot write is rejected, no sleep state is
	// written for that iteration; a fresh snapshot commits fine
	reads <- "8"
	select {
	case state := <-writeCh:
		c.Check(state, Equals, "mem")
	case <-time.After(5 * time.Second):
		c.Fatal("timeout waiting for suspend")
	}

	c.Check(wakeup.rejectedCounts(), DeepEquals, []string{"7"})
	c.Check(wakeup.committedCounts(), DeepEquals, []string{"8"})
	c.Check(power.writtenStates(), DeepEquals, []string{"mem"})
}

func (s *wakeupCountSuite) TestDisableBlocksSuspend(c *C) {
	restore := suspend.MockSuspendRetryInterval(time.Millisecond)
	s.AddCleanup(restore)

	writeCh := make(chan string, 16)
	power := &fakePower{states: []string{"mem"}, writeCh: writeCh}
	wakeup := &fakeWakeup{current: "3"}

	b, err := suspend.NewWakeupCountBackend(wakeup, power, memState, nil, nil)
	c.Assert(err, IsNil)
	defer b.Stop()

	// without a grant nothing is ever committed
	select {
	case state := <-writeCh:
		c.Fatalf("device suspended to %q while disabled", state)
	case <-time.After(50 * time.Millisecond):
	}

	c.Assert(b.Enable(), IsNil)
	select {
	case <-writeCh:
	case <-time.After(5 * time.Second):
		c.Fatal("timeout waiting for suspend")
	}
}

func (s *wakeupCountSuite) TestSuspendFailureNotifiesFalse(c *C) {
	restore := suspend.MockSuspendRetryInterval(time.Millisecond)
	s.AddCleanup(restore)

	power := &fakePower{states: []string{"mem"}, setErr: fmt.Errorf("kernel says no")}
	wakeup := &fakeWakeup{current: "9"}
	emitter := &fakeEmitter{}
	notifyCh := make(chan bool, 16)

	b, err := suspend.NewWakeupCountBackend(wakeup, power, memState, emitter,
		func(success bool) {
			select {
			case notifyCh <- success:
			default:
			}
		})
	c.Assert(err, IsNil)
	defer b.Stop()

	c.Assert(b.Enable(), IsNil)

	select {
	case success := <-notifyCh:
		c.Check(success, Equals, false)
	case <-time.After(5 * time.Second):
		c.Fatal("timeout waiting for wake notification")
	}

	// no wake key on a failed suspend
	c.Check(emitter.emitted(), HasLen, 0)
}
