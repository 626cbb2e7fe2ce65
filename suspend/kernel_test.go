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
	"os"
	"path/filepath"

	. "gopkg.in/check.v1"

	"github.com/deviceos/powerd/dirs"
	"github.com/deviceos/powerd/suspend"
	"github.com/deviceos/powerd/testutil"
)

type sysfsSuite struct {
	testutil.BaseTest
}

var _ = Suite(&sysfsSuite{})

func (s *sysfsSuite) SetUpTest(c *C) {
	s.BaseTest.SetUpTest(c)

	dirs.SetRootDir(c.MkDir())
	s.AddCleanup(func() { dirs.SetRootDir("/") })

	c.Assert(os.MkdirAll(filepath.Dir(dirs.SysPowerState), 0755), IsNil)
}

func (s *sysfsSuite) TestReadCount(c *C) {
	c.Assert(os.WriteFile(dirs.SysPowerWakeupCount, []byte("107\n"), 0644), IsNil)

	sysfs := suspend.NewSysfsPower()
	count, err := sysfs.ReadCount()
	c.Assert(err, IsNil)
	c.Check(count, Equals, "107")
}

func (s *sysfsSuite) TestReadCountMissing(c *C) {
	sysfs := suspend.NewSysfsPower()
	_, err := sysfs.ReadCount()
	c.Check(err, NotNil)
}

func (s *sysfsSuite) TestCommitCount(c *C) {
	c.Assert(os.WriteFile(dirs.SysPowerWakeupCount, []byte("107\n"), 0644), IsNil)

	sysfs := suspend.NewSysfsPower()
	c.Assert(sysfs.CommitCount("107"), IsNil)
	c.Check(dirs.SysPowerWakeupCount, testutil.FileEquals, "107")
}

func (s *sysfsSuite) TestStates(c *C) {
	c.Assert(os.WriteFile(dirs.SysPowerState, []byte("freeze mem disk\n"), 0644), IsNil)

	sysfs := suspend.NewSysfsPower()
	states, err := sysfs.States()
	c.Assert(err, IsNil)
	c.Check(states, DeepEquals, []string{"freeze", "mem", "disk"})
}

func (s *sysfsSuite) TestSetState(c *C) {
	c.Assert(os.WriteFile(dirs.SysPowerState, []byte("freeze mem\n"), 0644), IsNil)

	sysfs := suspend.NewSysfsPower()
	c.Assert(sysfs.SetState("mem"), IsNil)
	c.Check(dirs.SysPowerState, testutil.FileEquals, "mem")
}

func (s *sysfsSuite) TestAvailable(c *C) {
	sysfs := suspend.NewSysfsPower()
	c.Check(sysfs.Available(), Equals, false)

	c.Assert(os.WriteFile(dirs.SysWaitForFBSleep, nil, 0644), IsNil)
	c.Check(sysfs.Available(), Equals, false)

	c.Assert(os.WriteFile(dirs.SysWaitForFBWake, nil, 0644), IsNil)
	c.Check(sysfs.Available(), Equals, true)
}

func (s *sysfsSuite) TestWaitWake(c *C) {
	c.Assert(os.WriteFile(dirs.SysWaitForFBWake, []byte("x"), 0644), IsNil)

	sysfs := suspend.NewSysfsPower()
	c.Check(sysfs.WaitWake(), IsNil)
	c.Check(sysfs.WaitSleep(), NotNil)
}
