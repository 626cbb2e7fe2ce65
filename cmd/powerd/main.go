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

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	sddaemon "github.com/coreos/go-systemd/daemon"
	"github.com/jessevdk/go-flags"

	"github.com/deviceos/powerd/daemon"
	"github.com/deviceos/powerd/dirs"
	"github.com/deviceos/powerd/logger"
	"github.com/deviceos/powerd/osutil"
	"github.com/deviceos/powerd/powerbtn"
	"github.com/deviceos/powerd/props"
	"github.com/deviceos/powerd/suspend"
	"github.com/deviceos/powerd/uinput"
)

// Version is set at build time via -ldflags.
var Version = "unknown"

// virtualButtonName is the name under which the synthetic power button
// registers; consumers match on it to pick up power key presses.
const virtualButtonName = "Power Button (virtual)"

type cmdOptions struct {
	Version bool `long:"version" description:"print the version and exit"`
}

func init() {
	if err := logger.SimpleSetup(); err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: failed to activate logging: %s\n", err)
	}
}

func main() {
	var opts cmdOptions
	parser := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	if _, err := parser.Parse(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if opts.Version {
		fmt.Fprintf(os.Stdout, "powerd %s\n", Version)
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func runWatchdog(d *daemon.Daemon) (*time.Ticker, error) {
	// not running under systemd
	if os.Getenv("WATCHDOG_USEC") == "" {
		return nil, nil
	}
	usec := osutil.GetenvInt64("WATCHDOG_USEC")
	if usec == 0 {
		return nil, fmt.Errorf("cannot parse WATCHDOG_USEC: %q", os.Getenv("WATCHDOG_USEC"))
	}
	dur := time.Duration(usec/2) * time.Microsecond
	logger.Debugf("setting up sd_notify() watchdog timer every %s", dur)
	wt := time.NewTicker(dur)

	go func() {
		for {
			select {
			case <-wt.C:
				sddaemon.SdNotify(false, "WATCHDOG=1")
			case <-d.Dying():
				return
			}
		}
	}()

	return wt, nil
}

func run() error {
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)

	st, err := props.Load(dirs.PowerdConfFile)
	if err != nil {
		return fmt.Errorf("cannot load %s: %v", dirs.PowerdConfFile, err)
	}

	// the virtual button is optional, wake presses are simply not
	// forwarded without it
	var emitter uinput.KeyEmitter
	dev, err := uinput.New(virtualButtonName)
	if err != nil {
		logger.Noticef("cannot create virtual power button: %v", err)
	} else {
		emitter = dev
		defer dev.Close()
	}

	monitor := powerbtn.New(emitter, st.GetBool(props.PowerBtnDoubleClick, false))
	if err := monitor.Start(); err != nil {
		return fmt.Errorf("cannot monitor power buttons: %v", err)
	}
	defer monitor.Stop()

	autosuspend := suspend.New(&suspend.Options{
		Props:   st,
		Emitter: emitter,
	})
	if err := autosuspend.SetWakeCallback(func(success bool) {
		logger.Debugf("woke up from suspend (success: %v)", success)
	}); err != nil {
		return err
	}

	d, err := daemon.New(Version, autosuspend)
	if err != nil {
		return err
	}
	d.Start()

	watchdog, err := runWatchdog(d)
	if err != nil {
		return fmt.Errorf("cannot run software watchdog: %v", err)
	}
	if watchdog != nil {
		defer watchdog.Stop()
	}

	sddaemon.SdNotify(false, "READY=1")

	select {
	case sig := <-ch:
		logger.Noticef("exiting on %s signal", sig)
	case <-d.Dying():
		// something called Stop()
	}

	return d.Stop()
}
