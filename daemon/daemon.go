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

// Package daemon exposes the power management state over a local REST
// API on a root-only unix socket.
package daemon

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/activation"
	sddaemon "github.com/coreos/go-systemd/daemon"
	"github.com/gorilla/mux"
	"golang.org/x/sys/unix"
	"gopkg.in/tomb.v2"

	"github.com/deviceos/powerd/dirs"
	"github.com/deviceos/powerd/logger"
)

const shutdownTimeout = 5 * time.Second

// AutosuspendManager is the part of the suspend coordinator the API
// surfaces.
type AutosuspendManager interface {
	Enable() error
	Disable() error
	Enabled() bool
	BackendName() string
}

// A Daemon listens for requests and routes them to the right command.
type Daemon struct {
	Version string

	autosuspend AutosuspendManager

	listener net.Listener
	serve    *http.Server
	router   *mux.Router
	tomb     tomb.Tomb
}

// A ResponseFunc handles one of the individual verbs for a method
type ResponseFunc func(*Command, *http.Request) Response

// A Command routes a request to an individual per-verb ResponseFunc
type Command struct {
	Path string

	GET  ResponseFunc
	POST ResponseFunc

	d *Daemon
}

func (c *Command) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var rspf ResponseFunc
	rsp := MethodNotAllowed("method %q not allowed", r.Method)

	switch r.Method {
	case "GET":
		rspf = c.GET
	case "POST":
		rspf = c.POST
	}

	if rspf != nil {
		rsp = rspf(c, r)
	}
	rsp.ServeHTTP(w, r)
}

var sysGetsockoptUcred = syscall.GetsockoptUcred

func getUcred(conn net.Conn) (*syscall.Ucred, error) {
	uconn, ok := conn.(*net.UnixConn)
	if !ok {
		return nil, fmt.Errorf("expected a net.UnixConn, but got a %T", conn)
	}
	f, err := uconn.File()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return sysGetsockoptUcred(int(f.Fd()), syscall.SOL_SOCKET, syscall.SO_PEERCRED)
}

// checkConn rejects connections from anybody but root and ourselves.
func checkConn(conn net.Conn, state http.ConnState) {
	if state != http.StateNew {
		return
	}
	ucred, err := getUcred(conn)
	if err != nil {
		logger.Noticef("cannot obtain peer credentials: %v", err)
		conn.Close()
		return
	}
	if ucred.Uid != 0 && ucred.Uid != uint32(os.Geteuid()) {
		logger.Noticef("blocking request from user ID %v", ucred.Uid)
		conn.Close()
	}
}

type closeOnceListener struct {
	net.Listener

	idempotClose sync.Once
	closeErr     error
}

func (l *closeOnceListener) Close() error {
	l.idempotClose.Do(func() {
		l.closeErr = l.Listener.Close()
	})
	return l.closeErr
}

// getListener tries to get a listener for the given socket path from
// the listener map, and if it fails it tries to set it up directly.
func getListener(socketPath string, listenerMap map[string]net.Listener) (net.Listener, error) {
	if listener, ok := listenerMap[socketPath]; ok {
		return listener, nil
	}

	if c, err := net.Dial("unix", socketPath); err == nil {
		c.Close()
		return nil, fmt.Errorf("socket %q already in use", socketPath)
	}

	if err := os.Remove(socketPath); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	address, err := net.ResolveUnixAddr("unix", socketPath)
	if err != nil {
		return nil, err
	}

	runtime.LockOSThread()
	oldmask := unix.Umask(0177)
	listener, err := net.ListenUnix("unix", address)
	unix.Umask(oldmask)
	runtime.UnlockOSThread()
	if err != nil {
		return nil, err
	}

	logger.Debugf("socket %q was not activated; listening", socketPath)

	return listener, nil
}

// Init sets up the daemon's internal workings. Don't call more than
// once.
func (d *Daemon) Init() error {
	listeners, err := activation.Listeners()
	if err != nil {
		return err
	}

	listenerMap := make(map[string]net.Listener, len(listeners))
	for _, listener := range listeners {
		listenerMap[listener.Addr().String()] = listener
	}

	listener, err := getListener(dirs.PowerdSocket, listenerMap)
	if err != nil {
		return fmt.Errorf("cannot listen on socket %s: %v", dirs.PowerdSocket, err)
	}
	d.listener = &closeOnceListener{Listener: listener}

	d.addRoutes()
	d.serve = &http.Server{
		Handler:   d.router,
		ConnState: checkConn,
	}
	return nil
}

func (d *Daemon) addRoutes() {
	d.router = mux.NewRouter()
	for _, c := range api {
		c.d = d
		d.router.Handle(c.Path, c).Name(c.Path)
	}
	d.router.NotFoundHandler = NotFound("not found")
}

// Start runs the daemon.
func (d *Daemon) Start() {
	d.tomb.Go(d.runServer)
	d.tomb.Go(d.shutdownServerOnKill)
}

func (d *Daemon) runServer() error {
	err := d.serve.Serve(d.listener)
	if err == http.ErrServerClosed {
		err = nil
	}
	if d.tomb.Err() == tomb.ErrStillAlive {
		return err
	}
	return nil
}

func (d *Daemon) shutdownServerOnKill() error {
	<-d.tomb.Dying()
	sddaemon.SdNotify(false, "STOPPING=1")
	// closing the listener before calling Shutdown works around
	// Serve racing with Shutdown when the daemon is stopped right
	// after starting
	d.listener.Close()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return d.serve.Shutdown(ctx)
}

// Stop performs a graceful shutdown of the daemon and waits for it to
// complete.
func (d *Daemon) Stop() error {
	d.tomb.Kill(nil)
	return d.tomb.Wait()
}

// Dying is a tomb-ish way to know if the daemon is dying.
func (d *Daemon) Dying() <-chan struct{} {
	return d.tomb.Dying()
}

// New returns an initialized daemon serving the given coordinator.
func New(version string, autosuspend AutosuspendManager) (*Daemon, error) {
	d := &Daemon{
		Version:     version,
		autosuspend: autosuspend,
	}
	if err := d.Init(); err != nil {
		return nil, err
	}
	return d, nil
}
