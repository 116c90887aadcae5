// Package sock implements the non-blocking TCP socket layer.
/*
 * Copyright (c) 2026, Skyrod Authors. All rights reserved.
 */
package sock

import (
	"sync"
	"time"

	"github.com/skyrod/wirenet/cmn/cos"
	"github.com/skyrod/wirenet/cmn/nlog"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

const acceptWait = 200 * time.Millisecond

// Server is a listening TCP socket (C7). Accepted handles are tracked so a
// shutdown can forcefully close in-flight clients.
type Server struct {
	base
	mu            sync.Mutex
	activeClients []int
}

// interface guard
var _ Socket = (*Server)(nil)

func NewServer(proto Protocol) *Server {
	s := &Server{}
	s.init(proto)
	return s
}

// Listen binds and starts listening; any failure reverts the socket to
// Disconnected and frees the handle.
func (s *Server) Listen(host string, port int) error {
	if IsAlive(s.Status()) {
		return cos.NewErrConnection("listen", errors.New("server is already connected"))
	}
	s.setStatus(Connecting)

	fd, err := s.createSocket()
	if err != nil {
		return err
	}
	s.fd.Store(int64(fd))

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		s.listenCleanup(fd)
		return cos.NewErrConnection("setsockopt(SO_REUSEADDR)", err)
	}
	info, err := FromHost(host, port, s.proto)
	if err != nil {
		s.listenCleanup(fd)
		return err
	}
	s.info = info
	if err := unix.Bind(fd, info.Addr); err != nil {
		s.listenCleanup(fd)
		return cos.NewErrConnection("bind", err)
	}
	if err := unix.Listen(fd, unix.SOMAXCONN); err != nil {
		s.listenCleanup(fd)
		return cos.NewErrConnection("listen", err)
	}
	s.initAfterConnect()
	nlog.Verbf("server listening on %s:%d", host, port)
	return nil
}

// Port reports the actual bound port (useful with ephemeral binds).
func (s *Server) Port() int {
	sa, err := unix.Getsockname(int(s.fd.Load()))
	if err != nil {
		return 0
	}
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return a.Port
	case *unix.SockaddrInet6:
		return a.Port
	}
	return 0
}

func (s *Server) listenCleanup(fd int) {
	_ = unix.Close(fd)
	s.fd.Store(-1)
	s.setStatus(Disconnected)
}

// Accept waits briefly for an incoming connection and wraps the accepted
// handle in a fully initialized Client. Timeouts are benign; the accept
// task retries.
func (s *Server) Accept() (*Client, error) {
	if !IsAlive(s.Status()) {
		return nil, cos.NewErrNotConnected("accept")
	}
	fd := int(s.fd.Load())
	pfd := [1]unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	n, err := unix.Poll(pfd[:], int(acceptWait.Milliseconds()))
	if err != nil && err != unix.EINTR {
		return nil, cos.NewErrConnection("accept poll", err)
	}
	if n == 0 {
		return nil, cos.NewErrAcceptTimeout()
	}

	nfd, sa, err := unix.Accept(fd)
	if err != nil {
		return nil, cos.NewErrConnection("accept", err)
	}
	unix.CloseOnExec(nfd)

	s.mu.Lock()
	s.activeClients = append(s.activeClients, nfd)
	s.mu.Unlock()

	info, err := FromSockaddr(sa)
	if err != nil {
		info = &ConnInfo{MTU: DefaultMTU}
	}
	c := newAccepted(s.proto, nfd, info)
	c.initAfterConnect()
	return c, nil
}

// Disconnect forcefully shuts down all accepted handles, then the
// listening socket itself.
func (s *Server) Disconnect() {
	s.mu.Lock()
	clients := s.activeClients
	s.activeClients = nil
	s.mu.Unlock()
	for _, fd := range clients {
		if fd < 0 {
			continue
		}
		_ = unix.Shutdown(fd, unix.SHUT_RDWR)
		_ = unix.Close(fd)
	}
	s.base.Disconnect()
}
