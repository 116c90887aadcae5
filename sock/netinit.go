// Package sock implements the non-blocking TCP socket layer: process-wide
// net init, address resolution, the socket core with event-driven readiness
// waits, and the client/server socket types built on it.
/*
 * Copyright (c) 2026, Skyrod Authors. All rights reserved.
 */
package sock

import (
	"errors"
	"sync"
	"syscall"

	"github.com/skyrod/wirenet/cmn/nlog"
)

// process-wide, one-shot network initialization. On the supported unix
// families there is no WSAStartup-style bootstrap; the instance exists to
// anchor error-code translation and to keep construction ordering explicit
// (sockets touch it before their first syscall).
type NetInit struct{}

var (
	instance NetInit
	initOnce sync.Once
)

// Instance is safe from any goroutine after its first call returns.
func Instance() *NetInit {
	initOnce.Do(func() {
		nlog.Verbln("network stack initialized")
	})
	return &instance
}

// ErrnoString translates a platform error code to a human-readable string.
func (*NetInit) ErrnoString(code int) string { return syscall.Errno(code).Error() }

// ErrnoCode extracts the platform error code from an error chain, 0 if none.
func (*NetInit) ErrnoCode(err error) int {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return int(errno)
	}
	return 0
}
