//go:build darwin || freebsd

// Package sock implements the non-blocking TCP socket layer.
/*
 * Copyright (c) 2026, Skyrod Authors. All rights reserved.
 */
package sock

import (
	"github.com/skyrod/wirenet/cmn"
	"github.com/skyrod/wirenet/cmn/nlog"

	"golang.org/x/sys/unix"
)

const sendFlags = 0 // no MSG_NOSIGNAL; SIGPIPE is suppressed per-socket

func setNoSigPipe(fd int) {
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_NOSIGPIPE, 1); err != nil {
		nlog.Warningln("setsockopt(SO_NOSIGPIPE) failed:", err)
	}
}

func tuneBuffers(fd int) {
	want := cmn.GCO.Get().SockBufSize
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_SNDBUF, want); err != nil {
		nlog.Warningln("setsockopt(SO_SNDBUF) failed:", err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_RCVBUF, want); err != nil {
		nlog.Warningln("setsockopt(SO_RCVBUF) failed:", err)
	}
}

// kernel MTU discovery is not exposed uniformly here; callers fall back
func getMTU(int) int { return DefaultMTU }
