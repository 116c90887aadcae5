//go:build darwin || freebsd

// Package sock implements the non-blocking TCP socket layer.
/*
 * Copyright (c) 2026, Skyrod Authors. All rights reserved.
 */
package sock

import (
	"time"

	"golang.org/x/sys/unix"
)

// waitRead parks on a one-shot kqueue until fd is readable.
// timeoutMs < 0 waits indefinitely.
func waitRead(fd, timeoutMs int) (ready bool, err error) {
	kq, err := unix.Kqueue()
	if err != nil {
		return false, err
	}
	defer unix.Close(kq)

	kev := unix.Kevent_t{
		Ident:  uint64(fd),
		Filter: unix.EVFILT_READ,
		Flags:  unix.EV_ADD | unix.EV_ONESHOT,
	}
	var (
		events [1]unix.Kevent_t
		ts     *unix.Timespec
	)
	if timeoutMs >= 0 {
		t := unix.NsecToTimespec(int64(timeoutMs) * int64(time.Millisecond))
		ts = &t
	}
	for {
		n, err := unix.Kevent(kq, []unix.Kevent_t{kev}, events[:], ts)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return false, err
		}
		return n > 0, nil
	}
}
