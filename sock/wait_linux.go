//go:build linux

// Package sock implements the non-blocking TCP socket layer.
/*
 * Copyright (c) 2026, Skyrod Authors. All rights reserved.
 */
package sock

import "golang.org/x/sys/unix"

// waitRead parks on a one-shot epoll instance until fd is readable.
// timeoutMs < 0 waits indefinitely.
func waitRead(fd, timeoutMs int) (ready bool, err error) {
	epfd, err := unix.EpollCreate1(0)
	if err != nil {
		return false, err
	}
	defer unix.Close(epfd)

	ev := unix.EpollEvent{Events: unix.EPOLLIN | unix.EPOLLPRI, Fd: int32(fd)}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return false, err
	}
	var events [1]unix.EpollEvent
	for {
		n, err := unix.EpollWait(epfd, events[:], timeoutMs)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return false, err
		}
		return n > 0, nil
	}
}
