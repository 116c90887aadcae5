//go:build linux

// Package sock implements the non-blocking TCP socket layer.
/*
 * Copyright (c) 2026, Skyrod Authors. All rights reserved.
 */
package sock

import (
	"os"
	"strconv"
	"strings"

	"github.com/skyrod/wirenet/cmn"
	"github.com/skyrod/wirenet/cmn/cos"
	"github.com/skyrod/wirenet/cmn/nlog"

	"golang.org/x/sys/unix"
)

const sendFlags = unix.MSG_NOSIGNAL

func setNoSigPipe(int) {}

// tuneBuffers requests large send/recv kernel buffers, raising the ask to
// the system maxima when /proc reports larger ones.
func tuneBuffers(fd int) {
	want := cmn.GCO.Get().SockBufSize
	sndWant, rcvWant := want, want
	if v, ok := readProcInt("/proc/sys/net/core/wmem_max"); ok {
		nlog.Verbf("system wmem_max: %s", cos.ToSizeIEC(int64(v), 0))
		if v > sndWant {
			sndWant = v
		}
	}
	if v, ok := readProcInt("/proc/sys/net/core/rmem_max"); ok {
		nlog.Verbf("system rmem_max: %s", cos.ToSizeIEC(int64(v), 0))
		if v > rcvWant {
			rcvWant = v
		}
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_SNDBUF, sndWant); err != nil {
		nlog.Warningln("setsockopt(SO_SNDBUF) failed:", err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_RCVBUF, rcvWant); err != nil {
		nlog.Warningln("setsockopt(SO_RCVBUF) failed:", err)
	}
}

func getMTU(fd int) int {
	v, err := unix.GetsockoptInt(fd, unix.IPPROTO_IP, unix.IP_MTU)
	if err != nil || v <= 0 {
		return DefaultMTU
	}
	return v
}

func readProcInt(path string) (int, bool) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}
