// Package sock implements the non-blocking TCP socket layer.
/*
 * Copyright (c) 2026, Skyrod Authors. All rights reserved.
 */
package sock

import (
	ratomic "sync/atomic"
	"time"

	"github.com/skyrod/wirenet/cmn"
	"github.com/skyrod/wirenet/cmn/cos"
	"github.com/skyrod/wirenet/cmn/mono"
	"github.com/skyrod/wirenet/cmn/nlog"

	"golang.org/x/sys/unix"
)

type Protocol int

const (
	IPv4 Protocol = iota
	IPv6
)

func (p Protocol) String() string {
	if p == IPv6 {
		return "IPv6"
	}
	return "IPv4"
}

func (p Protocol) family() int {
	if p == IPv6 {
		return unix.AF_INET6
	}
	return unix.AF_INET
}

// Status transitions are monotonic within a session:
// Disconnected -> Connecting -> {Connected | Disconnected};
// Connected -> Disconnecting -> Disconnected; any -> Errored is terminal.
type Status int32

const (
	Disconnected Status = iota
	Connecting
	Connected
	Negotiating
	Disconnecting
	PeerClosed
	Rejected
	Errored
)

var statusText = [...]string{
	"Disconnected", "Connecting", "Connected", "Negotiating",
	"Disconnecting", "PeerClosed", "Rejected", "Error",
}

func (s Status) String() string {
	if int(s) < len(statusText) {
		return statusText[s]
	}
	return "Unknown"
}

// IsAlive: a socket is alive iff it can carry traffic.
func IsAlive(s Status) bool { return s == Connected || s == Negotiating }

// ReadResult is the outcome of a readiness wait.
type ReadResult int

const (
	ReadSuccess ReadResult = iota
	ReadWouldBlock
	ReadClosed
	ReadFailed
	ReadTimeout
	ReadShutdownRequest
)

var readResultText = [...]string{
	"Success", "WouldBlock", "Closed", "Failed", "Timeout", "ShutdownRequest",
}

func (r ReadResult) String() string {
	if int(r) < len(readResultText) {
		return readResultText[r]
	}
	return "Unknown"
}

// Socket is the dispatcher's shared-observer view of client and server
// sockets.
type Socket interface {
	UUID() string
	Status() Status
	Disconnect()
	WaitForData(timeout time.Duration) (ReadResult, error)
}

const minWait = 10 * time.Millisecond // readiness waits never spin tighter than this

// base owns one OS handle (C5). Embedded by Client and Server.
type base struct {
	proto   Protocol
	status  ratomic.Int32
	fd      ratomic.Int64
	info    *ConnInfo
	mtu     int
	uuid    string
	sendCap int // per-syscall send chunk capacity, >= 1 once connected
	recvCap int // ditto, receive
}

func (s *base) init(proto Protocol) {
	Instance()
	s.proto = proto
	s.fd.Store(-1)
	s.mtu = DefaultMTU
	s.uuid = cos.GenUUID()
}

func (s *base) UUID() string        { return s.uuid }
func (s *base) Protocol() Protocol  { return s.proto }
func (s *base) Status() Status      { return Status(s.status.Load()) }
func (s *base) MTU() int            { return s.mtu }
func (s *base) ConnInfo() *ConnInfo { return s.info }
func (s *base) SendCap() int        { return s.sendCap }
func (s *base) RecvCap() int        { return s.recvCap }

func (s *base) setStatus(st Status) { s.status.Store(int32(st)) }

func (s *base) createSocket() (int, error) {
	fd, err := unix.Socket(s.proto.family(), unix.SOCK_STREAM, 0)
	if err != nil {
		s.setStatus(Disconnected)
		return -1, cos.NewErrSocketCreate(err)
	}
	unix.CloseOnExec(fd)
	return fd, nil
}

// initAfterConnect makes the handle non-blocking, disables Nagle, requests
// large kernel buffers, and records the effective per-syscall chunk caps.
func (s *base) initAfterConnect() {
	fd := int(s.fd.Load())
	s.setStatus(Connecting)
	s.mtu = getMTU(fd)
	_ = unix.SetNonblock(fd, true)
	if err := unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1); err != nil {
		nlog.Warningln("setsockopt(TCP_NODELAY) failed:", err)
	}
	setNoSigPipe(fd)
	tuneBuffers(fd)

	s.sendCap = effCap(fd, unix.SO_SNDBUF)
	s.recvCap = effCap(fd, unix.SO_RCVBUF)
	nlog.Verbf("%s: per-call send capacity %s, recv capacity %s (max single IO %s)",
		s.uuid, cos.ToSizeIEC(int64(s.sendCap), 0), cos.ToSizeIEC(int64(s.recvCap), 0),
		cos.ToSizeIEC(cmn.MaxSingleIO, 0))
	s.setStatus(Connected)
}

// effCap reads back the effective kernel buffer size and caps it for a
// single syscall.
func effCap(fd, opt int) int {
	v, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, opt)
	if err != nil || v <= 0 {
		v = cmn.DfltChunkSize
	}
	if v > cmn.MaxSingleIO {
		v = cmn.MaxSingleIO
	}
	return v
}

// Disconnect is idempotent: bidirectional shutdown, a short grace for the
// FIN to propagate, then close. The shutdown is also what wakes any
// readiness wait parked on this handle.
func (s *base) Disconnect() {
	if !IsAlive(s.Status()) {
		return
	}
	s.setStatus(Disconnecting)
	if fd := int(s.fd.Swap(-1)); fd >= 0 {
		_ = unix.Shutdown(fd, unix.SHUT_RDWR)
		time.Sleep(cmn.GCO.Get().DisconnectGrace.D())
		_ = unix.Close(fd)
	}
	s.setStatus(Disconnected)
	nlog.Verbln("disconnected socket", s.uuid)
}

// one "waiting for data" trace per process-second, across all goroutines
var lastWaitTrace ratomic.Int64

func traceWaitGated() {
	if !nlog.Verbose() {
		return
	}
	now := mono.NanoTime()
	prev := lastWaitTrace.Load()
	if now-prev >= int64(time.Second) && lastWaitTrace.CompareAndSwap(prev, now) {
		nlog.Verbln("waiting for data on socket...")
	}
}

// WaitForData blocks up to timeout for read readiness. Zero timeout waits
// indefinitely; positive timeouts are clamped to a 10ms minimum. A status
// change observed upon wakeup (concurrent Disconnect) reports Closed.
func (s *base) WaitForData(timeout time.Duration) (ReadResult, error) {
	if !IsAlive(s.Status()) {
		return ReadFailed, cos.NewErrConnectionClosed("failed to wait for data: invalid connection status")
	}
	if timeout > 0 && timeout < minWait {
		timeout = minWait
	}
	traceWaitGated()

	ms := -1
	if timeout > 0 {
		ms = int(timeout / time.Millisecond)
	}
	ready, err := waitRead(int(s.fd.Load()), ms)
	if err != nil {
		if cos.IsErrConnectionReset(err) || cos.IsErrBadDescriptor(err) {
			return ReadFailed, cos.NewErrConnectionClosed("connection closed or invalid socket")
		}
		return ReadFailed, cos.NewErrConnectionClosed("failed to wait for data: " + err.Error())
	}
	if !ready {
		return ReadTimeout, nil
	}
	if s.Status() != Connected {
		return ReadClosed, nil
	}
	return ReadSuccess, nil
}

// peekByte inspects one byte without consuming it and without blocking.
func (s *base) peekByte() (int, error) {
	var b [1]byte
	n, _, err := unix.Recvfrom(int(s.fd.Load()), b[:], unix.MSG_PEEK|unix.MSG_DONTWAIT)
	return n, err
}
