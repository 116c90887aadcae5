// Package endpoint implements the long-lived participants: the connection
// value, the shared endpoint base, the server dispatcher, and the
// single-connection client.
/*
 * Copyright (c) 2026, Skyrod Authors. All rights reserved.
 */
package endpoint

import (
	"github.com/skyrod/wirenet/cmn/nlog"
	"github.com/skyrod/wirenet/memb"
	"github.com/skyrod/wirenet/sock"
	"github.com/skyrod/wirenet/transport"
)

// Conn pairs one client socket with its in/out pipelines (C10).
// Exclusively owned by its endpoint.
type Conn struct {
	sck *sock.Client
	in  *memb.Pipeline
	out *memb.Pipeline
}

func NewConn(sck *sock.Client, in, out *memb.Pipeline) *Conn {
	if in == nil {
		in = &memb.Pipeline{}
	}
	if out == nil {
		out = &memb.Pipeline{}
	}
	return &Conn{sck: sck, in: in, out: out}
}

func (cn *Conn) Socket() *sock.Client { return cn.sck }

func (cn *Conn) Status() sock.Status {
	if cn == nil || cn.sck == nil {
		return sock.Disconnected
	}
	return cn.sck.Status()
}

// Send assembles the frame's wire form through the out pipeline and
// transmits it. Failures are logged, not returned.
func (cn *Conn) Send(f transport.Frame) bool {
	if err := cn.sck.SendConsumer(f.ProcessOutput(cn.out)); err != nil {
		nlog.Errorln("failed to send frame to socket:", err)
		return false
	}
	return true
}

// Receive reads one frame through the in pipeline.
func (cn *Conn) Receive() transport.Frame {
	return transport.ProcessInput(cn.sck, cn.in)
}
