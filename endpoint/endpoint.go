// Package endpoint implements the long-lived participants.
/*
 * Copyright (c) 2026, Skyrod Authors. All rights reserved.
 */
package endpoint

import (
	"time"

	"github.com/skyrod/wirenet/cmn/cos"
	"github.com/skyrod/wirenet/memb"
	"github.com/skyrod/wirenet/sock"
	"github.com/skyrod/wirenet/transport"

	"github.com/pkg/errors"
)

// base holds the state shared by client and server endpoints (C11).
type base struct {
	codec   *transport.Codec
	proto   sock.Protocol
	timeout time.Duration // request/response deadline; 0 = wait forever
}

func (b *base) Protocol() sock.Protocol { return b.proto }
func (b *base) Codec() *transport.Codec { return b.codec }

// sendRecv performs one request / one reply on the connection: encode via
// the codec, wrap in a frame, send, receive one frame, decode.
func (b *base) sendRecv(cn *Conn, pkt transport.Packet) (transport.Packet, error) {
	fifo, err := b.codec.Process(pkt)
	if err != nil {
		return nil, err
	}
	frame, err := transport.NewFrameFromFIFO(fifo)
	if err != nil {
		return nil, err
	}
	if !cn.Send(frame) {
		return nil, cos.NewErrWriteFailed(errors.New("failed to send frame"))
	}

	if b.timeout > 0 {
		res, werr := cn.Socket().WaitForData(b.timeout)
		if werr != nil {
			return nil, werr
		}
		if res == sock.ReadTimeout {
			return nil, cos.NewErrReceiveFailed(errors.Errorf("no reply within %s", b.timeout))
		}
		if res == sock.ReadClosed {
			return nil, cos.NewErrConnectionClosed("while awaiting reply")
		}
	}
	reply := cn.Receive()

	wire := memb.NewFIFO()
	transport.WriteUint16(wire, reply.Opcode())
	wire.Write(reply.Payload())
	return b.codec.Encode(wire.Consumer())
}
