// Package transport implements the wire layer.
/*
 * Copyright (c) 2026, Skyrod Authors. All rights reserved.
 */
package transport

import (
	"encoding/binary"
	"io"

	"github.com/skyrod/wirenet/cmn/cos"
	"github.com/skyrod/wirenet/memb"
)

// Codec converts between opcode-prefixed wire bytes and typed packets via
// an application-supplied factory, applying its own pipelines in Sync
// mode. Endpoints that process payloads at the codec level keep their
// per-connection pipelines as identity, and vice versa.
type Codec struct {
	in      *memb.Pipeline
	out     *memb.Pipeline
	factory Factory
}

func NewCodec(factory Factory, in, out *memb.Pipeline) *Codec {
	if in == nil {
		in = &memb.Pipeline{}
	}
	if out == nil {
		out = &memb.Pipeline{}
	}
	return &Codec{in: in, out: out, factory: factory}
}

func (c *Codec) Factory() Factory            { return c.factory }
func (c *Codec) InPipeline() *memb.Pipeline  { return c.in }
func (c *Codec) OutPipeline() *memb.Pipeline { return c.out }

// Encode turns one frame's worth of wire bytes into a typed Packet: the
// raw opcode first, then the input pipeline over the remainder, then the
// factory. One frame per call; batching is a caller error.
func (c *Codec) Encode(cons *memb.Consumer) (Packet, error) {
	var b [OpcodeSize]byte
	if _, err := io.ReadFull(cons, b[:]); err != nil {
		return nil, cos.NewErrPacket("insufficient data to read opcode (%v)", err)
	}
	opcode := binary.LittleEndian.Uint16(b[:])
	pkt, err := c.factory(opcode, c.in.Process(cons, memb.Sync))
	if err != nil {
		return nil, cos.NewErrPacket("failed to decode opcode %#04x: %v", opcode, err)
	}
	return pkt, nil
}

// Process serializes a packet for the socket: the raw opcode, then the
// output pipeline (Sync) over the body.
func (c *Codec) Process(pkt Packet) (*memb.FIFO, error) {
	result := memb.NewFIFO()
	WriteUint16(result, pkt.Opcode())

	body := pkt.Serialize()
	body.Drop(OpcodeSize)
	cons := c.out.Process(memb.ConsumerOf(body.Extract()), memb.Sync)
	processed, err := cons.ExtractUntilEOF()
	if err != nil {
		return nil, cos.NewErrPacket("output pipeline failed on opcode %#04x: %v", pkt.Opcode(), err)
	}
	result.Write(processed)
	return result, nil
}
