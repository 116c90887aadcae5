// Package transport implements the wire layer.
/*
 * Copyright (c) 2026, Skyrod Authors. All rights reserved.
 */
package transport

import (
	"math"

	"github.com/skyrod/wirenet/cmn/cos"
	"github.com/skyrod/wirenet/cmn/nlog"
	"github.com/skyrod/wirenet/memb"
	"github.com/skyrod/wirenet/sock"
)

// Frame is the on-wire unit:
//
//	opcode (2B) | payload_size (8B) | payload (payload_size bytes)
//
// payload_size always equals the exact number of payload bytes that
// follow; zero is valid. Both the input and the output path gate pipeline
// processing on the payload size (symmetric by design; the opcode travels
// raw in either direction).
type Frame struct {
	payload []byte
	opcode  uint16
}

// NewFrame strips the opcode prefix off the packet's serialized form.
func NewFrame(p Packet) Frame {
	raw := p.Serialize()
	raw.Drop(OpcodeSize)
	return Frame{opcode: p.Opcode(), payload: raw.Extract()}
}

// NewFrameFromFIFO splits codec output (opcode-prefixed bytes) into a frame.
func NewFrameFromFIFO(f *memb.FIFO) (Frame, error) {
	opcode, err := ReadUint16(f)
	if err != nil {
		return Frame{}, err
	}
	return Frame{opcode: opcode, payload: f.Extract()}, nil
}

func (f Frame) Opcode() uint16  { return f.opcode }
func (f Frame) Payload() []byte { return f.payload }

// ProcessInput reads exactly one frame off the socket: three size-exact
// reads (opcode, size, payload), then the input pipeline over payloads at
// or above ProcessThreshold. Any failure is logged and an empty frame
// returned; the caller validates via the codec.
func ProcessInput(client *sock.Client, in *memb.Pipeline) Frame {
	fifo, err := client.Receive(OpcodeSize)
	if err != nil {
		nlog.Errorf("%v: %v", cos.NewErrFrameIncomplete("opcode"), err)
		return Frame{}
	}
	opcode, err := ReadUint16(fifo)
	if err != nil {
		nlog.Errorln("failed to deserialize opcode:", err)
		return Frame{}
	}

	fifo, err = client.Receive(SizeSize)
	if err != nil {
		nlog.Errorf("%v: %v", cos.NewErrFrameIncomplete("size"), err)
		return Frame{}
	}
	size, err := ReadUint64(fifo)
	if err != nil {
		nlog.Errorln("failed to deserialize payload size:", err)
		return Frame{}
	}
	if size > math.MaxInt32 {
		nlog.Errorf("implausible payload size %d, dropping frame", size)
		return Frame{}
	}

	var payload []byte
	if size > 0 {
		fifo, err = client.Receive(int(size))
		if err != nil {
			nlog.Errorf("%v: %v", cos.NewErrFrameIncomplete("payload"), err)
			return Frame{}
		}
		payload = fifo.Extract()
		if size >= ProcessThreshold {
			cons := in.Process(memb.ConsumerOf(payload), memb.Async)
			payload, err = cons.ExtractUntilEOF()
			if err != nil {
				nlog.Errorln("input pipeline failed:", err)
				return Frame{}
			}
		}
	}
	return Frame{opcode: opcode, payload: payload}
}

// ProcessOutput assembles the wire form, running payloads at or above
// ProcessThreshold through the output pipeline, and returns a consumer
// over the result.
func (f Frame) ProcessOutput(out *memb.Pipeline) *memb.Consumer {
	var (
		prod, cons = memb.New()
		payload    = f.payload
	)
	if len(payload) >= ProcessThreshold {
		c := out.Process(memb.ConsumerOf(payload), memb.Async)
		processed, err := c.ExtractUntilEOF()
		if err != nil {
			nlog.Errorln("output pipeline failed:", err)
			prod.CloseWithError(err)
			return cons
		}
		payload = processed
	}

	wire := memb.NewFIFO()
	WriteUint16(wire, f.opcode)
	WriteUint64(wire, uint64(len(payload)))
	wire.Write(payload)
	_, _ = prod.Write(wire.Extract())
	prod.Close()
	return cons
}

// Decode builds the typed packet via the application factory.
func (f Frame) Decode(factory Factory) (Packet, error) {
	return factory(f.opcode, memb.ConsumerOf(f.payload))
}
