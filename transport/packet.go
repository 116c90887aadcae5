// Package transport implements the wire layer.
/*
 * Copyright (c) 2026, Skyrod Authors. All rights reserved.
 */
package transport

import "github.com/skyrod/wirenet/memb"

// ProcessThreshold is the payload-size threshold (bytes) at or above which
// a frame payload is routed through the buffer pipelines. Opcodes are
// always sent unprocessed so peers can decode them.
const ProcessThreshold = 10

// Packet is the application-level typed value: a non-negative 16-bit
// opcode plus a serializable body. Serialize yields opcode-prefixed bytes.
type Packet interface {
	Opcode() uint16
	Serialize() *memb.FIFO
}

// Factory builds a typed Packet from an opcode and its (already
// pipeline-processed) payload stream. Supplied by the application.
type Factory func(opcode uint16, payload *memb.Consumer) (Packet, error)

// RawPacket is the trivial Packet: an opcode and opaque payload bytes.
type RawPacket struct {
	body   []byte
	opcode uint16
}

func NewRawPacket(opcode uint16, body []byte) *RawPacket {
	return &RawPacket{opcode: opcode, body: body}
}

func (p *RawPacket) Opcode() uint16 { return p.opcode }
func (p *RawPacket) Body() []byte   { return p.body }

func (p *RawPacket) Serialize() *memb.FIFO {
	f := memb.NewFIFO()
	WriteUint16(f, p.opcode)
	f.Write(p.body)
	return f
}

// RawFactory decodes any opcode into a RawPacket.
func RawFactory(opcode uint16, payload *memb.Consumer) (Packet, error) {
	body, err := payload.ExtractUntilEOF()
	if err != nil {
		return nil, err
	}
	return NewRawPacket(opcode, body), nil
}
