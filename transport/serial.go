// Package transport implements the wire layer: the paired integer codec,
// the Packet contract, the on-wire Frame, and the Codec that turns frames
// into typed packets.
/*
 * Copyright (c) 2026, Skyrod Authors. All rights reserved.
 */
package transport

import (
	"encoding/binary"
	"math"

	"github.com/skyrod/wirenet/cmn/cos"
	"github.com/skyrod/wirenet/memb"
)

// All multi-byte integers on the wire go through this one little-endian
// codec so both peers agree bit-exactly.
const (
	OpcodeSize = 2 // unsigned 16-bit
	SizeSize   = 8 // unsigned 64-bit payload size
)

func WriteUint16(f *memb.FIFO, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	f.Write(b[:])
}

func ReadUint16(f *memb.FIFO) (uint16, error) {
	b := f.Next(2)
	if len(b) != 2 {
		return 0, cos.NewErrPacket("insufficient data for uint16 (%d bytes)", len(b))
	}
	return binary.LittleEndian.Uint16(b), nil
}

func WriteUint64(f *memb.FIFO, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	f.Write(b[:])
}

func ReadUint64(f *memb.FIFO) (uint64, error) {
	b := f.Next(8)
	if len(b) != 8 {
		return 0, cos.NewErrPacket("insufficient data for uint64 (%d bytes)", len(b))
	}
	return binary.LittleEndian.Uint64(b), nil
}

// 4-byte signed integer, two's complement on the wire
func WriteInt32(f *memb.FIFO, v int32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(v))
	f.Write(b[:])
}

func ReadInt32(f *memb.FIFO) (int32, error) {
	b := f.Next(4)
	if len(b) != 4 {
		return 0, cos.NewErrPacket("insufficient data for int32 (%d bytes)", len(b))
	}
	return int32(binary.LittleEndian.Uint32(b)), nil
}

// strings: u64 byte length, then the bytes
func WriteString(f *memb.FIFO, s string) {
	WriteUint64(f, uint64(len(s)))
	f.WriteString(s)
}

func ReadString(f *memb.FIFO) (string, error) {
	n, err := ReadUint64(f)
	if err != nil {
		return "", err
	}
	if n > uint64(f.Size()) {
		return "", cos.NewErrPacket("insufficient data for string of %d bytes", n)
	}
	return string(f.Next(int(n))), nil
}

// string lists: u64 count, then each string
func WriteStringList(f *memb.FIFO, list []string) {
	WriteUint64(f, uint64(len(list)))
	for _, s := range list {
		WriteString(f, s)
	}
}

func ReadStringList(f *memb.FIFO) ([]string, error) {
	n, err := ReadUint64(f)
	if err != nil {
		return nil, err
	}
	if n > math.MaxInt32 {
		return nil, cos.NewErrPacket("implausible string count %d", n)
	}
	list := make([]string, 0, n)
	for range int(n) {
		s, err := ReadString(f)
		if err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, nil
}
