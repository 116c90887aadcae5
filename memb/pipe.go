// Package memb provides in-memory byte streams: a Producer/Consumer pair
// with sticky end-of-stream status, a FIFO byte queue, and the Pipeline
// that chains byte-stream transforms.
/*
 * Copyright (c) 2026, Skyrod Authors. All rights reserved.
 */
package memb

import (
	"errors"
	"io"
	"sync"
)

// Status is the stream's sticky completion bit.
type Status uint8

const (
	StatusOK Status = iota
	StatusEOF
	StatusError
)

var errWriteAfterClose = errors.New("memb: write on closed stream")

// pipe is the shared half-pair state: an ordered byte queue plus the status
// bit. The queue is unbounded (grow-on-write); reads are non-blocking unless
// the caller opts into the blocking io.Reader surface.
type pipe struct {
	mu  sync.Mutex
	cnd *sync.Cond
	buf []byte
	off int
	st  Status
	err error
}

type (
	// Producer is the writing half of a stream.
	Producer struct {
		p *pipe
	}
	// Consumer is the reading half of a stream.
	Consumer struct {
		p *pipe
	}
)

// New creates a connected Producer/Consumer pair.
func New() (*Producer, *Consumer) {
	p := &pipe{}
	p.cnd = sync.NewCond(&p.mu)
	return &Producer{p: p}, &Consumer{p: p}
}

// ConsumerOf returns a Consumer over a fully materialized byte slice
// (already at EOF).
func ConsumerOf(b []byte) *Consumer {
	prod, cons := New()
	if len(b) > 0 {
		_, _ = prod.Write(b)
	}
	prod.Close()
	return cons
}

//////////////
// Producer //
//////////////

// Write appends bytes to the stream. Writes after EOF or Error are rejected.
func (w *Producer) Write(b []byte) (int, error) {
	p := w.p
	p.mu.Lock()
	if p.st != StatusOK {
		p.mu.Unlock()
		return 0, errWriteAfterClose
	}
	p.buf = append(p.buf, b...)
	p.cnd.Broadcast()
	p.mu.Unlock()
	return len(b), nil
}

// Close posts EOF. Idempotent; a no-op after CloseWithError.
func (w *Producer) Close() error {
	p := w.p
	p.mu.Lock()
	if p.st == StatusOK {
		p.st = StatusEOF
		p.cnd.Broadcast()
	}
	p.mu.Unlock()
	return nil
}

// CloseWithError posts the Error status; the paired Consumer observes err.
// A nil err is equivalent to Close.
func (w *Producer) CloseWithError(err error) {
	if err == nil {
		w.Close()
		return
	}
	p := w.p
	p.mu.Lock()
	if p.st == StatusOK {
		p.st = StatusError
		p.err = err
		p.cnd.Broadcast()
	}
	p.mu.Unlock()
}

// IsOpen reports whether the stream still accepts writes.
func (w *Producer) IsOpen() bool {
	p := w.p
	p.mu.Lock()
	open := p.st == StatusOK
	p.mu.Unlock()
	return open
}

// NewConsumer returns another reading half sharing this stream.
func (w *Producer) NewConsumer() *Consumer { return &Consumer{p: w.p} }

//////////////
// Consumer //
//////////////

// AvailableBytes is the count currently readable.
func (r *Consumer) AvailableBytes() int {
	p := r.p
	p.mu.Lock()
	n := len(p.buf) - p.off
	p.mu.Unlock()
	return n
}

// IsEOF reports whether the producer has posted EOF (sticky).
func (r *Consumer) IsEOF() bool {
	p := r.p
	p.mu.Lock()
	eof := p.st == StatusEOF
	p.mu.Unlock()
	return eof
}

// IsWritable reports whether the producing half is still open.
func (r *Consumer) IsWritable() bool {
	p := r.p
	p.mu.Lock()
	open := p.st == StatusOK
	p.mu.Unlock()
	return open
}

// Status returns the stream's status bit.
func (r *Consumer) Status() Status {
	p := r.p
	p.mu.Lock()
	st := p.st
	p.mu.Unlock()
	return st
}

// Err returns the posted error, if any.
func (r *Consumer) Err() error {
	p := r.p
	p.mu.Lock()
	err := p.err
	p.mu.Unlock()
	return err
}

// TryRead returns up to n buffered bytes without blocking: an empty slice
// when nothing is buffered and the stream is still open, the posted error
// once the producer fails. n <= 0 means "all available".
func (r *Consumer) TryRead(n int) ([]byte, error) {
	p := r.p
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.st == StatusError {
		return nil, p.err
	}
	avail := len(p.buf) - p.off
	if n <= 0 || n > avail {
		n = avail
	}
	b := r.take(n)
	return b, nil
}

// Read implements io.Reader: blocks until data arrives, EOF is posted, or
// the producer fails. Transforms and drains use this surface.
func (r *Consumer) Read(b []byte) (int, error) {
	p := r.p
	p.mu.Lock()
	defer p.mu.Unlock()
	for {
		if avail := len(p.buf) - p.off; avail > 0 {
			n := copy(b, p.buf[p.off:])
			p.off += n
			r.compact()
			return n, nil
		}
		switch p.st {
		case StatusEOF:
			return 0, io.EOF
		case StatusError:
			return 0, p.err
		}
		p.cnd.Wait()
	}
}

// ExtractUntilEOF blocks until the stream completes and returns everything
// written, together with the posted error if the producer failed.
func (r *Consumer) ExtractUntilEOF() ([]byte, error) {
	p := r.p
	p.mu.Lock()
	defer p.mu.Unlock()
	for p.st == StatusOK {
		p.cnd.Wait()
	}
	b := r.take(len(p.buf) - p.off)
	if p.st == StatusError {
		return b, p.err
	}
	return b, nil
}

// take copies out n readable bytes; caller holds p.mu.
func (r *Consumer) take(n int) []byte {
	p := r.p
	if n == 0 {
		return nil
	}
	b := make([]byte, n)
	copy(b, p.buf[p.off:p.off+n])
	p.off += n
	r.compact()
	return b
}

// drop the consumed prefix once it dominates the backing array
func (r *Consumer) compact() {
	p := r.p
	if p.off > 0 && p.off == len(p.buf) {
		p.buf = p.buf[:0]
		p.off = 0
	} else if p.off > 32*1024 && p.off > len(p.buf)/2 {
		p.buf = append(p.buf[:0:0], p.buf[p.off:]...)
		p.off = 0
	}
}
