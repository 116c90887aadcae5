// Package sock implements the non-blocking TCP socket layer.
/*
 * Copyright (c) 2026, Skyrod Authors. All rights reserved.
 */
package sock

import (
	"runtime"

	"github.com/skyrod/wirenet/cmn"
	"github.com/skyrod/wirenet/cmn/cos"
	"github.com/skyrod/wirenet/cmn/nlog"
	"github.com/skyrod/wirenet/memb"
	"github.com/skyrod/wirenet/stats"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Client is a connected TCP socket with flow-controlled chunked send and
// receive (C6).
type Client struct {
	base
}

// interface guard
var _ Socket = (*Client)(nil)

func NewClient(proto Protocol) *Client {
	c := &Client{}
	c.init(proto)
	return c
}

// newAccepted wraps a handle produced by Server.Accept.
func newAccepted(proto Protocol, fd int, info *ConnInfo) *Client {
	c := NewClient(proto)
	c.fd.Store(int64(fd))
	c.info = info
	return c
}

// Connect resolves host and establishes the connection.
func (c *Client) Connect(host string, port int) error {
	nlog.Verbf("connecting to %s:%d", host, port)
	if c.Status() != Disconnected {
		return cos.NewErrConnection("connect", errors.New("client is already connected"))
	}
	c.setStatus(Connecting)

	fd, err := c.createSocket()
	if err != nil {
		nlog.Errorln("failed to create socket:", err)
		return err
	}
	c.fd.Store(int64(fd))

	info, err := FromHost(host, port, c.proto)
	if err != nil {
		c.connectCleanup(fd)
		nlog.Errorln("failed to resolve host:", err)
		return err
	}
	c.info = info

	if err := unix.Connect(fd, info.Addr); err != nil {
		c.connectCleanup(fd)
		nlog.Errorln("failed to connect:", err)
		return cos.NewErrConnection("connect", err)
	}
	c.initAfterConnect()
	nlog.Verbf("successfully connected to %s:%d", host, port)
	return nil
}

func (c *Client) connectCleanup(fd int) {
	_ = unix.Close(fd)
	c.fd.Store(-1)
	c.setStatus(Disconnected)
}

// Send transmits the whole span or fails; it never partially succeeds
// silently. Each iteration waits for write readiness with a bounded poll,
// then writes one chunk capped by the effective send buffer.
func (c *Client) Send(data []byte) error {
	if c.Status() != Connected {
		return cos.NewErrNotConnected("send")
	}
	var (
		fd     = int(c.fd.Load())
		pollMs = int(cmn.GCO.Get().WritePoll.D().Milliseconds())
		total  int
	)
	for len(data) > 0 {
		pfd := [1]unix.PollFd{{Fd: int32(fd), Events: unix.POLLOUT}}
		n, err := unix.Poll(pfd[:], pollMs)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return cos.NewErrWriteFailed(err)
		}
		if n == 0 || pfd[0].Revents&unix.POLLOUT == 0 {
			// not writable yet; yield and retry
			runtime.Gosched()
			continue
		}

		chunk := len(data)
		if lim := c.sendChunkCap(); chunk > lim {
			chunk = lim
		}
		written, err := unix.SendmsgN(fd, data[:chunk], nil, nil, sendFlags)
		if err != nil {
			if cos.IsErrWouldBlock(err) {
				continue
			}
			nlog.Errorln("send failed:", err)
			return cos.NewErrWriteFailed(err)
		}
		total += written
		data = data[written:]
		stats.AddSent(written)
	}
	nlog.Verbf("all data sent, total %s", cos.ToSizeIEC(int64(total), 0))
	return nil
}

func (c *Client) sendChunkCap() int {
	lim := c.sendCap
	if lim <= 0 {
		lim = cmn.DfltChunkSize
	}
	if lim > cmn.MaxSingleIO {
		lim = cmn.MaxSingleIO
	}
	return lim
}

// Write is the exact-size variant of Send: transmits min(size, len(data))
// bytes.
func (c *Client) Write(data []byte, size int) error {
	if size < len(data) {
		data = data[:size]
	}
	return c.Send(data)
}

// SendFIFO drains and transmits a FIFO.
func (c *Client) SendFIFO(f *memb.FIFO) error { return c.Send(f.Extract()) }

// SendConsumer drains a byte stream as data becomes available, terminating
// when the stream is both empty and no longer writable.
func (c *Client) SendConsumer(data *memb.Consumer) error {
	if c.Status() != Connected {
		return cos.NewErrNotConnected("send")
	}
	for data.IsWritable() || data.AvailableBytes() > 0 {
		if data.AvailableBytes() == 0 {
			if !data.IsWritable() {
				break
			}
			runtime.Gosched()
			continue
		}
		b, err := data.TryRead(0)
		if err != nil {
			return cos.NewErrWriteFailed(err)
		}
		if err := c.Send(b); err != nil {
			return err
		}
	}
	if err := data.Err(); err != nil {
		return cos.NewErrWriteFailed(err)
	}
	return nil
}

// Receive reads up to maxSize bytes. maxSize == 0 means "until the peer
// closes, or until some bytes have arrived and a wait cycle times out".
// A peer close before maxSize bytes were read reports ConnectionClosed.
func (c *Client) Receive(maxSize int) (*memb.FIFO, error) {
	fd := int(c.fd.Load())
	if fd < 0 {
		return nil, cos.NewErrNotConnected("receive")
	}
	nlog.Verbf("receiving, max size %d", maxSize)
	var (
		fifo     = memb.NewFIFO()
		recvWait = cmn.GCO.Get().RecvWait.D()
		buf      = make([]byte, c.recvChunkCap())
		total    int
	)
	for {
		chunk := len(buf)
		if maxSize > 0 && chunk > maxSize-total {
			chunk = maxSize - total
		}
		n, _, err := unix.Recvfrom(fd, buf[:chunk], 0)
		switch {
		case err != nil:
			if !cos.IsErrWouldBlock(err) {
				nlog.Verbln("read error:", err)
				return nil, cos.NewErrReceiveFailed(err)
			}
			res, werr := c.WaitForData(recvWait)
			if werr != nil {
				if maxSize > 0 {
					return nil, cos.NewErrConnectionClosed("peer closed before full read")
				}
				return fifo, nil
			}
			if res == ReadTimeout {
				if maxSize == 0 && total > 0 {
					return fifo, nil
				}
				continue
			}
			if res == ReadClosed {
				if maxSize > 0 {
					return nil, cos.NewErrConnectionClosed("peer closed before full read")
				}
				return fifo, nil
			}
		case n == 0:
			// peer closed
			nlog.Verbln("connection closed by peer")
			if maxSize > 0 && total < maxSize {
				return nil, cos.NewErrConnectionClosed("peer closed before full read")
			}
			return fifo, nil
		default:
			fifo.Write(buf[:n])
			total += n
			stats.AddRecv(n)
			if maxSize > 0 && total >= maxSize {
				nlog.Verbf("received requested %s", cos.ToSizeIEC(int64(total), 0))
				return fifo, nil
			}
		}
	}
}

func (c *Client) recvChunkCap() int {
	lim := c.recvCap
	if lim <= 0 {
		lim = cmn.DfltChunkSize
	}
	if lim > cmn.MaxSingleIO {
		lim = cmn.MaxSingleIO
	}
	return lim
}

// HasShutdownRequest peeks one byte: true iff the peer closed or the
// handle failed; false when data is pending or the probe would block.
func (c *Client) HasShutdownRequest() bool {
	n, err := c.peekByte()
	if err != nil {
		return !cos.IsErrWouldBlock(err)
	}
	return n == 0
}

// Ping is the liveness inverse of HasShutdownRequest; a failed probe also
// drops the status to Disconnected.
func (c *Client) Ping() bool {
	if c.Status() != Connected {
		return false
	}
	alive := !c.HasShutdownRequest()
	if alive {
		nlog.Verbln("ping successful")
	} else {
		nlog.Verbln("ping failed")
		c.setStatus(Disconnected)
	}
	return alive
}
