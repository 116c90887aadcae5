// Package endpoint implements the long-lived participants.
/*
 * Copyright (c) 2026, Skyrod Authors. All rights reserved.
 */
package endpoint

import (
	"github.com/skyrod/wirenet/cmn"
	"github.com/skyrod/wirenet/cmn/cos"
	"github.com/skyrod/wirenet/cmn/nlog"
	"github.com/skyrod/wirenet/sock"
	"github.com/skyrod/wirenet/transport"

	"github.com/pkg/errors"
)

// Client is the single-connection endpoint (C13): Connect, then
// Send(request) -> reply. Single-threaded by design.
type Client struct {
	base
	cn *Conn
}

func NewClient(proto sock.Protocol, codec *transport.Codec) *Client {
	return &Client{
		base: base{proto: proto, codec: codec, timeout: cmn.GCO.Get().ClientTimeout.D()},
	}
}

func (c *Client) Status() sock.Status { return c.cn.Status() }

// Connect establishes the connection and wraps it with identity
// per-connection pipelines; payload processing is the codec's business on
// this side.
func (c *Client) Connect(host string, port int) error {
	if c.cn != nil {
		return cos.NewErrConnection("connect", errors.New("client is already connected"))
	}
	sck := sock.NewClient(c.proto)
	if err := sck.Connect(host, port); err != nil {
		nlog.Errorf("failed to connect to %s:%d over %s: %v", host, port, c.proto, err)
		return err
	}
	c.cn = NewConn(sck, nil, nil)
	nlog.Verbf("successfully connected to %s:%d over %s", host, port, c.proto)
	return nil
}

// Send performs one request / one reply. Returns nil and the error on any
// transport failure (logged).
func (c *Client) Send(pkt transport.Packet) (transport.Packet, error) {
	if c.cn == nil {
		return nil, cos.NewErrNotConnected("send")
	}
	reply, err := c.sendRecv(c.cn, pkt)
	if err != nil {
		nlog.Errorln("request failed:", err)
		return nil, err
	}
	return reply, nil
}

// Disconnect drops the connection; idempotent.
func (c *Client) Disconnect() {
	if c.cn != nil {
		nlog.Verbln("disconnecting client")
		c.cn.Socket().Disconnect()
		c.cn = nil
	}
}
