// Package cmn provides the wirenet configuration and its global owner
/*
 * Copyright (c) 2026, Skyrod Authors. All rights reserved.
 */
package cmn

import (
	"os"
	ratomic "sync/atomic"
	"time"

	"github.com/skyrod/wirenet/cmn/cos"
	"github.com/skyrod/wirenet/cmn/nlog"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

const (
	// per-syscall I/O cap applied to both send and recv
	MaxSingleIO = 4 * cos.MiB

	// fallback chunk size when the effective socket buffer is unknown
	DfltChunkSize = 64 * cos.KiB

	// requested kernel socket buffer size (the OS may clamp or raise it)
	DfltSockBufSize = 256 * cos.KiB
)

type Config struct {
	SockBufSize     int          `json:"sock_buf_size"`
	AcceptInterval  cos.Duration `json:"accept_interval"`  // accept-task wait per iteration
	RecvWait        cos.Duration `json:"recv_wait"`        // receive would-block wait
	WritePoll       cos.Duration `json:"write_poll"`       // send readiness poll
	DisconnectGrace cos.Duration `json:"disconnect_grace"` // FIN propagation grace before close
	ClientTimeout   cos.Duration `json:"client_timeout"`   // request/response deadline; 0 = wait forever
	Verbose         bool         `json:"verbose"`
}

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

func DefaultConfig() *Config {
	return &Config{
		SockBufSize:     DfltSockBufSize,
		AcceptInterval:  cos.Duration(time.Second),
		RecvWait:        cos.Duration(100 * time.Millisecond),
		WritePoll:       cos.Duration(50 * time.Millisecond),
		DisconnectGrace: cos.Duration(100 * time.Millisecond),
		ClientTimeout:   0,
	}
}

func (c *Config) Validate() error {
	if c.SockBufSize <= 0 {
		return errors.Errorf("invalid sock_buf_size: %d", c.SockBufSize)
	}
	if c.AcceptInterval <= 0 || c.RecvWait <= 0 || c.WritePoll <= 0 {
		return errors.New("wait intervals must be positive")
	}
	if c.ClientTimeout < 0 {
		return errors.Errorf("invalid client_timeout: %s", c.ClientTimeout)
	}
	return nil
}

// LoadConfig reads and validates a JSON config file.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	c := DefaultConfig()
	if err := jsonAPI.Unmarshal(b, c); err != nil {
		return nil, errors.Wrapf(err, "parse config %q", path)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

//
// global config owner
//

type gco struct {
	c ratomic.Pointer[Config]
}

var GCO gco

func (g *gco) Get() *Config {
	if c := g.c.Load(); c != nil {
		return c
	}
	c := DefaultConfig()
	g.c.CompareAndSwap(nil, c)
	return g.c.Load()
}

func (g *gco) Put(c *Config) {
	g.c.Store(c)
	nlog.SetVerbose(c.Verbose)
}
