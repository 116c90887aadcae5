// Package cmn provides the wirenet configuration and its global owner
/*
 * Copyright (c) 2026, Skyrod Authors. All rights reserved.
 */
package cmn_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/skyrod/wirenet/cmn"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wirenet.json")
	body := `{
		"sock_buf_size": 131072,
		"accept_interval": "500ms",
		"client_timeout": "2s",
		"verbose": true
	}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := cmn.LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.SockBufSize != 131072 {
		t.Fatalf("sock_buf_size: %d", c.SockBufSize)
	}
	if c.AcceptInterval.D() != 500*time.Millisecond {
		t.Fatalf("accept_interval: %s", c.AcceptInterval)
	}
	if c.ClientTimeout.D() != 2*time.Second {
		t.Fatalf("client_timeout: %s", c.ClientTimeout)
	}
	// unset fields keep their defaults
	if c.RecvWait.D() != 100*time.Millisecond {
		t.Fatalf("recv_wait default: %s", c.RecvWait)
	}
	if !c.Verbose {
		t.Fatal("verbose not picked up")
	}
}

func TestConfigValidate(t *testing.T) {
	c := cmn.DefaultConfig()
	if err := c.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
	c.SockBufSize = 0
	if err := c.Validate(); err == nil {
		t.Fatal("zero sock_buf_size must be rejected")
	}
}

func TestGCO(t *testing.T) {
	if cmn.GCO.Get() == nil {
		t.Fatal("GCO must self-initialize")
	}
	custom := cmn.DefaultConfig()
	custom.SockBufSize = 42 * 1024
	cmn.GCO.Put(custom)
	t.Cleanup(func() { cmn.GCO.Put(cmn.DefaultConfig()) })
	if cmn.GCO.Get().SockBufSize != 42*1024 {
		t.Fatal("GCO did not publish the new config")
	}
}
