// Package endpoint implements the long-lived participants.
/*
 * Copyright (c) 2026, Skyrod Authors. All rights reserved.
 */
package endpoint_test

import (
	"bytes"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/skyrod/wirenet/cmn"
	"github.com/skyrod/wirenet/cmn/cos"
	"github.com/skyrod/wirenet/endpoint"
	"github.com/skyrod/wirenet/memb"
	"github.com/skyrod/wirenet/sock"
	"github.com/skyrod/wirenet/transform"
	"github.com/skyrod/wirenet/transport"
)

//
// demo protocol: name lists and random numbers
//

const (
	opAskNameList uint16 = iota
	opNameList
	opAskRandom
	opRandom
)

type (
	askNameList struct {
		amount uint64
	}
	answerNameList struct {
		names []string
	}
	askRandom    struct{}
	answerRandom struct {
		number int32
	}
)

func (*askNameList) Opcode() uint16 { return opAskNameList }
func (p *askNameList) Serialize() *memb.FIFO {
	f := memb.NewFIFO()
	transport.WriteUint16(f, opAskNameList)
	transport.WriteUint64(f, p.amount)
	return f
}

func (*answerNameList) Opcode() uint16 { return opNameList }
func (p *answerNameList) Serialize() *memb.FIFO {
	f := memb.NewFIFO()
	transport.WriteUint16(f, opNameList)
	transport.WriteStringList(f, p.names)
	return f
}

func (*askRandom) Opcode() uint16 { return opAskRandom }
func (*askRandom) Serialize() *memb.FIFO {
	f := memb.NewFIFO()
	transport.WriteUint16(f, opAskRandom)
	return f
}

func (*answerRandom) Opcode() uint16 { return opRandom }
func (p *answerRandom) Serialize() *memb.FIFO {
	f := memb.NewFIFO()
	transport.WriteUint16(f, opRandom)
	transport.WriteInt32(f, p.number)
	return f
}

func demoFactory(opcode uint16, payload *memb.Consumer) (transport.Packet, error) {
	body, err := payload.ExtractUntilEOF()
	if err != nil {
		return nil, err
	}
	f := memb.NewFIFOFrom(body)
	switch opcode {
	case opAskNameList:
		amount, err := transport.ReadUint64(f)
		if err != nil {
			return nil, err
		}
		return &askNameList{amount: amount}, nil
	case opNameList:
		names, err := transport.ReadStringList(f)
		if err != nil {
			return nil, err
		}
		return &answerNameList{names: names}, nil
	case opAskRandom:
		return &askRandom{}, nil
	case opRandom:
		n, err := transport.ReadInt32(f)
		if err != nil {
			return nil, err
		}
		return &answerRandom{number: n}, nil
	}
	return nil, fmt.Errorf("unknown opcode %#04x", opcode)
}

//
// harness
//

func demoHandler(s *endpoint.Server) endpoint.PacketHandler {
	return func(uuid string, pkt transport.Packet) error {
		switch req := pkt.(type) {
		case *askNameList:
			names := make([]string, 0, req.amount)
			for i := range int(req.amount) {
				names = append(names, fmt.Sprintf("Name_%d", i+1))
			}
			return s.Send(uuid, &answerNameList{names: names})
		case *askRandom:
			return s.Send(uuid, &answerRandom{number: rand.Int31n(100)})
		}
		return fmt.Errorf("unexpected packet %#04x", pkt.Opcode())
	}
}

func echoHandler(s *endpoint.Server) endpoint.PacketHandler {
	return func(uuid string, pkt transport.Packet) error {
		return s.Send(uuid, pkt)
	}
}

func startServer(t *testing.T, factory transport.Factory,
	mk func(s *endpoint.Server) endpoint.PacketHandler) *endpoint.Server {
	t.Helper()
	var srv *endpoint.Server
	srv = endpoint.NewServer(sock.IPv4, transport.NewCodec(factory, nil, nil),
		func(uuid string, pkt transport.Packet) error { return mk(srv)(uuid, pkt) })
	if err := srv.Listen("127.0.0.1", 0); err != nil {
		t.Fatalf("server listen: %v", err)
	}
	t.Cleanup(srv.Disconnect)
	return srv
}

func connect(t *testing.T, srv *endpoint.Server, codec *transport.Codec) *endpoint.Client {
	t.Helper()
	c := endpoint.NewClient(sock.IPv4, codec)
	if err := c.Connect("127.0.0.1", srv.Port()); err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(c.Disconnect)
	return c
}

//
// scenarios
//

func TestEchoSmall(t *testing.T) {
	srv := startServer(t, transport.RawFactory, echoHandler)
	c := connect(t, srv, transport.NewCodec(transport.RawFactory, nil, nil))

	reply, err := c.Send(transport.NewRawPacket(0x0001, []byte("Hello World!")))
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	raw := reply.(*transport.RawPacket)
	if raw.Opcode() != 0x0001 || string(raw.Body()) != "Hello World!" {
		t.Fatalf("echo reply: %#04x %q", raw.Opcode(), raw.Body())
	}
}

func TestEchoBulk(t *testing.T) {
	srv := startServer(t, transport.RawFactory, echoHandler)
	c := connect(t, srv, transport.NewCodec(transport.RawFactory, nil, nil))

	payload := bytes.Repeat([]byte("A"), 100_000)
	reply, err := c.Send(transport.NewRawPacket(0x0002, payload))
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	body := reply.(*transport.RawPacket).Body()
	if len(body) != 100_000 {
		t.Fatalf("reply length %d", len(body))
	}
	for i, b := range body {
		if b != 'A' {
			t.Fatalf("byte %d corrupted: %#02x", i, b)
		}
	}
}

func TestNameListRequest(t *testing.T) {
	srv := startServer(t, demoFactory, demoHandler)
	c := connect(t, srv, transport.NewCodec(demoFactory, nil, nil))

	reply, err := c.Send(&askNameList{amount: 3})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	answer, ok := reply.(*answerNameList)
	if !ok {
		t.Fatalf("unexpected reply %#04x", reply.Opcode())
	}
	want := []string{"Name_1", "Name_2", "Name_3"}
	if len(answer.names) != len(want) {
		t.Fatalf("names: %v", answer.names)
	}
	for i := range want {
		if answer.names[i] != want[i] {
			t.Fatalf("names out of order: %v", answer.names)
		}
	}
}

func TestRandomNumberRequest(t *testing.T) {
	srv := startServer(t, demoFactory, demoHandler)
	c := connect(t, srv, transport.NewCodec(demoFactory, nil, nil))

	reply, err := c.Send(&askRandom{})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	answer, ok := reply.(*answerRandom)
	if !ok {
		t.Fatalf("unexpected reply %#04x", reply.Opcode())
	}
	if answer.number < 0 || answer.number > 99 {
		t.Fatalf("random number %d out of [0, 99]", answer.number)
	}
}

// every client observes its own stream byte-for-byte; the maps are empty
// after shutdown
func TestMultiClientFanOut(t *testing.T) {
	const (
		numClients = 4
		numRounds  = 8
		chunkSize  = 64 * cos.KiB
	)
	srv := startServer(t, transport.RawFactory, echoHandler)

	wg := &sync.WaitGroup{}
	for i := range numClients {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			c := endpoint.NewClient(sock.IPv4, transport.NewCodec(transport.RawFactory, nil, nil))
			if err := c.Connect("127.0.0.1", srv.Port()); err != nil {
				t.Errorf("client %d connect: %v", idx, err)
				return
			}
			defer c.Disconnect()
			payload := bytes.Repeat([]byte{byte('a' + idx)}, chunkSize)
			for range numRounds {
				reply, err := c.Send(transport.NewRawPacket(0x0001, payload))
				if err != nil {
					t.Errorf("client %d send: %v", idx, err)
					return
				}
				if !bytes.Equal(reply.(*transport.RawPacket).Body(), payload) {
					t.Errorf("client %d observed a foreign or corrupted stream", idx)
					return
				}
			}
		}(i)
	}
	wg.Wait()

	srv.Disconnect()
	if srv.Status() != sock.Disconnected {
		t.Fatalf("server status after Disconnect: %s", srv.Status())
	}
	if n := srv.NumClients(); n != 0 {
		t.Fatalf("%d clients still registered after Disconnect", n)
	}
}

// gzip on the wire: codec-level pipelines on the client, per-connection
// pipelines on the server
func TestCompressedEcho(t *testing.T) {
	var srv *endpoint.Server
	srv = endpoint.NewServer(sock.IPv4, transport.NewCodec(transport.RawFactory, nil, nil),
		func(uuid string, pkt transport.Packet) error { return srv.Send(uuid, pkt) })
	srv.MakeInPipeline = func(string) *memb.Pipeline { return memb.NewPipeline(transform.Gunzip()) }
	srv.MakeOutPipeline = func(string) *memb.Pipeline { return memb.NewPipeline(transform.Gzip()) }
	if err := srv.Listen("127.0.0.1", 0); err != nil {
		t.Fatalf("server listen: %v", err)
	}
	t.Cleanup(srv.Disconnect)

	codec := transport.NewCodec(transport.RawFactory,
		memb.NewPipeline(transform.Gunzip()), memb.NewPipeline(transform.Gzip()))
	c := connect(t, srv, codec)

	payload := bytes.Repeat([]byte("compress me "), 4096)
	reply, err := c.Send(transport.NewRawPacket(0x0001, payload))
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if !bytes.Equal(reply.(*transport.RawPacket).Body(), payload) {
		t.Fatal("compressed echo mismatch")
	}
}

func TestClientTimeout(t *testing.T) {
	// a handler that swallows requests without replying
	srv := startServer(t, transport.RawFactory,
		func(*endpoint.Server) endpoint.PacketHandler {
			return func(string, transport.Packet) error { return nil }
		})

	cfg := cmn.DefaultConfig()
	cfg.ClientTimeout = cos.Duration(300 * time.Millisecond)
	cmn.GCO.Put(cfg)
	t.Cleanup(func() { cmn.GCO.Put(cmn.DefaultConfig()) })

	c := connect(t, srv, transport.NewCodec(transport.RawFactory, nil, nil))
	if _, err := c.Send(transport.NewRawPacket(0x0001, []byte("into the void"))); err == nil {
		t.Fatal("expected a timeout on an unanswered request")
	}
}

func TestSendWhileDisconnected(t *testing.T) {
	c := endpoint.NewClient(sock.IPv4, transport.NewCodec(transport.RawFactory, nil, nil))
	if _, err := c.Send(transport.NewRawPacket(1, nil)); !cos.IsErrNotConnected(err) {
		t.Fatalf("expected NotConnected, got %v", err)
	}
	c.Disconnect() // idempotent on a never-connected client
}
