// Package endpoint implements the long-lived participants.
/*
 * Copyright (c) 2026, Skyrod Authors. All rights reserved.
 */
package endpoint

import (
	"sync"
	ratomic "sync/atomic"

	"github.com/skyrod/wirenet/cmn"
	"github.com/skyrod/wirenet/cmn/cos"
	"github.com/skyrod/wirenet/cmn/nlog"
	"github.com/skyrod/wirenet/memb"
	"github.com/skyrod/wirenet/sock"
	"github.com/skyrod/wirenet/stats"
	"github.com/skyrod/wirenet/transport"

	"github.com/pkg/errors"
)

// PacketHandler is the application hook invoked for every inbound packet.
// A returned error disconnects that client only, never the server.
type PacketHandler func(uuid string, pkt transport.Packet) error

// PipelineFactory builds a per-client pipeline; nil means identity.
type PipelineFactory func(uuid string) *memb.Pipeline

// Server is the dispatcher (C12): accept loop, one reader goroutine per
// client, handler dispatch, orderly shutdown. Three maps keyed by socket
// UUID live under clientsMu (the listening socket is registered under
// selfUUID); reader-task join handles live under tasksMu. Lock order:
// clientsMu outermost; neither lock is ever held across a join.
type Server struct {
	base
	status ratomic.Int32

	selfUUID  string
	clientsMu sync.Mutex
	clients   map[string]sock.Socket
	inPipes   map[string]*memb.Pipeline
	outPipes  map[string]*memb.Pipeline

	tasksMu    sync.Mutex
	tasks      map[string]chan struct{}
	acceptDone chan struct{}
	listener   *sock.Server

	handler PacketHandler

	// optional per-client pipeline factories
	MakeInPipeline  PipelineFactory
	MakeOutPipeline PipelineFactory
}

func NewServer(proto sock.Protocol, codec *transport.Codec, handler PacketHandler) *Server {
	return &Server{
		base:     base{proto: proto, codec: codec, timeout: cmn.GCO.Get().ClientTimeout.D()},
		clients:  make(map[string]sock.Socket),
		inPipes:  make(map[string]*memb.Pipeline),
		outPipes: make(map[string]*memb.Pipeline),
		tasks:    make(map[string]chan struct{}),
		handler:  handler,
	}
}

func (s *Server) Status() sock.Status { return sock.Status(s.status.Load()) }

// Port reports the listening socket's actual bound port.
func (s *Server) Port() int {
	if s.listener == nil {
		return 0
	}
	return s.listener.Port()
}

func (s *Server) setStatus(st sock.Status) { s.status.Store(int32(st)) }

// Listen binds the listening socket and starts serving (spec: Connect).
func (s *Server) Listen(host string, port int) error {
	if sock.IsAlive(s.Status()) {
		return cos.NewErrConnection("listen", errors.New("server is already connected"))
	}

	listener := sock.NewServer(s.proto)
	s.listener = listener
	s.selfUUID = listener.UUID()
	s.clientsMu.Lock()
	s.clients[s.selfUUID] = listener
	s.clientsMu.Unlock()

	s.setStatus(sock.Connecting)
	if err := listener.Listen(host, port); err != nil {
		s.clientsMu.Lock()
		delete(s.clients, s.selfUUID)
		s.clientsMu.Unlock()
		s.setStatus(sock.Disconnected)
		return err
	}

	s.acceptDone = make(chan struct{})
	s.setStatus(sock.Connected)
	go s.acceptClients(listener)
	nlog.Verbf("server started and listening on %s:%d", host, port)
	return nil
}

func (s *Server) acceptClients(listener *sock.Server) {
	defer close(s.acceptDone)
	nlog.Verbln("starting accept task")
	for sock.IsAlive(s.Status()) {
		res, err := listener.WaitForData(cmn.GCO.Get().AcceptInterval.D())
		if err != nil {
			nlog.Errorln(err)
			return
		}
		switch res {
		case sock.ReadSuccess:
			client, err := listener.Accept()
			if err != nil {
				if cos.IsErrAcceptTimeout(err) {
					continue
				}
				nlog.Errorln(err)
				return
			}
			s.register(client)
		case sock.ReadTimeout:
			continue
		case sock.ReadClosed:
			nlog.Verbln("listening socket closed; stopping accept task")
			return
		default:
			continue
		}
	}
	nlog.Verbln("stopping accept task")
}

// register inserts the client and its pipelines under one lock
// acquisition, then spawns the reader bound to the client's UUID.
func (s *Server) register(client *sock.Client) {
	var (
		uuid    = client.UUID()
		in, out *memb.Pipeline
	)
	if s.MakeInPipeline != nil {
		in = s.MakeInPipeline(uuid)
	}
	if s.MakeOutPipeline != nil {
		out = s.MakeOutPipeline(uuid)
	}
	if in == nil {
		in = &memb.Pipeline{}
	}
	if out == nil {
		out = &memb.Pipeline{}
	}

	done := make(chan struct{})
	s.clientsMu.Lock()
	s.clients[uuid] = client
	s.inPipes[uuid] = in
	s.outPipes[uuid] = out
	s.clientsMu.Unlock()

	s.tasksMu.Lock()
	s.tasks[uuid] = done
	s.tasksMu.Unlock()

	stats.ConnAccepted()
	go s.handleClient(client, uuid, done)
}

// handleClient is the per-client reader task.
func (s *Server) handleClient(client *sock.Client, uuid string, done chan struct{}) {
	nlog.Verbln("starting reader task for client", uuid)
	defer close(done)
	for sock.IsAlive(s.Status()) && sock.IsAlive(client.Status()) {
		res, err := client.WaitForData(cmn.GCO.Get().AcceptInterval.D())
		if err != nil {
			nlog.Errorln(err)
			client.Disconnect()
			break
		}
		switch res {
		case sock.ReadSuccess:
			if client.HasShutdownRequest() {
				nlog.Verbln("client requested shutdown, disconnecting:", uuid)
				client.Disconnect()
				break
			}
			pkt, err := s.Receive(uuid)
			if err != nil {
				nlog.Errorln(err)
				client.Disconnect()
				break
			}
			if err := s.handler(uuid, pkt); err != nil {
				nlog.Errorln(err)
				client.Disconnect()
				break
			}
		default:
			// timeout and transient conditions: keep reading
			continue
		}
	}

	s.clientsMu.Lock()
	delete(s.clients, uuid)
	delete(s.inPipes, uuid)
	delete(s.outPipes, uuid)
	s.clientsMu.Unlock()
	stats.ConnGone()
	nlog.Verbln("stopping reader task for client", uuid)
}

// conn materializes a short-lived observer over the maps; callers must not
// cache it across client removal.
func (s *Server) conn(uuid string) (*Conn, error) {
	s.clientsMu.Lock()
	sck, ok := s.clients[uuid]
	in, out := s.inPipes[uuid], s.outPipes[uuid]
	s.clientsMu.Unlock()
	if !ok {
		return nil, cos.NewErrConnectionClosed("unknown client " + uuid)
	}
	client, ok := sck.(*sock.Client)
	if !ok {
		return nil, cos.NewErrPacket("uuid %s does not name a client connection", uuid)
	}
	return NewConn(client, in, out), nil
}

// Receive reads one frame from the given client and decodes it.
func (s *Server) Receive(uuid string) (transport.Packet, error) {
	cn, err := s.conn(uuid)
	if err != nil {
		return nil, err
	}
	frame := cn.Receive()
	wire := memb.NewFIFO()
	transport.WriteUint16(wire, frame.Opcode())
	wire.Write(frame.Payload())
	pkt, err := s.codec.Encode(wire.Consumer())
	if err != nil {
		return nil, err
	}
	return pkt, nil
}

// Send transmits one packet to the given client (no reply awaited).
func (s *Server) Send(uuid string, pkt transport.Packet) error {
	cn, err := s.conn(uuid)
	if err != nil {
		return err
	}
	fifo, err := s.codec.Process(pkt)
	if err != nil {
		return err
	}
	frame, err := transport.NewFrameFromFIFO(fifo)
	if err != nil {
		return err
	}
	if !cn.Send(frame) {
		return cos.NewErrWriteFailed(errors.New("failed to send frame to " + uuid))
	}
	return nil
}

// NumClients counts currently registered (non-self) clients.
func (s *Server) NumClients() int {
	s.clientsMu.Lock()
	n := len(s.clients)
	if _, ok := s.clients[s.selfUUID]; ok {
		n--
	}
	s.clientsMu.Unlock()
	return n
}

// Disconnect tears the server down in dependency order: close the
// listening socket (unblocks accept), join accept; close every client
// socket (unblocks its reader), join all readers; clear the maps. Neither
// mutex is held while joining.
func (s *Server) Disconnect() {
	if !sock.IsAlive(s.Status()) {
		return
	}
	s.setStatus(sock.Disconnecting)

	s.clientsMu.Lock()
	listener := s.clients[s.selfUUID]
	s.clientsMu.Unlock()
	if listener != nil {
		listener.Disconnect()
	}
	if s.acceptDone != nil {
		<-s.acceptDone
	}

	s.clientsMu.Lock()
	snapshot := make([]sock.Socket, 0, len(s.clients))
	for uuid, sck := range s.clients {
		if uuid != s.selfUUID {
			snapshot = append(snapshot, sck)
		}
	}
	s.clientsMu.Unlock()
	for _, sck := range snapshot {
		sck.Disconnect()
	}

	s.tasksMu.Lock()
	tasks := s.tasks
	s.tasks = make(map[string]chan struct{})
	s.tasksMu.Unlock()
	for _, done := range tasks {
		<-done
	}

	s.clientsMu.Lock()
	s.clients = make(map[string]sock.Socket)
	s.inPipes = make(map[string]*memb.Pipeline)
	s.outPipes = make(map[string]*memb.Pipeline)
	s.clientsMu.Unlock()

	nlog.Verbln("server stopped and disconnected")
	s.setStatus(sock.Disconnected)
}
