package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/donos-project/donosd/internal/pool"
	"github.com/donos-project/donosd/internal/wire"
)

// DefaultConcurrency is the fixed fan-out of concurrent handler goroutines
// multiplexed over the single shared UDP socket.
const DefaultConcurrency = 64

// bufferPool reduces allocations for incoming datagrams.
var bufferPool = pool.New(func() *[]byte {
	buf := make([]byte, wire.MaxDatagramSize)
	return &buf
})

// packet is a received datagram pending processing.
type packet struct {
	bufPtr *[]byte
	n      int
	peer   *net.UDPAddr
}

// UDPServer owns a single bound UDP socket and multiplexes inbound
// datagrams over a fixed pool of handler goroutines, rather than the
// SO_REUSEPORT, one-socket-per-core design some forwarders use: one
// shared socket serves every handler here.
type UDPServer struct {
	Logger      *slog.Logger
	Driver      *Driver
	Concurrency int // default DefaultConcurrency

	conn *net.UDPConn
	wg   sync.WaitGroup
}

// Run binds addr and serves until ctx is cancelled, then shuts down
// gracefully.
func (s *UDPServer) Run(ctx context.Context, addr string) error {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return err
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return err
	}
	return s.RunOnConn(ctx, conn)
}

// RunOnConn runs the server on an already-bound connection. Useful for
// tests that want to pick an ephemeral port.
func (s *UDPServer) RunOnConn(ctx context.Context, conn *net.UDPConn) error {
	if s.Concurrency <= 0 {
		s.Concurrency = DefaultConcurrency
	}
	s.conn = conn

	packetCh := make(chan packet, s.Concurrency*2)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.recvLoop(ctx, packetCh)
	}()

	for range s.Concurrency {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.workerLoop(ctx, packetCh)
		}()
	}

	<-ctx.Done()
	return s.Stop(5 * time.Second)
}

// recvLoop reads datagrams and dispatches them to the worker pool.
// Dispatch is non-blocking: datagrams queue in a channel holding twice the
// handler count, and once that queue is full a datagram is dropped rather
// than buffered without bound.
func (s *UDPServer) recvLoop(ctx context.Context, out chan<- packet) {
	for {
		bufPtr := bufferPool.Get()
		buf := *bufPtr

		n, peer, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			bufferPool.Put(bufPtr)
			return
		}

		select {
		case out <- packet{bufPtr, n, peer}:
		default:
			bufferPool.Put(bufPtr)
		}

		if ctx.Err() != nil {
			return
		}
	}
}

func (s *UDPServer) workerLoop(ctx context.Context, in <-chan packet) {
	for {
		select {
		case <-ctx.Done():
			return
		case p, ok := <-in:
			if !ok {
				return
			}
			s.handle(ctx, p)
		}
	}
}

func (s *UDPServer) handle(ctx context.Context, p packet) {
	defer bufferPool.Put(p.bufPtr)

	payload := (*p.bufPtr)[:p.n]
	addr, ok := addrFromUDP(p.peer)
	if !ok {
		return
	}

	resp := s.Driver.Handle(ctx, addr, payload)
	if len(resp) == 0 {
		return
	}
	_, _ = s.conn.WriteToUDP(resp, p.peer)
}

// Stop closes the socket and waits up to timeout for every goroutine to
// exit.
func (s *UDPServer) Stop(timeout time.Duration) error {
	if s.conn != nil {
		_ = s.conn.Close()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return errors.New("udp server: timeout waiting for goroutines to exit")
	}
}
