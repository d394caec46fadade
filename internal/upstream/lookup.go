// Package upstream forwards a question to a configured recursive resolver
// and awaits a single reply.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/donos-project/donosd/internal/wire"
)

// DefaultTimeout bounds how long a single upstream round trip may take
// before it is surfaced to the pipeline driver as a failure.
const DefaultTimeout = 2 * time.Second

// ErrNoServersConfigured is returned by New when servers is empty.
var ErrNoServersConfigured = errors.New("upstream: no servers configured")

// Lookup queries a single configured recursive resolver. It binds one
// local UDP socket at startup and reuses it for every query; concurrent
// callers are safe because the socket is used for both send and receive
// and transaction IDs are allocated from a shared atomic counter.
//
// Grounded on original_source's service/lookup.rs: an AtomicU16 id
// counter, a fixed bind-once socket, and "subsequent upstreams are
// reserved for future failover" — only servers[0] is ever queried.
type Lookup struct {
	conn    *net.UDPConn
	server  *net.UDPAddr
	timeout time.Duration
	nextID  atomic.Uint32
}

// New binds localAddr and configures servers[0] (host or host:port,
// defaulting to port 53) as the upstream to query.
func New(localAddr string, servers []string) (*Lookup, error) {
	if len(servers) == 0 {
		return nil, ErrNoServersConfigured
	}

	local, err := net.ResolveUDPAddr("udp", localAddr)
	if err != nil {
		return nil, fmt.Errorf("upstream: resolve local addr: %w", err)
	}

	conn, err := net.ListenUDP("udp", local)
	if err != nil {
		return nil, fmt.Errorf("upstream: bind local socket: %w", err)
	}

	server, err := resolveServerAddr(servers[0])
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &Lookup{conn: conn, server: server, timeout: DefaultTimeout}, nil
}

func resolveServerAddr(s string) (*net.UDPAddr, error) {
	host, port, err := net.SplitHostPort(s)
	if err != nil {
		host, port = s, "53"
	}
	return net.ResolveUDPAddr("udp", net.JoinHostPort(host, port))
}

// Close releases the local socket.
func (l *Lookup) Close() error {
	return l.conn.Close()
}

// SetTimeoutForTest overrides the round-trip timeout. Exported only for
// tests outside this package that need a short timeout against a
// deliberately unresponsive upstream.
func (l *Lookup) SetTimeoutForTest() {
	l.timeout = 50 * time.Millisecond
}

// Lookup sends a single-question, recursion-desired query for
// (name, qtype) to the configured upstream and returns its decoded reply.
// The call respects ctx's deadline in addition to the lookup's own
// timeout, whichever elapses first.
func (l *Lookup) Lookup(ctx context.Context, name string, qtype wire.QType) (wire.Packet, error) {
	id := uint16(l.nextID.Add(1))

	query := wire.Packet{
		Header: wire.Header{
			ID:               id,
			RecursionDesired: true,
		},
		Questions: []wire.Question{{Name: name, Type: qtype, Class: wire.ClassInternet}},
	}

	raw, err := query.Encode()
	if err != nil {
		return wire.Packet{}, fmt.Errorf("upstream: encode query: %w", err)
	}

	deadline := time.Now().Add(l.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := l.conn.SetDeadline(deadline); err != nil {
		return wire.Packet{}, fmt.Errorf("upstream: set deadline: %w", err)
	}

	if _, err := l.conn.WriteToUDP(raw, l.server); err != nil {
		return wire.Packet{}, fmt.Errorf("upstream: send query: %w", err)
	}

	buf := make([]byte, wire.MaxDatagramSize)
	n, _, err := l.conn.ReadFromUDP(buf)
	if err != nil {
		return wire.Packet{}, fmt.Errorf("upstream: receive reply: %w", err)
	}

	reply, err := wire.Decode(buf[:n])
	if err != nil {
		return wire.Packet{}, fmt.Errorf("upstream: decode reply: %w", err)
	}

	return reply, nil
}
