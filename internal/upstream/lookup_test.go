package upstream

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/donos-project/donosd/internal/wire"
)

// fakeUpstream answers exactly one query with a single A record and
// returns the UDP address it is listening on.
func fakeUpstream(t *testing.T, answer net.IP) string {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	go func() {
		buf := make([]byte, wire.MaxDatagramSize)
		n, peer, err := conn.ReadFromUDP(buf)
		if err != nil {
			return
		}
		req, err := wire.Decode(buf[:n])
		if err != nil {
			return
		}

		resp := wire.ResponseFrom(req)
		if len(req.Questions) > 0 {
			resp.Answers = []wire.Record{
				{Name: req.Questions[0].Name, Type: wire.QTypeA, Class: wire.ClassInternet, TTL: 30, IP: answer},
			}
		}
		raw, err := resp.Encode()
		if err != nil {
			return
		}
		_, _ = conn.WriteToUDP(raw, peer)
	}()

	return conn.LocalAddr().String()
}

func TestLookupReturnsUpstreamAnswer(t *testing.T) {
	addr := fakeUpstream(t, net.IPv4(93, 184, 216, 34))

	l, err := New("127.0.0.1:0", []string{addr})
	require.NoError(t, err)
	defer l.Close()

	reply, err := l.Lookup(context.Background(), "example.com", wire.QTypeA)
	require.NoError(t, err)
	require.Len(t, reply.Answers, 1)
	require.True(t, reply.Answers[0].IP.Equal(net.IPv4(93, 184, 216, 34)))
}

func TestLookupTimesOutWhenUpstreamSilent(t *testing.T) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1")})
	require.NoError(t, err)
	defer conn.Close()

	l, err := New("127.0.0.1:0", []string{conn.LocalAddr().String()})
	require.NoError(t, err)
	defer l.Close()
	l.timeout = 100 * time.Millisecond

	_, err = l.Lookup(context.Background(), "example.com", wire.QTypeA)
	require.Error(t, err)
}

func TestNewRejectsEmptyServerList(t *testing.T) {
	_, err := New("127.0.0.1:0", nil)
	require.ErrorIs(t, err, ErrNoServersConfigured)
}

func TestLookupAllocatesMonotonicTransactionIDs(t *testing.T) {
	addr := fakeUpstreamEcho(t)
	l, err := New("127.0.0.1:0", []string{addr})
	require.NoError(t, err)
	defer l.Close()

	first := l.nextID.Load()
	_, _ = l.Lookup(context.Background(), "a.com", wire.QTypeA)
	second := l.nextID.Load()
	require.Greater(t, second, first)
}

// fakeUpstreamEcho replies to every query it receives with an empty
// NoError answer, forever, until the test cleans it up.
func fakeUpstreamEcho(t *testing.T) string {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	go func() {
		buf := make([]byte, wire.MaxDatagramSize)
		for {
			n, peer, err := conn.ReadFromUDP(buf)
			if err != nil {
				return
			}
			req, err := wire.Decode(buf[:n])
			if err != nil {
				continue
			}
			raw, err := wire.ResponseFrom(req).Encode()
			if err != nil {
				continue
			}
			_, _ = conn.WriteToUDP(raw, peer)
		}
	}()

	return conn.LocalAddr().String()
}
