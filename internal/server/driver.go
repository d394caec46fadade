// Package server implements the single-socket UDP pipeline: receive,
// decode, filter, cache, upstream forward, encode, send.
package server

import (
	"context"
	"log/slog"
	"net/netip"

	"github.com/donos-project/donosd/internal/filtering"
	"github.com/donos-project/donosd/internal/rcache"
	"github.com/donos-project/donosd/internal/upstream"
	"github.com/donos-project/donosd/internal/wire"
)

// Driver arbitrates one decoded request through filter -> cache ->
// upstream lookup -> cache insert, in that fixed order (deterministic
// within-handler ordering even though replies may complete out of order).
type Driver struct {
	Filter   filtering.Filter
	Cache    *rcache.Cache
	Upstream *upstream.Lookup
	Logger   *slog.Logger
}

// Handle decodes a raw inbound datagram and returns the encoded reply to
// send back, or nil if the message must be silently dropped.
//
// Step order: decode, extract first question, filter, cache, upstream
// (+cache insert), encode.
func (d *Driver) Handle(ctx context.Context, clientAddr netip.Addr, raw []byte) []byte {
	req, err := wire.Decode(raw)
	if err != nil {
		// A malformed inbound packet is dropped, not amplified into a
		// reply — a malformed packet must not be amplified into a reply.
		return nil
	}

	if len(req.Questions) == 0 {
		return nil
	}
	question := req.Questions[0]

	resp, err := d.resolve(ctx, clientAddr, req, question)
	if err != nil {
		if d.Logger != nil {
			d.Logger.ErrorContext(ctx, "dns pipeline error", "err", err, "qname", question.Name)
		}
		return nil
	}

	encoded, err := resp.Encode()
	if err != nil {
		if d.Logger != nil {
			d.Logger.ErrorContext(ctx, "dns encode error", "err", err, "qname", question.Name)
		}
		return nil
	}
	return encoded
}

// resolve runs the filter -> cache -> upstream chain for a single question
// and builds the response packet to send back. It always returns a nil
// error: every failure mode is folded into a well-formed response code
// here, and an outbound-encode failure is handled by Handle, matching the
// policy that the client always gets either a correlated reply or
// nothing.
func (d *Driver) resolve(ctx context.Context, clientAddr netip.Addr, req wire.Packet, question wire.Question) (wire.Packet, error) {
	blocked, err := d.Filter.IsBlocked(clientAddr, question.Name)
	if err != nil {
		return d.serverFailure(req), nil
	}
	if blocked {
		resp := wire.ResponseFrom(req)
		resp.Header.ResponseCode = wire.RCodeNameErr
		return resp, nil
	}

	if records, hit := d.Cache.Get(question.Name, question.Type); hit {
		resp := wire.ResponseFrom(req)
		resp.Answers = records
		return resp, nil
	}

	upstreamPacket, err := d.Upstream.Lookup(ctx, question.Name, question.Type)
	if err != nil {
		return d.serverFailure(req), nil
	}

	if len(upstreamPacket.Answers) > 0 {
		d.Cache.Put(question.Name, question.Type, upstreamPacket.Answers)
	}

	resp := wire.ResponseFrom(req)
	resp.Answers = upstreamPacket.Answers
	resp.Authorities = upstreamPacket.Authorities
	resp.Additionals = upstreamPacket.Additionals
	return resp, nil
}

func (d *Driver) serverFailure(req wire.Packet) wire.Packet {
	resp := wire.ResponseFrom(req)
	resp.Header.ResponseCode = wire.RCodeServFail
	return resp
}
