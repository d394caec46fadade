package wire

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

// A response packet built with the fields of a captured google.com reply
// (id 38005, RD, one A answer with TTL 8) encodes and decodes back to
// exactly those fields with empty authority/additional sections.
func TestDecodeRoundTripsResponsePacket(t *testing.T) {
	p := Packet{
		Header: Header{
			ID:               38005,
			Response:         true,
			RecursionDesired: true,
			RecursionAvailable: true,
		},
		Questions: []Question{{Name: "google.com", Type: QTypeA, Class: ClassInternet}},
		Answers: []Record{
			{Name: "google.com", Type: QTypeA, Class: ClassInternet, TTL: 8, IP: net.IPv4(172, 217, 20, 206)},
		},
	}

	raw, err := p.Encode()
	require.NoError(t, err)

	decoded, err := Decode(raw)
	require.NoError(t, err)

	require.Equal(t, uint16(38005), decoded.Header.ID)
	require.True(t, decoded.Header.RecursionDesired)
	require.Len(t, decoded.Questions, 1)
	require.Equal(t, "google.com", decoded.Questions[0].Name)
	require.Len(t, decoded.Answers, 1)
	require.Equal(t, uint32(8), decoded.Answers[0].TTL)
	require.Empty(t, decoded.Authorities)
	require.Empty(t, decoded.Additionals)
}

func TestPacketCountsRecomputedOnEncode(t *testing.T) {
	p := Packet{
		Header:    Header{ID: 1, ANCount: 99}, // stale, must be ignored
		Questions: []Question{{Name: "a.com", Type: QTypeA, Class: ClassInternet}},
		Answers: []Record{
			{Name: "a.com", Type: QTypeA, TTL: 1, IP: net.IPv4(1, 1, 1, 1)},
			{Name: "a.com", Type: QTypeA, TTL: 1, IP: net.IPv4(2, 2, 2, 2)},
		},
	}

	raw, err := p.Encode()
	require.NoError(t, err)

	decoded, err := Decode(raw)
	require.NoError(t, err)
	require.Equal(t, uint16(1), decoded.Header.QDCount)
	require.Equal(t, uint16(2), decoded.Header.ANCount)
	require.Len(t, decoded.Answers, 2)
}

func TestResponseFromCopiesIDAndSetsResponse(t *testing.T) {
	req := Packet{
		Header:    Header{ID: 1, Opcode: 0, RecursionDesired: true},
		Questions: []Question{{Name: "www.facebook.com", Type: QTypeA, Class: ClassInternet}},
	}

	resp := ResponseFrom(req)
	require.Equal(t, req.Header.ID, resp.Header.ID)
	require.True(t, resp.Header.Response)
	require.Equal(t, req.Questions, resp.Questions)
}

// Scenario 2: filter blocks a name, server replies NameError, no answers.
func TestResponseFromBlockedNameError(t *testing.T) {
	req := Packet{
		Header:    Header{ID: 1, RecursionDesired: true},
		Questions: []Question{{Name: "www.facebook.com", Type: QTypeA, Class: ClassInternet}},
	}

	resp := ResponseFrom(req)
	resp.Header.ResponseCode = RCodeNameErr

	raw, err := resp.Encode()
	require.NoError(t, err)
	decoded, err := Decode(raw)
	require.NoError(t, err)

	require.Equal(t, uint16(1), decoded.Header.ID)
	require.True(t, decoded.Header.Response)
	require.Equal(t, RCodeNameErr, decoded.Header.ResponseCode)
	require.Empty(t, decoded.Answers)
}

// Scenario 5: a malformed datagram (length byte 2, two bytes, pointer back
// to the start of the name at offset 12) fails to decode; the pipeline
// driver silently drops it.
func TestDecodeMalformedDatagramFails(t *testing.T) {
	b := NewBuffer()
	require.NoError(t, b.writeU16(1)) // id
	require.NoError(t, b.writeU8(0))
	require.NoError(t, b.writeU8(0))
	require.NoError(t, b.writeU16(1)) // qdcount = 1
	require.NoError(t, b.writeU16(0))
	require.NoError(t, b.writeU16(0))
	require.NoError(t, b.writeU16(0))

	qStart := b.pos
	require.NoError(t, b.writeU8(2))
	require.NoError(t, b.writeU8('a'))
	require.NoError(t, b.writeU8('b'))
	require.NoError(t, b.writeU8(0xC0))
	require.NoError(t, b.writeU8(byte(qStart)))

	_, err := Decode(b.Bytes())
	require.ErrorIs(t, err, ErrTooManyJumps)
}

func TestDecodeLabelExactly64Succeeds(t *testing.T) {
	label := make([]byte, 64)
	for i := range label {
		label[i] = 'a'
	}
	b := NewBuffer()
	require.NoError(t, b.writeU8(64))
	require.NoError(t, b.writeBytes(label))
	require.NoError(t, b.writeU8(0))

	b.pos = 0
	// 64 is a valid length octet on decode (only encode enforces the
	// 63-octet cap); this asserts the label decodes and is not silently
	// truncated.
	name, err := decodeName(b)
	require.NoError(t, err)
	require.Len(t, name, 64)
}
