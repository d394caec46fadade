package wire

import "github.com/donos-project/donosd/internal/helpers"

// Packet is a fully decoded DNS message.
type Packet struct {
	Header      Header
	Questions   []Question
	Answers     []Record
	Authorities []Record
	Additionals []Record
}

// Decode parses msg (at most MaxDatagramSize octets) into a Packet.
// Section order is fixed by the header's counts: questions, then answers,
// then authorities, then additionals.
func Decode(msg []byte) (Packet, error) {
	b := NewBufferFrom(msg)

	h, err := decodeHeader(b)
	if err != nil {
		return Packet{}, err
	}

	p := Packet{Header: h}

	for range h.QDCount {
		q, err := decodeQuestion(b)
		if err != nil {
			return Packet{}, err
		}
		p.Questions = append(p.Questions, q)
	}

	p.Answers, err = decodeRecords(b, h.ANCount)
	if err != nil {
		return Packet{}, err
	}
	p.Authorities, err = decodeRecords(b, h.NSCount)
	if err != nil {
		return Packet{}, err
	}
	p.Additionals, err = decodeRecords(b, h.ARCount)
	if err != nil {
		return Packet{}, err
	}

	return p, nil
}

func decodeRecords(b *Buffer, count uint16) ([]Record, error) {
	records := make([]Record, 0, count)
	for range count {
		r, err := decodeRecord(b)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

// Encode serializes p into a datagram. The header's four count fields are
// recomputed from the section lengths before encoding — they are never
// trusted from whatever was previously stored in p.Header.
func (p Packet) Encode() ([]byte, error) {
	b := NewBuffer()

	h := p.Header
	h.QDCount = helpers.ClampIntToUint16(len(p.Questions))
	h.ANCount = helpers.ClampIntToUint16(len(p.Answers))
	h.NSCount = helpers.ClampIntToUint16(len(p.Authorities))
	h.ARCount = helpers.ClampIntToUint16(len(p.Additionals))

	if err := h.encode(b); err != nil {
		return nil, err
	}
	for _, q := range p.Questions {
		if err := q.encode(b); err != nil {
			return nil, err
		}
	}
	for _, r := range p.Answers {
		if err := r.encode(b); err != nil {
			return nil, err
		}
	}
	for _, r := range p.Authorities {
		if err := r.encode(b); err != nil {
			return nil, err
		}
	}
	for _, r := range p.Additionals {
		if err := r.encode(b); err != nil {
			return nil, err
		}
	}

	out := make([]byte, len(b.Bytes()))
	copy(out, b.Bytes())
	return out, nil
}

// ResponseFrom builds a reply packet whose header copies ID, Opcode, and
// RecursionDesired from req, sets Response = true, clears every other
// flag, and copies req's question vector. This is the only shape used on
// both the blocked-path and resolved-path replies, guaranteeing ID
// equality — the sole means a client has of correlating reply to request.
func ResponseFrom(req Packet) Packet {
	return Packet{
		Header: Header{
			ID:               req.Header.ID,
			Response:         true,
			Opcode:           req.Header.Opcode,
			RecursionDesired: req.Header.RecursionDesired,
		},
		Questions: req.Questions,
	}
}
