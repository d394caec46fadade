package wire

import "strings"

// maxJumps bounds the number of compression-pointer follows a single name
// decode may perform. A packet that references itself in a cycle fails
// with ErrTooManyJumps instead of looping forever.
const maxJumps = 5

// maxLabelLen is the largest a single label may be.
const maxLabelLen = 63

// decodeName reads a dotted, lowercased hostname starting at the buffer's
// current cursor. On return the cursor sits just after the first pointer
// followed, or just after the terminating zero octet if no pointer was
// followed — so the caller can resume reading the enclosing record
// immediately after the name, regardless of how many jumps happened inside
// it.
func decodeName(b *Buffer) (string, error) {
	pos := b.pos
	var labels []string
	jumped := false
	jumps := 0

	for {
		lenOctet, err := b.get(pos)
		if err != nil {
			return "", err
		}

		// Top two bits set: a compression pointer.
		if lenOctet&0xC0 == 0xC0 {
			if !jumped {
				// The caller's cursor advances past the two-octet pointer,
				// not past whatever the pointer leads to.
				if err := b.seek(pos + 2); err != nil {
					return "", err
				}
			}
			second, err := b.get(pos + 1)
			if err != nil {
				return "", err
			}
			offset := (int(lenOctet&0x3F) << 8) | int(second)
			pos = offset
			jumped = true
			jumps++
			if jumps > maxJumps {
				return "", ErrTooManyJumps
			}
			continue
		}

		pos++
		if lenOctet == 0 {
			break
		}

		raw, err := b.getRange(pos, int(lenOctet))
		if err != nil {
			return "", err
		}
		labels = append(labels, decodeLabel(raw))
		pos += int(lenOctet)
	}

	if !jumped {
		if err := b.seek(pos); err != nil {
			return "", err
		}
	}

	return strings.Join(labels, "."), nil
}

// decodeLabel converts raw label octets to a lowercased string, replacing
// non-ASCII octets with the Unicode replacement character.
func decodeLabel(raw []byte) string {
	var sb strings.Builder
	sb.Grow(len(raw))
	for _, o := range raw {
		if o < 0x80 {
			sb.WriteByte(toLowerASCII(o))
		} else {
			sb.WriteRune('�')
		}
	}
	return sb.String()
}

func toLowerASCII(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

// encodeName writes name as length-prefixed labels terminated by a zero
// octet, without emitting any compression pointer. Every conforming
// decoder accepts non-compressed names, so this is a fully conformant
// encoder per the name codec's contract.
func encodeName(b *Buffer, name string) error {
	if name == "" {
		return b.writeU8(0)
	}
	for _, label := range strings.Split(name, ".") {
		if len(label) > maxLabelLen {
			return ErrSingleLabelTooLong
		}
		if err := b.writeU8(byte(len(label))); err != nil {
			return err
		}
		if err := b.writeBytes([]byte(label)); err != nil {
			return err
		}
	}
	return b.writeU8(0)
}

// encodeNameCompressed writes name the same way encodeName does, but
// reuses a previously-written suffix via a pointer when one is available
// in suffixes. suffixes maps a dotted name suffix to the buffer offset at
// which it was written, and is updated in place with the offsets written
// during this call. A pointer is only ever emitted into an offset this
// call (or an earlier call sharing the same suffixes map) actually wrote,
// never into an offset merely read.
func encodeNameCompressed(b *Buffer, name string, suffixes map[string]int) error {
	if name == "" {
		return b.writeU8(0)
	}

	labels := strings.Split(name, ".")
	for i := range labels {
		suffix := strings.Join(labels[i:], ".")
		if offset, ok := suffixes[suffix]; ok {
			return b.writeU16(0xC000 | uint16(offset))
		}

		if b.pos < 0x4000 {
			suffixes[suffix] = b.pos
		}

		label := labels[i]
		if len(label) > maxLabelLen {
			return ErrSingleLabelTooLong
		}
		if err := b.writeU8(byte(len(label))); err != nil {
			return err
		}
		if err := b.writeBytes([]byte(label)); err != nil {
			return err
		}
	}
	return b.writeU8(0)
}
