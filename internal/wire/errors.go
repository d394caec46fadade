// Package wire implements a reader/writer for RFC 1035 DNS messages bounded
// to a 512-octet UDP datagram, including the label-compression pointer
// scheme and its cycle defense.
package wire

import "errors"

// Decode errors.
var (
	ErrEndOfBuffer         = errors.New("wire: end of buffer")
	ErrTooManyJumps        = errors.New("wire: too many jumps")
	ErrInvalidResponseCode = errors.New("wire: invalid response code")
	ErrInvalidClass        = errors.New("wire: invalid class")
)

// Encode errors.
var ErrSingleLabelTooLong = errors.New("wire: single label too long")
