// Package shortvec implements the compact-u16 length encoding used by the
// Solana wire format. Lengths are emitted seven bits at a time, low bits
// first, with the high bit of each byte marking a continuation.
package shortvec

import (
	"io"
	"math"

	"github.com/pkg/errors"
)

// EncodeLen writes length to w in compact-u16 form. Values above
// math.MaxUint16 don't fit the encoding and are rejected.
func EncodeLen(w io.Writer, length int) (int, error) {
	if length > math.MaxUint16 {
		return 0, errors.Errorf("length %d exceeds uint16 range", length)
	}

	var written int
	b := make([]byte, 1)
	for {
		b[0] = byte(length & 0x7f)
		length >>= 7
		if length > 0 {
			b[0] |= 0x80
		}

		n, err := w.Write(b)
		written += n
		if err != nil || length == 0 {
			return written, err
		}
	}
}

// DecodeLen reads a compact-u16 length from r. Encodings longer than three
// bytes cannot represent a uint16 and are rejected.
func DecodeLen(r io.Reader) (int, error) {
	var length, shift int
	b := make([]byte, 1)
	for {
		if _, err := r.Read(b); err != nil {
			return 0, err
		}

		length |= int(b[0]&0x7f) << shift
		shift += 7

		if b[0]&0x80 == 0 {
			break
		}
	}

	if shift > 21 {
		return 0, errors.Errorf("compact-u16 too long: %d bytes", shift/7)
	}

	return length, nil
}
