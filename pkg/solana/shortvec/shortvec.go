// Package shortvec implements the compact-u16 length prefix used throughout
// the Solana wire format.
package shortvec

import (
	"io"
	"math"

	"github.com/pkg/errors"
)

const maxEncodedBytes = 3

var ErrLengthTooLarge = errors.New("length exceeds max uint16")

// EncodeLen writes length to w as 7-bit groups, low group first, with the
// high bit of each byte set while more groups follow.
func EncodeLen(w io.Writer, length int) (int, error) {
	if length < 0 || length > math.MaxUint16 {
		return 0, ErrLengthTooLarge
	}

	var buf [maxEncodedBytes]byte
	n := 0
	for {
		buf[n] = byte(length & 0x7f)
		length >>= 7
		if length == 0 {
			n++
			break
		}
		buf[n] |= 0x80
		n++
	}

	return w.Write(buf[:n])
}

// DecodeLen reads a compact-u16 length from r.
func DecodeLen(r io.Reader) (int, error) {
	var (
		val  int
		next [1]byte
	)

	for i := 0; ; i++ {
		if i == maxEncodedBytes {
			return 0, errors.Errorf("invalid size: more than %d bytes", maxEncodedBytes)
		}
		if _, err := io.ReadFull(r, next[:]); err != nil {
			return 0, err
		}

		val |= int(next[0]&0x7f) << (i * 7)
		if next[0]&0x80 == 0 {
			return val, nil
		}
	}
}
