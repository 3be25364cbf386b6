// Package binary holds little-endian helpers for fixed-layout program
// instruction data.
package binary

import (
	"crypto/ed25519"
	"encoding/binary"
	"io"
)

// Encoder appends little-endian fields to a byte slice.
type Encoder struct {
	buf []byte
}

func NewEncoder(capacity int) *Encoder {
	return &Encoder{buf: make([]byte, 0, capacity)}
}

func (e *Encoder) Uint8(v uint8) *Encoder {
	e.buf = append(e.buf, v)
	return e
}

func (e *Encoder) Uint32(v uint32) *Encoder {
	e.buf = binary.LittleEndian.AppendUint32(e.buf, v)
	return e
}

func (e *Encoder) Uint64(v uint64) *Encoder {
	e.buf = binary.LittleEndian.AppendUint64(e.buf, v)
	return e
}

// Key32 appends a 32 byte key. A nil key is written as zeroes.
func (e *Encoder) Key32(key ed25519.PublicKey) *Encoder {
	var padded [ed25519.PublicKeySize]byte
	copy(padded[:], key)
	e.buf = append(e.buf, padded[:]...)
	return e
}

// OptionalKey32 writes a COption<Pubkey> whose tag occupies tagSize bytes.
// A fixed layout always reserves room for the key; a variable layout omits
// it when absent.
func (e *Encoder) OptionalKey32(key ed25519.PublicKey, tagSize int, fixed bool) *Encoder {
	tag := make([]byte, tagSize)
	if len(key) > 0 {
		tag[0] = 1
	}
	e.buf = append(e.buf, tag...)

	if len(key) > 0 || fixed {
		e.Key32(key)
	}
	return e
}

// OptionalUint64 writes a fixed layout COption<u64>.
func (e *Encoder) OptionalUint64(v *uint64, tagSize int) *Encoder {
	tag := make([]byte, tagSize)
	var value uint64
	if v != nil {
		tag[0] = 1
		value = *v
	}
	e.buf = append(e.buf, tag...)
	return e.Uint64(value)
}

func (e *Encoder) Bytes() []byte {
	return e.buf
}

// Decoder reads little-endian fields. The first short read sticks and is
// reported by Err.
type Decoder struct {
	buf []byte
	err error
}

func NewDecoder(b []byte) *Decoder {
	return &Decoder{buf: b}
}

func (d *Decoder) take(n int) []byte {
	if d.err != nil {
		return nil
	}
	if len(d.buf) < n {
		d.err = io.ErrUnexpectedEOF
		return nil
	}
	out := d.buf[:n]
	d.buf = d.buf[n:]
	return out
}

func (d *Decoder) Uint8() uint8 {
	if b := d.take(1); b != nil {
		return b[0]
	}
	return 0
}

func (d *Decoder) Uint32() uint32 {
	if b := d.take(4); b != nil {
		return binary.LittleEndian.Uint32(b)
	}
	return 0
}

func (d *Decoder) Uint64() uint64 {
	if b := d.take(8); b != nil {
		return binary.LittleEndian.Uint64(b)
	}
	return 0
}

func (d *Decoder) Key32() ed25519.PublicKey {
	b := d.take(ed25519.PublicKeySize)
	if b == nil {
		return nil
	}
	key := make(ed25519.PublicKey, ed25519.PublicKeySize)
	copy(key, b)
	return key
}

// OptionalKey32 mirrors Encoder.OptionalKey32.
func (d *Decoder) OptionalKey32(tagSize int, fixed bool) ed25519.PublicKey {
	tag := d.take(tagSize)
	if tag == nil {
		return nil
	}
	if tag[0] == 1 {
		return d.Key32()
	}
	if fixed {
		d.take(ed25519.PublicKeySize)
	}
	return nil
}

func (d *Decoder) OptionalUint64(tagSize int) *uint64 {
	tag := d.take(tagSize)
	value := d.Uint64()
	if tag == nil || tag[0] != 1 || d.err != nil {
		return nil
	}
	return &value
}

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int {
	return len(d.buf)
}

func (d *Decoder) Err() error {
	return d.err
}
