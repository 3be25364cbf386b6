package binary

import (
	"crypto/ed25519"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	key, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	native := uint64(2039280)
	data := NewEncoder(0).
		Uint8(7).
		Uint32(0xdeadbeef).
		Uint64(1 << 40).
		Key32(key).
		OptionalKey32(nil, 1, false).
		OptionalKey32(key, 4, true).
		OptionalKey32(nil, 4, true).
		OptionalUint64(&native, 4).
		OptionalUint64(nil, 4).
		Bytes()
	assert.Len(t, data, 1+4+8+32+1+(4+32)+(4+32)+(4+8)+(4+8))

	d := NewDecoder(data)
	assert.EqualValues(t, 7, d.Uint8())
	assert.EqualValues(t, uint32(0xdeadbeef), d.Uint32())
	assert.EqualValues(t, uint64(1<<40), d.Uint64())
	assert.Equal(t, key, d.Key32())
	assert.Nil(t, d.OptionalKey32(1, false))
	assert.Equal(t, key, d.OptionalKey32(4, true))
	assert.Nil(t, d.OptionalKey32(4, true))
	require.NotNil(t, d.OptionalUint64(4))
	assert.Nil(t, d.OptionalUint64(4))
	assert.Zero(t, d.Remaining())
	assert.NoError(t, d.Err())

	assert.Zero(t, d.Uint64())
	assert.Equal(t, io.ErrUnexpectedEOF, d.Err())
}

func TestDecoder_ShortRead(t *testing.T) {
	d := NewDecoder([]byte{1, 2, 3})
	assert.Nil(t, d.Key32())
	assert.Equal(t, io.ErrUnexpectedEOF, d.Err())

	// Errors stick even when later reads would fit.
	assert.Zero(t, d.Uint8())
	assert.Equal(t, 3, d.Remaining())
}
