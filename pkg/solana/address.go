package solana

import (
	"crypto/ed25519"
	"crypto/sha256"
	"math"

	"github.com/jdgcs/ed25519/edwards25519"
	"github.com/pkg/errors"
)

const (
	// MaxSeeds is the number of seeds accepted by a single derivation,
	// including the bump seed.
	MaxSeeds = 16

	// MaxSeedLength is the maximum length of an individual seed.
	MaxSeedLength = 32

	pdaMarker = "ProgramDerivedAddress"
)

var (
	ErrTooManySeeds          = errors.New("too many seeds")
	ErrMaxSeedLengthExceeded = errors.New("max seed length exceeded")
	ErrInvalidPublicKey      = errors.New("invalid public key")

	// ErrDerivationExhausted is returned by FindProgramAddressAndBump when no
	// bump seed produces an off-curve address, or when the seed set itself can
	// never produce one.
	ErrDerivationExhausted = errors.New("program address derivation exhausted")
)

var (
	pdaHashCtor = sha256.New
)

// CreateProgramAddress derives an address from the program and seeds without
// a bump. The result is rejected with ErrInvalidPublicKey when it decodes as
// a valid ed25519 point, since such an address could have a private key.
//
// Reference: https://github.com/solana-labs/solana/blob/5548e599fe4920b71766e0ad1d121755ce9c63d5/sdk/program/src/pubkey.rs#L158
func CreateProgramAddress(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, error) {
	if err := validateSeeds(seeds); err != nil {
		return nil, err
	}

	h := pdaHashCtor()
	for _, s := range seeds {
		if _, err := h.Write(s); err != nil {
			return nil, errors.Wrap(err, "failed to hash seed")
		}
	}
	if _, err := h.Write(program); err != nil {
		return nil, errors.Wrap(err, "failed to hash program")
	}
	if _, err := h.Write([]byte(pdaMarker)); err != nil {
		return nil, errors.Wrap(err, "failed to hash marker")
	}

	var candidate [ed25519.PublicKeySize]byte
	copy(candidate[:], h.Sum(nil))

	// x/crypto keeps its point type internal, so the decompression check
	// relies on the jdgcs fork of edwards25519.
	var point edwards25519.ExtendedGroupElement
	if point.FromBytes(&candidate) {
		return nil, ErrInvalidPublicKey
	}

	return candidate[:], nil
}

// FindProgramAddressAndBump searches bump seeds from 255 down to 0 and returns
// the first off-curve address along with its bump.
//
// Reference: https://github.com/solana-labs/solana/blob/5548e599fe4920b71766e0ad1d121755ce9c63d5/sdk/program/src/pubkey.rs#L234
func FindProgramAddressAndBump(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, uint8, error) {
	// The bump occupies one seed slot.
	if err := validateSeeds(append(seeds, []byte{0})); err != nil {
		return nil, 0, errors.Wrap(ErrDerivationExhausted, err.Error())
	}

	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)

	for attempt := 0; attempt <= math.MaxUint8; attempt++ {
		bump := uint8(math.MaxUint8 - attempt)
		withBump[len(seeds)] = []byte{bump}

		address, err := CreateProgramAddress(program, withBump...)
		switch err {
		case nil:
			return address, bump, nil
		case ErrInvalidPublicKey:
			continue
		default:
			return nil, 0, err
		}
	}

	return nil, 0, ErrDerivationExhausted
}

// FindProgramAddress is FindProgramAddressAndBump without the bump.
func FindProgramAddress(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, error) {
	address, _, err := FindProgramAddressAndBump(program, seeds...)
	return address, err
}

func validateSeeds(seeds [][]byte) error {
	if len(seeds) > MaxSeeds {
		return ErrTooManySeeds
	}
	for _, s := range seeds {
		if len(s) > MaxSeedLength {
			return ErrMaxSeedLengthExceeded
		}
	}
	return nil
}
