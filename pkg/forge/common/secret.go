package common

import (
	"bytes"
	"crypto/ed25519"
	"encoding/json"
	"strings"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/tyler-smith/go-bip39"
)

var (
	// ErrInvalidKeyEncoding indicates a secret key could not be decoded.
	ErrInvalidKeyEncoding = errors.New("invalid secret key encoding")
)

// NewAccountFromSecret decodes a signing account from one of the supported
// secret encodings:
//
//   - a JSON array of 64 keypair bytes, or of a 32 byte seed
//   - a base58 encoded 64 byte keypair
//   - a BIP-39 mnemonic, where the first 32 bytes of the BIP-39 seed derived
//     with passphrase become the ed25519 seed
func NewAccountFromSecret(secret, passphrase string) (*Account, error) {
	secret = strings.TrimSpace(secret)

	var privateKey ed25519.PrivateKey
	var err error
	switch {
	case len(secret) == 0:
		return nil, errors.Wrap(ErrInvalidKeyEncoding, "secret is empty")
	case strings.HasPrefix(secret, "["):
		privateKey, err = decodeJSONSecret(secret)
	case len(strings.Fields(secret)) > 1:
		privateKey, err = decodeMnemonic(secret, passphrase)
	default:
		privateKey, err = decodeBase58Secret(secret)
	}
	if err != nil {
		return nil, err
	}

	account, err := NewAccountFromPrivateKeyBytes(privateKey)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidKeyEncoding, err.Error())
	}
	return account, nil
}

func decodeJSONSecret(secret string) (ed25519.PrivateKey, error) {
	var values []int
	if err := json.Unmarshal([]byte(secret), &values); err != nil {
		return nil, errors.Wrapf(ErrInvalidKeyEncoding, "malformed json array: %v", err)
	}

	raw := make([]byte, len(values))
	for i, v := range values {
		if v < 0 || v > 255 {
			return nil, errors.Wrapf(ErrInvalidKeyEncoding, "value %d at index %d is not a byte", v, i)
		}
		raw[i] = byte(v)
	}

	return toPrivateKey(raw)
}

func decodeBase58Secret(secret string) (ed25519.PrivateKey, error) {
	raw, err := base58.Decode(secret)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidKeyEncoding, "malformed base58")
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, errors.Wrapf(ErrInvalidKeyEncoding, "base58 secret must be %d bytes, got %d", ed25519.PrivateKeySize, len(raw))
	}

	return toPrivateKey(raw)
}

func decodeMnemonic(mnemonic, passphrase string) (ed25519.PrivateKey, error) {
	mnemonic = strings.Join(strings.Fields(mnemonic), " ")

	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, passphrase)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidKeyEncoding, "invalid mnemonic: %v", err)
	}

	return ed25519.NewKeyFromSeed(seed[:ed25519.SeedSize]), nil
}

func toPrivateKey(raw []byte) (ed25519.PrivateKey, error) {
	switch len(raw) {
	case ed25519.SeedSize:
		return ed25519.NewKeyFromSeed(raw), nil
	case ed25519.PrivateKeySize:
		derived := ed25519.NewKeyFromSeed(raw[:ed25519.SeedSize])
		if !bytes.Equal(derived[ed25519.SeedSize:], raw[ed25519.SeedSize:]) {
			return nil, errors.Wrap(ErrInvalidKeyEncoding, "public half does not match seed")
		}
		return derived, nil
	default:
		return nil, errors.Wrapf(ErrInvalidKeyEncoding, "expected %d or %d bytes, got %d", ed25519.SeedSize, ed25519.PrivateKeySize, len(raw))
	}
}
