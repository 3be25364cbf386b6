package common

import (
	"bytes"
	"crypto/ed25519"

	"filippo.io/edwards25519"
	"github.com/pkg/errors"

	"github.com/tokenforge/tokenforge/pkg/solana/token"
)

// ErrOwnerOffCurve indicates a token account owner that no private key can
// sign for, such as a program derived address.
var ErrOwnerOffCurve = errors.New("owner is not on the ed25519 curve")

type Account struct {
	publicKey  *Key
	privateKey *Key // Optional
}

func NewAccountFromPublicKey(publicKey *Key) (*Account, error) {
	account := &Account{
		publicKey: publicKey,
	}

	if err := account.Validate(); err != nil {
		return nil, err
	}
	return account, nil
}

func NewAccountFromPublicKeyBytes(publicKey []byte) (*Account, error) {
	key, err := NewKeyFromBytes(publicKey)
	if err != nil {
		return nil, err
	}

	return NewAccountFromPublicKey(key)
}

func NewAccountFromPublicKeyString(publicKey string) (*Account, error) {
	key, err := NewKeyFromString(publicKey)
	if err != nil {
		return nil, err
	}

	return NewAccountFromPublicKey(key)
}

func NewAccountFromPrivateKey(privateKey *Key) (*Account, error) {
	if privateKey == nil || privateKey.IsPublic() {
		return nil, errors.New("key isn't an ed25519 private key")
	}

	publicKeyBytes := ed25519.PrivateKey(privateKey.ToBytes()).Public().(ed25519.PublicKey)
	publicKey, err := NewKeyFromBytes(publicKeyBytes)
	if err != nil {
		return nil, errors.Wrap(err, "error creating public key from private key")
	}

	account := &Account{
		publicKey:  publicKey,
		privateKey: privateKey,
	}

	if err := account.Validate(); err != nil {
		return nil, err
	}
	return account, nil
}

func NewAccountFromPrivateKeyBytes(privateKey []byte) (*Account, error) {
	key, err := NewKeyFromBytes(privateKey)
	if err != nil {
		return nil, err
	}

	return NewAccountFromPrivateKey(key)
}

func NewAccountFromPrivateKeyString(privateKey string) (*Account, error) {
	key, err := NewKeyFromString(privateKey)
	if err != nil {
		return nil, err
	}

	return NewAccountFromPrivateKey(key)
}

func NewRandomAccount() (*Account, error) {
	key, err := NewRandomKey()
	if err != nil {
		return nil, err
	}

	account, err := NewAccountFromPrivateKey(key)
	if err != nil {
		return nil, errors.Wrap(err, "invalid account")
	}

	return account, nil
}

func (a *Account) PublicKey() *Key {
	return a.publicKey
}

func (a *Account) PrivateKey() *Key {
	return a.privateKey
}

// HasPrivateKey reports whether the account can sign.
func (a *Account) HasPrivateKey() bool {
	return a.privateKey != nil && len(a.privateKey.ToBytes()) == ed25519.PrivateKeySize
}

func (a *Account) Sign(message []byte) ([]byte, error) {
	if !a.HasPrivateKey() {
		return nil, errors.New("private key not available")
	}

	signature := ed25519.Sign(a.privateKey.ToBytes(), message)
	return signature, nil
}

// Wipe zeroes the private key. The account can still be used as an address.
func (a *Account) Wipe() {
	if a == nil || a.privateKey == nil {
		return
	}

	a.privateKey.Wipe()
	a.privateKey = nil
}

// ToAssociatedTokenAccount derives the associated token account of a for
// mint. Owners off the curve are rejected with ErrOwnerOffCurve.
func (a *Account) ToAssociatedTokenAccount(mint *Account) (*Account, error) {
	if err := a.Validate(); err != nil {
		return nil, errors.Wrap(err, "error validating owner account")
	}
	if !a.IsOnCurve() {
		return nil, errors.Wrap(ErrOwnerOffCurve, a.String())
	}

	return a.ToAssociatedTokenAccountAllowOffCurve(mint)
}

// ToAssociatedTokenAccountAllowOffCurve is ToAssociatedTokenAccount without
// the curve check, for owners that are program derived addresses.
func (a *Account) ToAssociatedTokenAccountAllowOffCurve(mint *Account) (*Account, error) {
	if err := a.Validate(); err != nil {
		return nil, errors.Wrap(err, "error validating owner account")
	}
	if err := mint.Validate(); err != nil {
		return nil, errors.Wrap(err, "error validating mint account")
	}

	ata, err := token.GetAssociatedAccount(a.PublicKey().ToBytes(), mint.PublicKey().ToBytes())
	if err != nil {
		return nil, err
	}

	return NewAccountFromPublicKeyBytes(ata)
}

func (a *Account) IsOnCurve() bool {
	return IsOnCurve(a.PublicKey().ToBytes())
}

func (a *Account) Equals(other *Account) bool {
	if a == nil || other == nil {
		return a == other
	}
	return bytes.Equal(a.PublicKey().ToBytes(), other.PublicKey().ToBytes())
}

func (a *Account) Validate() error {
	if a == nil {
		return errors.New("account is nil")
	}

	if err := a.PublicKey().Validate(); err != nil {
		return errors.Wrap(err, "error validating public key")
	}

	if !a.PublicKey().IsPublic() {
		return errors.New("public key isn't public")
	}

	if a.privateKey == nil {
		return nil
	}

	if err := a.privateKey.Validate(); err != nil {
		return errors.Wrap(err, "error validating private key")
	}

	if a.privateKey.IsPublic() {
		return errors.New("private key isn't private")
	}

	expectedPublicKey := ed25519.PrivateKey(a.privateKey.ToBytes()).Public().(ed25519.PublicKey)
	if !bytes.Equal(expectedPublicKey, a.publicKey.ToBytes()) {
		return errors.New("private key doesn't map to public key")
	}

	return nil
}

func (a *Account) String() string {
	return a.PublicKey().ToBase58()
}

// IsOnCurve reports whether pubKey decodes to a point on the ed25519 curve.
func IsOnCurve(pubKey ed25519.PublicKey) bool {
	if len(pubKey) != ed25519.PublicKeySize {
		return false
	}

	_, err := new(edwards25519.Point).SetBytes(pubKey)
	return err == nil
}
