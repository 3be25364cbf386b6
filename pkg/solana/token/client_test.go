package token

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenforge/tokenforge/pkg/solana"
)

type accountInfoClient struct {
	solana.Client

	accounts map[string]solana.AccountInfo
}

func (c *accountInfoClient) GetAccountInfo(key ed25519.PublicKey, _ solana.Commitment) (solana.AccountInfo, error) {
	info, ok := c.accounts[string(key)]
	if !ok {
		return solana.AccountInfo{}, solana.ErrNoAccountInfo
	}
	return info, nil
}

func TestClient_GetAccount(t *testing.T) {
	keys := generateKeys(t, 5)
	address, mint, owner, otherMint, foreign := keys[0], keys[1], keys[2], keys[3], keys[4]

	account := Account{
		Mint:   mint,
		Owner:  owner,
		Amount: 10,
		State:  AccountStateInitialized,
	}

	sc := &accountInfoClient{accounts: map[string]solana.AccountInfo{
		string(address): {Owner: ProgramKey, Data: account.Marshal()},
		string(foreign): {Owner: owner, Data: account.Marshal()},
	}}
	c := NewClient(sc)

	actual, err := c.GetAccount(address, mint, solana.CommitmentConfirmed)
	require.NoError(t, err)
	assert.Equal(t, owner, actual.Owner)
	assert.EqualValues(t, 10, actual.Amount)

	_, err = c.GetAccount(address, otherMint, solana.CommitmentConfirmed)
	assert.Equal(t, ErrInvalidTokenAccount, err)

	_, err = c.GetAccount(foreign, mint, solana.CommitmentConfirmed)
	assert.Equal(t, ErrInvalidTokenAccount, err)

	_, err = c.GetAccount(mint, mint, solana.CommitmentConfirmed)
	assert.Equal(t, ErrAccountNotFound, err)
}

func TestClient_GetMint(t *testing.T) {
	keys := generateKeys(t, 3)
	mint, authority, uninitialized := keys[0], keys[1], keys[2]

	state := Mint{
		MintAuthority: authority,
		Decimals:      9,
		IsInitialized: true,
	}
	empty := Mint{}

	sc := &accountInfoClient{accounts: map[string]solana.AccountInfo{
		string(mint):          {Owner: ProgramKey, Data: state.Marshal()},
		string(uninitialized): {Owner: ProgramKey, Data: empty.Marshal()},
		string(authority):     {Owner: make(ed25519.PublicKey, ed25519.PublicKeySize)},
	}}
	c := NewClient(sc)

	actual, err := c.GetMint(mint, solana.CommitmentFinalized)
	require.NoError(t, err)
	assert.Equal(t, state, *actual)

	_, err = c.GetMint(uninitialized, solana.CommitmentFinalized)
	assert.Equal(t, ErrInvalidMint, err)

	_, err = c.GetMint(authority, solana.CommitmentFinalized)
	assert.Equal(t, ErrInvalidMint, err)
}
