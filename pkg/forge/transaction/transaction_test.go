package transaction

import (
	"bytes"
	"crypto/ed25519"
	"encoding/base64"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenforge/tokenforge/pkg/forge/common"
	"github.com/tokenforge/tokenforge/pkg/forge/instruction"
	"github.com/tokenforge/tokenforge/pkg/solana"
	"github.com/tokenforge/tokenforge/pkg/solana/system"
	"github.com/tokenforge/tokenforge/pkg/solana/token"
)

func TestAssemble_CreateMint(t *testing.T) {
	funder := newAccount(t)
	mint := newAccount(t)
	freshness := newFreshness(1)

	instructions, err := instruction.CreateMint(&instruction.CreateMintArgs{
		Funder:       funder.PublicKey().ToBytes(),
		Mint:         mint.PublicKey().ToBytes(),
		Decimals:     2,
		RentLamports: 1461600,
	})
	require.NoError(t, err)

	envelope, err := Assemble(funder, freshness, []*common.Account{mint}, instructions...)
	require.NoError(t, err)

	txn := envelope.Transaction
	assert.True(t, txn.IsFullySigned())
	assert.Equal(t, freshness, envelope.Freshness)
	assert.Equal(t, freshness.Blockhash, txn.Message.RecentBlockhash)

	// Fee payer first, then the writable signing mint, the rent sysvar and
	// finally the two programs.
	require.Len(t, txn.Message.Accounts, 5)
	assert.EqualValues(t, funder.PublicKey().ToBytes(), txn.FeePayer())
	assert.EqualValues(t, mint.PublicKey().ToBytes(), txn.Message.Accounts[1])
	assert.EqualValues(t, system.RentSysVar, txn.Message.Accounts[2])
	assert.EqualValues(t, 2, txn.Message.Header.NumSignatures)
	assert.EqualValues(t, 0, txn.Message.Header.NumReadonlySigned)
	assert.EqualValues(t, 3, txn.Message.Header.NumReadOnly)

	programs := txn.Message.Accounts[3:]
	assert.True(t, containsKey(programs, system.ProgramKey))
	assert.True(t, containsKey(programs, token.ProgramKey))

	message := txn.Message.Marshal()
	assert.True(t, ed25519.Verify(funder.PublicKey().ToBytes(), message, txn.Signatures[0][:]))
	assert.True(t, ed25519.Verify(mint.PublicKey().ToBytes(), message, txn.Signatures[1][:]))
	assert.Equal(t, txn.Signatures[0], envelope.Signature())
}

func TestAssemble_FeePayerImplied(t *testing.T) {
	sender := newAccount(t)
	recipient := newAccount(t)

	transfer, memo, err := instruction.TransferWithMemo(&instruction.TransferWithMemoArgs{
		Sender:    sender.PublicKey().ToBytes(),
		Recipient: recipient.PublicKey().ToBytes(),
		Lamports:  5000,
		Memo:      "hello",
	})
	require.NoError(t, err)

	for _, signers := range [][]*common.Account{nil, {sender}} {
		envelope, err := Assemble(sender, newFreshness(2), signers, transfer)
		require.NoError(t, err)
		assert.Len(t, envelope.Transaction.Signatures, 1)
		assert.True(t, envelope.Transaction.IsFullySigned())

		envelope, err = Assemble(sender, newFreshness(2), signers, *memo)
		require.NoError(t, err)
		assert.Len(t, envelope.Transaction.Signatures, 1)
	}
}

func TestAssemble_SignerSetMismatch(t *testing.T) {
	funder := newAccount(t)
	mint := newAccount(t)
	other := newAccount(t)

	instructions, err := instruction.CreateMint(&instruction.CreateMintArgs{
		Funder: funder.PublicKey().ToBytes(),
		Mint:   mint.PublicKey().ToBytes(),
	})
	require.NoError(t, err)

	_, err = Assemble(funder, newFreshness(3), nil, instructions...)
	assert.True(t, errors.Is(err, ErrSignerSetMismatch))
	assert.Contains(t, err.Error(), mint.PublicKey().ToBase58())

	_, err = Assemble(funder, newFreshness(3), []*common.Account{mint, other}, instructions...)
	assert.True(t, errors.Is(err, ErrSignerSetMismatch))
	assert.Contains(t, err.Error(), other.PublicKey().ToBase58())

	_, err = Assemble(funder, newFreshness(3), []*common.Account{mint, nil}, instructions...)
	assert.True(t, errors.Is(err, ErrSignerSetMismatch))

	public, err := common.NewAccountFromPublicKey(mint.PublicKey())
	require.NoError(t, err)
	_, err = Assemble(funder, newFreshness(3), []*common.Account{public}, instructions...)
	assert.True(t, errors.Is(err, ErrMissingPrivateKey))
}

func TestAssemble_Invalid(t *testing.T) {
	funder := newAccount(t)

	_, err := Assemble(funder, newFreshness(4), nil)
	assert.Equal(t, ErrNoInstructions, err)

	_, err = Assemble(nil, newFreshness(4), nil, system.Transfer(funder.PublicKey().ToBytes(), funder.PublicKey().ToBytes(), 1))
	assert.Equal(t, ErrMissingFeePayer, err)
}

func TestAssemble_TooLarge(t *testing.T) {
	funder := newAccount(t)

	// Each transfer to a new recipient adds a 32 byte key and a compiled
	// instruction to the message.
	var instructions []solana.Instruction
	for i := 0; i < 20; i++ {
		instructions = append(instructions, system.Transfer(funder.PublicKey().ToBytes(), newAccount(t).PublicKey().ToBytes(), 1))
	}

	envelope, err := Assemble(funder, newFreshness(8), nil, instructions...)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(envelope.Transaction.Marshal()), solana.MaxTransactionSize)

	for i := 0; i < 20; i++ {
		instructions = append(instructions, system.Transfer(funder.PublicKey().ToBytes(), newAccount(t).PublicKey().ToBytes(), 1))
	}

	_, err = Assemble(funder, newFreshness(8), nil, instructions...)
	assert.True(t, errors.Is(err, ErrTooLarge))
}

func TestEnvelope_RoundTrip(t *testing.T) {
	sender := newAccount(t)
	recipient := newAccount(t)

	envelope, err := Assemble(sender, newFreshness(5), nil, system.Transfer(sender.PublicKey().ToBytes(), recipient.PublicKey().ToBytes(), 42))
	require.NoError(t, err)

	decoded, err := Decode(envelope.Encode())
	require.NoError(t, err)
	assert.Equal(t, envelope.Transaction.Signatures, decoded.Transaction.Signatures)
	assert.Equal(t, envelope.Transaction.Message.Marshal(), decoded.Transaction.Message.Marshal())
	assert.Equal(t, envelope.Freshness.Blockhash, decoded.Freshness.Blockhash)
	assert.True(t, decoded.Transaction.IsFullySigned())

	_, err = Decode("not base64!")
	assert.True(t, errors.Is(err, ErrInvalidEnvelope))

	_, err = Decode("AAAA")
	assert.True(t, errors.Is(err, ErrInvalidEnvelope))

	var unsigned solana.Transaction
	_, err = Decode(base64.StdEncoding.EncodeToString(unsigned.Marshal()))
	assert.True(t, errors.Is(err, ErrInvalidEnvelope))
}

func TestAssemble_Deterministic(t *testing.T) {
	sender := newAccount(t)
	recipient := newAccount(t)
	ix := system.Transfer(sender.PublicKey().ToBytes(), recipient.PublicKey().ToBytes(), 42)

	a, err := Assemble(sender, newFreshness(6), nil, ix)
	require.NoError(t, err)
	b, err := Assemble(sender, newFreshness(6), nil, ix)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(a.Transaction.Marshal(), b.Transaction.Marshal()))

	c, err := Assemble(sender, newFreshness(7), nil, ix)
	require.NoError(t, err)
	assert.NotEqual(t, a.Signature(), c.Signature())
}

func newAccount(t *testing.T) *common.Account {
	account, err := common.NewRandomAccount()
	require.NoError(t, err)
	return account
}

func newFreshness(seed byte) solana.RecentBlockhash {
	var freshness solana.RecentBlockhash
	freshness.Blockhash[0] = seed
	freshness.LastValidBlockHeight = 1000 + uint64(seed)
	return freshness
}
