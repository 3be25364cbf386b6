package memo

import (
	"bytes"
	"crypto/ed25519"

	"github.com/tokenforge/tokenforge/pkg/solana"
)

// ProgramKey is the address of the memo program that should be used.
//
// Current key: MemoSq4gqABAXKb96qnH8TysNcWxMyWCqXgDLGmfcHr
var ProgramKey = ed25519.PublicKey{5, 74, 83, 90, 153, 41, 33, 6, 77, 36, 232, 113, 96, 218, 56, 124, 124, 53, 181, 221, 188, 146, 187, 129, 228, 31, 168, 64, 65, 5, 68, 141}

// MaxMemoSize is the largest memo that still fits in a transaction carrying
// a single signature and the memo instruction.
const MaxMemoSize = 566

// Instruction records data on chain. Every signer must sign the enclosing
// transaction.
//
// Reference: https://github.com/solana-labs/solana-program-library/blob/master/memo/program/src/processor.rs
func Instruction(data string, signers ...ed25519.PublicKey) solana.Instruction {
	accounts := make([]solana.AccountMeta, len(signers))
	for i, signer := range signers {
		accounts[i] = solana.NewReadonlyAccountMeta(signer, true)
	}

	return solana.NewInstruction(
		ProgramKey,
		[]byte(data),
		accounts...,
	)
}

type DecompiledMemo struct {
	Data    []byte
	Signers []ed25519.PublicKey
}

func DecompileMemo(ix solana.Instruction) (*DecompiledMemo, error) {
	if !bytes.Equal(ix.Program, ProgramKey) {
		return nil, solana.ErrIncorrectProgram
	}

	decompiled := &DecompiledMemo{Data: ix.Data}
	for _, a := range ix.Accounts {
		if !a.IsSigner {
			return nil, solana.ErrIncorrectInstruction
		}
		decompiled.Signers = append(decompiled.Signers, a.PublicKey)
	}
	return decompiled, nil
}
