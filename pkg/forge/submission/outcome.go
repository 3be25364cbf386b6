package submission

import (
	"bytes"
	"fmt"

	"github.com/tokenforge/tokenforge/pkg/solana"
	"github.com/tokenforge/tokenforge/pkg/solana/system"
	"github.com/tokenforge/tokenforge/pkg/solana/token"
)

type OutcomeKind uint8

const (
	OutcomeUnknown OutcomeKind = iota
	// OutcomeConfirmed means the transaction reached the requested commitment.
	OutcomeConfirmed
	// OutcomeRejected means the cluster refused or failed the transaction.
	OutcomeRejected
	// OutcomeExpired means the blockhash expired before the transaction
	// landed. The transaction can never land, so it is safe to rebuild.
	OutcomeExpired
	// OutcomeTimedOut means the outcome could not be determined in time. The
	// transaction may still land.
	OutcomeTimedOut
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeConfirmed:
		return "confirmed"
	case OutcomeRejected:
		return "rejected"
	case OutcomeExpired:
		return "expired"
	case OutcomeTimedOut:
		return "timed_out"
	}
	return "unknown"
}

type RejectionKind uint8

const (
	RejectionNone RejectionKind = iota
	RejectionOther
	RejectionAccountExists
	RejectionInsufficientFunds
)

func (k RejectionKind) String() string {
	switch k {
	case RejectionOther:
		return "other"
	case RejectionAccountExists:
		return "account_exists"
	case RejectionInsufficientFunds:
		return "insufficient_funds"
	}
	return "none"
}

// Outcome is the final state of a submission.
type Outcome struct {
	Kind      OutcomeKind
	Signature solana.Signature

	// Reason and Rejection are set for OutcomeRejected.
	Reason    *solana.TransactionError
	Rejection RejectionKind

	// Slot is set when the cluster reported a status.
	Slot uint64
}

func (o *Outcome) String() string {
	switch o.Kind {
	case OutcomeRejected:
		return fmt.Sprintf("%s (%s: %v)", o.Kind, o.Rejection, o.Reason)
	default:
		return o.Kind.String()
	}
}

func rejected(txn solana.Transaction, sig solana.Signature, slot uint64, reason *solana.TransactionError) *Outcome {
	return &Outcome{
		Kind:      OutcomeRejected,
		Signature: sig,
		Reason:    reason,
		Rejection: ClassifyRejection(txn, reason),
		Slot:      slot,
	}
}

// ClassifyRejection maps a transaction error to a rejection kind. Custom
// program codes are interpreted against the program of the failing
// instruction.
func ClassifyRejection(txn solana.Transaction, txErr *solana.TransactionError) RejectionKind {
	if txErr == nil {
		return RejectionOther
	}

	switch txErr.ErrorKey() {
	case solana.TransactionErrorInsufficientFundsForFee, solana.TransactionErrorInsufficientFundsForRent:
		return RejectionInsufficientFunds
	case solana.TransactionErrorInstructionError:
	default:
		return RejectionOther
	}

	ie := txErr.InstructionError()
	if ie == nil {
		return RejectionOther
	}

	switch ie.ErrorKey() {
	case solana.InstructionErrorAccountAlreadyInitialized:
		return RejectionAccountExists
	case solana.InstructionErrorInsufficientFunds:
		return RejectionInsufficientFunds
	case solana.InstructionErrorIllegalOwner:
		// The associated token account program reports an existing account
		// as being owned by the token program rather than the system program.
		if bytes.Equal(programOf(txn, ie.Index), token.AssociatedTokenAccountProgramKey) {
			return RejectionAccountExists
		}
		return RejectionOther
	case solana.InstructionErrorCustom:
	default:
		return RejectionOther
	}

	code := *ie.CustomError()
	switch program := programOf(txn, ie.Index); {
	case bytes.Equal(program, system.ProgramKey):
		switch code {
		case system.ErrorAccountAlreadyInUse:
			return RejectionAccountExists
		case system.ErrorResultWithNegativeLamports:
			return RejectionInsufficientFunds
		}
	case bytes.Equal(program, token.ProgramKey):
		switch code {
		case token.ErrorAlreadyInUse:
			return RejectionAccountExists
		case token.ErrorInsufficientFunds:
			return RejectionInsufficientFunds
		}
	}

	return RejectionOther
}

func programOf(txn solana.Transaction, index int) []byte {
	if index < 0 || index >= len(txn.Message.Instructions) {
		return nil
	}

	programIndex := int(txn.Message.Instructions[index].ProgramIndex)
	if programIndex >= len(txn.Message.Accounts) {
		return nil
	}
	return txn.Message.Accounts[programIndex]
}
