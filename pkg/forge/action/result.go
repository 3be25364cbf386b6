package action

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/tokenforge/tokenforge/pkg/forge/common"
	"github.com/tokenforge/tokenforge/pkg/forge/submission"
	"github.com/tokenforge/tokenforge/pkg/solana"
	"github.com/tokenforge/tokenforge/pkg/solana/token"
)

var (
	// ErrBlockhashAttemptsExhausted is returned when every rebuilt envelope
	// expired before landing.
	ErrBlockhashAttemptsExhausted = errors.New("blockhash attempts exhausted")

	errExpired = errors.New("envelope expired")
)

// RejectedError indicates the cluster rejected a step's transaction.
type RejectedError struct {
	Step    string
	Outcome *submission.Outcome
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s rejected: %s", e.Step, e.Outcome)
}

// TimedOutError indicates a step's transaction was sent but its outcome is
// unknown. It may still land.
type TimedOutError struct {
	Step      string
	Signature solana.Signature
}

func (e *TimedOutError) Error() string {
	return fmt.Sprintf("%s timed out waiting for %s", e.Step, e.Signature)
}

// StepResult describes how one envelope of an action ended.
type StepResult struct {
	Name string

	// State is the final state of the last attempt.
	State State

	// Attempts is the number of envelopes built for the step. Each expired
	// envelope is replaced by a new one.
	Attempts uint

	Signature solana.Signature
	Outcome   *submission.Outcome

	// Instructions are human readable renderings of the step's instructions.
	Instructions []string

	// Envelope is the base64 wire encoding of the signed envelope. It is only
	// set for dry runs.
	Envelope string
}

// Result is the summary of an action run.
type Result struct {
	RunID  uuid.UUID
	Kind   Kind
	DryRun bool

	Steps     []*StepResult
	Addresses map[string]*common.Account

	// Read backs, set when available.
	Mint    *token.Mint
	Balance *uint64

	// Lamports is the recipient's balance after a transfer.
	Lamports *uint64
}
