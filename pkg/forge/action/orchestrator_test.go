package action

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenforge/tokenforge/pkg/config"
	"github.com/tokenforge/tokenforge/pkg/config/memory"
	"github.com/tokenforge/tokenforge/pkg/forge/common"
	"github.com/tokenforge/tokenforge/pkg/forge/instruction"
	"github.com/tokenforge/tokenforge/pkg/forge/submission"
	"github.com/tokenforge/tokenforge/pkg/forge/transaction"
	"github.com/tokenforge/tokenforge/pkg/solana"
	"github.com/tokenforge/tokenforge/pkg/solana/memo"
	"github.com/tokenforge/tokenforge/pkg/solana/metadata"
	"github.com/tokenforge/tokenforge/pkg/solana/system"
	"github.com/tokenforge/tokenforge/pkg/solana/token"
	"github.com/tokenforge/tokenforge/pkg/testutil"
)

type testEnv struct {
	ctx      context.Context
	sc       *testutil.SolanaClient
	payer    *common.Account
	reporter *recordingReporter
}

func setup(t *testing.T) *testEnv {
	return &testEnv{
		ctx:      context.Background(),
		sc:       testutil.NewSolanaClient(),
		payer:    testutil.NewRandomAccount(t),
		reporter: &recordingReporter{},
	}
}

func (e *testEnv) orchestrator(submitter Submitter, overrides *testOverrides) *Orchestrator {
	if overrides == nil {
		overrides = &testOverrides{maxBlockhashAttempts: 3}
	}
	return NewOrchestrator(e.sc, submitter, e.payer, e.reporter, withManualTestOverrides(overrides))
}

func (e *testEnv) submissionClient() *submission.Client {
	values := map[string]interface{}{
		submission.ConfirmTimeoutConfigName: 200 * time.Millisecond,
		submission.PollIntervalConfigName:   5 * time.Millisecond,
	}
	return submission.NewClient(e.sc, submission.WithSource(func(key string) config.Config {
		return memory.NewConfig(values[key])
	}))
}

// scriptedSubmitter returns queued outcomes in order and confirms once the
// queue is drained.
type scriptedSubmitter struct {
	mu        sync.Mutex
	outcomes  []submission.OutcomeKind
	envelopes []*transaction.Envelope
	onSubmit  func(envelope *transaction.Envelope)
}

func (s *scriptedSubmitter) Submit(_ context.Context, envelope *transaction.Envelope, _ solana.Commitment) (*submission.Outcome, error) {
	s.mu.Lock()
	s.envelopes = append(s.envelopes, envelope)
	kind := submission.OutcomeConfirmed
	if len(s.outcomes) > 0 {
		kind = s.outcomes[0]
		s.outcomes = s.outcomes[1:]
	}
	onSubmit := s.onSubmit
	s.mu.Unlock()

	if onSubmit != nil {
		onSubmit(envelope)
	}

	outcome := &submission.Outcome{Kind: kind, Signature: envelope.Signature()}
	if kind == submission.OutcomeRejected {
		outcome.Reason = solana.NewTransactionError(solana.TransactionErrorInsufficientFundsForFee)
		outcome.Rejection = submission.RejectionInsufficientFunds
	}
	return outcome, nil
}

func (s *scriptedSubmitter) submitted() []*transaction.Envelope {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*transaction.Envelope(nil), s.envelopes...)
}

type recordingReporter struct {
	mu      sync.Mutex
	steps   []*StepResult
	results []*Result
}

func (r *recordingReporter) ReportStep(_ context.Context, _ *Result, step *StepResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = append(r.steps, step)
}

func (r *recordingReporter) ReportResult(_ context.Context, result *Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
}

func decompileAll(t *testing.T, txn solana.Transaction) []solana.Instruction {
	var instructions []solana.Instruction
	for i := range txn.Message.Instructions {
		ix, err := txn.Message.DecompileInstruction(i)
		require.NoError(t, err)
		instructions = append(instructions, ix)
	}
	return instructions
}

func TestRun_CreateMint(t *testing.T) {
	env := setup(t)
	submitter := &scriptedSubmitter{}
	freeze := testutil.NewRandomAccount(t)

	var mintState token.Mint
	submitter.onSubmit = func(envelope *transaction.Envelope) {
		ixs := decompileAll(t, envelope.Transaction)
		require.Len(t, ixs, 2)

		initialize, err := token.DecompileInitializeMint(ixs[1])
		require.NoError(t, err)
		mintState = token.Mint{
			MintAuthority:   initialize.MintAuthority,
			Decimals:        initialize.Decimals,
			IsInitialized:   true,
			FreezeAuthority: initialize.FreezeAuthority,
		}
		env.sc.SetAccount(initialize.Mint, solana.AccountInfo{Owner: token.ProgramKey, Data: mintState.Marshal()})
	}

	result, err := env.orchestrator(submitter, nil).Run(env.ctx, &CreateMint{Decimals: 9, FreezeAuthority: freeze})
	require.NoError(t, err)

	mint := result.Addresses[AddressMint]
	require.NotNil(t, mint)
	assert.False(t, mint.HasPrivateKey())

	require.Len(t, result.Steps, 1)
	step := result.Steps[0]
	assert.Equal(t, StateConfirmed, step.State)
	assert.EqualValues(t, 1, step.Attempts)
	assert.Len(t, step.Instructions, 2)

	envelopes := submitter.submitted()
	require.Len(t, envelopes, 1)
	assert.Equal(t, envelopes[0].Signature(), step.Signature)

	txn := envelopes[0].Transaction
	assert.True(t, txn.IsFullySigned())
	require.Len(t, txn.Signatures, 2)
	assert.EqualValues(t, env.payer.PublicKey().ToBytes(), txn.Message.Accounts[0])

	ixs := decompileAll(t, txn)
	create, err := system.DecompileCreateAccount(ixs[0])
	require.NoError(t, err)
	assert.EqualValues(t, mint.PublicKey().ToBytes(), create.Address)
	assert.EqualValues(t, token.ProgramKey, create.Owner)
	assert.EqualValues(t, env.sc.RentExemption, create.Lamports)
	assert.EqualValues(t, token.MintAccountSize, create.Size)

	require.NotNil(t, result.Mint)
	assert.Equal(t, mintState, *result.Mint)
	assert.EqualValues(t, 9, result.Mint.Decimals)
	assert.EqualValues(t, env.payer.PublicKey().ToBytes(), result.Mint.MintAuthority)
	assert.EqualValues(t, freeze.PublicKey().ToBytes(), result.Mint.FreezeAuthority)

	assert.Len(t, env.reporter.steps, 1)
	assert.Len(t, env.reporter.results, 1)
}

func TestRun_CreateMint_InvalidDecimals(t *testing.T) {
	env := setup(t)
	submitter := &scriptedSubmitter{}

	_, err := env.orchestrator(submitter, nil).Run(env.ctx, &CreateMint{Decimals: token.MaxDecimals + 1})
	assert.True(t, errors.Is(err, instruction.ErrInvalidDecimals))
	assert.Zero(t, env.sc.TotalCalls())
	assert.Empty(t, submitter.submitted())
}

func TestRun_CreateAssociatedAccount(t *testing.T) {
	env := setup(t)
	mint := testutil.NewRandomAccount(t)
	owner := testutil.NewRandomAccount(t)

	result, err := env.orchestrator(env.submissionClient(), nil).Run(env.ctx, &CreateAssociatedAccount{Owner: owner, Mint: mint})
	require.NoError(t, err)

	expected, err := owner.ToAssociatedTokenAccount(mint)
	require.NoError(t, err)
	assert.True(t, expected.Equals(result.Addresses[AddressAssociatedAccount]))

	submitted := env.sc.Submitted()
	require.Len(t, submitted, 1)
	decompiled, err := token.DecompileCreateAssociatedAccount(decompileAll(t, submitted[0])[0])
	require.NoError(t, err)
	assert.EqualValues(t, env.payer.PublicKey().ToBytes(), decompiled.Subsidizer)
	assert.EqualValues(t, owner.PublicKey().ToBytes(), decompiled.Owner)
	assert.EqualValues(t, mint.PublicKey().ToBytes(), decompiled.Mint)

	require.Len(t, result.Steps, 1)
	assert.Equal(t, StateConfirmed, result.Steps[0].State)
	assert.Equal(t, submission.OutcomeConfirmed, result.Steps[0].Outcome.Kind)
}

func TestRun_CreateAssociatedAccount_AlreadyExists(t *testing.T) {
	env := setup(t)
	env.sc.SubmitFunc = func(solana.Transaction) error {
		return solana.NewInstructionTransactionError(solana.InstructionError{
			Index: 0,
			Err:   errors.New(string(solana.InstructionErrorIllegalOwner)),
		})
	}

	result, err := env.orchestrator(env.submissionClient(), nil).Run(env.ctx, &CreateAssociatedAccount{Mint: testutil.NewRandomAccount(t)})
	require.Error(t, err)

	var rejected *RejectedError
	require.True(t, errors.As(err, &rejected))
	assert.Equal(t, "create_associated_account", rejected.Step)
	assert.Equal(t, submission.RejectionAccountExists, rejected.Outcome.Rejection)

	require.Len(t, result.Steps, 1)
	assert.Equal(t, StateFailed, result.Steps[0].State)
	assert.EqualValues(t, 1, result.Steps[0].Attempts)
	assert.Empty(t, env.reporter.results)
}

func TestRun_CreateAssociatedAccount_OwnerOffCurve(t *testing.T) {
	env := setup(t)
	mint := testutil.NewRandomAccount(t)

	pda, err := testutil.NewRandomAccount(t).ToAssociatedTokenAccount(mint)
	require.NoError(t, err)

	_, err = env.orchestrator(env.submissionClient(), nil).Run(env.ctx, &CreateAssociatedAccount{Owner: pda, Mint: mint})
	assert.True(t, errors.Is(err, common.ErrOwnerOffCurve))
	assert.Zero(t, env.sc.TotalCalls())

	_, err = env.orchestrator(&scriptedSubmitter{}, nil).Run(env.ctx, &MintTo{Owner: pda, Mint: mint, Amount: 1})
	assert.True(t, errors.Is(err, common.ErrOwnerOffCurve))
	assert.Zero(t, env.sc.TotalCalls())

	result, err := env.orchestrator(env.submissionClient(), nil).Run(env.ctx, &CreateAssociatedAccount{
		Owner:              pda,
		Mint:               mint,
		AllowOwnerOffCurve: true,
	})
	require.NoError(t, err)

	expected, err := pda.ToAssociatedTokenAccountAllowOffCurve(mint)
	require.NoError(t, err)
	assert.True(t, expected.Equals(result.Addresses[AddressAssociatedAccount]))
}

func TestRun_MintTo(t *testing.T) {
	env := setup(t)
	mint := testutil.NewRandomAccount(t)

	destination, err := env.payer.ToAssociatedTokenAccount(mint)
	require.NoError(t, err)
	env.sc.SetTokenBalance(destination.PublicKey().ToBytes(), 10_000)

	result, err := env.orchestrator(env.submissionClient(), nil).Run(env.ctx, &MintTo{Mint: mint, Amount: 10_000})
	require.NoError(t, err)
	assert.True(t, destination.Equals(result.Addresses[AddressDestination]))

	submitted := env.sc.Submitted()
	require.Len(t, submitted, 1)
	decompiled, err := token.DecompileMintTo(decompileAll(t, submitted[0])[0])
	require.NoError(t, err)
	assert.EqualValues(t, destination.PublicKey().ToBytes(), decompiled.Destination)
	assert.EqualValues(t, env.payer.PublicKey().ToBytes(), decompiled.Authority)
	assert.EqualValues(t, 10_000, decompiled.Amount)

	require.NotNil(t, result.Balance)
	assert.EqualValues(t, 10_000, *result.Balance)
}

func TestRun_MintTo_ExplicitDestination(t *testing.T) {
	env := setup(t)
	mint := testutil.NewRandomAccount(t)
	destination := testutil.NewRandomAccount(t)

	result, err := env.orchestrator(&scriptedSubmitter{}, nil).Run(env.ctx, &MintTo{Mint: mint, Destination: destination, Amount: 1})
	require.NoError(t, err)
	assert.True(t, destination.Equals(result.Addresses[AddressDestination]))

	// The balance read back failed, which does not fail the action.
	assert.Nil(t, result.Balance)
	assert.Equal(t, 1, env.sc.Calls("getTokenAccountBalance"))
}

func TestRun_MintTo_InvalidAmount(t *testing.T) {
	env := setup(t)

	_, err := env.orchestrator(&scriptedSubmitter{}, nil).Run(env.ctx, &MintTo{Mint: testutil.NewRandomAccount(t)})
	assert.True(t, errors.Is(err, instruction.ErrInvalidAmount))
	assert.Zero(t, env.sc.TotalCalls())
}

func TestRun_CreateMetadata(t *testing.T) {
	env := setup(t)
	mint := testutil.NewRandomAccount(t)

	result, err := env.orchestrator(env.submissionClient(), nil).Run(env.ctx, &CreateMetadata{
		Mint:   mint,
		Name:   "Forge Token",
		Symbol: "FRG",
		URI:    "https://example.com/token.json",
	})
	require.NoError(t, err)

	expected, err := metadata.GetMetadataAddress(mint.PublicKey().ToBytes())
	require.NoError(t, err)
	assert.EqualValues(t, expected, result.Addresses[AddressMetadata].PublicKey().ToBytes())

	submitted := env.sc.Submitted()
	require.Len(t, submitted, 1)
	decompiled, err := metadata.DecompileCreateMetadataAccountV3(decompileAll(t, submitted[0])[0])
	require.NoError(t, err)
	assert.Equal(t, "Forge Token", decompiled.Data.Name)
	assert.Equal(t, "FRG", decompiled.Data.Symbol)
	assert.EqualValues(t, env.payer.PublicKey().ToBytes(), decompiled.UpdateAuthority)
}

func TestRun_CreateMetadata_FieldTooLong(t *testing.T) {
	env := setup(t)

	_, err := env.orchestrator(&scriptedSubmitter{}, nil).Run(env.ctx, &CreateMetadata{
		Mint: testutil.NewRandomAccount(t),
		Name: strings.Repeat("n", metadata.MaxNameLength+1),
	})
	assert.True(t, errors.Is(err, instruction.ErrFieldTooLong))
	assert.Zero(t, env.sc.TotalCalls())
}

func TestRun_TransferWithMemo(t *testing.T) {
	env := setup(t)
	recipient := testutil.NewRandomAccount(t)

	env.sc.SetAccount(recipient.PublicKey().ToBytes(), solana.AccountInfo{Lamports: 5000})

	result, err := env.orchestrator(env.submissionClient(), nil).Run(env.ctx, &TransferWithMemo{
		Recipient: recipient,
		Lamports:  5000,
		Memo:      "hello",
	})
	require.NoError(t, err)
	require.Len(t, result.Steps, 2)
	assert.Equal(t, "transfer", result.Steps[0].Name)
	assert.Equal(t, "memo", result.Steps[1].Name)

	submitted := env.sc.Submitted()
	require.Len(t, submitted, 2)

	transfer, err := system.DecompileTransfer(decompileAll(t, submitted[0])[0])
	require.NoError(t, err)
	assert.EqualValues(t, recipient.PublicKey().ToBytes(), transfer.To)
	assert.EqualValues(t, 5000, transfer.Lamports)

	memoIx, err := memo.DecompileMemo(decompileAll(t, submitted[1])[0])
	require.NoError(t, err)
	assert.Equal(t, "hello", string(memoIx.Data))
	assert.NotEqual(t, submitted[0].Message.RecentBlockhash, submitted[1].Message.RecentBlockhash)

	require.NotNil(t, result.Lamports)
	assert.EqualValues(t, 5000, *result.Lamports)
	assert.Equal(t, 1, env.sc.Calls("getBalance"))
}

func TestRun_TransferWithoutMemo(t *testing.T) {
	env := setup(t)

	result, err := env.orchestrator(env.submissionClient(), nil).Run(env.ctx, &TransferWithMemo{
		Recipient: testutil.NewRandomAccount(t),
		Lamports:  1,
	})
	require.NoError(t, err)
	assert.Len(t, result.Steps, 1)
	assert.Len(t, env.sc.Submitted(), 1)

	// The recipient has no account yet, which does not fail the action.
	assert.Nil(t, result.Lamports)
}

func TestRun_MemoNotSentWhenTransferFails(t *testing.T) {
	env := setup(t)
	submitter := &scriptedSubmitter{outcomes: []submission.OutcomeKind{submission.OutcomeRejected}}

	result, err := env.orchestrator(submitter, nil).Run(env.ctx, &TransferWithMemo{
		Recipient: testutil.NewRandomAccount(t),
		Lamports:  1,
		Memo:      "never sent",
	})

	var rejected *RejectedError
	require.True(t, errors.As(err, &rejected))
	assert.Equal(t, "transfer", rejected.Step)
	assert.Equal(t, submission.RejectionInsufficientFunds, rejected.Outcome.Rejection)

	assert.Len(t, submitter.submitted(), 1)
	require.Len(t, result.Steps, 1)
	assert.Equal(t, StateFailed, result.Steps[0].State)
}

func TestRun_TransferWithMemo_InvalidMemo(t *testing.T) {
	env := setup(t)

	_, err := env.orchestrator(&scriptedSubmitter{}, nil).Run(env.ctx, &TransferWithMemo{
		Recipient: testutil.NewRandomAccount(t),
		Lamports:  1,
		Memo:      strings.Repeat("m", memo.MaxMemoSize+1),
	})
	assert.True(t, errors.Is(err, instruction.ErrMemoTooLarge))
	assert.Zero(t, env.sc.TotalCalls())
}

func TestRun_ExpiredEnvelopeIsRebuilt(t *testing.T) {
	env := setup(t)
	submitter := &scriptedSubmitter{outcomes: []submission.OutcomeKind{submission.OutcomeExpired}}

	result, err := env.orchestrator(submitter, nil).Run(env.ctx, &TransferWithMemo{
		Recipient: testutil.NewRandomAccount(t),
		Lamports:  1,
	})
	require.NoError(t, err)

	envelopes := submitter.submitted()
	require.Len(t, envelopes, 2)
	assert.NotEqual(t, envelopes[0].Freshness.Blockhash, envelopes[1].Freshness.Blockhash)
	assert.NotEqual(t, envelopes[0].Signature(), envelopes[1].Signature())

	require.Len(t, result.Steps, 1)
	assert.EqualValues(t, 2, result.Steps[0].Attempts)
	assert.Equal(t, StateConfirmed, result.Steps[0].State)
	assert.Equal(t, envelopes[1].Signature(), result.Steps[0].Signature)
	assert.Equal(t, 2, env.sc.Calls("getLatestBlockhash"))
}

func TestRun_ExpiredCreateMintKeepsMintKey(t *testing.T) {
	env := setup(t)
	submitter := &scriptedSubmitter{outcomes: []submission.OutcomeKind{submission.OutcomeExpired}}

	result, err := env.orchestrator(submitter, nil).Run(env.ctx, &CreateMint{Decimals: 2})
	require.NoError(t, err)

	envelopes := submitter.submitted()
	require.Len(t, envelopes, 2)
	for _, envelope := range envelopes {
		assert.True(t, envelope.Transaction.IsFullySigned())
	}

	// Both envelopes create the same mint.
	mint := result.Addresses[AddressMint].PublicKey().ToBytes()
	for _, envelope := range envelopes {
		create, err := system.DecompileCreateAccount(decompileAll(t, envelope.Transaction)[0])
		require.NoError(t, err)
		assert.EqualValues(t, mint, create.Address)
	}
	assert.False(t, result.Addresses[AddressMint].HasPrivateKey())
}

func TestRun_BlockhashAttemptsExhausted(t *testing.T) {
	env := setup(t)
	submitter := &scriptedSubmitter{outcomes: []submission.OutcomeKind{
		submission.OutcomeExpired,
		submission.OutcomeExpired,
		submission.OutcomeExpired,
		submission.OutcomeExpired,
	}}

	result, err := env.orchestrator(submitter, &testOverrides{maxBlockhashAttempts: 3}).Run(env.ctx, &TransferWithMemo{
		Recipient: testutil.NewRandomAccount(t),
		Lamports:  1,
		Memo:      "unreached",
	})
	assert.True(t, errors.Is(err, ErrBlockhashAttemptsExhausted))

	assert.Len(t, submitter.submitted(), 3)
	require.Len(t, result.Steps, 1)
	assert.EqualValues(t, 3, result.Steps[0].Attempts)
	assert.Equal(t, StateFailed, result.Steps[0].State)
	assert.Equal(t, submission.OutcomeExpired, result.Steps[0].Outcome.Kind)
}

func TestRun_ExpiredWithRealSubmission(t *testing.T) {
	env := setup(t)

	var mu sync.Mutex
	var invalid []solana.Blockhash
	env.sc.BlockhashValidFunc = func(hash solana.Blockhash) bool {
		mu.Lock()
		defer mu.Unlock()

		// The first blockhash handed out is already stale.
		if len(invalid) == 0 {
			invalid = append(invalid, hash)
		}
		return hash != invalid[0]
	}

	result, err := env.orchestrator(env.submissionClient(), nil).Run(env.ctx, &TransferWithMemo{
		Recipient: testutil.NewRandomAccount(t),
		Lamports:  1,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, result.Steps[0].Attempts)

	submitted := env.sc.Submitted()
	require.Len(t, submitted, 1)
	assert.NotEqual(t, invalid[0], submitted[0].Message.RecentBlockhash)
}

func TestRun_TimedOut(t *testing.T) {
	env := setup(t)
	submitter := &scriptedSubmitter{outcomes: []submission.OutcomeKind{submission.OutcomeTimedOut}}

	result, err := env.orchestrator(submitter, nil).Run(env.ctx, &TransferWithMemo{
		Recipient: testutil.NewRandomAccount(t),
		Lamports:  1,
	})

	var timedOut *TimedOutError
	require.True(t, errors.As(err, &timedOut))
	assert.Equal(t, result.Steps[0].Signature, timedOut.Signature)
	assert.EqualValues(t, 1, result.Steps[0].Attempts)
	assert.Len(t, submitter.submitted(), 1)
}

func TestRun_DryRun(t *testing.T) {
	env := setup(t)
	submitter := &scriptedSubmitter{}

	result, err := env.orchestrator(submitter, &testOverrides{maxBlockhashAttempts: 3, dryRun: true}).Run(env.ctx, &TransferWithMemo{
		Recipient: testutil.NewRandomAccount(t),
		Lamports:  1,
		Memo:      "dry",
	})
	require.NoError(t, err)
	assert.True(t, result.DryRun)

	assert.Empty(t, submitter.submitted())
	assert.Zero(t, env.sc.Calls("sendTransaction"))

	require.Len(t, result.Steps, 2)
	for _, step := range result.Steps {
		assert.Equal(t, StateSigned, step.State)
		assert.NotEmpty(t, step.Instructions)

		decoded, err := transaction.Decode(step.Envelope)
		require.NoError(t, err)
		assert.True(t, decoded.Transaction.IsFullySigned())
		assert.Equal(t, step.Signature, decoded.Signature())
	}
	assert.True(t, strings.HasPrefix(result.Steps[0].Instructions[0], "system::Transfer"))
}

func TestRun_PayerWithoutPrivateKey(t *testing.T) {
	env := setup(t)

	payer, err := common.NewAccountFromPublicKeyBytes(env.payer.PublicKey().ToBytes())
	require.NoError(t, err)
	env.payer = payer

	_, err = env.orchestrator(&scriptedSubmitter{}, nil).Run(env.ctx, &TransferWithMemo{
		Recipient: testutil.NewRandomAccount(t),
		Lamports:  1,
	})
	assert.True(t, errors.Is(err, transaction.ErrMissingPrivateKey))
	assert.Zero(t, env.sc.TotalCalls())
}

func TestRun_Cancelled(t *testing.T) {
	env := setup(t)
	env.sc.StatusFunc = func(solana.Signature) *solana.SignatureStatus { return nil }

	ctx, cancel := context.WithCancel(env.ctx)
	cancel()

	_, err := env.orchestrator(env.submissionClient(), nil).Run(ctx, &TransferWithMemo{
		Recipient: testutil.NewRandomAccount(t),
		Lamports:  1,
	})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestKind_String(t *testing.T) {
	for kind, expected := range map[Kind]string{
		KindUnknown:                 "unknown",
		KindCreateMint:              "create_mint",
		KindCreateAssociatedAccount: "create_associated_account",
		KindMintTo:                  "mint_to",
		KindCreateMetadata:          "create_metadata",
		KindTransferWithMemo:        "transfer_with_memo",
	} {
		assert.Equal(t, expected, kind.String())
	}


	for action, expected := range map[Action]Kind{
		&CreateMint{}:              KindCreateMint,
		&CreateAssociatedAccount{}: KindCreateAssociatedAccount,
		&MintTo{}:                  KindMintTo,
		&CreateMetadata{}:          KindCreateMetadata,
		&TransferWithMemo{}:        KindTransferWithMemo,
	} {
		assert.Equal(t, expected, action.Kind())
	}
}
