package action

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/tokenforge/tokenforge/pkg/forge/common"
	"github.com/tokenforge/tokenforge/pkg/forge/instruction"
	"github.com/tokenforge/tokenforge/pkg/forge/submission"
	"github.com/tokenforge/tokenforge/pkg/forge/transaction"
	"github.com/tokenforge/tokenforge/pkg/metrics"
	"github.com/tokenforge/tokenforge/pkg/retry"
	"github.com/tokenforge/tokenforge/pkg/solana"
	"github.com/tokenforge/tokenforge/pkg/solana/token"
)

const (
	metricsStructName = "action.orchestrator"

	stepEventName = "ForgeStep"
)

// Submitter sends a signed envelope and reports how it ended.
type Submitter interface {
	Submit(ctx context.Context, envelope *transaction.Envelope, commitment solana.Commitment) (*submission.Outcome, error)
}

// Orchestrator runs actions on behalf of a single payer.
type Orchestrator struct {
	log         *logrus.Entry
	conf        *conf
	sc          solana.Client
	tokenClient *token.Client
	submitter   Submitter
	payer       *common.Account
	reporter    Reporter
}

// NewOrchestrator returns an Orchestrator. A nil reporter reports through
// logrus.
func NewOrchestrator(
	sc solana.Client,
	submitter Submitter,
	payer *common.Account,
	reporter Reporter,
	configProvider ConfigProvider,
) *Orchestrator {
	if reporter == nil {
		reporter = NewLogReporter()
	}

	return &Orchestrator{
		log:         logrus.StandardLogger().WithField("type", "forge/action"),
		conf:        configProvider(),
		sc:          sc,
		tokenClient: token.NewClient(sc),
		submitter:   submitter,
		payer:       payer,
		reporter:    reporter,
	}
}

// Run executes action. Steps run in order and a step only starts once the
// previous one confirmed.
//
// In a dry run every envelope is built and signed but nothing is submitted.
func (o *Orchestrator) Run(ctx context.Context, action Action) (result *Result, err error) {
	ctx, end := metrics.StartTransaction(ctx, "forge__"+action.Kind().String())
	defer end()

	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Run")
	defer func() {
		tracer.End(err)
	}()

	if o.payer == nil || !o.payer.HasPrivateKey() {
		return nil, errors.Wrap(transaction.ErrMissingPrivateKey, "payer")
	}

	commitment, err := solana.ParseCommitment(o.conf.commitment.Get(ctx))
	if err != nil {
		return nil, err
	}

	result = &Result{
		RunID:  uuid.New(),
		Kind:   action.Kind(),
		DryRun: o.conf.dryRun.Get(ctx),
	}

	log := o.log.WithContext(ctx).WithFields(logrus.Fields{
		"method": "Run",
		"run_id": result.RunID.String(),
		"action": result.Kind.String(),
	})

	p, err := action.plan(ctx, &planEnv{payer: o.payer, sc: o.sc})
	if err != nil {
		log.WithError(err).Debug("failed to build action")
		return nil, errors.Wrapf(err, "error building %s", result.Kind)
	}
	defer p.release()

	result.Addresses = p.addresses

	// Every step must be signable before the first one is sent.
	for _, s := range p.steps {
		if _, err := transaction.Assemble(o.payer, solana.RecentBlockhash{}, s.signers, s.instructions...); err != nil {
			return nil, errors.Wrapf(err, "error assembling %s", s.name)
		}
	}

	for _, s := range p.steps {
		stepResult, err := o.runStep(ctx, s, commitment, result.DryRun)
		result.Steps = append(result.Steps, stepResult)
		o.reporter.ReportStep(ctx, result, stepResult)

		if err != nil {
			log.WithError(err).WithField("step", s.name).Info("action stopped")
			return result, err
		}
	}

	if !result.DryRun {
		o.readBack(ctx, p, result, commitment)
	}

	o.reporter.ReportResult(ctx, result)
	return result, nil
}

// runStep drives a step to a terminal state. An envelope whose blockhash
// expired is never resent. Instead a new one is built against a fresh
// blockhash, up to the configured number of attempts.
func (o *Orchestrator) runStep(ctx context.Context, s *step, commitment solana.Commitment, dryRun bool) (*StepResult, error) {
	res := &StepResult{Name: s.name}
	for _, ix := range s.instructions {
		res.Instructions = append(res.Instructions, instruction.Describe(ix))
	}

	log := o.log.WithContext(ctx).WithFields(logrus.Fields{
		"method": "runStep",
		"step":   s.name,
	})

	maxAttempts := o.conf.maxBlockhashAttempts.Get(ctx)
	if maxAttempts == 0 {
		maxAttempts = 1
	}

	attempts, err := retry.Retry(
		func() error {
			return o.attempt(ctx, s, res, commitment, dryRun)
		},
		retry.RetriableErrors(errExpired),
		retry.Limit(uint(maxAttempts)),
		retry.Context(ctx),
		retry.Notify(func(attempts uint, _ error) {
			log.WithField("attempt", attempts).Info("blockhash expired, rebuilding envelope")
		}),
	)
	res.Attempts = attempts

	metrics.RecordEvent(ctx, stepEventName, map[string]interface{}{
		"step":     s.name,
		"state":    res.State.String(),
		"attempts": attempts,
		"dry_run":  dryRun,
	})

	if errors.Is(err, errExpired) {
		if ctx.Err() != nil {
			return res, errors.Wrap(ctx.Err(), "stopped rebuilding envelope")
		}
		return res, errors.Wrapf(ErrBlockhashAttemptsExhausted, "%s after %d attempts", s.name, attempts)
	}
	return res, err
}

// attempt builds, signs and submits a single envelope for s.
func (o *Orchestrator) attempt(ctx context.Context, s *step, res *StepResult, commitment solana.Commitment, dryRun bool) (err error) {
	machine := NewStateMachine()
	defer func() {
		if err != nil && !machine.State().IsTerminal() {
			_ = machine.Transition(StateFailed)
		}
		res.State = machine.State()
	}()

	res.Signature = solana.Signature{}
	res.Outcome = nil

	freshness, err := o.sc.GetLatestBlockhash(commitment)
	if err != nil {
		return errors.Wrap(err, "error getting latest blockhash")
	}

	envelope, err := transaction.Assemble(o.payer, freshness, s.signers, s.instructions...)
	if err != nil {
		return errors.Wrapf(err, "error assembling %s", s.name)
	}
	if err := machine.Transition(StateSigned); err != nil {
		return err
	}
	res.Signature = envelope.Signature()

	if dryRun {
		res.Envelope = envelope.Encode()
		return nil
	}

	if err := machine.Transition(StateSubmitted); err != nil {
		return err
	}

	outcome, err := o.submitter.Submit(ctx, envelope, commitment)
	if err != nil {
		return errors.Wrapf(err, "error submitting %s", s.name)
	}
	res.Outcome = outcome

	switch outcome.Kind {
	case submission.OutcomeConfirmed:
		return machine.Transition(StateConfirmed)
	case submission.OutcomeExpired:
		return errExpired
	case submission.OutcomeRejected:
		return &RejectedError{Step: s.name, Outcome: outcome}
	case submission.OutcomeTimedOut:
		return &TimedOutError{Step: s.name, Signature: outcome.Signature}
	default:
		return errors.Errorf("unexpected outcome for %s: %s", s.name, outcome.Kind)
	}
}

// readBack fills in on-chain state after a successful run. Failures are
// logged and leave the corresponding fields unset.
func (o *Orchestrator) readBack(ctx context.Context, p *plan, result *Result, commitment solana.Commitment) {
	log := o.log.WithContext(ctx).WithFields(logrus.Fields{
		"method": "readBack",
		"run_id": result.RunID.String(),
	})

	if p.verifyMint != nil {
		mint, err := o.tokenClient.GetMint(p.verifyMint.PublicKey().ToBytes(), commitment)
		if err != nil {
			log.WithError(err).Warn("failure reading back mint")
		} else {
			result.Mint = mint
		}
	}

	if p.balanceOf != nil {
		amount, _, err := o.sc.GetTokenAccountBalance(p.balanceOf.PublicKey().ToBytes(), commitment)
		if err != nil {
			log.WithError(err).Warn("failure reading back token balance")
		} else {
			result.Balance = &amount
		}
	}

	if p.lamportsOf != nil {
		lamports, err := o.sc.GetBalance(p.lamportsOf.PublicKey().ToBytes())
		if err != nil {
			log.WithError(err).Warn("failure reading back lamport balance")
		} else {
			result.Lamports = &lamports
		}
	}
}
