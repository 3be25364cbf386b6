// Package submission sends signed envelopes to the cluster and tracks them
// to a final outcome.
package submission

import (
	"context"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/tokenforge/tokenforge/pkg/forge/transaction"
	"github.com/tokenforge/tokenforge/pkg/metrics"
	"github.com/tokenforge/tokenforge/pkg/retry"
	"github.com/tokenforge/tokenforge/pkg/retry/backoff"
	"github.com/tokenforge/tokenforge/pkg/solana"
)

const (
	metricsStructName = "submission.client"

	confirmationLatencyMetricName = "Submission_ConfirmationLatency"
	outcomeEventName              = "SubmissionOutcome"
)

var (
	ErrNotFullySigned = errors.New("envelope is not fully signed")

	errPending = errors.New("transaction pending")
)

// Client submits envelopes and waits for their outcome. It never resubmits
// an envelope; retrying stale envelopes is left to the caller.
type Client struct {
	log  *logrus.Entry
	conf *conf
	sc   solana.Client
}

func NewClient(sc solana.Client, configProvider ConfigProvider) *Client {
	return &Client{
		log:  logrus.StandardLogger().WithField("type", "forge/submission"),
		conf: configProvider(),
		sc:   sc,
	}
}

// Submit sends envelope and waits until it reaches commitment, fails, expires
// or the confirm timeout elapses.
//
// Errors are returned for transport failures and cancellation. Every
// determined result is reported through the Outcome.
func (c *Client) Submit(ctx context.Context, envelope *transaction.Envelope, commitment solana.Commitment) (outcome *Outcome, err error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Submit")
	defer func() {
		if outcome != nil {
			tracer.AddAttribute("outcome", outcome.Kind.String())
		}
		tracer.End(err)
	}()

	txn := envelope.Transaction
	if !txn.IsFullySigned() {
		return nil, ErrNotFullySigned
	}

	sig := envelope.Signature()
	log := c.log.WithFields(logrus.Fields{
		"method":    "Submit",
		"signature": sig.String(),
		"fee_payer": base58.Encode(txn.FeePayer()),
	})

	expired, err := c.isExpired(envelope.Freshness, commitment)
	if err != nil {
		return nil, err
	}
	if expired {
		log.Debug("blockhash expired before submission")
		return c.finish(ctx, &Outcome{Kind: OutcomeExpired, Signature: sig}, time.Time{}), nil
	}

	_, err = c.sc.SubmitTransaction(txn, solana.SubmitOptions{
		SkipPreflight:       c.conf.skipPreflight.Get(ctx),
		PreflightCommitment: commitment,
	})
	if txErr, ok := errors.Cause(err).(*solana.TransactionError); ok {
		if txErr.IsBlockhashNotFound() {
			log.Debug("blockhash not found during preflight")
			return c.finish(ctx, &Outcome{Kind: OutcomeExpired, Signature: sig}, time.Time{}), nil
		}

		log.WithField("error_key", txErr.ErrorKey()).Debug("transaction rejected during preflight")
		return c.finish(ctx, rejected(txn, sig, 0, txErr), time.Time{}), nil
	} else if err != nil {
		return nil, errors.Wrap(err, "error submitting transaction")
	}

	sentAt := time.Now()
	log.Debug("transaction submitted")

	outcome, err = c.awaitOutcome(ctx, envelope, commitment)
	if err != nil {
		return nil, err
	}
	return c.finish(ctx, outcome, sentAt), nil
}

func (c *Client) awaitOutcome(ctx context.Context, envelope *transaction.Envelope, commitment solana.Commitment) (*Outcome, error) {
	pollCtx, cancel := context.WithTimeout(ctx, c.conf.confirmTimeout.Get(ctx))
	defer cancel()

	pollInterval := c.conf.pollInterval.Get(ctx)

	var outcome *Outcome
	_, err := retry.Retry(
		func() error {
			var err error
			outcome, err = c.checkStatus(envelope, commitment)
			if err != nil {
				c.log.WithError(err).Warn("failure checking transaction status")
				return err
			}
			if outcome == nil {
				return errPending
			}
			return nil
		},
		retry.Wait(pollCtx, backoff.Constant(pollInterval), pollInterval),
	)
	if err == nil {
		return outcome, nil
	}

	if ctx.Err() != nil {
		return nil, errors.Wrap(ctx.Err(), "stopped waiting for transaction")
	}

	// The confirm timeout elapsed. Check one last time before giving up so a
	// transaction that landed late is not reported as unknown.
	outcome, err = c.checkStatus(envelope, commitment)
	if err != nil {
		c.log.WithError(err).Warn("failure checking transaction status after timeout")
	}
	if outcome != nil {
		return outcome, nil
	}
	return &Outcome{Kind: OutcomeTimedOut, Signature: envelope.Signature()}, nil
}

// checkStatus returns the final outcome of the envelope, or nil if it is
// still pending.
func (c *Client) checkStatus(envelope *transaction.Envelope, commitment solana.Commitment) (*Outcome, error) {
	sig := envelope.Signature()

	statuses, err := c.sc.GetSignatureStatuses([]solana.Signature{sig})
	if err != nil {
		return nil, err
	}

	if len(statuses) > 0 && statuses[0] != nil {
		status := statuses[0]
		if status.ErrorResult != nil {
			return rejected(envelope.Transaction, sig, status.Slot, status.ErrorResult), nil
		}
		if status.Reached(commitment) {
			return &Outcome{Kind: OutcomeConfirmed, Signature: sig, Slot: status.Slot}, nil
		}
		return nil, nil
	}

	expired, err := c.isExpired(envelope.Freshness, commitment)
	if err != nil {
		return nil, err
	}
	if expired {
		return &Outcome{Kind: OutcomeExpired, Signature: sig}, nil
	}
	return nil, nil
}

func (c *Client) isExpired(freshness solana.RecentBlockhash, commitment solana.Commitment) (bool, error) {
	height, err := c.sc.GetBlockHeight(commitment)
	if err != nil {
		return false, errors.Wrap(err, "error getting block height")
	}
	if height > freshness.LastValidBlockHeight {
		return true, nil
	}

	valid, err := c.sc.IsBlockhashValid(freshness.Blockhash, commitment)
	if err != nil {
		return false, errors.Wrap(err, "error checking blockhash validity")
	}
	return !valid, nil
}

func (c *Client) finish(ctx context.Context, outcome *Outcome, sentAt time.Time) *Outcome {
	if !sentAt.IsZero() && outcome.Kind == OutcomeConfirmed {
		metrics.RecordDuration(ctx, confirmationLatencyMetricName, time.Since(sentAt))
	}

	metrics.RecordEvent(ctx, outcomeEventName, map[string]interface{}{
		"signature": outcome.Signature.String(),
		"outcome":   outcome.Kind.String(),
		"rejection": outcome.Rejection.String(),
	})

	c.log.WithFields(logrus.Fields{
		"signature": outcome.Signature.String(),
		"outcome":   outcome.Kind.String(),
		"slot":      outcome.Slot,
	}).Debug("submission finished")

	return outcome
}
