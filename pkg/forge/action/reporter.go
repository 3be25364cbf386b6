package action

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/tokenforge/tokenforge/pkg/solana"
)

// Reporter receives progress as an action runs.
type Reporter interface {
	ReportStep(ctx context.Context, result *Result, step *StepResult)
	ReportResult(ctx context.Context, result *Result)
}

// LogReporter reports through logrus.
type LogReporter struct {
	log *logrus.Entry
}

func NewLogReporter() *LogReporter {
	return &LogReporter{
		log: logrus.StandardLogger().WithField("type", "forge/action"),
	}
}

func (r *LogReporter) ReportStep(ctx context.Context, result *Result, step *StepResult) {
	log := r.log.WithContext(ctx).WithFields(logrus.Fields{
		"run_id":   result.RunID.String(),
		"action":   result.Kind.String(),
		"step":     step.Name,
		"state":    step.State.String(),
		"attempts": step.Attempts,
	})
	if step.Signature != (solana.Signature{}) {
		log = log.WithField("signature", step.Signature.String())
	}

	if result.DryRun {
		for _, line := range step.Instructions {
			log.WithField("instruction", line).Info("planned instruction")
		}
		log.WithField("envelope", step.Envelope).Info("signed envelope (not submitted)")
		return
	}

	if step.Outcome != nil {
		log = log.WithField("outcome", step.Outcome.Kind.String())
		if step.Outcome.Reason != nil {
			log = log.WithFields(logrus.Fields{
				"rejection": step.Outcome.Rejection.String(),
				"reason":    step.Outcome.Reason.Error(),
			})
		}
	}

	if step.State == StateConfirmed {
		log.Info("step confirmed")
	} else {
		log.Warn("step failed")
	}
}

func (r *LogReporter) ReportResult(ctx context.Context, result *Result) {
	log := r.log.WithContext(ctx).WithFields(logrus.Fields{
		"run_id":  result.RunID.String(),
		"action":  result.Kind.String(),
		"dry_run": result.DryRun,
	})

	names := make([]string, 0, len(result.Addresses))
	for name := range result.Addresses {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		log = log.WithField(name, result.Addresses[name].PublicKey().ToBase58())
	}

	if result.Mint != nil {
		log = log.WithFields(logrus.Fields{
			"decimals": result.Mint.Decimals,
			"supply":   result.Mint.Supply,
		})
	}
	if result.Balance != nil {
		log = log.WithField("balance", *result.Balance)
	}
	if result.Lamports != nil {
		log = log.WithField("lamports", *result.Lamports)
	}

	log.Info("action complete")
}
