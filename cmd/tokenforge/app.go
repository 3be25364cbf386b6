package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/tokenforge/tokenforge/pkg/config/env"
	viperconfig "github.com/tokenforge/tokenforge/pkg/config/viper"
	"github.com/tokenforge/tokenforge/pkg/forge/action"
	"github.com/tokenforge/tokenforge/pkg/forge/common"
	"github.com/tokenforge/tokenforge/pkg/forge/submission"
	"github.com/tokenforge/tokenforge/pkg/metrics"
	"github.com/tokenforge/tokenforge/pkg/rate"
	"github.com/tokenforge/tokenforge/pkg/solana"
)

const metricsShutdownTimeout = 5 * time.Second

// app carries what every command needs to run an action.
type app struct {
	v          *viper.Viper
	configPath string

	newSolanaClient func(endpoint string, limiter rate.Limiter) solana.Client
	reporter        action.Reporter

	out    io.Writer
	logOut io.Writer
}

func newApp() *app {
	v := viper.New()
	bindEnv(v)

	return &app{
		v:               v,
		newSolanaClient: solana.NewWithLimiter,
		out:             os.Stdout,
		logOut:          os.Stderr,
	}
}

// execute runs act against the configured cluster and prints the result.
func (a *app) execute(ctx context.Context, act action.Action) error {
	config, err := loadConfig(a.v, a.configPath)
	if err != nil {
		return err
	}

	nr, err := newMetricsProvider(config)
	if err != nil {
		return err
	}
	if nr != nil {
		defer nr.Shutdown(metricsShutdownTimeout)
		ctx = metrics.NewContext(ctx, nr)
	}

	a.configureLogger(config, nr)
	log := logrus.StandardLogger().WithFields(logrus.Fields{
		"type":   "cmd/tokenforge",
		"action": act.Kind().String(),
	})

	payer, err := loadPayer(ctx)
	if err != nil {
		return err
	}
	defer payer.Wipe()

	endpoint, err := solana.ResolveEndpoint(config.RPCEndpoint)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"endpoint": endpoint,
		"payer":    payer.PublicKey().ToBase58(),
	}).Debug("running action")

	sc := a.newSolanaClient(endpoint, rate.NewLocalRateLimiter(config.RPCRateLimit))
	source := viperconfig.Source(a.v)

	orchestrator := action.NewOrchestrator(
		sc,
		submission.NewClient(sc, submission.WithSource(source)),
		payer,
		a.reporter,
		action.WithSource(source),
	)

	result, err := orchestrator.Run(ctx, act)
	if result != nil {
		printResult(a.out, result)
	}
	if err != nil {
		log.WithError(err).Error("action failed")
		return err
	}
	return nil
}

func newMetricsProvider(config baseConfig) (*newrelic.Application, error) {
	if len(config.NewRelicLicenseKey) == 0 {
		return nil, nil
	}

	nr, err := newrelic.NewApplication(
		newrelic.ConfigFromEnvironment(),
		newrelic.ConfigAppName(config.AppName),
		newrelic.ConfigLicense(config.NewRelicLicenseKey),
		newrelic.ConfigDistributedTracerEnabled(true),
		newrelic.ConfigAppLogForwardingEnabled(true),
	)
	if err != nil {
		return nil, errors.Wrap(err, "error connecting to new relic")
	}
	return nr, nil
}

func (a *app) configureLogger(config baseConfig, nr *newrelic.Application) {
	var formatter logrus.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	if config.LogJSON {
		formatter = &logrus.JSONFormatter{}
	}

	if nr != nil {
		logrus.SetFormatter(metrics.NewLogFormatter(nr, formatter))
	} else {
		logrus.SetFormatter(formatter)
	}

	level, err := logrus.ParseLevel(strings.ToLower(config.LogLevel))
	if err != nil {
		logrus.StandardLogger().WithField("log_level", config.LogLevel).Warn("unknown log level, ignoring")
	} else {
		logrus.SetLevel(level)
	}

	logrus.SetOutput(a.logOut)
}

// loadPayer decodes the signing key from SECRET_KEY.
func loadPayer(ctx context.Context) (*common.Account, error) {
	secret := env.NewStringConfig(secretKeyConfigName, "").Get(ctx)
	if len(secret) == 0 {
		return nil, errors.Errorf("%s is not set", secretKeyConfigName)
	}

	passphrase := env.NewStringConfig(secretPassphraseConfigName, "").Get(ctx)

	payer, err := common.NewAccountFromSecret(secret, passphrase)
	if err != nil {
		return nil, errors.Wrapf(err, "error decoding %s", secretKeyConfigName)
	}
	return payer, nil
}

func printResult(w io.Writer, result *action.Result) {
	fmt.Fprintf(w, "action: %s\n", result.Kind)
	fmt.Fprintf(w, "run: %s\n", result.RunID)

	names := make([]string, 0, len(result.Addresses))
	for name := range result.Addresses {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "%s: %s\n", name, result.Addresses[name].PublicKey().ToBase58())
	}

	for _, step := range result.Steps {
		fmt.Fprintf(w, "step %s: %s after %d attempt(s)\n", step.Name, step.State, step.Attempts)
		if step.Signature != (solana.Signature{}) {
			fmt.Fprintf(w, "  signature: %s\n", step.Signature)
		}
		if step.Outcome != nil && step.Outcome.Kind != submission.OutcomeConfirmed {
			fmt.Fprintf(w, "  outcome: %s\n", step.Outcome)
		}
		if result.DryRun {
			for _, line := range step.Instructions {
				fmt.Fprintf(w, "  %s\n", line)
			}
			fmt.Fprintf(w, "  envelope: %s\n", step.Envelope)
		}
	}

	if result.Mint != nil {
		fmt.Fprintf(w, "decimals: %d\n", result.Mint.Decimals)
		fmt.Fprintf(w, "supply: %d\n", result.Mint.Supply)
	}
	if result.Balance != nil {
		fmt.Fprintf(w, "balance: %d\n", *result.Balance)
	}
	if result.Lamports != nil {
		fmt.Fprintf(w, "lamports: %d\n", *result.Lamports)
	}
}
