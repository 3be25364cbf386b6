package action

import (
	"github.com/tokenforge/tokenforge/pkg/config"
	"github.com/tokenforge/tokenforge/pkg/config/env"
	"github.com/tokenforge/tokenforge/pkg/config/memory"
	"github.com/tokenforge/tokenforge/pkg/config/wrapper"
)

const (
	CommitmentConfigName = "COMMITMENT"
	defaultCommitment    = "confirmed"

	MaxBlockhashAttemptsConfigName = "MAX_BLOCKHASH_ATTEMPTS"
	defaultMaxBlockhashAttempts    = 3

	DryRunConfigName = "DRY_RUN"
	defaultDryRun    = false
)

type conf struct {
	commitment           config.String
	maxBlockhashAttempts config.Uint64
	dryRun               config.Bool
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return WithSource(env.NewConfig)
}

// WithSource returns configuration pulled from source
func WithSource(source config.Source) ConfigProvider {
	return func() *conf {
		return &conf{
			commitment:           wrapper.NewStringConfig(source(CommitmentConfigName), defaultCommitment),
			maxBlockhashAttempts: wrapper.NewUint64Config(source(MaxBlockhashAttemptsConfigName), defaultMaxBlockhashAttempts),
			dryRun:               wrapper.NewBoolConfig(source(DryRunConfigName), defaultDryRun),
		}
	}
}

type testOverrides struct {
	maxBlockhashAttempts uint64
	dryRun               bool
}

func withManualTestOverrides(overrides *testOverrides) ConfigProvider {
	return func() *conf {
		return &conf{
			commitment:           wrapper.NewStringConfig(memory.NewConfig(defaultCommitment), defaultCommitment),
			maxBlockhashAttempts: wrapper.NewUint64Config(memory.NewConfig(overrides.maxBlockhashAttempts), defaultMaxBlockhashAttempts),
			dryRun:               wrapper.NewBoolConfig(memory.NewConfig(overrides.dryRun), defaultDryRun),
		}
	}
}
