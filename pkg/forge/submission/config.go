package submission

import (
	"time"

	"github.com/tokenforge/tokenforge/pkg/config"
	"github.com/tokenforge/tokenforge/pkg/config/env"
	"github.com/tokenforge/tokenforge/pkg/config/memory"
	"github.com/tokenforge/tokenforge/pkg/config/wrapper"
	"github.com/tokenforge/tokenforge/pkg/solana"
)

const (
	ConfirmTimeoutConfigName = "CONFIRM_TIMEOUT"
	defaultConfirmTimeout    = 90 * time.Second

	PollIntervalConfigName = "POLL_INTERVAL"
	defaultPollInterval    = solana.PollRate

	SkipPreflightConfigName = "SKIP_PREFLIGHT"
	defaultSkipPreflight    = false
)

type conf struct {
	confirmTimeout config.Duration
	pollInterval   config.Duration
	skipPreflight  config.Bool
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
			confirmTimeout: wrapper.NewDurationConfig(source(ConfirmTimeoutConfigName), defaultConfirmTimeout),
			pollInterval:   wrapper.NewDurationConfig(source(PollIntervalConfigName), defaultPollInterval),
			skipPreflight:  wrapper.NewBoolConfig(source(SkipPreflightConfigName), defaultSkipPreflight),
		}
	}
}

type testOverrides struct {
	confirmTimeout time.Duration
	pollInterval   time.Duration
}

func withManualTestOverrides(overrides *testOverrides) ConfigProvider {
	return func() *conf {
		return &conf{
			confirmTimeout: wrapper.NewDurationConfig(memory.NewConfig(overrides.confirmTimeout), defaultConfirmTimeout),
			pollInterval:   wrapper.NewDurationConfig(memory.NewConfig(overrides.pollInterval), defaultPollInterval),
			skipPreflight:  wrapper.NewBoolConfig(memory.NewConfig(false), defaultSkipPreflight),
		}
	}
}
