package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/tokenforge/tokenforge/pkg/forge/action"
	"github.com/tokenforge/tokenforge/pkg/forge/submission"
)

const (
	secretKeyConfigName        = "SECRET_KEY"
	secretPassphraseConfigName = "SECRET_KEY_PASSPHRASE"
)

// baseConfig holds the process level settings. Settings owned by a package
// are read through that package's ConfigProvider instead.
type baseConfig struct {
	LogLevel string `mapstructure:"log_level"`
	LogJSON  bool   `mapstructure:"log_json"`

	AppName string `mapstructure:"app_name"`

	// RPCEndpoint is a cluster name (devnet, testnet, mainnet) or a URL.
	RPCEndpoint string `mapstructure:"rpc_endpoint"`
	// RPCRateLimit caps requests per second for each RPC method. Zero means
	// no limit.
	RPCRateLimit float64 `mapstructure:"rpc_rate_limit"`

	NewRelicLicenseKey string `mapstructure:"new_relic_license_key"`
}

var defaultConfig = baseConfig{
	LogLevel:    "info",
	AppName:     "tokenforge",
	RPCEndpoint: "devnet",
}

func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("log_level", "LOG_LEVEL")
	_ = v.BindEnv("log_json", "LOG_JSON")

	_ = v.BindEnv("app_name", "APP_NAME")

	_ = v.BindEnv("rpc_endpoint", "RPC_ENDPOINT")
	_ = v.BindEnv("rpc_rate_limit", "RPC_RATE_LIMIT")

	_ = v.BindEnv("new_relic_license_key", "NEW_RELIC_LICENSE_KEY")

	for _, name := range []string{
		action.CommitmentConfigName,
		action.MaxBlockhashAttemptsConfigName,
		action.DryRunConfigName,
		submission.ConfirmTimeoutConfigName,
		submission.PollIntervalConfigName,
		submission.SkipPreflightConfigName,
	} {
		_ = v.BindEnv(name, name)
	}
}

// loadConfig reads the optional config file at path and unmarshals the
// layered settings over the defaults.
func loadConfig(v *viper.Viper, path string) (baseConfig, error) {
	// viper only reports ConfigFileNotFoundError when it searched for a file
	// itself, so a missing explicit file is detected here.
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
	} else if !os.IsNotExist(err) {
		return baseConfig{}, errors.Wrap(err, "failed to check if config exists")
	}

	err := v.ReadInConfig()
	_, isConfigNotFound := err.(viper.ConfigFileNotFoundError)
	if err != nil && !isConfigNotFound {
		return baseConfig{}, errors.Wrap(err, "failed to load config")
	}

	config := defaultConfig
	if err := v.Unmarshal(&config); err != nil {
		return baseConfig{}, errors.Wrap(err, "failed to unmarshal config")
	}
	return config, nil
}
