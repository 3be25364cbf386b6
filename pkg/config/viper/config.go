// Package viper sources config values from a viper instance, which layers
// flags, environment variables and the config file.
package viper

import (
	"context"
	"strings"

	spfviper "github.com/spf13/viper"

	"github.com/tokenforge/tokenforge/pkg/config"
)

type conf struct {
	v   *spfviper.Viper
	key string
}

// NewConfig returns a config for key. Keys are case insensitive, so env var
// style names resolve to their lower cased viper keys.
func NewConfig(v *spfviper.Viper, key string) config.Config {
	return &conf{v: v, key: strings.ToLower(key)}
}

// Source returns a config.Source over v.
func Source(v *spfviper.Viper) config.Source {
	return func(key string) config.Config {
		return NewConfig(v, key)
	}
}

// Get implements Config.Get. Values are returned as raw bytes, the same way
// environment values are, so the typed wrappers parse both identically.
func (c *conf) Get(_ context.Context) (interface{}, error) {
	if !c.v.IsSet(c.key) {
		return nil, config.ErrNoValue
	}

	val := c.v.GetString(c.key)
	if len(val) == 0 {
		return nil, config.ErrNoValue
	}
	return []byte(val), nil
}

// Shutdown implements Config.Shutdown
func (c *conf) Shutdown() {
}
