// Package env sources config values from environment variables.
package env

import (
	"context"
	"os"
	"strings"

	"github.com/tokenforge/tokenforge/pkg/config"
	"github.com/tokenforge/tokenforge/pkg/config/wrapper"
)

type conf struct {
	key string
}

// NewConfig returns a config backed by the upper cased key. The variable is
// read on every Get, so values set after construction are observed.
func NewConfig(key string) config.Config {
	return &conf{key: strings.ToUpper(key)}
}

// Get implements Config.Get
func (c *conf) Get(_ context.Context) (interface{}, error) {
	val := os.Getenv(c.key)
	if len(val) == 0 {
		return nil, config.ErrNoValue
	}

	return []byte(val), nil
}

// Shutdown implements Config.Shutdown
func (c *conf) Shutdown() {
}

// NewStringConfig creates a env-based string config
func NewStringConfig(key string, defaultValue string) config.String {
	return wrapper.NewStringConfig(NewConfig(key), defaultValue)
}
