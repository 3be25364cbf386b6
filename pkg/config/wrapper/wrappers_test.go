package wrapper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenforge/tokenforge/pkg/config"
	"github.com/tokenforge/tokenforge/pkg/config/memory"
)

// testWrapper walks a wrapper through defaults, overrides, errors and
// conversions. raw is an environment style encoding of overridden.
func testWrapper[T any](t *testing.T, newWrapper func(config.Config, T) config.Value[T], defaultValue, overridden T, raw string, unsupported interface{}) {
	ctx := context.Background()
	mock := memory.NewConfig(nil)
	wrapper := newWrapper(mock, defaultValue)

	// Return the default value when no override is set
	val, err := wrapper.GetSafe(ctx)
	require.NoError(t, err)
	assert.Equal(t, defaultValue, val)
	assert.Equal(t, defaultValue, wrapper.Get(ctx))

	// The overridden value is returned when set
	mock.SetValue(overridden)
	val, err = wrapper.GetSafe(ctx)
	require.NoError(t, err)
	assert.Equal(t, overridden, val)
	assert.Equal(t, overridden, wrapper.Get(ctx))

	// The last observed config value is returned on error
	mock.InduceErrors()
	val, err = wrapper.GetSafe(ctx)
	require.Error(t, err)
	assert.Equal(t, overridden, val)
	assert.Equal(t, overridden, wrapper.Get(ctx))

	// The default value is returned when the override no longer has a value
	mock.StopInducingErrors()
	mock.ClearValue()
	val, err = wrapper.GetSafe(ctx)
	require.NoError(t, err)
	assert.Equal(t, defaultValue, val)

	// Environment values arrive as raw bytes
	mock.SetValue([]byte(raw))
	val, err = wrapper.GetSafe(ctx)
	require.NoError(t, err)
	assert.Equal(t, overridden, val)

	// Unsupported source types keep the last value
	mock.SetValue(unsupported)
	val, err = wrapper.GetSafe(ctx)
	assert.Equal(t, ErrUnsuportedConversion, err)
	assert.Equal(t, overridden, val)

	mock.Shutdown()
	_, err = wrapper.GetSafe(ctx)
	assert.Equal(t, config.ErrShutdown, err)
}

func TestStringConfig(t *testing.T) {
	testWrapper(t, NewStringConfig, "default", "override", "override", 12)
}

func TestBoolConfig(t *testing.T) {
	testWrapper(t, NewBoolConfig, true, false, "false", "false")
}

func TestUint64Config(t *testing.T) {
	testWrapper(t, NewUint64Config, uint64(3), uint64(5), "5", "5")

	mock := memory.NewConfig(-1)
	_, err := NewUint64Config(mock, 3).GetSafe(context.Background())
	assert.Error(t, err)

	mock.SetValue(7)
	assert.EqualValues(t, 7, NewUint64Config(mock, 3).Get(context.Background()))
}

func TestDurationConfig(t *testing.T) {
	testWrapper(t, NewDurationConfig, 90*time.Second, 30*time.Second, "30s", int64(30))
}

func TestParseErrors(t *testing.T) {
	ctx := context.Background()

	mock := memory.NewConfig([]byte("not a duration"))
	val, err := NewDurationConfig(mock, time.Minute).GetSafe(ctx)
	assert.Error(t, err)
	assert.Equal(t, time.Minute, val)

	mock.SetValue([]byte("maybe"))
	flag, err := NewBoolConfig(mock, true).GetSafe(ctx)
	assert.Error(t, err)
	assert.True(t, flag)
}
