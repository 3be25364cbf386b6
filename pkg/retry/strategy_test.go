package retry

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/tokenforge/tokenforge/pkg/retry/backoff"
)

func TestLimit(t *testing.T) {
	var calls int
	attempts, err := Retry(func() error {
		calls++
		return errors.New("rpc unavailable")
	}, Limit(3))

	assert.EqualError(t, err, "rpc unavailable")
	assert.EqualValues(t, 3, attempts)
	assert.Equal(t, 3, calls)

	assert.False(t, Limit(1)(1, err))
}

func TestErrorFilters(t *testing.T) {
	errExpired := errors.New("expired")
	errThrottled := errors.New("throttled")
	errRejected := errors.New("rejected")

	retriable := RetriableErrors(errExpired, errThrottled)

	for _, tc := range []struct {
		err       error
		retriable bool
	}{
		{err: errExpired, retriable: true},
		{err: errors.Wrap(errThrottled, "getLatestBlockhash"), retriable: true},
		{err: errRejected},
		{err: errors.Wrap(errRejected, "sendTransaction")},
		{err: errors.New("other")},
	} {
		assert.Equal(t, tc.retriable, retriable(1, tc.err), tc.err.Error())
	}
}

func TestBackoff(t *testing.T) {
	ts := &testSleeper{}
	sleeperImpl = ts

	strategy := Backoff(backoff.BinaryExponential(400*time.Millisecond), time.Second)
	for attempts := uint(1); attempts <= 4; attempts++ {
		assert.True(t, strategy(attempts, errors.New("err")))
	}

	assert.Equal(t, []time.Duration{
		400 * time.Millisecond,
		800 * time.Millisecond,
		time.Second,
		time.Second,
	}, ts.sleepTimes)
}

func TestBackoffWithJitter(t *testing.T) {
	ts := &testSleeper{}
	sleeperImpl = ts

	delay := 100 * time.Millisecond
	strategy := BackoffWithJitter(backoff.Constant(time.Minute), delay, 0.2)
	for i := 0; i < 1000; i++ {
		assert.True(t, strategy(1, errors.New("err")))
	}

	var total time.Duration
	for _, d := range ts.sleepTimes {
		assert.GreaterOrEqual(t, d, 80*time.Millisecond)
		assert.LessOrEqual(t, d, 120*time.Millisecond)
		total += d
	}

	mean := total / time.Duration(len(ts.sleepTimes))
	assert.InDelta(t, float64(delay), float64(mean), float64(5*time.Millisecond))
}

func TestContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	strategy := Context(ctx)

	assert.True(t, strategy(1, errors.New("test")))
	cancel()
	assert.False(t, strategy(2, errors.New("test")))

	ctx, cancel = context.WithCancel(context.Background())
	attempts, err := Retry(func() error {
		cancel()
		return errors.New("test")
	}, Context(ctx), Limit(10))
	assert.EqualError(t, err, "test")
	assert.EqualValues(t, 1, attempts)
}

func TestNotify(t *testing.T) {
	var notified []uint
	attempts, err := Retry(
		func() error { return errors.New("test") },
		Limit(3),
		Notify(func(attempts uint, err error) {
			assert.EqualError(t, err, "test")
			notified = append(notified, attempts)
		}),
	)
	assert.Error(t, err)
	assert.EqualValues(t, 3, attempts)

	// The final attempt is rejected by Limit before Notify runs.
	assert.Equal(t, []uint{1, 2}, notified)
}

func TestWait(t *testing.T) {
	ts := &testSleeper{}
	sleeperImpl = ts

	ctx, cancel := context.WithCancel(context.Background())
	strategy := Wait(ctx, backoff.BinaryExponential(time.Second), 2*time.Second)

	assert.True(t, strategy(1, errors.New("test")))
	assert.True(t, strategy(3, errors.New("test")))
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, ts.sleepTimes)

	cancel()
	assert.False(t, strategy(1, errors.New("test")))
}

type testSleeper struct {
	sleepTimes []time.Duration
}

func (t *testSleeper) Sleep(d time.Duration) {
	t.sleepTimes = append(t.sleepTimes, d)
}

func (t *testSleeper) SleepContext(ctx context.Context, d time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	t.sleepTimes = append(t.sleepTimes, d)
	return true
}
