package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	errs "followrank/pkg/errors"
	"followrank/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExponentialBackoff(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:  100 * time.Millisecond,
		MaxDelay:   1 * time.Second,
		Multiplier: 2.0,
	}

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 0},
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{4, 800 * time.Millisecond},
		{5, 1 * time.Second},
		{6, 1 * time.Second},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, backoff.NextDelay(tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestExponentialBackoffWithJitter(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:    100 * time.Millisecond,
		MaxDelay:     1 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.3,
	}

	for i := 0; i < 20; i++ {
		delay := backoff.NextDelay(2)
		assert.GreaterOrEqual(t, delay, 140*time.Millisecond)
		assert.LessOrEqual(t, delay, 260*time.Millisecond)
	}
}

func TestConstantBackoff(t *testing.T) {
	backoff := &ConstantBackoff{Delay: time.Second}
	assert.Zero(t, backoff.NextDelay(0))
	assert.Equal(t, time.Second, backoff.NextDelay(7))
}

// recordingSleep collects delays without blocking
type recordingSleep struct {
	delays []time.Duration
}

func (r *recordingSleep) sleep(ctx context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return ctx.Err()
}

func testConfig(rec *recordingSleep) *Config {
	return &Config{
		MaxAttempts: 3,
		Backoff:     &ConstantBackoff{Delay: time.Second},
		Context:     context.Background(),
		Sleep:       rec.sleep,
		Logger:      logger.NewNopLogger(),
	}
}

func TestDoRetriesTransientErrors(t *testing.T) {
	rec := &recordingSleep{}
	calls := 0

	err := Do(func() error {
		calls++
		if calls < 3 {
			return errs.New(errs.KindOther, 503, "unavailable")
		}
		return nil
	}, testConfig(rec))

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{time.Second, time.Second}, rec.delays)
}

func TestDoStopsOnNonRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"access denied", errs.New(errs.KindAccessDenied, 401, "protected")},
		{"not found", errs.New(errs.KindNotFound, 404, "gone")},
		{"rate limited", errs.New(errs.KindOther, 429, "too many requests")},
		{"unclassified", errors.New("decode failure")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recordingSleep{}
			calls := 0
			err := Do(func() error {
				calls++
				return tt.err
			}, testConfig(rec))

			assert.Equal(t, tt.err, err)
			assert.Equal(t, 1, calls)
			assert.Empty(t, rec.delays)
		})
	}
}

func TestDoMaxAttemptsExceeded(t *testing.T) {
	rec := &recordingSleep{}
	cause := errs.New(errs.KindOther, 0, "connection refused")
	var retried []int

	cfg := testConfig(rec)
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		retried = append(retried, attempt)
	}

	calls := 0
	err := Do(func() error {
		calls++
		return cause
	}, cfg)

	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, errs.KindOther, errs.KindOf(err))
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, retried)
	assert.Len(t, rec.delays, calls-1)
}

func TestDoSingleAttemptNeverSleeps(t *testing.T) {
	rec := &recordingSleep{}
	cfg := testConfig(rec)
	cfg.MaxAttempts = 1

	err := Do(func() error { return errs.New(errs.KindOther, 503, "unavailable") }, cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retry attempts (1) exceeded")
	assert.Empty(t, rec.delays)
}

func TestDoCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := &Config{
		MaxAttempts: 5,
		Backoff:     &ConstantBackoff{Delay: time.Hour},
		Context:     ctx,
		Logger:      logger.NewNopLogger(),
	}

	calls := 0
	err := Do(func() error {
		calls++
		cancel()
		return errs.New(errs.KindOther, 502, "bad gateway")
	}, cfg)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDoWithResult(t *testing.T) {
	rec := &recordingSleep{}
	calls := 0

	got, err := DoWithResult(func() (int, error) {
		calls++
		if calls == 1 {
			return 0, errs.New(errs.KindOther, 504, "timeout")
		}
		return 42, nil
	}, testConfig(rec))

	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Wait(ctx, time.Hour), context.Canceled)
	assert.NoError(t, Wait(context.Background(), time.Millisecond))
}
