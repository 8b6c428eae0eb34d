package resilience

import (
	"context"
	"errors"
	"syscall"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusError struct {
	status int
}

func (e *statusError) Error() string   { return "remote call failed" }
func (e *statusError) HTTPStatus() int { return e.status }

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:    attempts,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2.0,
	}
}

func TestIsTransient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"wrapped transient", eris.Wrap(NewTransientError(errors.New("boom"), 503), "call"), true},
		{"http 429", &statusError{status: 429}, true},
		{"http 503", &statusError{status: 503}, true},
		{"http 404", &statusError{status: 404}, false},
		{"http 400", &statusError{status: 400}, false},
		{"wrapped http status", eris.Wrap(&statusError{status: 502}, "gmail: search"), true},
		{"conn reset errno", syscall.ECONNRESET, true},
		{"conn refused errno", syscall.ECONNREFUSED, true},
		{"message heuristic", errors.New("read tcp: connection reset by peer"), true},
		{"timeout heuristic", errors.New("dial tcp: i/o timeout"), true},
		{"plain error", errors.New("invalid argument"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestIsTransientHTTPStatus(t *testing.T) {
	t.Parallel()

	for _, code := range []int{408, 429, 500, 502, 503, 504} {
		assert.True(t, IsTransientHTTPStatus(code), "status %d", code)
	}
	for _, code := range []int{200, 301, 400, 401, 403, 404, 409} {
		assert.False(t, IsTransientHTTPStatus(code), "status %d", code)
	}
}

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	t.Parallel()

	calls := 0
	err := Do(context.Background(), fastRetry(3), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return NewTransientError(errors.New("temporarily unavailable"), 503)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_PermanentErrorStopsImmediately(t *testing.T) {
	t.Parallel()

	calls := 0
	permanent := errors.New("bad request")
	err := Do(context.Background(), fastRetry(5), func(ctx context.Context) error {
		calls++
		return permanent
	})
	require.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	t.Parallel()

	calls := 0
	err := Do(context.Background(), fastRetry(3), func(ctx context.Context) error {
		calls++
		return NewTransientError(errors.New("still down"), 502)
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.True(t, IsTransient(err))
}

func TestDo_ContextCancelStopsRetries(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Do(ctx, fastRetry(10), func(ctx context.Context) error {
		calls++
		cancel()
		return NewTransientError(errors.New("down"), 503)
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_OnRetryCallback(t *testing.T) {
	t.Parallel()

	var attempts []int
	cfg := fastRetry(3)
	cfg.OnRetry = func(attempt int, err error) {
		attempts = append(attempts, attempt)
	}

	_ = Do(context.Background(), cfg, func(ctx context.Context) error {
		return NewTransientError(errors.New("down"), 500)
	})
	assert.Equal(t, []int{1, 2}, attempts)
}

func TestDoVal_ReturnsValue(t *testing.T) {
	t.Parallel()

	calls := 0
	got, err := DoVal(context.Background(), fastRetry(3), func(ctx context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", NewTransientError(errors.New("down"), 503)
		}
		return "folder-id", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "folder-id", got)
	assert.Equal(t, 2, calls)
}

func TestComputeBackoff(t *testing.T) {
	t.Parallel()

	cfg := applyDefaults(RetryConfig{
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     time.Second,
		Multiplier:     2.0,
	})

	assert.Equal(t, 100*time.Millisecond, computeBackoff(0, cfg))
	assert.Equal(t, 200*time.Millisecond, computeBackoff(1, cfg))
	assert.Equal(t, 400*time.Millisecond, computeBackoff(2, cfg))
	// Capped at MaxBackoff.
	assert.Equal(t, time.Second, computeBackoff(10, cfg))
}

func TestComputeBackoff_JitterStaysInRange(t *testing.T) {
	t.Parallel()

	cfg := applyDefaults(RetryConfig{
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.25,
	})

	for i := 0; i < 100; i++ {
		d := computeBackoff(0, cfg)
		assert.GreaterOrEqual(t, d, 75*time.Millisecond)
		assert.LessOrEqual(t, d, 125*time.Millisecond)
	}
}
