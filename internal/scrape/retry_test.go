package scrape

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryPolicyReturnsImmediatelyOnUnrecoverable(t *testing.T) {
	attempts := 0
	p := RetryPolicy{MaxRetries: 5, Base: time.Millisecond}

	err := p.Do(context.Background(), quietLogger(), "fetch", func() error {
		attempts++
		return Malformed("fetch", errors.New("bad payload"))
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.False(t, Recoverable(err))
}

func TestRetryPolicyExhaustsBudgetOnTransient(t *testing.T) {
	attempts := 0
	p := RetryPolicy{MaxRetries: 2, Base: time.Millisecond}

	err := p.Do(context.Background(), quietLogger(), "fetch", func() error {
		attempts++
		return Transient("fetch", errors.New("connection reset"))
	})

	require.Error(t, err)
	assert.Equal(t, 3, attempts, "one initial attempt plus MaxRetries")
	assert.Equal(t, KindTransient, KindOf(err))
}

func TestRetryPolicySucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	p := RetryPolicy{MaxRetries: 3, Base: time.Millisecond}

	err := p.Do(context.Background(), quietLogger(), "fetch", func() error {
		attempts++
		if attempts < 3 {
			return Transient("fetch", errors.New("flaky"))
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryPolicyWaitsLongerWhenRateLimited(t *testing.T) {
	attempts := 0
	p := RetryPolicy{MaxRetries: 1, Base: 50 * time.Millisecond}

	start := time.Now()
	err := p.Do(context.Background(), quietLogger(), "fetch", func() error {
		attempts++
		if attempts == 1 {
			return RateLimited("fetch", errors.New("429"))
		}
		return nil
	})
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.GreaterOrEqual(t, elapsed, 100*time.Millisecond, "rate-limited waits double the base delay")
}

func TestRetryPolicyStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := RetryPolicy{MaxRetries: 10, Base: time.Hour}

	errCh := make(chan error, 1)
	go func() {
		errCh <- p.Do(ctx, quietLogger(), "fetch", func() error {
			return Transient("fetch", errors.New("flaky"))
		})
	}()

	cancel()
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("retry did not observe cancellation")
	}
}

func TestFromStatusClassification(t *testing.T) {
	tests := []struct {
		status      int
		kind        Kind
		recoverable bool
	}{
		{http.StatusTooManyRequests, KindRateLimited, true},
		{http.StatusInternalServerError, KindTransient, true},
		{http.StatusBadGateway, KindTransient, true},
		{http.StatusUnauthorized, KindAuth, false},
		{http.StatusForbidden, KindAuth, false},
		{http.StatusNotFound, KindMalformed, false},
	}
	for _, tt := range tests {
		err := FromStatus("fetch", tt.status)
		assert.Equal(t, tt.kind, KindOf(err), "status %d", tt.status)
		assert.Equal(t, tt.recoverable, Recoverable(err), "status %d", tt.status)
	}
}

func TestKindOfDefaultsToTransient(t *testing.T) {
	assert.Equal(t, KindTransient, KindOf(errors.New("plain")))
	assert.True(t, Recoverable(errors.New("plain")))
}
