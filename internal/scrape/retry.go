package scrape

import (
	"context"
	"time"

	"shopcrawl/internal/logger"
	"shopcrawl/internal/observability"
)

// RetryPolicy is the shared retry-with-classification helper used by the
// strategy selector and the persistence sink.
type RetryPolicy struct {
	MaxRetries int
	Base       time.Duration
}

// Do runs fn, retrying recoverable failures with exponential backoff starting
// at Base. Rate-limited failures wait twice the computed delay. Unrecoverable
// failures return immediately without consuming the retry budget.
func (p RetryPolicy) Do(ctx context.Context, log *logger.Logger, op string, fn func() error) error {
	delay := p.Base
	if delay <= 0 {
		delay = time.Second
	}

	var err error
	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !Recoverable(err) {
			return err
		}
		if attempt >= p.MaxRetries {
			return err
		}

		wait := delay
		if KindOf(err) == KindRateLimited {
			wait *= 2
		}

		observability.RetriesTotal.Inc()
		log.Warn("%s failed (attempt %d/%d), retrying in %s: %v", op, attempt+1, p.MaxRetries, wait, err)

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay *= 2
	}
}
