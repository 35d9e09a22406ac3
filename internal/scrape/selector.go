package scrape

import (
	"context"
	"errors"

	"shopcrawl/internal/logger"
	"shopcrawl/internal/models"
	"shopcrawl/internal/observability"
)

// Selector walks an ordered list of acquisition strategies. The active
// strategy is retried on recoverable failures; on an unrecoverable failure or
// an exhausted retry budget the selector advances to the next strategy. If no
// strategy ever produces a page the run fails with an AcquisitionError.
type Selector struct {
	strategies []Strategy
	retry      RetryPolicy
	log        *logger.Logger

	idx        int
	done       bool
	produced   bool
	activeName string
	lastErr    error
}

func NewSelector(log *logger.Logger, retry RetryPolicy, strategies ...Strategy) *Selector {
	return &Selector{
		strategies: strategies,
		retry:      retry,
		log:        log,
	}
}

// Next returns the next page of products. ok is false once pagination is
// exhausted or every strategy has failed.
func (s *Selector) Next(ctx context.Context) (page []models.Product, ok bool, err error) {
	if s.done {
		return nil, false, nil
	}

	for s.idx < len(s.strategies) {
		strat := s.strategies[s.idx]

		if !strat.Available() {
			s.log.Debug("strategy %s not available, skipping", strat.Name())
			s.idx++
			continue
		}

		var more bool
		fetchErr := s.retry.Do(ctx, s.log, "fetch page via "+strat.Name(), func() error {
			var e error
			page, more, e = strat.Fetch(ctx)
			return e
		})

		if fetchErr != nil {
			if errors.Is(fetchErr, context.Canceled) || errors.Is(fetchErr, context.DeadlineExceeded) {
				return nil, false, fetchErr
			}
			s.lastErr = fetchErr
			s.advance(strat, fetchErr)
			continue
		}

		s.produced = true
		s.activeName = strat.Name()
		observability.PagesFetched.WithLabelValues(strat.Name()).Inc()

		if !more {
			s.done = true
		}
		return page, true, nil
	}

	s.done = true
	if !s.produced {
		cause := s.lastErr
		if cause == nil {
			cause = errors.New("no acquisition strategy available")
		}
		return nil, false, &AcquisitionError{Cause: cause}
	}
	s.log.Warn("active strategy failed mid-run, no further strategies produced pages: %v", s.lastErr)
	return nil, false, nil
}

// ActiveStrategy returns the name of the strategy that most recently produced
// a page, or an empty string before the first page.
func (s *Selector) ActiveStrategy() string {
	return s.activeName
}

func (s *Selector) advance(strat Strategy, err error) {
	strat.Reset()
	s.idx++
	observability.StrategyFallbacks.Inc()
	if s.idx < len(s.strategies) {
		s.log.Info("strategy %s failed (%v), falling back to %s", strat.Name(), err, s.strategies[s.idx].Name())
	} else {
		s.log.Info("strategy %s failed (%v), no strategies left", strat.Name(), err)
	}
}
