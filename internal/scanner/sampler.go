// Package scanner drives the polling loop: it fans one fetch per venue out
// under a shared deadline, joins the results, hands them to the evaluator,
// and publishes the tick report.
package scanner

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/arbscan/arbwatch/internal/domain"
)

// Sampler collects one PriceResult per configured source for a single tick.
type Sampler struct {
	sources []domain.PriceSource
	pair    domain.TokenPair
	timeout time.Duration
	logger  *slog.Logger
}

// NewSampler creates a Sampler over the given sources. timeout bounds every
// tick's fetch phase as a whole.
func NewSampler(sources []domain.PriceSource, pair domain.TokenPair, timeout time.Duration, logger *slog.Logger) *Sampler {
	return &Sampler{
		sources: sources,
		pair:    pair,
		timeout: timeout,
		logger:  logger.With(slog.String("component", "sampler")),
	}
}

// Sample launches all fetches concurrently and waits for each to complete or
// exceed the per-tick timeout. It always returns exactly one result per
// source, in source order. A slow or failing source never delays the others
// past the deadline; its fetch is abandoned and recorded as a timeout.
func (s *Sampler) Sample(ctx context.Context) []domain.PriceResult {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	results := make([]domain.PriceResult, len(s.sources))
	var wg sync.WaitGroup
	for i, src := range s.sources {
		wg.Add(1)
		go func(i int, src domain.PriceSource) {
			defer wg.Done()
			results[i] = s.fetchOne(ctx, src)
		}(i, src)
	}
	wg.Wait()

	return results
}

// fetchOne resolves a single source to a PriceResult. The fetch runs in its
// own goroutine with a buffered channel so that a source which ignores ctx
// cannot block the tick; its late result is simply dropped.
func (s *Sampler) fetchOne(ctx context.Context, src domain.PriceSource) domain.PriceResult {
	type outcome struct {
		quote domain.PriceQuote
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		q, err := src.FetchPrice(ctx, s.pair)
		done <- outcome{quote: q, err: err}
	}()

	select {
	case <-ctx.Done():
		s.logger.Warn("fetch abandoned at deadline", slog.String("venue", src.Name()))
		return domain.PriceResult{
			Venue: src.Name(),
			Failure: &domain.FetchFailure{
				Kind:   domain.FailureTimeout,
				Reason: ctx.Err().Error(),
			},
		}
	case o := <-done:
		return s.classify(src.Name(), o.quote, o.err)
	}
}

// classify converts a raw fetch outcome into a PriceResult, demoting
// non-finite or non-positive prices to invalid_price failures.
func (s *Sampler) classify(venue string, q domain.PriceQuote, err error) domain.PriceResult {
	if err != nil {
		kind := domain.FailureVenueError
		if errors.Is(err, context.DeadlineExceeded) {
			kind = domain.FailureTimeout
		}
		s.logger.Warn("fetch failed",
			slog.String("venue", venue),
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()),
		)
		return domain.PriceResult{
			Venue:   venue,
			Failure: &domain.FetchFailure{Kind: kind, Reason: err.Error()},
		}
	}

	if q.Price <= 0 || math.IsNaN(q.Price) || math.IsInf(q.Price, 0) {
		s.logger.Warn("fetch returned invalid price",
			slog.String("venue", venue),
			slog.Float64("price", q.Price),
		)
		return domain.PriceResult{
			Venue:   venue,
			Failure: &domain.FetchFailure{Kind: domain.FailureInvalidPrice, Reason: "price must be finite and positive"},
		}
	}

	if q.Venue == "" {
		q.Venue = venue
	}
	return domain.PriceResult{Venue: venue, Quote: &q}
}
