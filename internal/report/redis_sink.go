package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/arbscan/arbwatch/internal/domain"
)

// Redis channel and stream names used by the sink.
const (
	tickChannel       = "ticks"
	opportunityStream = "opportunities"
)

// RedisSink caches the latest quote per venue and publishes tick events for
// external consumers: every tick on the "ticks" pub/sub channel, plus each
// opportunity appended to a durable stream.
type RedisSink struct {
	cache domain.QuoteCache
	bus   domain.SignalBus
}

// NewRedisSink creates a RedisSink.
func NewRedisSink(cache domain.QuoteCache, bus domain.SignalBus) *RedisSink {
	return &RedisSink{cache: cache, bus: bus}
}

// Name returns the sink identifier.
func (s *RedisSink) Name() string { return "redis" }

// tickEvent is the JSON shape published to the "ticks" channel.
type tickEvent struct {
	Seq      int64                `json:"seq"`
	Decision domain.Decision      `json:"decision"`
	Results  []domain.PriceResult `json:"results"`
}

// Publish updates the quote cache and emits the tick event. Errors from the
// individual steps are joined so one failure does not hide another.
func (s *RedisSink) Publish(ctx context.Context, report domain.TickReport) error {
	var errs []error

	for _, res := range report.Results {
		if !res.OK() {
			continue
		}
		q := res.Quote
		if err := s.cache.SetQuote(ctx, q.Venue, q.Pair.String(), q.Price, q.FetchedAt); err != nil {
			errs = append(errs, fmt.Errorf("cache quote %s: %w", q.Venue, err))
		}
	}

	payload, err := json.Marshal(tickEvent{
		Seq:      report.Seq,
		Decision: report.Decision,
		Results:  report.Results,
	})
	if err != nil {
		return errors.Join(append(errs, fmt.Errorf("marshal tick event: %w", err))...)
	}

	if err := s.bus.Publish(ctx, tickChannel, payload); err != nil {
		errs = append(errs, fmt.Errorf("publish tick: %w", err))
	}
	if report.Decision.Outcome == domain.OutcomeOpportunity {
		if err := s.bus.StreamAppend(ctx, opportunityStream, payload); err != nil {
			errs = append(errs, fmt.Errorf("append opportunity: %w", err))
		}
	}

	return errors.Join(errs...)
}

// Compile-time interface check.
var _ domain.ReportSink = (*RedisSink)(nil)
