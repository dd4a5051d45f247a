package report

import (
	"context"
	"log/slog"

	"github.com/arbscan/arbwatch/internal/domain"
)

// LogSink writes every tick to the structured log. It is always registered,
// regardless of mode.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a LogSink.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger.With(slog.String("component", "tick_log"))}
}

// Name returns the sink identifier.
func (s *LogSink) Name() string { return "log" }

// Publish logs per-venue quotes at debug level and the decision at a level
// matching its weight: opportunities at info, everything else at debug.
func (s *LogSink) Publish(ctx context.Context, report domain.TickReport) error {
	for _, res := range report.Results {
		if res.OK() {
			s.logger.DebugContext(ctx, "quote",
				slog.Int64("seq", report.Seq),
				slog.String("venue", res.Venue),
				slog.Float64("price", res.Quote.Price),
			)
		} else {
			s.logger.DebugContext(ctx, "fetch failure",
				slog.Int64("seq", report.Seq),
				slog.String("venue", res.Venue),
				slog.String("kind", string(res.Failure.Kind)),
				slog.String("reason", res.Failure.Reason),
			)
		}
	}

	dec := report.Decision
	switch dec.Outcome {
	case domain.OutcomeOpportunity:
		s.logger.InfoContext(ctx, "arbitrage opportunity",
			slog.Int64("seq", report.Seq),
			slog.String("id", dec.ID),
			slog.String("pair", dec.Pair),
			slog.String("buy_venue", dec.BuyVenue),
			slog.Float64("buy_price", dec.BuyPrice),
			slog.String("sell_venue", dec.SellVenue),
			slog.Float64("sell_price", dec.SellPrice),
			slog.Float64("gross_profit_usd", dec.GrossProfit),
			slog.Float64("net_profit_usd", dec.NetProfit),
		)
	case domain.OutcomeIndeterminate:
		s.logger.WarnContext(ctx, "tick indeterminate",
			slog.Int64("seq", report.Seq),
			slog.String("reason", dec.Reason),
		)
	default:
		s.logger.DebugContext(ctx, "no opportunity",
			slog.Int64("seq", report.Seq),
			slog.Float64("net_profit_usd", dec.NetProfit),
		)
	}
	return nil
}

// Compile-time interface check.
var _ domain.ReportSink = (*LogSink)(nil)
