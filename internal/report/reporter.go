// Package report fans each tick's report out to the configured sinks:
// structured log, notifications, Redis cache/bus, Postgres history, and the
// S3 archive. A failing sink is logged and skipped; it can never abort a
// tick or starve the other sinks.
package report

import (
	"context"
	"log/slog"

	"github.com/arbscan/arbwatch/internal/domain"
)

// Reporter dispatches tick reports to all registered sinks.
type Reporter struct {
	sinks  []domain.ReportSink
	logger *slog.Logger
}

// NewReporter creates a Reporter over the given sinks.
func NewReporter(sinks []domain.ReportSink, logger *slog.Logger) *Reporter {
	return &Reporter{
		sinks:  sinks,
		logger: logger.With(slog.String("component", "reporter")),
	}
}

// Report delivers the report to every sink in registration order. Sink
// errors are contained here: steady-state operation must survive a dead
// database or notification channel indefinitely.
func (r *Reporter) Report(ctx context.Context, report domain.TickReport) {
	for _, sink := range r.sinks {
		if err := sink.Publish(ctx, report); err != nil {
			r.logger.Warn("sink failed",
				slog.String("sink", sink.Name()),
				slog.Int64("seq", report.Seq),
				slog.String("error", err.Error()),
			)
		}
	}
}
