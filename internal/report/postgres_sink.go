package report

import (
	"context"
	"fmt"

	"github.com/arbscan/arbwatch/internal/domain"
)

// PostgresSink records opportunity decisions in the history table. Only
// opportunities are stored; NoOpportunity ticks carry no information worth a
// row per 15 seconds.
type PostgresSink struct {
	store domain.OpportunityStore
}

// NewPostgresSink creates a PostgresSink.
func NewPostgresSink(store domain.OpportunityStore) *PostgresSink {
	return &PostgresSink{store: store}
}

// Name returns the sink identifier.
func (s *PostgresSink) Name() string { return "postgres" }

// Publish inserts the decision when it is an opportunity.
func (s *PostgresSink) Publish(ctx context.Context, report domain.TickReport) error {
	if report.Decision.Outcome != domain.OutcomeOpportunity {
		return nil
	}
	if err := s.store.Insert(ctx, report.Decision); err != nil {
		return fmt.Errorf("insert opportunity %s: %w", report.Decision.ID, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.ReportSink = (*PostgresSink)(nil)
