package domain

import (
	"context"
	"time"
)

// TickReport bundles everything one tick produced: the raw per-venue results
// and the decision derived from them.
type TickReport struct {
	Seq       int64
	StartedAt time.Time
	Elapsed   time.Duration
	Results   []PriceResult
	Decision  Decision
}

// ReportSink receives the full report of every tick. Sinks make no
// assumptions about ordering across process restarts; within a process
// reports arrive in tick order because ticks never overlap.
type ReportSink interface {
	Name() string
	Publish(ctx context.Context, report TickReport) error
}
