package scanner

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/arbscan/arbwatch/internal/arbitrage"
	"github.com/arbscan/arbwatch/internal/domain"
)

// Reporter receives every tick's report. Per-sink fan-out and error
// containment live behind this interface.
type Reporter interface {
	Report(ctx context.Context, report domain.TickReport)
}

// Loop runs the sample → evaluate → report cycle on a fixed interval until
// its context is cancelled. Ticks never overlap: if a tick fires while the
// previous one is still in flight it is skipped and counted as missed.
type Loop struct {
	sampler  *Sampler
	params   domain.TradeParameters
	reporter Reporter
	interval time.Duration
	grace    time.Duration
	logger   *slog.Logger

	seq      atomic.Int64
	missed   atomic.Int64
	inFlight atomic.Bool
}

// NewLoop creates a Loop. grace bounds how long shutdown waits for an
// in-flight tick before abandoning it.
func NewLoop(sampler *Sampler, params domain.TradeParameters, reporter Reporter, interval, grace time.Duration, logger *slog.Logger) *Loop {
	return &Loop{
		sampler:  sampler,
		params:   params,
		reporter: reporter,
		interval: interval,
		grace:    grace,
		logger:   logger.With(slog.String("component", "scan_loop")),
	}
}

// MissedTicks returns how many ticks were skipped because the previous tick
// was still in flight.
func (l *Loop) MissedTicks() int64 { return l.missed.Load() }

// Ticks returns how many ticks have started.
func (l *Loop) Ticks() int64 { return l.seq.Load() }

// Run blocks until ctx is cancelled. The first tick fires immediately; after
// that the ticker drives a fixed wall-clock cadence. Nothing a tick does can
// stop the loop; only cancellation ends it.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Info("scan loop starting",
		slog.Duration("interval", l.interval),
		slog.Duration("grace", l.grace),
	)

	var wg sync.WaitGroup
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.startTick(ctx, &wg)

	for {
		select {
		case <-ctx.Done():
			ticker.Stop()
			l.drain(&wg)
			l.logger.Info("scan loop stopped",
				slog.Int64("ticks", l.seq.Load()),
				slog.Int64("missed_ticks", l.missed.Load()),
			)
			return ctx.Err()
		case <-ticker.C:
			l.startTick(ctx, &wg)
		}
	}
}

// startTick launches one tick unless the previous tick is still running, in
// which case the tick is recorded as missed.
func (l *Loop) startTick(ctx context.Context, wg *sync.WaitGroup) {
	if !l.inFlight.CompareAndSwap(false, true) {
		n := l.missed.Add(1)
		l.logger.Warn("tick skipped, previous still in flight",
			slog.Int64("missed_total", n),
		)
		return
	}

	seq := l.seq.Add(1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer l.inFlight.Store(false)
		l.runTick(ctx, seq)
	}()
}

// runTick performs one full sample → evaluate → report cycle.
func (l *Loop) runTick(ctx context.Context, seq int64) {
	started := time.Now()

	results := l.sampler.Sample(ctx)
	dec := arbitrage.Evaluate(results, l.params)
	dec.EvaluatedAt = time.Now()
	if dec.Outcome == domain.OutcomeOpportunity {
		dec.ID = uuid.Must(uuid.NewRandom()).String()
	}

	report := domain.TickReport{
		Seq:       seq,
		StartedAt: started,
		Elapsed:   time.Since(started),
		Results:   results,
		Decision:  dec,
	}
	l.reporter.Report(ctx, report)
}

// drain waits for the in-flight tick to finish, up to the shutdown grace
// period. A tick still running after that is abandoned.
func (l *Loop) drain(wg *sync.WaitGroup) {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(l.grace):
		l.logger.Warn("in-flight tick abandoned at shutdown grace")
	}
}
