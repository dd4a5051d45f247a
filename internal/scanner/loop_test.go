package scanner

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/arbscan/arbwatch/internal/domain"
)

// captureReporter records every report it receives.
type captureReporter struct {
	mu      sync.Mutex
	reports []domain.TickReport
}

func (c *captureReporter) Report(_ context.Context, report domain.TickReport) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reports = append(c.reports, report)
}

func (c *captureReporter) snapshot() []domain.TickReport {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.TickReport, len(c.reports))
	copy(out, c.reports)
	return out
}

func testParams() domain.TradeParameters {
	return domain.TradeParameters{Amount: 1, FeeEstimateUSD: 2, MinProfitThreshold: 5}
}

func runLoop(t *testing.T, l *Loop, d time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	if err := l.Run(ctx); err != context.DeadlineExceeded {
		t.Fatalf("Run returned %v, want context.DeadlineExceeded", err)
	}
}

func TestLoopTicksAndReports(t *testing.T) {
	sources := []domain.PriceSource{
		&stubSource{name: "a", price: 3510},
		&stubSource{name: "b", price: 3498},
	}
	sampler := NewSampler(sources, testPair, 50*time.Millisecond, testLogger())
	rep := &captureReporter{}
	l := NewLoop(sampler, testParams(), rep, 20*time.Millisecond, time.Second, testLogger())

	runLoop(t, l, 110*time.Millisecond)

	reports := rep.snapshot()
	if len(reports) < 3 {
		t.Fatalf("got %d reports, want at least 3", len(reports))
	}
	for i, r := range reports {
		if r.Seq != int64(i+1) {
			t.Errorf("reports[%d].Seq = %d, want %d", i, r.Seq, i+1)
		}
		if r.Decision.Outcome != domain.OutcomeOpportunity {
			t.Errorf("reports[%d].Decision = %s, want opportunity", i, r.Decision.Outcome)
		}
		if r.Decision.ID == "" {
			t.Errorf("reports[%d]: opportunity decisions must carry an ID", i)
		}
		if len(r.Results) != 2 {
			t.Errorf("reports[%d]: got %d results, want 2", i, len(r.Results))
		}
	}
	if l.MissedTicks() != 0 {
		t.Errorf("missed ticks = %d, want 0", l.MissedTicks())
	}
}

func TestLoopSkipsOverlappingTicks(t *testing.T) {
	// Each fetch holds the tick in flight well past several intervals.
	sources := []domain.PriceSource{
		&stubSource{name: "a", price: 3510, delay: 60 * time.Millisecond},
		&stubSource{name: "b", price: 3498, delay: 60 * time.Millisecond},
	}
	sampler := NewSampler(sources, testPair, 200*time.Millisecond, testLogger())
	rep := &captureReporter{}
	l := NewLoop(sampler, testParams(), rep, 15*time.Millisecond, time.Second, testLogger())

	runLoop(t, l, 150*time.Millisecond)

	if l.MissedTicks() == 0 {
		t.Error("expected missed ticks when fetches outlast the interval")
	}
	// Ticks must never have run concurrently: reports stay in sequence order.
	reports := rep.snapshot()
	for i := 1; i < len(reports); i++ {
		if reports[i].Seq <= reports[i-1].Seq {
			t.Errorf("reports out of order: %d then %d", reports[i-1].Seq, reports[i].Seq)
		}
	}
}

func TestLoopSurvivesTotalVenueFailure(t *testing.T) {
	// Both venues time out on every tick; the loop must keep reporting
	// Indeterminate decisions rather than stopping.
	sources := []domain.PriceSource{
		&stubSource{name: "a", price: 1, delay: time.Second, ignoreCtx: true},
		&stubSource{name: "b", price: 1, delay: time.Second, ignoreCtx: true},
	}
	sampler := NewSampler(sources, testPair, 10*time.Millisecond, testLogger())
	rep := &captureReporter{}
	l := NewLoop(sampler, testParams(), rep, 25*time.Millisecond, time.Second, testLogger())

	runLoop(t, l, 120*time.Millisecond)

	reports := rep.snapshot()
	if len(reports) < 2 {
		t.Fatalf("got %d reports, want at least 2 despite failures", len(reports))
	}
	for i, r := range reports {
		if r.Decision.Outcome != domain.OutcomeIndeterminate {
			t.Errorf("reports[%d].Decision = %s, want indeterminate", i, r.Decision.Outcome)
		}
	}
}

func TestLoopShutdownWaitsForInFlightTick(t *testing.T) {
	sources := []domain.PriceSource{
		&stubSource{name: "a", price: 3510, delay: 40 * time.Millisecond},
		&stubSource{name: "b", price: 3498, delay: 40 * time.Millisecond},
	}
	sampler := NewSampler(sources, testPair, 200*time.Millisecond, testLogger())
	rep := &captureReporter{}
	l := NewLoop(sampler, testParams(), rep, 30*time.Millisecond, time.Second, testLogger())

	// Cancel while the first tick is still sampling.
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- l.Run(ctx) }()
	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err != context.Canceled {
			t.Fatalf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}
