// Package app provides the top-level application lifecycle for arbwatch. It
// wires together the price sources, scan loop, and report sinks, and runs
// them until shutdown.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/arbscan/arbwatch/internal/config"
	"github.com/arbscan/arbwatch/internal/domain"
	"github.com/arbscan/arbwatch/internal/report"
	"github.com/arbscan/arbwatch/internal/scanner"
)

// App is the root application object. It owns the configuration, logger, and
// a list of cleanup functions that are called in reverse order on shutdown.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	closers []func()
}

// New creates a new App from the given configuration and logger.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
	}
}

// Run wires all dependencies, starts the venue streams and the scan loop,
// and blocks until the context is cancelled. A clean shutdown returns nil.
func (a *App) Run(ctx context.Context) error {
	a.logger.InfoContext(ctx, "starting application",
		slog.String("mode", a.cfg.Mode),
		slog.Int("venues", len(a.cfg.Venues)),
	)

	deps, cleanup, err := Wire(ctx, a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}
	a.closers = append(a.closers, cleanup)

	sampler := scanner.NewSampler(deps.Sources, deps.Pair, a.cfg.Scan.FetchTimeout.Duration, a.logger)
	reporter := report.NewReporter(deps.Sinks, a.logger)
	loop := scanner.NewLoop(
		sampler,
		domain.TradeParameters{
			Amount:             a.cfg.Trade.Amount,
			FeeEstimateUSD:     a.cfg.Trade.FeeEstimateUSD,
			MinProfitThreshold: a.cfg.Trade.MinProfitThreshold,
		},
		reporter,
		a.cfg.Scan.Interval.Duration,
		a.cfg.Scan.ShutdownGrace.Duration,
		a.logger,
	)

	g, ctx := errgroup.WithContext(ctx)

	// Venue streams (e.g. the Binance bookTicker feed).
	for _, stream := range deps.Streams {
		stream := stream
		g.Go(func() error {
			err := stream.Run(ctx)
			if ctx.Err() != nil {
				return nil // clean shutdown
			}
			return fmt.Errorf("venue stream: %w", err)
		})
	}

	// The scan loop itself.
	g.Go(func() error {
		err := loop.Run(ctx)
		if ctx.Err() != nil {
			return nil // clean shutdown
		}
		return fmt.Errorf("scan loop: %w", err)
	})

	runErr := g.Wait()

	// Flush the final partial archive batch with a fresh deadline; the run
	// context is already cancelled at this point.
	if deps.Archive != nil {
		flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := deps.Archive.Flush(flushCtx); err != nil {
			a.logger.Warn("final archive flush failed", slog.String("error", err.Error()))
		}
	}

	if runErr != nil {
		a.logger.Error("application stopped with error", slog.String("error", runErr.Error()))
		return runErr
	}
	a.logger.Info("application stopped cleanly",
		slog.Int64("ticks", loop.Ticks()),
		slog.Int64("missed_ticks", loop.MissedTicks()),
	)
	return nil
}

// Close tears down all resources in reverse registration order. It is safe
// to call multiple times; subsequent calls are no-ops.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
