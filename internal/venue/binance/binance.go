// Package binance implements a PriceSource backed by Binance's bookTicker
// WebSocket stream. A background goroutine keeps the latest best bid/ask in
// memory; FetchPrice serves the mid price from that snapshot and fails when
// the snapshot is missing or stale, so the sampler is never blocked on the
// network.
package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/arbscan/arbwatch/internal/domain"
)

// DefaultWSHost is the public Binance stream endpoint.
const DefaultWSHost = "wss://stream.binance.com:9443"

// reconnectBackoff is the initial delay between reconnect attempts; it
// doubles up to maxBackoff.
const (
	reconnectBackoff = time.Second
	maxBackoff       = 30 * time.Second
)

// Config configures a Source.
type Config struct {
	Name   string
	WSHost string        // defaults to DefaultWSHost
	Symbol string        // e.g. "ETHUSDC"
	MaxAge time.Duration // how old a tick may be before FetchPrice fails
}

// Source is a PriceSource fed by the bookTicker stream. Run must be started
// before FetchPrice can succeed.
type Source struct {
	cfg    Config
	logger *slog.Logger

	mu       sync.RWMutex
	mid      float64
	tickedAt time.Time
}

// bookTicker is the stream payload for <symbol>@bookTicker.
type bookTicker struct {
	Symbol  string `json:"s"`
	BidPx   string `json:"b"`
	AskPx   string `json:"a"`
	BidSize string `json:"B"`
	AskSize string `json:"A"`
}

// New creates a Source for the given symbol.
func New(cfg Config, logger *slog.Logger) *Source {
	if cfg.WSHost == "" {
		cfg.WSHost = DefaultWSHost
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = 5 * time.Second
	}
	return &Source{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "binance_feed"), slog.String("symbol", cfg.Symbol)),
	}
}

// Name returns the venue identifier.
func (s *Source) Name() string { return s.cfg.Name }

// FetchPrice returns the mid of the most recent best bid/ask. It never
// touches the network; staleness beyond MaxAge is reported as an error so the
// sampler records a venue failure instead of acting on a dead feed.
func (s *Source) FetchPrice(_ context.Context, pair domain.TokenPair) (domain.PriceQuote, error) {
	s.mu.RLock()
	mid, tickedAt := s.mid, s.tickedAt
	s.mu.RUnlock()

	if tickedAt.IsZero() {
		return domain.PriceQuote{}, fmt.Errorf("binance: %s: %w", s.cfg.Symbol, domain.ErrNoQuote)
	}
	if age := time.Since(tickedAt); age > s.cfg.MaxAge {
		return domain.PriceQuote{}, fmt.Errorf("binance: %s: last tick %s old: %w", s.cfg.Symbol, age.Truncate(time.Millisecond), domain.ErrStaleQuote)
	}

	return domain.PriceQuote{
		Venue:     s.cfg.Name,
		Pair:      pair,
		Price:     mid,
		FetchedAt: tickedAt,
	}, nil
}

// Run maintains the stream subscription until ctx is cancelled, reconnecting
// with exponential backoff. It always returns ctx.Err().
func (s *Source) Run(ctx context.Context) error {
	url := fmt.Sprintf("%s/ws/%s@bookTicker", strings.TrimRight(s.cfg.WSHost, "/"), strings.ToLower(s.cfg.Symbol))
	backoff := reconnectBackoff

	for {
		if err := s.streamOnce(ctx, url); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Warn("stream dropped, reconnecting",
				slog.String("error", err.Error()),
				slog.Duration("backoff", backoff),
			)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

// streamOnce dials the stream and consumes messages until the connection
// breaks or ctx is cancelled.
func (s *Source) streamOnce(ctx context.Context, url string) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("binance: dial %s: %w", url, err)
	}
	defer conn.Close()
	s.logger.Info("stream connected", slog.String("url", url))

	// Unblock ReadMessage when ctx is cancelled.
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("binance: read: %w: %v", domain.ErrWSDisconnect, err)
		}
		if err := s.handleMessage(data); err != nil {
			s.logger.Warn("bad stream message", slog.String("error", err.Error()))
		}
	}
}

// handleMessage parses one bookTicker payload and updates the snapshot.
func (s *Source) handleMessage(data []byte) error {
	var tick bookTicker
	if err := json.Unmarshal(data, &tick); err != nil {
		return fmt.Errorf("unmarshal book ticker: %w", err)
	}
	mid, err := midPrice(tick)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.mid = mid
	s.tickedAt = time.Now()
	s.mu.Unlock()
	return nil
}

// midPrice computes the bid/ask midpoint from a bookTicker payload.
func midPrice(tick bookTicker) (float64, error) {
	bid, err := strconv.ParseFloat(tick.BidPx, 64)
	if err != nil {
		return 0, fmt.Errorf("parse bid %q: %w", tick.BidPx, err)
	}
	ask, err := strconv.ParseFloat(tick.AskPx, 64)
	if err != nil {
		return 0, fmt.Errorf("parse ask %q: %w", tick.AskPx, err)
	}
	if bid <= 0 || ask <= 0 {
		return 0, fmt.Errorf("non-positive bid/ask %q/%q", tick.BidPx, tick.AskPx)
	}
	return (bid + ask) / 2, nil
}

// Compile-time interface check.
var _ domain.PriceSource = (*Source)(nil)
