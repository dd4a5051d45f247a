package domain

import (
	"context"
	"time"
)

// QuoteCache provides fast access to the latest observed price per venue.
type QuoteCache interface {
	SetQuote(ctx context.Context, venue, pair string, price float64, ts time.Time) error
	GetQuote(ctx context.Context, venue, pair string) (float64, time.Time, error)
}

// SignalBus publishes tick events for external consumers.
type SignalBus interface {
	// Publish sends a payload on an ephemeral pub/sub channel.
	Publish(ctx context.Context, channel string, payload []byte) error
	// StreamAppend appends a payload to a durable, trimmed stream.
	StreamAppend(ctx context.Context, stream string, payload []byte) error
}

// OpportunityStore persists opportunity decisions for later analysis.
type OpportunityStore interface {
	Insert(ctx context.Context, dec Decision) error
	ListRecent(ctx context.Context, limit int) ([]Decision, error)
}

// BlobWriter uploads an object to blob storage.
type BlobWriter interface {
	Put(ctx context.Context, path string, data []byte, contentType string) error
}
