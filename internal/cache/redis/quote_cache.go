package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/arbscan/arbwatch/internal/domain"
)

// QuoteCache implements domain.QuoteCache using Redis hashes. The latest
// price per venue is stored at key "quote:{venue}:{pair}" with fields "price"
// and "ts" (Unix nanosecond timestamp).
type QuoteCache struct {
	rdb *redis.Client
}

// NewQuoteCache creates a QuoteCache backed by the given Client.
func NewQuoteCache(c *Client) *QuoteCache {
	return &QuoteCache{rdb: c.Underlying()}
}

func quoteKey(venue, pair string) string {
	return "quote:" + venue + ":" + pair
}

// SetQuote stores the latest observed price and timestamp for a venue.
func (qc *QuoteCache) SetQuote(ctx context.Context, venue, pair string, price float64, ts time.Time) error {
	fields := map[string]interface{}{
		"price": strconv.FormatFloat(price, 'f', -1, 64),
		"ts":    strconv.FormatInt(ts.UnixNano(), 10),
	}
	if err := qc.rdb.HSet(ctx, quoteKey(venue, pair), fields).Err(); err != nil {
		return fmt.Errorf("redis: set quote %s %s: %w", venue, pair, err)
	}
	return nil
}

// GetQuote retrieves the latest price and timestamp for a venue. It returns
// domain.ErrNotFound when no quote has been stored yet.
func (qc *QuoteCache) GetQuote(ctx context.Context, venue, pair string) (float64, time.Time, error) {
	vals, err := qc.rdb.HGetAll(ctx, quoteKey(venue, pair)).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis: get quote %s %s: %w", venue, pair, err)
	}
	if len(vals) == 0 {
		return 0, time.Time{}, domain.ErrNotFound
	}

	price, err := strconv.ParseFloat(vals["price"], 64)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis: parse price for %s %s: %w", venue, pair, err)
	}
	tsNano, err := strconv.ParseInt(vals["ts"], 10, 64)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis: parse ts for %s %s: %w", venue, pair, err)
	}
	return price, time.Unix(0, tsNano), nil
}

// Compile-time interface check.
var _ domain.QuoteCache = (*QuoteCache)(nil)
