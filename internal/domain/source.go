package domain

import "context"

// PriceSource is the capability of fetching the current price of a pair on
// one venue. Implementations must be safe for concurrent use and must honor
// ctx cancellation; the sampler imposes its own deadline regardless.
type PriceSource interface {
	// Name returns the venue identifier this source quotes for.
	Name() string
	// FetchPrice returns the current price of pair on this venue, or an error.
	FetchPrice(ctx context.Context, pair TokenPair) (PriceQuote, error)
}
