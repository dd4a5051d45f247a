package domain

import "time"

// PriceQuote is a single successful price observation from one venue at one
// instant. It is produced once per fetch and discarded after the tick that
// consumed it; no history is retained.
type PriceQuote struct {
	Venue     string
	Pair      TokenPair
	Price     float64 // quote units per 1 base unit
	FetchedAt time.Time
}

// FailureKind classifies why a fetch produced no quote.
type FailureKind string

const (
	FailureTimeout      FailureKind = "timeout"
	FailureVenueError   FailureKind = "venue_error"
	FailureInvalidPrice FailureKind = "invalid_price"
)

// FetchFailure records a failed fetch. Failures are contained to their own
// PriceResult and never abort a tick.
type FetchFailure struct {
	Kind   FailureKind
	Reason string
}

// PriceResult is the outcome of exactly one (tick, venue) fetch: either a
// quote or a failure, never both.
type PriceResult struct {
	Venue   string
	Quote   *PriceQuote
	Failure *FetchFailure
}

// OK reports whether the result carries a usable quote.
func (r PriceResult) OK() bool {
	return r.Quote != nil && r.Failure == nil
}
