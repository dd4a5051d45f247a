package domain

import "time"

// Outcome tags the variant of a Decision.
type Outcome string

const (
	// OutcomeOpportunity means the net profit cleared the configured threshold.
	OutcomeOpportunity Outcome = "opportunity"
	// OutcomeNoOpportunity means both venues answered but the spread does not pay.
	OutcomeNoOpportunity Outcome = "no_opportunity"
	// OutcomeIndeterminate means fewer than two usable quotes arrived this tick.
	OutcomeIndeterminate Outcome = "indeterminate"
)

// Decision is the evaluation result for one tick. It is derived from exactly
// that tick's PriceResults and nothing else. Buy/sell fields are populated
// for OutcomeOpportunity and OutcomeNoOpportunity (when two quotes existed);
// Reason is populated for OutcomeIndeterminate.
type Decision struct {
	ID          string
	Outcome     Outcome
	Pair        string
	BuyVenue    string
	SellVenue   string
	BuyPrice    float64
	SellPrice   float64
	GrossProfit float64 // USD, rounded to cents
	NetProfit   float64 // USD, rounded to cents
	Reason      string
	EvaluatedAt time.Time
}
