// Package arbitrage turns one tick's price results into a go/no-go decision.
// Evaluation is a pure function of its inputs: no cross-tick state, no clock
// reads beyond the caller-supplied timestamp on the quotes themselves.
package arbitrage

import (
	"math"

	"github.com/arbscan/arbwatch/internal/domain"
)

// ReasonInsufficientQuotes is the Indeterminate reason emitted when fewer
// than two venues produced a usable quote this tick.
const ReasonInsufficientQuotes = "insufficient quotes"

// roundCents rounds a USD amount to the nearest cent. All profit figures and
// the threshold comparison use this rule so decisions cannot flap on noise
// below display precision.
func roundCents(x float64) float64 {
	return math.Round(x*100) / 100
}

// Evaluate derives a Decision from exactly one tick's PriceResults and the
// configured trade parameters.
//
// Among the successful quotes it picks the global maximum as the sell side
// and the global minimum as the buy side; only the extreme spread can be
// profitable, so pairwise comparison is unnecessary. With two venues this
// degenerates to higher/lower of the two. Ties leave both sides on the same
// venue and always yield NoOpportunity. The profit threshold is exclusive:
// net profit equal to the threshold is not an opportunity.
func Evaluate(results []domain.PriceResult, params domain.TradeParameters) domain.Decision {
	quotes := make([]domain.PriceQuote, 0, len(results))
	for _, r := range results {
		if r.OK() {
			quotes = append(quotes, *r.Quote)
		}
	}

	if len(quotes) < 2 {
		return domain.Decision{
			Outcome: domain.OutcomeIndeterminate,
			Reason:  ReasonInsufficientQuotes,
		}
	}

	buy, sell := quotes[0], quotes[0]
	for _, q := range quotes[1:] {
		if q.Price > sell.Price {
			sell = q
		}
		if q.Price < buy.Price {
			buy = q
		}
	}

	pair := sell.Pair.String()

	// All prices identical: both extremes stayed on the same venue.
	if sell.Venue == buy.Venue {
		return domain.Decision{
			Outcome:   domain.OutcomeNoOpportunity,
			Pair:      pair,
			BuyVenue:  buy.Venue,
			SellVenue: sell.Venue,
			BuyPrice:  buy.Price,
			SellPrice: sell.Price,
			NetProfit: roundCents(-params.FeeEstimateUSD),
		}
	}

	gross := roundCents((sell.Price - buy.Price) * params.Amount)
	net := roundCents(gross - params.FeeEstimateUSD)

	dec := domain.Decision{
		Pair:        pair,
		BuyVenue:    buy.Venue,
		SellVenue:   sell.Venue,
		BuyPrice:    buy.Price,
		SellPrice:   sell.Price,
		GrossProfit: gross,
		NetProfit:   net,
	}
	if net > params.MinProfitThreshold {
		dec.Outcome = domain.OutcomeOpportunity
	} else {
		dec.Outcome = domain.OutcomeNoOpportunity
	}
	return dec
}
