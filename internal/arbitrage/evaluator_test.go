package arbitrage

import (
	"testing"
	"time"

	"github.com/arbscan/arbwatch/internal/domain"
)

var wethUsdc = domain.TokenPair{
	Base:  domain.Token{Symbol: "WETH", Decimals: 18},
	Quote: domain.Token{Symbol: "USDC", Decimals: 6},
}

func quote(venue string, price float64) domain.PriceResult {
	return domain.PriceResult{
		Venue: venue,
		Quote: &domain.PriceQuote{
			Venue:     venue,
			Pair:      wethUsdc,
			Price:     price,
			FetchedAt: time.Now(),
		},
	}
}

func failure(venue string, kind domain.FailureKind) domain.PriceResult {
	return domain.PriceResult{
		Venue:   venue,
		Failure: &domain.FetchFailure{Kind: kind, Reason: string(kind)},
	}
}

func params(amount, fee, threshold float64) domain.TradeParameters {
	return domain.TradeParameters{
		Amount:             amount,
		FeeEstimateUSD:     fee,
		MinProfitThreshold: threshold,
	}
}

func TestEvaluateBoundaryIsExclusive(t *testing.T) {
	// A=3505.00, B=3498.00, amount=1, fee=2.00, threshold=5.00:
	// gross=7.00, net=5.00 -> exactly at threshold -> NoOpportunity.
	dec := Evaluate(
		[]domain.PriceResult{quote("a", 3505.00), quote("b", 3498.00)},
		params(1, 2.00, 5.00),
	)
	if dec.Outcome != domain.OutcomeNoOpportunity {
		t.Fatalf("outcome = %s, want no_opportunity", dec.Outcome)
	}
	if dec.GrossProfit != 7.00 {
		t.Errorf("gross = %v, want 7.00", dec.GrossProfit)
	}
	if dec.NetProfit != 5.00 {
		t.Errorf("net = %v, want 5.00", dec.NetProfit)
	}
}

func TestEvaluateOpportunityAboveThreshold(t *testing.T) {
	// A=3510.00, B=3498.00: gross=12.00, net=10.00 -> Opportunity, sell=a buy=b.
	dec := Evaluate(
		[]domain.PriceResult{quote("a", 3510.00), quote("b", 3498.00)},
		params(1, 2.00, 5.00),
	)
	if dec.Outcome != domain.OutcomeOpportunity {
		t.Fatalf("outcome = %s, want opportunity", dec.Outcome)
	}
	if dec.SellVenue != "a" || dec.BuyVenue != "b" {
		t.Errorf("sell=%s buy=%s, want sell=a buy=b", dec.SellVenue, dec.BuyVenue)
	}
	if dec.NetProfit != 10.00 {
		t.Errorf("net = %v, want 10.00", dec.NetProfit)
	}
}

func TestEvaluateSelectsExtremesRegardlessOfOrder(t *testing.T) {
	results := []domain.PriceResult{
		quote("mid", 3500.00),
		quote("low", 3490.00),
		quote("high", 3512.00),
	}
	for i := 0; i < len(results); i++ {
		rotated := append(append([]domain.PriceResult{}, results[i:]...), results[:i]...)
		dec := Evaluate(rotated, params(1, 0, 0))
		if dec.SellVenue != "high" || dec.BuyVenue != "low" {
			t.Errorf("rotation %d: sell=%s buy=%s, want sell=high buy=low", i, dec.SellVenue, dec.BuyVenue)
		}
	}
}

func TestEvaluateInsufficientQuotes(t *testing.T) {
	tests := []struct {
		name    string
		results []domain.PriceResult
	}{
		{"empty", nil},
		{"one quote", []domain.PriceResult{quote("a", 3500)}},
		{"one quote two failures", []domain.PriceResult{
			quote("a", 3500),
			failure("b", domain.FailureTimeout),
			failure("c", domain.FailureVenueError),
		}},
		{"all timed out", []domain.PriceResult{
			failure("a", domain.FailureTimeout),
			failure("b", domain.FailureTimeout),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec := Evaluate(tt.results, params(1, 2, 5))
			if dec.Outcome != domain.OutcomeIndeterminate {
				t.Fatalf("outcome = %s, want indeterminate", dec.Outcome)
			}
			if dec.Reason != ReasonInsufficientQuotes {
				t.Errorf("reason = %q, want %q", dec.Reason, ReasonInsufficientQuotes)
			}
		})
	}
}

func TestEvaluatePartialFailureStillDecides(t *testing.T) {
	dec := Evaluate([]domain.PriceResult{
		quote("a", 3510.00),
		failure("b", domain.FailureTimeout),
		quote("c", 3498.00),
	}, params(1, 2.00, 5.00))
	if dec.Outcome != domain.OutcomeOpportunity {
		t.Fatalf("outcome = %s, want opportunity despite one failure", dec.Outcome)
	}
	if dec.SellVenue != "a" || dec.BuyVenue != "c" {
		t.Errorf("sell=%s buy=%s, want sell=a buy=c", dec.SellVenue, dec.BuyVenue)
	}
}

func TestEvaluateIdenticalPrices(t *testing.T) {
	dec := Evaluate(
		[]domain.PriceResult{quote("a", 3500.00), quote("b", 3500.00)},
		params(1, 2.00, 5.00),
	)
	if dec.Outcome != domain.OutcomeNoOpportunity {
		t.Fatalf("outcome = %s, want no_opportunity on tie", dec.Outcome)
	}
	if dec.NetProfit != -2.00 {
		t.Errorf("net = %v, want -2.00 (fee only)", dec.NetProfit)
	}
}

func TestEvaluateRoundsToCents(t *testing.T) {
	// Spread of 7.004999 rounds to 7.00 gross; with fee 2.00 and threshold
	// 5.00 the rounded net of 5.00 must NOT clear the exclusive threshold.
	dec := Evaluate(
		[]domain.PriceResult{quote("a", 3505.004999), quote("b", 3498.00)},
		params(1, 2.00, 5.00),
	)
	if dec.GrossProfit != 7.00 {
		t.Errorf("gross = %v, want 7.00 after cent rounding", dec.GrossProfit)
	}
	if dec.Outcome != domain.OutcomeNoOpportunity {
		t.Errorf("outcome = %s, want no_opportunity", dec.Outcome)
	}

	// One more sub-cent above and the rounded gross becomes 7.01 -> net 5.01.
	dec = Evaluate(
		[]domain.PriceResult{quote("a", 3505.005001), quote("b", 3498.00)},
		params(1, 2.00, 5.00),
	)
	if dec.NetProfit != 5.01 {
		t.Errorf("net = %v, want 5.01", dec.NetProfit)
	}
	if dec.Outcome != domain.OutcomeOpportunity {
		t.Errorf("outcome = %s, want opportunity", dec.Outcome)
	}
}

func TestEvaluateIsIdempotent(t *testing.T) {
	results := []domain.PriceResult{quote("a", 3510.00), quote("b", 3498.00)}
	p := params(1, 2.00, 5.00)
	first := Evaluate(results, p)
	second := Evaluate(results, p)
	if first != second {
		t.Fatalf("evaluations differ:\n  first:  %+v\n  second: %+v", first, second)
	}
}
