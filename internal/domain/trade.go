package domain

// TradeParameters are the hypothetical trade inputs used to turn a spread
// into a simulated profit figure. Loaded from configuration, immutable per
// run; validation (amount > 0, fee >= 0) happens at startup.
type TradeParameters struct {
	Amount             float64 // base token size of the hypothetical trade
	FeeEstimateUSD     float64 // fixed gas/fee estimate subtracted from gross
	MinProfitThreshold float64 // exclusive USD threshold for an opportunity
}
