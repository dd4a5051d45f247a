package domain

// Token identifies one side of a trading pair. Venues read the fields they
// need: on-chain venues resolve the contract Address and Decimals, exchange
// venues resolve the Symbol.
type Token struct {
	Symbol   string
	Address  string
	Decimals int
}

// TokenPair is the ordered pair being watched. Prices are always expressed as
// quote-token units per one unit of the base token. Immutable after load.
type TokenPair struct {
	Base  Token
	Quote Token
}

// String returns the canonical "BASE/QUOTE" form, e.g. "WETH/USDC".
func (p TokenPair) String() string {
	return p.Base.Symbol + "/" + p.Quote.Symbol
}
