// Package univ2 implements a PriceSource against Uniswap V2-style router
// contracts (QuickSwap, SushiSwap, and other forks). The price of one base
// unit is read with a single eth_call to getAmountsOut, so no ABI bindings
// need to be generated.
package univ2

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/arbscan/arbwatch/internal/domain"
)

// routerABIJSON is the minimal router fragment needed for quoting.
const routerABIJSON = `[{
	"name": "getAmountsOut",
	"type": "function",
	"stateMutability": "view",
	"inputs": [
		{"name": "amountIn", "type": "uint256"},
		{"name": "path", "type": "address[]"}
	],
	"outputs": [
		{"name": "amounts", "type": "uint256[]"}
	]
}]`

var routerABI abi.ABI

func init() {
	parsed, err := abi.JSON(strings.NewReader(routerABIJSON))
	if err != nil {
		panic(fmt.Sprintf("univ2: parse router abi: %v", err))
	}
	routerABI = parsed
}

// ContractCaller is the slice of the ethclient surface the quoter needs.
// *ethclient.Client satisfies it.
type ContractCaller interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Quoter quotes the watched pair on one router. Safe for concurrent use; all
// state is immutable after construction.
type Quoter struct {
	name     string
	caller   ContractCaller
	router   common.Address
	base     common.Address
	quote    common.Address
	amountIn *big.Int // one base unit, 10^base.Decimals
	quoteDiv *big.Int // 10^quote.Decimals
}

// NewQuoter creates a Quoter for pair on the router at routerAddr. The pair's
// token addresses and decimals must already be validated by configuration.
func NewQuoter(name string, caller ContractCaller, routerAddr string, pair domain.TokenPair) *Quoter {
	return &Quoter{
		name:     name,
		caller:   caller,
		router:   common.HexToAddress(routerAddr),
		base:     common.HexToAddress(pair.Base.Address),
		quote:    common.HexToAddress(pair.Quote.Address),
		amountIn: pow10(pair.Base.Decimals),
		quoteDiv: pow10(pair.Quote.Decimals),
	}
}

// Name returns the venue identifier.
func (q *Quoter) Name() string { return q.name }

// FetchPrice asks the router how much quote token one base unit buys and
// converts the raw amount to a decimal price.
func (q *Quoter) FetchPrice(ctx context.Context, pair domain.TokenPair) (domain.PriceQuote, error) {
	data, err := routerABI.Pack("getAmountsOut", q.amountIn, []common.Address{q.base, q.quote})
	if err != nil {
		return domain.PriceQuote{}, fmt.Errorf("univ2: pack getAmountsOut: %w", err)
	}

	out, err := q.caller.CallContract(ctx, ethereum.CallMsg{To: &q.router, Data: data}, nil)
	if err != nil {
		return domain.PriceQuote{}, fmt.Errorf("univ2: call %s router: %w", q.name, err)
	}

	price, err := decodeAmountsOut(out, q.quoteDiv)
	if err != nil {
		return domain.PriceQuote{}, fmt.Errorf("univ2: %s: %w", q.name, err)
	}

	return domain.PriceQuote{
		Venue:     q.name,
		Pair:      pair,
		Price:     price,
		FetchedAt: time.Now().UTC(),
	}, nil
}

// decodeAmountsOut unpacks the getAmountsOut return data and converts the
// final hop's output amount to a decimal price.
func decodeAmountsOut(out []byte, quoteDiv *big.Int) (float64, error) {
	values, err := routerABI.Unpack("getAmountsOut", out)
	if err != nil {
		return 0, fmt.Errorf("unpack getAmountsOut: %w", err)
	}
	amounts, ok := values[0].([]*big.Int)
	if !ok || len(amounts) == 0 {
		return 0, fmt.Errorf("unexpected getAmountsOut result shape")
	}

	amountOut := amounts[len(amounts)-1]
	price, _ := new(big.Rat).SetFrac(amountOut, quoteDiv).Float64()
	return price, nil
}

func pow10(decimals int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
}

// Compile-time interface check.
var _ domain.PriceSource = (*Quoter)(nil)
