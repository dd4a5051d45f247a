package binance

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/arbscan/arbwatch/internal/domain"
)

var ethUsdc = domain.TokenPair{
	Base:  domain.Token{Symbol: "WETH", Decimals: 18},
	Quote: domain.Token{Symbol: "USDC", Decimals: 6},
}

func newTestSource(maxAge time.Duration) *Source {
	return New(Config{
		Name:   "binance",
		Symbol: "ETHUSDC",
		MaxAge: maxAge,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHandleMessageUpdatesMid(t *testing.T) {
	s := newTestSource(time.Second)
	payload := `{"u":400900217,"s":"ETHUSDC","b":"3499.50","B":"31.2","a":"3500.50","A":"40.6"}`
	if err := s.handleMessage([]byte(payload)); err != nil {
		t.Fatalf("handleMessage: %v", err)
	}

	quote, err := s.FetchPrice(context.Background(), ethUsdc)
	if err != nil {
		t.Fatalf("FetchPrice: %v", err)
	}
	if quote.Price != 3500.00 {
		t.Errorf("mid = %v, want 3500.00", quote.Price)
	}
	if quote.Venue != "binance" {
		t.Errorf("venue = %s, want binance", quote.Venue)
	}
}

func TestHandleMessageRejectsBadPayloads(t *testing.T) {
	s := newTestSource(time.Second)
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", `nope`},
		{"missing prices", `{"s":"ETHUSDC"}`},
		{"zero bid", `{"s":"ETHUSDC","b":"0","a":"3500.50"}`},
		{"garbage ask", `{"s":"ETHUSDC","b":"3499.50","a":"banana"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.handleMessage([]byte(tt.payload)); err == nil {
				t.Fatal("expected error")
			}
		})
	}

	// No valid tick ever arrived, so fetching must fail.
	if _, err := s.FetchPrice(context.Background(), ethUsdc); !errors.Is(err, domain.ErrNoQuote) {
		t.Fatalf("FetchPrice error = %v, want ErrNoQuote", err)
	}
}

func TestFetchPriceBeforeFirstTick(t *testing.T) {
	s := newTestSource(time.Second)
	_, err := s.FetchPrice(context.Background(), ethUsdc)
	if !errors.Is(err, domain.ErrNoQuote) {
		t.Fatalf("error = %v, want ErrNoQuote", err)
	}
}

func TestFetchPriceRejectsStaleTick(t *testing.T) {
	s := newTestSource(10 * time.Millisecond)
	payload := `{"s":"ETHUSDC","b":"3499.50","a":"3500.50"}`
	if err := s.handleMessage([]byte(payload)); err != nil {
		t.Fatalf("handleMessage: %v", err)
	}

	time.Sleep(30 * time.Millisecond)

	_, err := s.FetchPrice(context.Background(), ethUsdc)
	if !errors.Is(err, domain.ErrStaleQuote) {
		t.Fatalf("error = %v, want ErrStaleQuote", err)
	}
}

func TestMidPrice(t *testing.T) {
	mid, err := midPrice(bookTicker{BidPx: "100.00", AskPx: "102.00"})
	if err != nil {
		t.Fatalf("midPrice: %v", err)
	}
	if mid != 101.00 {
		t.Errorf("mid = %v, want 101.00", mid)
	}
}
