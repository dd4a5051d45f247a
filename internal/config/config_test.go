package config

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestValidateRequiresTwoVenues(t *testing.T) {
	cfg := Defaults()
	cfg.Venues = cfg.Venues[:1]
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for single venue")
	}
	if !strings.Contains(err.Error(), "at least 2 venues") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsBadTradeParams(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero amount", func(c *Config) { c.Trade.Amount = 0 }, "amount must be > 0"},
		{"negative amount", func(c *Config) { c.Trade.Amount = -1 }, "amount must be > 0"},
		{"negative fee", func(c *Config) { c.Trade.FeeEstimateUSD = -0.5 }, "fee_estimate_usd must be >= 0"},
		{"zero interval", func(c *Config) { c.Scan.Interval.Duration = 0 }, "interval must be > 0"},
		{"timeout exceeds interval", func(c *Config) {
			c.Scan.FetchTimeout.Duration = 20 * time.Second
		}, "fetch_timeout must not exceed interval"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestValidateRejectsDuplicateVenueNames(t *testing.T) {
	cfg := Defaults()
	cfg.Venues[1].Name = cfg.Venues[0].Name
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "duplicate venue name") {
		t.Fatalf("expected duplicate name error, got %v", err)
	}
}

func TestValidateRejectsBadRouterAddress(t *testing.T) {
	cfg := Defaults()
	cfg.Venues[0].Router = "not-an-address"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "not a valid address") {
		t.Fatalf("expected router address error, got %v", err)
	}
}

func TestValidateBinanceVenueNeedsSymbol(t *testing.T) {
	cfg := Defaults()
	cfg.Venues = append(cfg.Venues, VenueConfig{
		Name: "binance",
		Kind: VenueKindBinance,
	})
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "symbol is required") {
		t.Fatalf("expected symbol error, got %v", err)
	}
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "bogus"
	cfg.Trade.Amount = -1
	cfg.Venues = nil
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"unknown mode", "amount must be > 0", "at least 2 venues"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("combined error missing %q: %v", want, err)
		}
	}
}

func TestDurationUnmarshalText(t *testing.T) {
	var d duration
	if err := d.UnmarshalText([]byte("15s")); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.Duration != 15*time.Second {
		t.Fatalf("got %v, want 15s", d.Duration)
	}
	if err := d.UnmarshalText([]byte("banana")); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ARBWATCH_TRADE_AMOUNT", "2.5")
	t.Setenv("ARBWATCH_SCAN_INTERVAL", "30s")
	t.Setenv("ARBWATCH_MODE", "full")
	t.Setenv("ARBWATCH_NOTIFY_EVENTS", "opportunity, indeterminate")

	cfg := Defaults()
	applyEnvOverrides(&cfg)

	if cfg.Trade.Amount != 2.5 {
		t.Errorf("trade amount = %v, want 2.5", cfg.Trade.Amount)
	}
	if cfg.Scan.Interval.Duration != 30*time.Second {
		t.Errorf("interval = %v, want 30s", cfg.Scan.Interval.Duration)
	}
	if cfg.Mode != "full" {
		t.Errorf("mode = %q, want full", cfg.Mode)
	}
	if len(cfg.Notify.Events) != 2 || cfg.Notify.Events[1] != "indeterminate" {
		t.Errorf("events = %v, want [opportunity indeterminate]", cfg.Notify.Events)
	}
}
