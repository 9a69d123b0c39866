package providers

import (
	"testing"

	"github.com/tonywu212005-glitch/sp500-app/internal/config"
	"github.com/tonywu212005-glitch/sp500-app/internal/provider"
)

func testConfig(apiKey string, yahoo bool) *config.Config {
	return &config.Config{
		Finnhub: config.FinnhubConfig{APIKey: apiKey, RatePerMinute: 60},
		Yahoo:   config.YahooConfig{Enabled: yahoo, RatePerMinute: 120},
		Resolver: config.ResolverConfig{
			WindowDays: 180, HTTPTimeoutSec: 10, Burst: 1,
		},
	}
}

func TestRegisterAllToWithoutKey(t *testing.T) {
	reg := provider.NewRegistry()
	if err := RegisterAllTo(reg, testConfig("", true)); err != nil {
		t.Fatalf("RegisterAllTo: %v", err)
	}

	if !reg.Has("yfinance") {
		t.Error("yfinance should always be registered when enabled")
	}
	if reg.Has("finnhub") {
		t.Error("finnhub must not be registered without a key")
	}
}

func TestRegisterAllToWithKey(t *testing.T) {
	reg := provider.NewRegistry()
	if err := RegisterAllTo(reg, testConfig("fh_test_key_123456", true)); err != nil {
		t.Fatalf("RegisterAllTo: %v", err)
	}

	coverage := reg.ModelCoverage()
	if provs := coverage[provider.ModelCalendarEarnings]; len(provs) != 1 || provs[0] != "finnhub" {
		t.Errorf("CalendarEarnings: got %v, want [finnhub]", provs)
	}
	if provs := coverage[provider.ModelEquityProfile]; len(provs) != 2 {
		t.Errorf("EquityProfile: got %v, want both providers", provs)
	}
}

func TestRegisterAllToYahooDisabled(t *testing.T) {
	reg := provider.NewRegistry()
	if err := RegisterAllTo(reg, testConfig("", false)); err != nil {
		t.Fatalf("RegisterAllTo: %v", err)
	}
	if len(reg.List()) != 0 {
		t.Errorf("got %d providers, want none", len(reg.List()))
	}
}
