// Package yfinance implements the Yahoo Finance data provider.
// It wraps the public v7 quote API, which needs no API key, and returns the
// quote mapping as a raw profile payload.
package yfinance

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/tonywu212005-glitch/sp500-app/internal/infra"
	"github.com/tonywu212005-glitch/sp500-app/internal/provider"
)

const (
	providerName   = "yfinance"
	defaultBaseURL = "https://query1.finance.yahoo.com"
)

// Options configures a Provider. Zero values fall back to defaults.
type Options struct {
	BaseURL  string
	Limiter  *infra.RateLimiter // shared by every fetcher of this provider
	Timeout  time.Duration
	CacheTTL time.Duration
}

// Provider implements provider.Provider for Yahoo Finance.
type Provider struct {
	provider.BaseProvider
	baseURL string
}

// New creates a new YFinance provider and registers its fetchers.
func New(opts Options) *Provider {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Limiter == nil {
		opts.Limiter = infra.NewPerMinuteLimiter(120, 1)
	}

	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Yahoo Finance - free quote data with earnings timestamps and market cap",
			"https://finance.yahoo.com",
			nil, // no credentials required
		),
		baseURL: opts.BaseURL,
	}

	p.RegisterFetcher(newEquityProfileFetcher(opts.BaseURL, provider.FetcherOptions{
		CacheTTL: opts.CacheTTL,
		Limiter:  opts.Limiter,
		Timeout:  opts.Timeout,
	}))
	return p
}

// Ping checks connectivity to Yahoo Finance.
func (p *Provider) Ping(ctx context.Context) error {
	body, _, err := infra.DoGet(ctx, quoteURL(p.baseURL, "AAPL"), jsonHeaders())
	if err != nil {
		return fmt.Errorf("yfinance ping: %w", err)
	}
	body.Close()
	return nil
}

// --- Shared helpers ---

func jsonHeaders() map[string]string {
	return map[string]string{"Accept": "application/json"}
}

func quoteURL(base, yfTicker string) string {
	return base + "/v7/finance/quote?" + url.Values{"symbols": {yfTicker}}.Encode()
}
