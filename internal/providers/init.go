// Package providers creates the concrete data providers from configuration
// and registers them with a provider registry.
package providers

import (
	"context"

	"github.com/tonywu212005-glitch/sp500-app/internal/config"
	"github.com/tonywu212005-glitch/sp500-app/internal/infra"
	"github.com/tonywu212005-glitch/sp500-app/internal/logger"
	"github.com/tonywu212005-glitch/sp500-app/internal/provider"
	"github.com/tonywu212005-glitch/sp500-app/internal/providers/finnhub"
	"github.com/tonywu212005-glitch/sp500-app/internal/providers/yfinance"
)

// RegisterAllTo registers every configured provider to reg. Each provider
// gets one rate limiter sized to its quota, shared by all of its fetchers.
// Finnhub is only registered when an API key is present; resolutions routed
// to it then report provider_unavailable.
func RegisterAllTo(reg *provider.Registry, cfg *config.Config) error {
	ctx := context.Background()
	timeout := cfg.Resolver.HTTPTimeout()
	burst := cfg.Resolver.Burst

	// --- YFinance (free, no API key) ---
	if cfg.Yahoo.Enabled {
		yf := yfinance.New(yfinance.Options{
			BaseURL: cfg.Yahoo.BaseURL,
			Limiter: infra.NewPerMinuteLimiter(cfg.Yahoo.RatePerMinute, burst),
			Timeout: timeout,
		})
		if err := yf.Init(nil); err != nil {
			return err
		}
		if err := reg.Register(yf); err != nil {
			return err
		}
	}

	// --- Finnhub (requires API key) ---
	if cfg.Finnhub.APIKey == "" {
		logger.Warn(ctx, "finnhub not registered: no API key (set FINNHUB_API_KEY)")
		return nil
	}
	fh := finnhub.New(finnhub.Options{
		BaseURL: cfg.Finnhub.BaseURL,
		Limiter: infra.NewPerMinuteLimiter(cfg.Finnhub.RatePerMinute, burst),
		Timeout: timeout,
		Window:  cfg.Resolver.WindowDays,
	})
	if err := fh.Init(map[string]string{"api_key": cfg.Finnhub.APIKey}); err != nil {
		return err
	}
	return reg.Register(fh)
}
