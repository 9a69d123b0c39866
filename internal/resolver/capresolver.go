package resolver

import (
	"context"

	"github.com/tonywu212005-glitch/sp500-app/internal/logger"
	"github.com/tonywu212005-glitch/sp500-app/internal/provider"
	"github.com/tonywu212005-glitch/sp500-app/pkg/models"
	"github.com/tonywu212005-glitch/sp500-app/pkg/utils"
)

// CapOptions configures a CapResolver.
type CapOptions struct {
	Providers []string // profile providers in order; default [finnhub, yfinance]
}

// CapResolver resolves market capitalization from profile payloads. It has
// no synthetic fallback: a failure yields 0 and ConfidenceAbsent.
type CapResolver struct {
	reg  *provider.Registry
	opts CapOptions
}

// NewCapResolver creates a resolver over the providers in reg.
func NewCapResolver(reg *provider.Registry, opts CapOptions) *CapResolver {
	if opts.Providers == nil {
		opts.Providers = []string{"finnhub", "yfinance"}
	}
	return &CapResolver{reg: reg, opts: opts}
}

// Resolve returns the market cap of symbol in millions.
func (r *CapResolver) Resolve(ctx context.Context, symbol string) models.CapResolution {
	symbol = utils.NormalizeTicker(symbol)
	op := logger.StartOperation(ctx, "resolve_market_cap", "symbol", symbol)
	ctx = op.Context()

	res := r.resolve(ctx, symbol)
	op.End("status", string(res.Status), "confidence", string(res.Confidence))
	return res
}

func (r *CapResolver) resolve(ctx context.Context, symbol string) models.CapResolution {
	tried := newAttempts()
	if symbol == "" {
		return absentCap(symbol, tried.worst, tried.detail())
	}

	for _, name := range r.opts.Providers {
		result, err := r.reg.FetchFrom(ctx, name, provider.ModelEquityProfile, provider.QueryParams{
			provider.ParamSymbol: symbol,
		})
		if err != nil {
			status := classifyFrom(r.reg, name, err)
			tried.record(name, status)
			logger.Debug(ctx, "market cap provider failed", "provider", name, "symbol", symbol, "status", string(status), "error", err.Error())
			continue
		}
		if v, ok := ProbeMarketCap(result.Data); ok {
			return models.CapResolution{
				Symbol:            symbol,
				MarketCapMillions: v,
				Confidence:        models.ConfidenceConfirmed,
				Source:            name + " profile",
				Status:            models.StatusOK,
				Detail:            models.StatusOK.Message(),
			}
		}
	}
	return absentCap(symbol, tried.worst, tried.detail())
}

func absentCap(symbol string, status models.Status, detail string) models.CapResolution {
	if status == models.StatusNoData {
		detail = "market cap not reported"
	}
	return models.CapResolution{
		Symbol:     symbol,
		Confidence: models.ConfidenceAbsent,
		Status:     status,
		Detail:     detail,
	}
}
