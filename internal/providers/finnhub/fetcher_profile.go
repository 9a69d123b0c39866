package finnhub

import (
	"context"
	"fmt"
	"net/url"

	"github.com/tonywu212005-glitch/sp500-app/internal/infra"
	"github.com/tonywu212005-glitch/sp500-app/internal/provider"
	"github.com/tonywu212005-glitch/sp500-app/pkg/utils"
)

// --- EquityProfile fetcher ---

// equityProfileFetcher returns the /stock/profile2 mapping undecoded
// (map[string]any). An unknown symbol yields an empty mapping.
type equityProfileFetcher struct {
	provider.BaseFetcher
	baseURL string
}

func newEquityProfileFetcher(baseURL string, opts provider.FetcherOptions) *equityProfileFetcher {
	return &equityProfileFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelEquityProfile,
			"Company profile (market capitalization in millions) from Finnhub",
			[]string{provider.ParamSymbol},
			nil,
			opts,
		),
		baseURL: baseURL,
	}
}

func (f *equityProfileFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	cacheKey := provider.CacheKey(f.ModelType(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return &provider.FetchResult{Data: cached, Cached: true}, nil
	}

	symbol := utils.ToDotClass(params[provider.ParamSymbol])
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}
	callCtx, cancel := f.WithDeadline(ctx)
	defer cancel()

	var payload map[string]any
	u := endpoint(f.baseURL, "/stock/profile2", url.Values{"symbol": {symbol}}, params[tokenParam])
	if err := infra.GetJSON(callCtx, u, &payload); err != nil {
		return nil, fmt.Errorf("finnhub profile %s: %w", symbol, err)
	}
	if payload == nil {
		payload = map[string]any{}
	}

	f.CacheSet(cacheKey, payload)
	return &provider.FetchResult{Data: payload}, nil
}
