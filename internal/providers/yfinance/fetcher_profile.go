package yfinance

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tonywu212005-glitch/sp500-app/internal/infra"
	"github.com/tonywu212005-glitch/sp500-app/internal/provider"
	"github.com/tonywu212005-glitch/sp500-app/pkg/utils"
)

// --- EquityProfile fetcher ---

// equityProfileFetcher returns the first quote mapping untouched, so the
// resolvers can probe earningsTimestamp, marketCap and friends. When the
// quoteResponse envelope is missing the whole payload is returned.
type equityProfileFetcher struct {
	provider.BaseFetcher
	baseURL string
}

func newEquityProfileFetcher(baseURL string, opts provider.FetcherOptions) *equityProfileFetcher {
	return &equityProfileFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelEquityProfile,
			"Quote payload (earnings timestamps, market cap) from Yahoo Finance",
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

	yfTicker := utils.ToHyphenClass(params[provider.ParamSymbol])
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}
	callCtx, cancel := f.WithDeadline(ctx)
	defer cancel()

	var payload any
	if err := infra.GetJSON(callCtx, quoteURL(f.baseURL, yfTicker), &payload); err != nil {
		return nil, fmt.Errorf("yfinance quote %s: %w", yfTicker, err)
	}

	data, err := unwrapQuote(payload)
	if err != nil {
		return nil, fmt.Errorf("yfinance quote %s: %w", yfTicker, err)
	}

	f.CacheSet(cacheKey, data)
	return &provider.FetchResult{Data: data}, nil
}

// unwrapQuote picks quoteResponse.result[0]. An empty result list is an
// unknown symbol and yields an empty mapping, not an error.
func unwrapQuote(payload any) (any, error) {
	root, ok := payload.(map[string]any)
	if !ok {
		return payload, nil
	}
	qr, ok := root["quoteResponse"].(map[string]any)
	if !ok {
		return payload, nil
	}
	if raw, ok := qr["error"].(map[string]any); ok && len(raw) > 0 {
		var e yfError
		b, _ := json.Marshal(raw)
		_ = json.Unmarshal(b, &e)
		return nil, fmt.Errorf("yahoo API error %s: %s", e.Code, e.Description)
	}
	results, _ := qr["result"].([]any)
	if len(results) == 0 {
		return map[string]any{}, nil
	}
	return results[0], nil
}
