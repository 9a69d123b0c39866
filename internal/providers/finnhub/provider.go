// Package finnhub implements the Finnhub data provider.
// It serves the earnings calendar and the company profile (market cap)
// over Finnhub's REST API with token authentication.
//
// Free tier: 60 requests/minute.
// Docs: https://finnhub.io/docs/api
package finnhub

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"cloud.google.com/go/civil"

	"github.com/tonywu212005-glitch/sp500-app/internal/infra"
	"github.com/tonywu212005-glitch/sp500-app/internal/provider"
)

const (
	providerName   = "finnhub"
	defaultBaseURL = "https://finnhub.io/api/v1"
	credAPIKey     = "api_key"

	// tokenParam carries the credential from the provider to its fetchers.
	// Underscore keys never reach cache keys or logs.
	tokenParam = "_finnhub_token"
)

// Options configures a Provider. Zero values fall back to defaults.
type Options struct {
	BaseURL  string
	Limiter  *infra.RateLimiter // shared by every fetcher of this provider
	Timeout  time.Duration      // per upstream call
	CacheTTL time.Duration
	Window   int // calendar lookahead in days when end_date is absent

	now func() time.Time
}

// Provider implements provider.Provider for Finnhub.
type Provider struct {
	provider.BaseProvider
	baseURL string
	apiKey  string
	now     func() time.Time
}

// New creates a new Finnhub provider and registers its fetchers.
func New(opts Options) *Provider {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Limiter == nil {
		opts.Limiter = infra.NewPerMinuteLimiter(60, 1)
	}
	if opts.Window <= 0 {
		opts.Window = 180
	}
	if opts.now == nil {
		opts.now = time.Now
	}

	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Finnhub - earnings calendar and company profiles",
			"https://finnhub.io",
			[]provider.ProviderCredential{
				{
					Name:        credAPIKey,
					Description: "Finnhub API key from finnhub.io",
					Required:    true,
					EnvVar:      "FINNHUB_API_KEY",
				},
			},
		),
		baseURL: opts.BaseURL,
		now:     opts.now,
	}

	fo := provider.FetcherOptions{CacheTTL: opts.CacheTTL, Limiter: opts.Limiter, Timeout: opts.Timeout}
	p.RegisterFetcher(newCalendarEarningsFetcher(opts.BaseURL, opts.Window, opts.now, fo))
	p.RegisterFetcher(newEquityProfileFetcher(opts.BaseURL, fo))
	return p
}

// Init stores the API key.
func (p *Provider) Init(credentials map[string]string) error {
	if err := p.BaseProvider.Init(credentials); err != nil {
		return err
	}
	p.apiKey = credentials[credAPIKey]
	return nil
}

// Ping checks connectivity and the token against the profile endpoint.
func (p *Provider) Ping(ctx context.Context) error {
	u := endpoint(p.baseURL, "/stock/profile2", url.Values{"symbol": {"AAPL"}}, p.apiKey)
	body, _, err := infra.DoGet(ctx, u, jsonHeaders())
	if err != nil {
		return fmt.Errorf("finnhub ping: %w", err)
	}
	body.Close()
	return nil
}

// Fetcher returns a wrapper that injects the token into query params
// before delegating, so fetchers never see provider state.
func (p *Provider) Fetcher(model provider.ModelType) provider.Fetcher {
	inner := p.BaseProvider.Fetcher(model)
	if inner == nil {
		return nil
	}
	return &tokenInjector{inner: inner, token: &p.apiKey}
}

type tokenInjector struct {
	inner provider.Fetcher
	token *string
}

func (w *tokenInjector) ModelType() provider.ModelType { return w.inner.ModelType() }
func (w *tokenInjector) Description() string           { return w.inner.Description() }
func (w *tokenInjector) RequiredParams() []string      { return w.inner.RequiredParams() }
func (w *tokenInjector) OptionalParams() []string      { return w.inner.OptionalParams() }

func (w *tokenInjector) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	enriched := make(provider.QueryParams, len(params)+1)
	for k, v := range params {
		enriched[k] = v
	}
	enriched[tokenParam] = *w.token
	return w.inner.Fetch(ctx, enriched)
}

// --- Shared helpers ---

func jsonHeaders() map[string]string {
	return map[string]string{"Accept": "application/json"}
}

// endpoint builds a Finnhub URL. The token is appended last.
func endpoint(base, path string, q url.Values, token string) string {
	if q == nil {
		q = url.Values{}
	}
	if token != "" {
		q.Set("token", token)
	}
	return base + path + "?" + q.Encode()
}

func newResult(data any, now time.Time) *provider.FetchResult {
	return &provider.FetchResult{Data: data, FetchedAt: now}
}

func newCachedResult(data any, now time.Time) *provider.FetchResult {
	return &provider.FetchResult{Data: data, FetchedAt: now, Cached: true}
}

// dateRange reads start_date/end_date from params, defaulting to
// [today, today+window].
func dateRange(params provider.QueryParams, today civil.Date, window int) (civil.Date, civil.Date, error) {
	from, to := today, today.AddDays(window)
	if s := params[provider.ParamStartDate]; s != "" {
		d, err := civil.ParseDate(s)
		if err != nil {
			return from, to, fmt.Errorf("invalid %s %q: %w", provider.ParamStartDate, s, err)
		}
		from = d
	}
	if s := params[provider.ParamEndDate]; s != "" {
		d, err := civil.ParseDate(s)
		if err != nil {
			return from, to, fmt.Errorf("invalid %s %q: %w", provider.ParamEndDate, s, err)
		}
		to = d
	}
	return from, to, nil
}
