package provider

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/tonywu212005-glitch/sp500-app/internal/infra"
)

const defaultFetchTimeout = 10 * time.Second

// BaseFetcher provides common functionality for fetcher implementations.
// Embed it in concrete fetchers to get caching, rate limiting and a
// per-call deadline. The limiter is shared by every fetcher of a provider.
type BaseFetcher struct {
	model       ModelType
	description string
	required    []string
	optional    []string
	cache       *infra.Cache
	limiter     *infra.RateLimiter
	timeout     time.Duration
}

// FetcherOptions tunes a BaseFetcher.
type FetcherOptions struct {
	CacheTTL time.Duration      // 0 disables the in-process cache
	Limiter  *infra.RateLimiter // nil means unlimited
	Timeout  time.Duration      // 0 means defaultFetchTimeout
}

// NewBaseFetcher creates a base fetcher without cache or rate limit.
func NewBaseFetcher(model ModelType, desc string, required, optional []string) BaseFetcher {
	return NewBaseFetcherWithOpts(model, desc, required, optional, FetcherOptions{})
}

// NewBaseFetcherWithOpts creates a base fetcher with a cache TTL, a shared
// limiter and a per-call timeout.
func NewBaseFetcherWithOpts(model ModelType, desc string, required, optional []string, opts FetcherOptions) BaseFetcher {
	limiter := opts.Limiter
	if limiter == nil {
		limiter = infra.NewPerMinuteLimiter(0, 1)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return BaseFetcher{
		model:       model,
		description: desc,
		required:    required,
		optional:    optional,
		cache:       infra.NewCache(opts.CacheTTL),
		limiter:     limiter,
		timeout:     timeout,
	}
}

func (b *BaseFetcher) ModelType() ModelType     { return b.model }
func (b *BaseFetcher) Description() string      { return b.description }
func (b *BaseFetcher) RequiredParams() []string { return b.required }
func (b *BaseFetcher) OptionalParams() []string { return b.optional }

// CacheGet retrieves a value from the fetcher's cache.
func (b *BaseFetcher) CacheGet(key string) (any, bool) {
	return b.cache.Get(key)
}

// CacheSet stores a value in the fetcher's cache.
func (b *BaseFetcher) CacheSet(key string, value any) {
	b.cache.Set(key, value)
}

// RateLimit waits until a request slot is available.
func (b *BaseFetcher) RateLimit(ctx context.Context) error {
	return b.limiter.Wait(ctx)
}

// WithDeadline derives the context for one upstream call.
func (b *BaseFetcher) WithDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, b.timeout)
}

// CacheKey builds a cache key from model type and query parameters.
// Provider selection and internal (underscore) keys are left out so
// credentials never end up in a key.
func CacheKey(model ModelType, params QueryParams) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == ParamProvider || strings.HasPrefix(k, "_") {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(string(model))
	for _, k := range keys {
		sb.WriteString(":" + k + "=" + params[k])
	}
	return sb.String()
}

// BaseProvider provides common functionality for provider implementations.
type BaseProvider struct {
	info        ProviderInfo
	fetchers    map[ModelType]Fetcher
	credentials map[string]string
}

// NewBaseProvider creates a base provider.
func NewBaseProvider(name, description, website string, creds []ProviderCredential) BaseProvider {
	return BaseProvider{
		info: ProviderInfo{
			Name:        name,
			Description: description,
			Website:     website,
			Credentials: creds,
		},
		fetchers:    make(map[ModelType]Fetcher),
		credentials: make(map[string]string),
	}
}

func (bp *BaseProvider) Info() ProviderInfo { return bp.info }

func (bp *BaseProvider) Init(credentials map[string]string) error {
	for _, cred := range bp.info.Credentials {
		if !cred.Required {
			continue
		}
		if val, ok := credentials[cred.Name]; !ok || val == "" {
			return &ErrInvalidCredentials{
				Provider: bp.info.Name,
				Detail:   "missing required credential: " + cred.Name,
			}
		}
	}
	bp.credentials = credentials
	return nil
}

func (bp *BaseProvider) Fetcher(model ModelType) Fetcher {
	return bp.fetchers[model]
}

// SupportedModels returns the registered model types in a stable order.
func (bp *BaseProvider) SupportedModels() []ModelType {
	models := make([]ModelType, 0, len(bp.fetchers))
	for m := range bp.fetchers {
		models = append(models, m)
	}
	sort.Slice(models, func(i, j int) bool { return models[i] < models[j] })
	return models
}

func (bp *BaseProvider) Ping(ctx context.Context) error {
	return nil
}

// RegisterFetcher adds a fetcher to this provider.
func (bp *BaseProvider) RegisterFetcher(f Fetcher) {
	bp.fetchers[f.ModelType()] = f
	bp.info.Models = bp.SupportedModels()
}

// Credential returns a stored credential value.
func (bp *BaseProvider) Credential(name string) string {
	return bp.credentials[name]
}
