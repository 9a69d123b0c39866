package provider

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tonywu212005-glitch/sp500-app/internal/infra"
)

// mockFetcher implements the Fetcher interface for testing.
type mockFetcher struct {
	BaseFetcher
	fetchFn func(ctx context.Context, params QueryParams) (*FetchResult, error)
}

func newMockFetcher(model ModelType, required []string) *mockFetcher {
	return &mockFetcher{
		BaseFetcher: NewBaseFetcher(model, "mock fetcher for "+string(model), required, nil),
	}
}

func (m *mockFetcher) Fetch(ctx context.Context, params QueryParams) (*FetchResult, error) {
	if m.fetchFn != nil {
		return m.fetchFn(ctx, params)
	}
	return &FetchResult{Data: "mock-data"}, nil
}

// mockProvider implements the Provider interface for testing.
type mockProvider struct {
	BaseProvider
}

func newMockProvider(name string, models ...ModelType) *mockProvider {
	mp := &mockProvider{
		BaseProvider: NewBaseProvider(name, "Mock "+name, "https://example.com", nil),
	}
	for _, m := range models {
		mp.RegisterFetcher(newMockFetcher(m, []string{ParamSymbol}))
	}
	return mp
}

// --- Registry Tests ---

func TestRegistryRegisterAndGet(t *testing.T) {
	reg := NewRegistry()
	p := newMockProvider("test-provider", ModelCalendarEarnings, ModelEquityProfile)

	if err := p.Init(nil); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := reg.Register(p); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	got, err := reg.Get("test-provider")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Info().Name != "test-provider" {
		t.Errorf("got name %s, want test-provider", got.Info().Name)
	}
	if !reg.Has("test-provider") || reg.Has("other") {
		t.Error("Has reports the wrong membership")
	}
}

func TestRegistryRejectsEmptyName(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(newMockProvider("", ModelEquityProfile)); err == nil {
		t.Error("expected error for empty provider name")
	}
}

func TestRegistryGetNotFound(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Get("nonexistent")
	var nf *ErrProviderNotFound
	if !errors.As(err, &nf) {
		t.Fatalf("got %T, want *ErrProviderNotFound", err)
	}
}

func TestRegistryList(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register(newMockProvider("yfinance", ModelEquityProfile))
	_ = reg.Register(newMockProvider("finnhub", ModelCalendarEarnings))

	list := reg.List()
	if len(list) != 2 {
		t.Fatalf("got %d providers, want 2", len(list))
	}
	if list[0].Name != "finnhub" || list[1].Name != "yfinance" {
		t.Errorf("got order %s, %s; want finnhub, yfinance", list[0].Name, list[1].Name)
	}
}

func TestRegistryProvidersFor(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register(newMockProvider("p1", ModelCalendarEarnings, ModelEquityProfile))
	_ = reg.Register(newMockProvider("p2", ModelEquityProfile))

	if provs := reg.ProvidersFor(ModelEquityProfile); len(provs) != 2 || provs[0] != "p1" {
		t.Errorf("EquityProfile providers: got %v, want [p1 p2]", provs)
	}
	if provs := reg.ProvidersFor(ModelCalendarEarnings); len(provs) != 1 {
		t.Errorf("CalendarEarnings providers: got %v, want [p1]", provs)
	}
	if provs := reg.ProvidersFor("Unknown"); len(provs) != 0 {
		t.Errorf("unknown model: got %v, want none", provs)
	}
}

func TestRegistrySetDefault(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register(newMockProvider("p1", ModelEquityProfile))
	_ = reg.Register(newMockProvider("p2", ModelEquityProfile))

	def, ok := reg.DefaultProvider(ModelEquityProfile)
	if !ok || def != "p1" {
		t.Errorf("got default %s (ok=%v), want p1", def, ok)
	}

	if err := reg.SetDefault(ModelEquityProfile, "p2"); err != nil {
		t.Fatalf("SetDefault failed: %v", err)
	}
	if def, _ = reg.DefaultProvider(ModelEquityProfile); def != "p2" {
		t.Errorf("got default %s, want p2", def)
	}

	if err := reg.SetDefault(ModelEquityProfile, "nope"); err == nil {
		t.Error("expected error setting default to non-existent provider")
	}
	if err := reg.SetDefault(ModelCalendarEarnings, "p1"); err == nil {
		t.Error("expected error setting default for an unsupported model")
	}
}

func TestRegistryUnregister(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register(newMockProvider("p1", ModelEquityProfile))
	_ = reg.Register(newMockProvider("p2", ModelEquityProfile))

	reg.Unregister("p1")

	if _, err := reg.Get("p1"); err == nil {
		t.Error("expected error after unregister")
	}
	if provs := reg.ProvidersFor(ModelEquityProfile); len(provs) != 1 || provs[0] != "p2" {
		t.Errorf("got %v, want [p2]", provs)
	}
	if def, _ := reg.DefaultProvider(ModelEquityProfile); def != "p2" {
		t.Errorf("got default %s, want p2", def)
	}
}

func TestRegistryFetch(t *testing.T) {
	reg := NewRegistry()
	fixed := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	reg.now = func() time.Time { return fixed }
	_ = reg.Register(newMockProvider("test", ModelEquityProfile))

	result, err := reg.Fetch(context.Background(), ModelEquityProfile, QueryParams{ParamSymbol: "AAPL"})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if result.Provider != "test" {
		t.Errorf("got provider %s, want test", result.Provider)
	}
	if result.Model != ModelEquityProfile {
		t.Errorf("got model %s, want EquityProfile", result.Model)
	}
	if result.Data != "mock-data" {
		t.Errorf("got data %v, want mock-data", result.Data)
	}
	if !result.FetchedAt.Equal(fixed) {
		t.Errorf("got FetchedAt %v, want %v", result.FetchedAt, fixed)
	}
}

func TestRegistryFetchMissingParam(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register(newMockProvider("test", ModelEquityProfile))

	_, err := reg.Fetch(context.Background(), ModelEquityProfile, QueryParams{})
	var mp *ErrMissingParam
	if !errors.As(err, &mp) {
		t.Fatalf("got %T: %v, want *ErrMissingParam", err, err)
	}
	if mp.Param != ParamSymbol {
		t.Errorf("got param %q, want %q", mp.Param, ParamSymbol)
	}
}

func TestRegistryFetchUnsupportedModel(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register(newMockProvider("test", ModelEquityProfile))

	_, err := reg.FetchFrom(context.Background(), "test", ModelCalendarEarnings, QueryParams{ParamSymbol: "AAPL"})
	var ms *ErrModelNotSupported
	if !errors.As(err, &ms) {
		t.Fatalf("got %T, want *ErrModelNotSupported", err)
	}
}

func TestRegistryFetchFromUnknownProvider(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.FetchFrom(context.Background(), "finnhub", ModelCalendarEarnings, QueryParams{ParamSymbol: "AAPL"})
	var nf *ErrProviderNotFound
	if !errors.As(err, &nf) || nf.Name != "finnhub" {
		t.Fatalf("got %v, want provider not found for finnhub", err)
	}
}

func TestRegistryFetchWithProviderOverride(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register(newMockProvider("p1", ModelEquityProfile))

	mp2 := newMockProvider("p2")
	f := newMockFetcher(ModelEquityProfile, []string{ParamSymbol})
	f.fetchFn = func(ctx context.Context, params QueryParams) (*FetchResult, error) {
		return &FetchResult{Data: "from-p2"}, nil
	}
	mp2.RegisterFetcher(f)
	_ = reg.Register(mp2)

	params := QueryParams{ParamSymbol: "AAPL", ParamProvider: "p2"}
	result, err := reg.Fetch(context.Background(), ModelEquityProfile, params)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if result.Data != "from-p2" {
		t.Errorf("got %v, want from-p2", result.Data)
	}
}

func TestRegistryFetchWrapsTransportError(t *testing.T) {
	reg := NewRegistry()
	mp := newMockProvider("p1")
	f := newMockFetcher(ModelEquityProfile, []string{ParamSymbol})
	f.fetchFn = func(ctx context.Context, params QueryParams) (*FetchResult, error) {
		return nil, &infra.ErrHTTP{StatusCode: 429, Status: "429 Too Many Requests"}
	}
	mp.RegisterFetcher(f)
	_ = reg.Register(mp)

	_, err := reg.FetchFrom(context.Background(), "p1", ModelEquityProfile, QueryParams{ParamSymbol: "AAPL"})
	if got := infra.StatusCode(err); got != 429 {
		t.Errorf("got status %d, want 429 through the wrap", got)
	}
}

func TestModelCoverage(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register(newMockProvider("finnhub", ModelCalendarEarnings, ModelEquityProfile))
	_ = reg.Register(newMockProvider("yfinance", ModelEquityProfile))

	coverage := reg.ModelCoverage()
	if len(coverage[ModelEquityProfile]) != 2 {
		t.Errorf("got %d providers for EquityProfile, want 2", len(coverage[ModelEquityProfile]))
	}
	if len(coverage[ModelCalendarEarnings]) != 1 {
		t.Errorf("got %d providers for CalendarEarnings, want 1", len(coverage[ModelCalendarEarnings]))
	}
}

// --- Base Provider Tests ---

func TestBaseProviderInit(t *testing.T) {
	creds := []ProviderCredential{
		{Name: "api_key", Required: true, EnvVar: "TEST_KEY"},
	}
	bp := NewBaseProvider("test", "desc", "https://test.com", creds)

	if err := bp.Init(map[string]string{}); err == nil {
		t.Error("expected error for missing required credential")
	}
	if err := bp.Init(map[string]string{"api_key": "secret123"}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if bp.Credential("api_key") != "secret123" {
		t.Error("credential not stored")
	}
}

func TestBaseProviderRegisterFetcher(t *testing.T) {
	bp := NewBaseProvider("test", "desc", "https://test.com", nil)
	bp.RegisterFetcher(newMockFetcher(ModelEquityProfile, nil))

	if bp.Fetcher(ModelEquityProfile) == nil {
		t.Error("fetcher not registered")
	}
	if bp.Fetcher(ModelCalendarEarnings) != nil {
		t.Error("fetcher should be nil for unregistered model")
	}
	if got := bp.Info().Models; len(got) != 1 || got[0] != ModelEquityProfile {
		t.Errorf("info models: got %v", got)
	}
}

// --- BaseFetcher Tests ---

func TestBaseFetcherDeadline(t *testing.T) {
	bf := NewBaseFetcherWithOpts(ModelEquityProfile, "d", nil, nil, FetcherOptions{Timeout: 50 * time.Millisecond})
	ctx, cancel := bf.WithDeadline(context.Background())
	defer cancel()

	deadline, ok := ctx.Deadline()
	if !ok {
		t.Fatal("expected a deadline")
	}
	if d := time.Until(deadline); d > 50*time.Millisecond {
		t.Errorf("deadline too far away: %v", d)
	}
}

func TestBaseFetcherSharedLimiter(t *testing.T) {
	lim := infra.NewPerMinuteLimiter(1, 1)
	a := NewBaseFetcherWithOpts(ModelCalendarEarnings, "a", nil, nil, FetcherOptions{Limiter: lim})
	b := NewBaseFetcherWithOpts(ModelEquityProfile, "b", nil, nil, FetcherOptions{Limiter: lim})

	if err := a.RateLimit(context.Background()); err != nil {
		t.Fatalf("first slot: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := b.RateLimit(ctx); err == nil {
		t.Error("second fetcher should wait on the shared limiter")
	}
}

func TestBaseFetcherCacheDisabledByDefault(t *testing.T) {
	bf := NewBaseFetcher(ModelEquityProfile, "d", nil, nil)
	bf.CacheSet("k", 1)
	if _, ok := bf.CacheGet("k"); ok {
		t.Error("zero TTL cache should not retain values")
	}
}

// --- CacheKey Tests ---

func TestCacheKey(t *testing.T) {
	params := QueryParams{
		ParamSymbol:     "AAPL",
		ParamStartDate:  "2026-01-01",
		ParamProvider:   "finnhub",
		"_finnhub_token": "secret",
	}

	key := CacheKey(ModelCalendarEarnings, params)
	want := "CalendarEarnings:start_date=2026-01-01:symbol=AAPL"
	if key != want {
		t.Errorf("got %q, want %q", key, want)
	}
	if strings.Contains(key, "secret") {
		t.Error("cache key must not contain credentials")
	}
}

// --- ValidateParams Tests ---

func TestValidateParams(t *testing.T) {
	tests := []struct {
		name    string
		params  QueryParams
		wantErr bool
	}{
		{"present", QueryParams{ParamSymbol: "AAPL"}, false},
		{"missing", QueryParams{}, true},
		{"empty", QueryParams{ParamSymbol: ""}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateParams(tt.params, []string{ParamSymbol})
			if (err != nil) != tt.wantErr {
				t.Errorf("got err %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// --- Models Tests ---

func TestModelCategory(t *testing.T) {
	for _, m := range AllModels() {
		if ModelCategory(m) == "Other" {
			t.Errorf("model %s has no category", m)
		}
	}
	if got := ModelCategory("Unknown"); got != "Other" {
		t.Errorf("got %q, want Other", got)
	}
}
