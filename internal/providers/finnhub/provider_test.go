package finnhub

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"

	"github.com/tonywu212005-glitch/sp500-app/internal/infra"
	"github.com/tonywu212005-glitch/sp500-app/internal/provider"
	"github.com/tonywu212005-glitch/sp500-app/pkg/models"
)

const testToken = "tok_abcdef123456"

var fixedNow = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p := New(Options{
		BaseURL: srv.URL,
		Limiter: infra.NewPerMinuteLimiter(0, 1),
		Timeout: 2 * time.Second,
		now:     func() time.Time { return fixedNow },
	})
	if err := p.Init(map[string]string{credAPIKey: testToken}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return p
}

func TestProviderInfo(t *testing.T) {
	p := New(Options{})
	info := p.Info()
	if info.Name != "finnhub" {
		t.Errorf("got name %s, want finnhub", info.Name)
	}
	if len(info.Credentials) != 1 || !info.Credentials[0].Required {
		t.Fatalf("expected one required credential, got %+v", info.Credentials)
	}
	if info.Credentials[0].EnvVar != "FINNHUB_API_KEY" {
		t.Errorf("got env var %s", info.Credentials[0].EnvVar)
	}

	want := map[provider.ModelType]bool{provider.ModelCalendarEarnings: true, provider.ModelEquityProfile: true}
	for _, m := range p.SupportedModels() {
		delete(want, m)
	}
	if len(want) != 0 {
		t.Errorf("missing models: %v", want)
	}
}

func TestInitRequiresKey(t *testing.T) {
	p := New(Options{})
	if err := p.Init(map[string]string{}); err == nil {
		t.Error("expected error without api_key")
	}
}

func TestCalendarEarnings(t *testing.T) {
	var gotQuery map[string]string
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/calendar/earnings" {
			t.Errorf("got path %s", r.URL.Path)
		}
		q := r.URL.Query()
		gotQuery = map[string]string{
			"from": q.Get("from"), "to": q.Get("to"),
			"symbol": q.Get("symbol"), "token": q.Get("token"),
		}
		json.NewEncoder(w).Encode(map[string]any{
			"earningsCalendar": []map[string]any{
				{"date": "2026-05-01", "symbol": "BRK.B", "hour": "bmo", "quarter": 1, "year": 2026, "epsEstimate": 4.5},
				{"date": "not-a-date", "symbol": "BRK.B"},
				{"date": "2026-02-10", "symbol": "BRK.B", "epsEstimate": nil},
			},
		})
	})

	res, err := p.Fetcher(provider.ModelCalendarEarnings).Fetch(context.Background(), provider.QueryParams{
		provider.ParamSymbol: "BRK-B",
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if gotQuery["symbol"] != "BRK.B" {
		t.Errorf("got symbol %q, want BRK.B", gotQuery["symbol"])
	}
	if gotQuery["token"] != testToken {
		t.Errorf("token not injected")
	}
	if gotQuery["from"] != "2026-01-15" || gotQuery["to"] != "2026-07-14" {
		t.Errorf("got window %s..%s, want 2026-01-15..2026-07-14", gotQuery["from"], gotQuery["to"])
	}

	entries, ok := res.Data.([]models.EarningsCalendarEntry)
	if !ok {
		t.Fatalf("got data %T", res.Data)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2 (malformed row skipped)", len(entries))
	}
	if entries[0].Date != (civil.Date{Year: 2026, Month: 5, Day: 1}) || entries[0].Hour != "bmo" {
		t.Errorf("first entry: got %+v", entries[0])
	}
	if entries[0].EPSEstimate == nil || *entries[0].EPSEstimate != 4.5 {
		t.Errorf("eps estimate not decoded")
	}
	if entries[1].EPSEstimate != nil {
		t.Errorf("null eps should stay nil")
	}
}

func TestCalendarEarningsExplicitRange(t *testing.T) {
	var from, to string
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		from, to = r.URL.Query().Get("from"), r.URL.Query().Get("to")
		w.Write([]byte(`{"earningsCalendar":[]}`))
	})

	_, err := p.Fetcher(provider.ModelCalendarEarnings).Fetch(context.Background(), provider.QueryParams{
		provider.ParamSymbol:    "AAPL",
		provider.ParamStartDate: "2026-03-01",
		provider.ParamEndDate:   "2026-03-31",
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if from != "2026-03-01" || to != "2026-03-31" {
		t.Errorf("got %s..%s", from, to)
	}

	_, err = p.Fetcher(provider.ModelCalendarEarnings).Fetch(context.Background(), provider.QueryParams{
		provider.ParamSymbol:    "AAPL",
		provider.ParamStartDate: "March",
	})
	if err == nil {
		t.Error("expected error for an unparseable start date")
	}
}

func TestCalendarEarningsHTTPErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"unauthorized", http.StatusUnauthorized},
		{"rate limited", http.StatusTooManyRequests},
		{"server error", http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"error":"nope"}`, tt.status)
			})
			_, err := p.Fetcher(provider.ModelCalendarEarnings).Fetch(context.Background(), provider.QueryParams{
				provider.ParamSymbol: "AAPL",
			})
			if got := infra.StatusCode(err); got != tt.status {
				t.Errorf("got status %d, want %d", got, tt.status)
			}
			if strings.Contains(err.Error(), testToken) {
				t.Error("error leaks the token")
			}
		})
	}
}

func TestCalendarEarningsMalformedBody(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>maintenance</html>`))
	})
	_, err := p.Fetcher(provider.ModelCalendarEarnings).Fetch(context.Background(), provider.QueryParams{
		provider.ParamSymbol: "AAPL",
	})
	if err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestEquityProfile(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/stock/profile2" {
			t.Errorf("got path %s", r.URL.Path)
		}
		if r.URL.Query().Get("symbol") != "MC.PA" {
			t.Errorf("got symbol %s, want MC.PA", r.URL.Query().Get("symbol"))
		}
		w.Write([]byte(`{"name":"LVMH","marketCapitalization":350123.5,"finnhubIndustry":"Textiles"}`))
	})

	res, err := p.Fetcher(provider.ModelEquityProfile).Fetch(context.Background(), provider.QueryParams{
		provider.ParamSymbol: "mc.pa",
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	m, ok := res.Data.(map[string]any)
	if !ok {
		t.Fatalf("got data %T, want map", res.Data)
	}
	if m["marketCapitalization"] != 350123.5 {
		t.Errorf("got %v", m["marketCapitalization"])
	}
}

func TestEquityProfileUnknownSymbol(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	res, err := p.Fetcher(provider.ModelEquityProfile).Fetch(context.Background(), provider.QueryParams{
		provider.ParamSymbol: "ZZZZ",
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if m := res.Data.(map[string]any); len(m) != 0 {
		t.Errorf("got %v, want empty mapping", m)
	}
}

func TestRegistryIntegration(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"earningsCalendar":[{"date":"2026-02-10","symbol":"AAPL"}]}`))
	})
	reg := provider.NewRegistry()
	if err := reg.Register(p); err != nil {
		t.Fatalf("Register: %v", err)
	}
	res, err := reg.FetchFrom(context.Background(), "finnhub", provider.ModelCalendarEarnings, provider.QueryParams{
		provider.ParamSymbol: "AAPL",
	})
	if err != nil {
		t.Fatalf("FetchFrom: %v", err)
	}
	if res.Provider != "finnhub" {
		t.Errorf("got provider %s", res.Provider)
	}
}
