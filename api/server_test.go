package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"cloud.google.com/go/civil"

	"github.com/tonywu212005-glitch/sp500-app/internal/config"
	"github.com/tonywu212005-glitch/sp500-app/internal/directory"
	"github.com/tonywu212005-glitch/sp500-app/internal/provider"
	"github.com/tonywu212005-glitch/sp500-app/internal/providers/yfinance"
	"github.com/tonywu212005-glitch/sp500-app/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Test Helpers
// ════════════════════════════════════════════════════════════════════

type fakeEarnings struct{ calls atomic.Int32 }

func (f *fakeEarnings) Resolve(_ context.Context, symbol string) models.EarningsResolution {
	f.calls.Add(1)
	if symbol == "AI.PA" {
		return models.EarningsResolution{
			Symbol:     symbol,
			Date:       civil.Date{Year: 2026, Month: 2, Day: 2},
			Confidence: models.ConfidenceConfirmed,
			Source:     "finnhub calendar",
			Status:     models.StatusOK,
		}
	}
	return models.EarningsResolution{Symbol: symbol, Confidence: models.ConfidenceAbsent, Status: models.StatusQuotaExceeded}
}

type fakeCaps struct{}

func (fakeCaps) Resolve(_ context.Context, symbol string) models.CapResolution {
	return models.CapResolution{
		Symbol:            symbol,
		MarketCapMillions: 2_500_000,
		Confidence:        models.ConfidenceConfirmed,
		Source:            "finnhub",
		Status:            models.StatusOK,
	}
}

type failingSource struct{}

func (failingSource) Name() string { return "failing" }
func (failingSource) Fetch(context.Context) ([]models.Company, error) {
	return nil, errors.New("upstream down")
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Directory.Universe = "cac40"
	cfg.Directory.PageSize = 10
	cfg.Resolver.Workers = 2
	return cfg
}

func testServer(t *testing.T, src directory.Source) (*Server, *fakeEarnings) {
	t.Helper()
	reg := provider.NewRegistry()
	if err := reg.Register(yfinance.New(yfinance.Options{})); err != nil {
		t.Fatalf("register: %v", err)
	}
	earnings := &fakeEarnings{}
	srv := NewServer(testConfig(), Deps{
		Directory: directory.New(src, directory.Options{TTL: time.Hour}),
		Earnings:  earnings,
		Caps:      fakeCaps{},
		Registry:  reg,
		Version:   "test",
		Now:       func() time.Time { return time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC) },
	})
	return srv, earnings
}

func get(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dest any) APIResponse {
	t.Helper()
	var resp struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if dest != nil && len(resp.Data) > 0 {
		if err := json.Unmarshal(resp.Data, dest); err != nil {
			t.Fatalf("failed to decode data: %v", err)
		}
	}
	return APIResponse{Success: resp.Success, Error: resp.Error}
}

// ════════════════════════════════════════════════════════════════════
// Handler tests
// ════════════════════════════════════════════════════════════════════

func TestHealth(t *testing.T) {
	srv, _ := testServer(t, directory.NewStatic("cac40"))
	for _, path := range []string{"/health", "/api/v1/health"} {
		rec := get(t, srv, path)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: got %d, want 200", path, rec.Code)
		}
		var data map[string]any
		resp := decodeData(t, rec, &data)
		if !resp.Success || data["status"] != "ok" || data["today"] != "15/01/2026" {
			t.Errorf("%s: got %+v", path, data)
		}
	}
}

func TestCompanies(t *testing.T) {
	srv, _ := testServer(t, directory.NewStatic("cac40"))

	tests := []struct {
		name      string
		query     string
		wantCode  int
		wantTotal int
		wantRows  int
		wantPage  int
	}{
		{"first page", "", http.StatusOK, 39, 10, 1},
		{"last page", "?page=4", http.StatusOK, 39, 9, 4},
		{"page clamps", "?page=99", http.StatusOK, 39, 9, 4},
		{"search", "?q=air", http.StatusOK, 2, 2, 1},
		{"custom size", "?size=20&page=2", http.StatusOK, 39, 19, 2},
		{"bad page", "?page=x", http.StatusBadRequest, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, srv, "/api/v1/companies"+tt.query)
			if rec.Code != tt.wantCode {
				t.Fatalf("got %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			var page struct {
				Rows  []models.Company `json:"rows"`
				Page  int              `json:"page"`
				Total int              `json:"total"`
			}
			decodeData(t, rec, &page)
			if page.Total != tt.wantTotal || len(page.Rows) != tt.wantRows || page.Page != tt.wantPage {
				t.Errorf("got total=%d rows=%d page=%d, want %d/%d/%d",
					page.Total, len(page.Rows), page.Page, tt.wantTotal, tt.wantRows, tt.wantPage)
			}
		})
	}
}

func TestCompaniesUnavailable(t *testing.T) {
	srv, _ := testServer(t, failingSource{})
	for _, path := range []string{"/api/v1/companies", "/api/v1/calendar"} {
		rec := get(t, srv, path)
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("%s: got %d, want 503", path, rec.Code)
		}
		resp := decodeData(t, rec, nil)
		if resp.Success || resp.Error != directory.ErrUnavailable.Error() {
			t.Errorf("%s: got %+v", path, resp)
		}
	}
}

func TestEarnings(t *testing.T) {
	srv, _ := testServer(t, directory.NewStatic("cac40"))

	rec := get(t, srv, "/api/v1/earnings/ai.pa")
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rec.Code)
	}
	var view struct {
		Resolution models.EarningsResolution `json:"resolution"`
		Display    string                    `json:"display"`
		Countdown  string                    `json:"countdown"`
	}
	decodeData(t, rec, &view)
	if view.Resolution.Symbol != "AI.PA" || view.Display != "02/02/2026" || view.Countdown != "in 18 days" {
		t.Errorf("got %+v", view)
	}

	rec = get(t, srv, "/api/v1/earnings/MSFT")
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want 200 for a failed resolution", rec.Code)
	}
	decodeData(t, rec, &view)
	if view.Resolution.Status != models.StatusQuotaExceeded || view.Display != "not confirmed" {
		t.Errorf("got %+v", view)
	}
}

func TestMarketCap(t *testing.T) {
	srv, _ := testServer(t, directory.NewStatic("cac40"))

	rec := get(t, srv, "/api/v1/marketcap/AAPL")
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rec.Code)
	}
	var view struct {
		Display string `json:"display"`
	}
	decodeData(t, rec, &view)
	if view.Display != "2.50 T" {
		t.Errorf("got %q, want %q", view.Display, "2.50 T")
	}
}

func TestCalendar(t *testing.T) {
	srv, earnings := testServer(t, directory.NewStatic("cac40"))

	rec := get(t, srv, "/api/v1/calendar?page=1&size=5")
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rec.Code)
	}
	var page CalendarPage
	decodeData(t, rec, &page)
	if len(page.Rows) != 5 || page.Pages != 8 {
		t.Fatalf("got %d rows, %d pages; want 5, 8", len(page.Rows), page.Pages)
	}
	if page.Rows[0].Symbol != "AI.PA" || page.Rows[0].Earnings.Display != "02/02/2026" {
		t.Errorf("first row: got %+v", page.Rows[0])
	}
	if page.Rows[0].MarketCap == nil || page.Rows[0].MarketCap.Display != "2.50 T" {
		t.Errorf("market cap: got %+v", page.Rows[0].MarketCap)
	}
	if n := earnings.calls.Load(); n != 5 {
		t.Errorf("resolutions: got %d, want 5 (one page only)", n)
	}
}

func TestProviders(t *testing.T) {
	srv, _ := testServer(t, directory.NewStatic("cac40"))

	rec := get(t, srv, "/api/v1/providers")
	var list []ProviderStatus
	decodeData(t, rec, &list)
	if len(list) != 1 || list[0].Name != "yfinance" {
		t.Fatalf("got %+v", list)
	}
	if len(list[0].Default) != 1 || list[0].Default[0] != provider.ModelEquityProfile {
		t.Errorf("default models: got %v", list[0].Default)
	}
}

func TestUnknownRoute(t *testing.T) {
	srv, _ := testServer(t, directory.NewStatic("cac40"))
	if rec := get(t, srv, "/api/v1/nope"); rec.Code != http.StatusNotFound {
		t.Errorf("got %d, want 404", rec.Code)
	}
}
