// Package api provides the HTTP REST API server for earningsdesk.
//
// It exposes the company directory, earnings date and market cap
// resolutions, and a paginated earnings calendar as JSON.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"cloud.google.com/go/civil"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/tonywu212005-glitch/sp500-app/internal/config"
	"github.com/tonywu212005-glitch/sp500-app/internal/directory"
	"github.com/tonywu212005-glitch/sp500-app/internal/logger"
	"github.com/tonywu212005-glitch/sp500-app/internal/provider"
	"github.com/tonywu212005-glitch/sp500-app/internal/resolver"
	"github.com/tonywu212005-glitch/sp500-app/internal/session"
	"github.com/tonywu212005-glitch/sp500-app/pkg/utils"
)

const maxPageSize = 100

// Deps are the components a Server serves from.
type Deps struct {
	Directory *directory.Directory
	Earnings  resolver.EarningsSource
	Caps      resolver.CapSource
	Registry  *provider.Registry
	Version   string
	Now       func() time.Time // defaults to time.Now
}

// Server is the HTTP API server.
type Server struct {
	router   chi.Router
	cfg      *config.Config
	dir      *directory.Directory
	earnings resolver.EarningsSource
	caps     resolver.CapSource
	reg      *provider.Registry
	version  string
	now      func() time.Time
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config, deps Deps) *Server {
	srv := &Server{
		cfg:      cfg,
		dir:      deps.Directory,
		earnings: deps.Earnings,
		caps:     deps.Caps,
		reg:      deps.Registry,
		version:  deps.Version,
		now:      deps.Now,
	}
	if srv.now == nil {
		srv.now = time.Now
	}
	if srv.version == "" {
		srv.version = "dev"
	}
	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server and shuts it down gracefully on
// SIGINT or SIGTERM.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(done)

	errCh := make(chan error, 1)
	go func() {
		logger.Info(context.Background(), "API server listening", "addr", addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server: %w", err)
	case <-done:
	}
	logger.Info(context.Background(), "shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return httpSrv.Shutdown(ctx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	// CORS
	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Get("/companies", s.handleCompanies)
		r.Get("/earnings/{symbol}", s.handleEarnings)
		r.Get("/marketcap/{symbol}", s.handleMarketCap)
		r.Get("/calendar", s.handleCalendar)

		r.Get("/providers", s.handleProviders)
	})

	return r
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// CalendarRow is one company of a calendar page.
type CalendarRow struct {
	Symbol    string               `json:"symbol"`
	Name      string               `json:"name"`
	Sector    string               `json:"sector,omitempty"`
	Earnings  session.EarningsView `json:"earnings"`
	MarketCap *session.CapView     `json:"market_cap,omitempty"`
}

// CalendarPage is the body of GET /api/v1/calendar.
type CalendarPage struct {
	Page  int           `json:"page"`
	Pages int           `json:"pages"`
	Size  int           `json:"size"`
	Total int           `json:"total"`
	Rows  []CalendarRow `json:"rows"`
}

// ProviderStatus describes one registered provider.
type ProviderStatus struct {
	provider.ProviderInfo
	Default []provider.ModelType `json:"default_for,omitempty"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]any{
			"status":    "ok",
			"version":   s.version,
			"universe":  s.cfg.Directory.Universe,
			"demo_mode": s.cfg.Resolver.DemoMode,
			"today":     utils.FormatDate(s.today()),
		},
	})
}

func (s *Server) handleCompanies(w http.ResponseWriter, r *http.Request) {
	page, ok := s.companyPage(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: page})
}

func (s *Server) handleEarnings(w http.ResponseWriter, r *http.Request) {
	symbol := utils.NormalizeTicker(chi.URLParam(r, "symbol"))
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	res := s.earnings.Resolve(r.Context(), symbol)
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    session.NewEarningsView(res, s.today()),
	})
}

func (s *Server) handleMarketCap(w http.ResponseWriter, r *http.Request) {
	symbol := utils.NormalizeTicker(chi.URLParam(r, "symbol"))
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	res := s.caps.Resolve(r.Context(), symbol)
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    session.NewCapView(res),
	})
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	page, ok := s.companyPage(w, r)
	if !ok {
		return
	}

	rows := resolver.Batch(r.Context(), page.Rows, s.earnings, s.caps, s.cfg.Resolver.Workers)
	today := s.today()
	out := CalendarPage{
		Page:  page.Number,
		Pages: page.Pages,
		Size:  page.Size,
		Total: page.Total,
		Rows:  make([]CalendarRow, len(rows)),
	}
	for i, row := range rows {
		cr := CalendarRow{
			Symbol:   row.Company.Symbol,
			Name:     row.Company.Name,
			Sector:   row.Company.Sector,
			Earnings: session.NewEarningsView(row.Earnings, today),
		}
		if row.Cap != nil {
			cv := session.NewCapView(*row.Cap)
			cr.MarketCap = &cv
		}
		out.Rows[i] = cr
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: out})
}

func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	infos := s.reg.List()
	out := make([]ProviderStatus, 0, len(infos))
	for _, info := range infos {
		ps := ProviderStatus{ProviderInfo: info}
		for _, m := range provider.AllModels() {
			if name, ok := s.reg.DefaultProvider(m); ok && name == info.Name {
				ps.Default = append(ps.Default, m)
			}
		}
		out = append(out, ps)
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: out})
}

// ============================================================
// Helpers
// ============================================================

// companyPage loads the directory and applies the q, page and size query
// parameters. It writes the error response itself when it returns false.
func (s *Server) companyPage(w http.ResponseWriter, r *http.Request) (session.Page, bool) {
	q := r.URL.Query()
	page, err := intParam(q.Get("page"), 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, "page must be a number")
		return session.Page{}, false
	}
	size, err := intParam(q.Get("size"), s.cfg.Directory.PageSize)
	if err != nil {
		writeError(w, http.StatusBadRequest, "size must be a number")
		return session.Page{}, false
	}
	size = min(size, maxPageSize)

	companies, err := s.dir.Companies(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return session.Page{}, false
	}
	return session.Paginate(session.Filter(companies, q.Get("q")), page, size), true
}

func (s *Server) today() civil.Date {
	return utils.Today(s.now(), utils.MarketLocation(s.cfg.Directory.Universe))
}

func intParam(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error(context.Background(), "failed to write JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
