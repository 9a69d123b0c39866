package resolver

import (
	"context"
	"math/rand/v2"
	"time"

	"cloud.google.com/go/civil"

	"github.com/tonywu212005-glitch/sp500-app/internal/logger"
	"github.com/tonywu212005-glitch/sp500-app/internal/provider"
	"github.com/tonywu212005-glitch/sp500-app/pkg/models"
	"github.com/tonywu212005-glitch/sp500-app/pkg/utils"
)

// DemoSource labels synthetic placeholder dates.
const DemoSource = "demo placeholder (synthetic, not financial data)"

// EarningsOptions configures an EarningsResolver. Zero values fall back to
// the documented defaults.
type EarningsOptions struct {
	// DemoMode synthesizes an estimated date when every provider fails.
	DemoMode    bool
	WindowDays  int // default 180
	DemoMinDays int // default 5
	DemoMaxDays int // default 90

	CalendarProviders []string // default [finnhub]
	ProfileProviders  []string // default [yfinance]

	Location *time.Location          // defines "today"; default UTC
	Now      func() time.Time        // default time.Now
	Seed     func() (uint64, uint64) // per-call RNG seed; default random
}

// EarningsResolver reconciles a calendar endpoint, profile payloads and an
// optional demo fallback into one EarningsResolution.
type EarningsResolver struct {
	reg  *provider.Registry
	opts EarningsOptions
}

// NewEarningsResolver creates a resolver over the providers in reg.
func NewEarningsResolver(reg *provider.Registry, opts EarningsOptions) *EarningsResolver {
	if opts.WindowDays <= 0 {
		opts.WindowDays = 180
	}
	if opts.DemoMinDays <= 0 && opts.DemoMaxDays <= 0 {
		opts.DemoMinDays, opts.DemoMaxDays = 5, 90
	}
	if opts.DemoMaxDays < opts.DemoMinDays {
		opts.DemoMaxDays = opts.DemoMinDays
	}
	if opts.CalendarProviders == nil {
		opts.CalendarProviders = []string{"finnhub"}
	}
	if opts.ProfileProviders == nil {
		opts.ProfileProviders = []string{"yfinance"}
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Seed == nil {
		opts.Seed = func() (uint64, uint64) { return rand.Uint64(), rand.Uint64() }
	}
	return &EarningsResolver{reg: reg, opts: opts}
}

// Resolve returns the next earnings date for symbol. It never fails: the
// outcome of every upstream attempt is folded into Status and Confidence.
func (r *EarningsResolver) Resolve(ctx context.Context, symbol string) models.EarningsResolution {
	symbol = utils.NormalizeTicker(symbol)
	op := logger.StartOperation(ctx, "resolve_earnings", "symbol", symbol)
	ctx = op.Context()

	res := r.resolve(ctx, symbol)
	op.End("status", string(res.Status), "confidence", string(res.Confidence), "source", res.Source)
	return res
}

func (r *EarningsResolver) resolve(ctx context.Context, symbol string) models.EarningsResolution {
	if symbol == "" {
		return absentEarnings(symbol, models.StatusNoData, models.StatusNoData.Message())
	}

	today := utils.Today(r.opts.Now(), r.opts.Location)
	end := today.AddDays(r.opts.WindowDays)
	tried := newAttempts()

	// Provider A: calendar, earliest date inside the window.
	for _, name := range r.opts.CalendarProviders {
		params := provider.QueryParams{
			provider.ParamSymbol:    symbol,
			provider.ParamStartDate: today.String(),
			provider.ParamEndDate:   end.String(),
		}
		result, err := r.reg.FetchFrom(ctx, name, provider.ModelCalendarEarnings, params)
		if err != nil {
			r.fail(ctx, tried, name, symbol, err)
			continue
		}
		entries, _ := result.Data.([]models.EarningsCalendarEntry)
		if d, ok := EarliestInWindow(entries, today, end); ok {
			return confirmedEarnings(symbol, d, name+" calendar")
		}
	}

	// Provider B: profile payload through the probe list, same window.
	for _, name := range r.opts.ProfileProviders {
		params := provider.QueryParams{provider.ParamSymbol: symbol}
		result, err := r.reg.FetchFrom(ctx, name, provider.ModelEquityProfile, params)
		if err != nil {
			r.fail(ctx, tried, name, symbol, err)
			continue
		}
		if d, ok := ProbeEarningsDateIn(result.Data, today, end); ok {
			return confirmedEarnings(symbol, d, name+" profile")
		}
	}

	if r.opts.DemoMode {
		return models.EarningsResolution{
			Symbol:     symbol,
			Date:       r.demoDate(today),
			Confidence: models.ConfidenceEstimated,
			Source:     DemoSource,
			Status:     tried.worst,
			Detail:     tried.detail(),
		}
	}
	return absentEarnings(symbol, tried.worst, tried.detail())
}

func (r *EarningsResolver) fail(ctx context.Context, tried *attempts, name, symbol string, err error) {
	status := classifyFrom(r.reg, name, err)
	tried.record(name, status)
	logger.Debug(ctx, "earnings provider failed", "provider", name, "symbol", symbol, "status", string(status), "error", err.Error())
}

// demoDate draws today+[min, max] from an RNG seeded for this call only.
func (r *EarningsResolver) demoDate(today civil.Date) civil.Date {
	s1, s2 := r.opts.Seed()
	rng := rand.New(rand.NewPCG(s1, s2))
	span := r.opts.DemoMaxDays - r.opts.DemoMinDays + 1
	return today.AddDays(r.opts.DemoMinDays + rng.IntN(span))
}

// EarliestInWindow returns the earliest entry date in [from, to].
func EarliestInWindow(entries []models.EarningsCalendarEntry, from, to civil.Date) (civil.Date, bool) {
	var best civil.Date
	found := false
	for _, e := range entries {
		if e.Date.IsZero() || e.Date.Before(from) || e.Date.After(to) {
			continue
		}
		if !found || e.Date.Before(best) {
			best, found = e.Date, true
		}
	}
	return best, found
}

func confirmedEarnings(symbol string, d civil.Date, source string) models.EarningsResolution {
	return models.EarningsResolution{
		Symbol:     symbol,
		Date:       d,
		Confidence: models.ConfidenceConfirmed,
		Source:     source,
		Status:     models.StatusOK,
		Detail:     models.StatusOK.Message(),
	}
}

func absentEarnings(symbol string, status models.Status, detail string) models.EarningsResolution {
	return models.EarningsResolution{
		Symbol:     symbol,
		Confidence: models.ConfidenceAbsent,
		Status:     status,
		Detail:     detail,
	}
}
