package finnhub

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"cloud.google.com/go/civil"

	"github.com/tonywu212005-glitch/sp500-app/internal/infra"
	"github.com/tonywu212005-glitch/sp500-app/internal/provider"
	"github.com/tonywu212005-glitch/sp500-app/pkg/models"
	"github.com/tonywu212005-glitch/sp500-app/pkg/utils"
)

// --- CalendarEarnings fetcher ---

type calendarEarningsFetcher struct {
	provider.BaseFetcher
	baseURL string
	window  int
	now     func() time.Time
}

func newCalendarEarningsFetcher(baseURL string, window int, now func() time.Time, opts provider.FetcherOptions) *calendarEarningsFetcher {
	return &calendarEarningsFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelCalendarEarnings,
			"Upcoming earnings for one symbol from the Finnhub calendar",
			[]string{provider.ParamSymbol},
			[]string{provider.ParamStartDate, provider.ParamEndDate},
			opts,
		),
		baseURL: baseURL,
		window:  window,
		now:     now,
	}
}

func (f *calendarEarningsFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	now := f.now()
	cacheKey := provider.CacheKey(f.ModelType(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return newCachedResult(cached, now), nil
	}

	from, to, err := dateRange(params, civil.DateOf(now.UTC()), f.window)
	if err != nil {
		return nil, err
	}
	symbol := utils.ToDotClass(params[provider.ParamSymbol])
	q := url.Values{
		"from":   {from.String()},
		"to":     {to.String()},
		"symbol": {symbol},
	}

	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}
	callCtx, cancel := f.WithDeadline(ctx)
	defer cancel()

	var resp fhEarningsCalendar
	if err := infra.GetJSON(callCtx, endpoint(f.baseURL, "/calendar/earnings", q, params[tokenParam]), &resp); err != nil {
		return nil, fmt.Errorf("finnhub earnings calendar %s: %w", symbol, err)
	}

	entries := toCalendarEntries(resp.EarningsCalendar)
	f.CacheSet(cacheKey, entries)
	return newResult(entries, now), nil
}

// toCalendarEntries converts API rows, skipping rows whose date does not parse.
func toCalendarEntries(rows []fhEarningsEntry) []models.EarningsCalendarEntry {
	entries := make([]models.EarningsCalendarEntry, 0, len(rows))
	for _, r := range rows {
		d, err := civil.ParseDate(r.Date)
		if err != nil {
			continue
		}
		entries = append(entries, models.EarningsCalendarEntry{
			Symbol:          r.Symbol,
			Date:            d,
			Hour:            r.Hour,
			Quarter:         r.Quarter,
			Year:            r.Year,
			EPSEstimate:     r.EPSEstimate,
			RevenueEstimate: r.RevenueEstimate,
		})
	}
	return entries
}
