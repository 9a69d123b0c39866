package resolver

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/tonywu212005-glitch/sp500-app/pkg/models"
)

// Row is one company with its resolutions.
type Row struct {
	Company  models.Company            `json:"company"`
	Earnings models.EarningsResolution `json:"earnings"`
	Cap      *models.CapResolution     `json:"market_cap,omitempty"`
}

// Batch resolves a page of companies on a bounded worker pool. Results are
// positional: rows[i] belongs to companies[i]. caps may be nil.
func Batch(ctx context.Context, companies []models.Company, earnings EarningsSource, caps CapSource, workers int) []Row {
	if workers < 1 {
		workers = 1
	}
	rows := make([]Row, len(companies))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, c := range companies {
		g.Go(func() error {
			row := Row{Company: c, Earnings: earnings.Resolve(ctx, c.Symbol)}
			if caps != nil {
				cr := caps.Resolve(ctx, c.Symbol)
				row.Cap = &cr
			}
			rows[i] = row
			return nil
		})
	}
	_ = g.Wait() // workers never return errors
	return rows
}
