// Package directory loads the company universe (symbol, name, sector) from
// a pluggable source and caches the last good snapshot.
package directory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/tonywu212005-glitch/sp500-app/internal/config"
	"github.com/tonywu212005-glitch/sp500-app/internal/infra"
	"github.com/tonywu212005-glitch/sp500-app/internal/logger"
	"github.com/tonywu212005-glitch/sp500-app/pkg/models"
	"github.com/tonywu212005-glitch/sp500-app/pkg/utils"
)

// ErrUnavailable is reported by callers when a load comes back empty.
var ErrUnavailable = errors.New("company list unavailable")

const snapshotKey = "companies"

// Source enumerates companies. Implementations make a single attempt.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]models.Company, error)
}

// Options configures a Directory.
type Options struct {
	// Authoritative is placed ahead of the source's own ordering.
	Authoritative []models.Company
	// TTL bounds how long a snapshot is served before reloading.
	TTL time.Duration
}

// Directory wraps a Source with merging, de-duplication and a TTL cache.
type Directory struct {
	source        Source
	authoritative []models.Company
	cache         *infra.Cache
}

// New creates a Directory over src.
func New(src Source, opts Options) *Directory {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}
	return &Directory{
		source:        src,
		authoritative: opts.Authoritative,
		cache:         infra.NewCache(ttl),
	}
}

// NewFromConfig builds the directory described by cfg.
func NewFromConfig(cfg config.DirectoryConfig, timeout time.Duration) (*Directory, error) {
	var src Source
	switch cfg.Source {
	case "static":
		src = NewStatic(cfg.Universe)
	case "scrape":
		src = NewScrape(cfg.ScrapeURL, timeout)
	case "hosted":
		src = NewHosted(cfg.HostedURL, timeout)
	default:
		return nil, fmt.Errorf("unknown directory source %q", cfg.Source)
	}

	opts := Options{TTL: cfg.TTL()}
	if cfg.Universe == "sp500" && cfg.Source != "static" {
		opts.Authoritative = SP500Top()
	}
	return New(src, opts), nil
}

// SourceName describes where companies come from.
func (d *Directory) SourceName() string {
	return d.source.Name()
}

// Load returns the current snapshot. It never fails: any source error is
// logged and yields an empty slice, which is not cached.
func (d *Directory) Load(ctx context.Context) []models.Company {
	if v, ok := d.cache.Get(snapshotKey); ok {
		return slices.Clone(v.([]models.Company))
	}

	op := logger.StartOperation(ctx, "load_directory", "source", d.source.Name())
	rows, err := d.source.Fetch(op.Context())
	if err != nil {
		op.EndWithError(err)
		return []models.Company{}
	}

	rows = dedupe(rows)
	if len(d.authoritative) > 0 {
		rows = Merge(d.authoritative, rows)
	}
	op.End("companies", len(rows))
	if len(rows) == 0 {
		logger.Warn(ctx, "directory source returned no companies", "source", d.source.Name())
		return []models.Company{}
	}

	d.cache.Set(snapshotKey, rows)
	return slices.Clone(rows)
}

// Companies is Load with the empty case surfaced as ErrUnavailable.
func (d *Directory) Companies(ctx context.Context) ([]models.Company, error) {
	rows := d.Load(ctx)
	if len(rows) == 0 {
		return nil, ErrUnavailable
	}
	return rows, nil
}

// Refresh drops the cached snapshot and loads again.
func (d *Directory) Refresh(ctx context.Context) []models.Company {
	d.cache.Invalidate(snapshotKey)
	return d.Load(ctx)
}

// Lookup finds a company by symbol in the current snapshot.
func (d *Directory) Lookup(ctx context.Context, symbol string) (models.Company, bool) {
	symbol = utils.NormalizeTicker(symbol)
	for _, c := range d.Load(ctx) {
		if c.Symbol == symbol {
			return c, true
		}
	}
	return models.Company{}, false
}

// Merge places authoritative first, in its order, then the bulk records
// not already present, in bulk order. Authoritative rows borrow a missing
// name or sector from the bulk row with the same symbol.
func Merge(authoritative, bulk []models.Company) []models.Company {
	bySymbol := make(map[string]models.Company, len(bulk))
	for _, c := range bulk {
		if _, ok := bySymbol[c.Symbol]; !ok {
			bySymbol[c.Symbol] = c
		}
	}

	out := make([]models.Company, 0, len(authoritative)+len(bulk))
	seen := make(map[string]bool, len(authoritative)+len(bulk))
	for _, c := range authoritative {
		if seen[c.Symbol] {
			continue
		}
		if b, ok := bySymbol[c.Symbol]; ok {
			if c.Name == "" {
				c.Name = b.Name
			}
			if c.Sector == "" {
				c.Sector = b.Sector
			}
		}
		seen[c.Symbol] = true
		out = append(out, c)
	}
	for _, c := range bulk {
		if seen[c.Symbol] {
			continue
		}
		seen[c.Symbol] = true
		out = append(out, c)
	}
	return out
}

// dedupe normalizes symbols and keeps the first row per symbol.
func dedupe(rows []models.Company) []models.Company {
	out := make([]models.Company, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for _, c := range rows {
		c.Symbol = utils.NormalizeTicker(c.Symbol)
		if c.Symbol == "" || seen[c.Symbol] {
			continue
		}
		seen[c.Symbol] = true
		out = append(out, c)
	}
	return out
}
