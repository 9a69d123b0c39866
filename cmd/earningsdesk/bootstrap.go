package main

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/civil"

	"github.com/tonywu212005-glitch/sp500-app/internal/config"
	"github.com/tonywu212005-glitch/sp500-app/internal/directory"
	"github.com/tonywu212005-glitch/sp500-app/internal/infra"
	"github.com/tonywu212005-glitch/sp500-app/internal/logger"
	"github.com/tonywu212005-glitch/sp500-app/internal/provider"
	"github.com/tonywu212005-glitch/sp500-app/internal/providers"
	"github.com/tonywu212005-glitch/sp500-app/internal/resolver"
	"github.com/tonywu212005-glitch/sp500-app/pkg/utils"
)

// app is the wired set of components shared by the commands.
type app struct {
	cfg      *config.Config
	reg      *provider.Registry
	dir      *directory.Directory
	earnings resolver.EarningsSource
	caps     resolver.CapSource
	now      func() time.Time
	close    func() error
}

func newApp(ctx context.Context, c *config.Config) (*app, error) {
	reg := provider.NewRegistry()
	if err := providers.RegisterAllTo(reg, c); err != nil {
		return nil, fmt.Errorf("register providers: %w", err)
	}

	dir, err := directory.NewFromConfig(c.Directory, c.Resolver.HTTPTimeout())
	if err != nil {
		return nil, err
	}

	earnings := resolver.NewEarningsResolver(reg, resolver.EarningsOptions{
		DemoMode:          c.Resolver.DemoMode,
		WindowDays:        c.Resolver.WindowDays,
		DemoMinDays:       c.Resolver.DemoMinDays,
		DemoMaxDays:       c.Resolver.DemoMaxDays,
		CalendarProviders: c.Resolver.EarningsCalendar,
		ProfileProviders:  c.Resolver.EarningsProfile,
		Location:          utils.MarketLocation(c.Directory.Universe),
	})
	caps := resolver.NewCapResolver(reg, resolver.CapOptions{Providers: c.Resolver.MarketCap})

	store, closeStore := newStore(ctx, c.Cache)
	return &app{
		cfg:      c,
		reg:      reg,
		dir:      dir,
		earnings: resolver.NewCachedEarnings(earnings, store, c.Cache.TTL()),
		caps:     resolver.NewCachedCaps(caps, store, c.Cache.TTL()),
		now:      time.Now,
		close:    closeStore,
	}, nil
}

// newStore opens the configured result cache. An unreachable Redis falls
// back to the in-process store.
func newStore(ctx context.Context, cc config.CacheConfig) (infra.Store, func() error) {
	noop := func() error { return nil }
	if cc.Backend != "redis" {
		return infra.NewMemoryStore(), noop
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rs, err := infra.NewRedisStore(pingCtx, cc.RedisURL, "earningsdesk")
	if err != nil {
		logger.Warn(ctx, "redis cache unavailable, using in-memory cache", "error", err)
		return infra.NewMemoryStore(), noop
	}
	return rs, rs.Close
}

// today is the current date in the universe's exchange time zone.
func (a *app) today() civil.Date {
	return utils.Today(a.now(), utils.MarketLocation(a.cfg.Directory.Universe))
}

func (a *app) Close() {
	if a.close != nil {
		if err := a.close(); err != nil {
			logger.Warn(context.Background(), "close cache", "error", err)
		}
	}
}
