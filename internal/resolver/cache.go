package resolver

import (
	"context"
	"encoding/json"
	"time"

	"github.com/tonywu212005-glitch/sp500-app/internal/infra"
	"github.com/tonywu212005-glitch/sp500-app/internal/logger"
	"github.com/tonywu212005-glitch/sp500-app/pkg/models"
	"github.com/tonywu212005-glitch/sp500-app/pkg/utils"
)

// CachedEarnings memoizes an EarningsSource in a Store. Only upstream
// answers (ok, no_data) are kept; estimated dates and failures are not, so
// a quota or auth problem clears as soon as the upstream recovers.
type CachedEarnings struct {
	inner EarningsSource
	store infra.Store
	ttl   time.Duration
}

// NewCachedEarnings wraps inner.
func NewCachedEarnings(inner EarningsSource, store infra.Store, ttl time.Duration) *CachedEarnings {
	return &CachedEarnings{inner: inner, store: store, ttl: ttl}
}

func (c *CachedEarnings) Resolve(ctx context.Context, symbol string) models.EarningsResolution {
	return cached(ctx, c.store, "earnings:"+utils.NormalizeTicker(symbol), c.ttl,
		func() models.EarningsResolution { return c.inner.Resolve(ctx, symbol) },
		func(r models.EarningsResolution) bool {
			return r.Confidence != models.ConfidenceEstimated && cacheableStatus(r.Status)
		})
}

// CachedCaps memoizes a CapSource in a Store.
type CachedCaps struct {
	inner CapSource
	store infra.Store
	ttl   time.Duration
}

// NewCachedCaps wraps inner.
func NewCachedCaps(inner CapSource, store infra.Store, ttl time.Duration) *CachedCaps {
	return &CachedCaps{inner: inner, store: store, ttl: ttl}
}

func (c *CachedCaps) Resolve(ctx context.Context, symbol string) models.CapResolution {
	return cached(ctx, c.store, "marketcap:"+utils.NormalizeTicker(symbol), c.ttl,
		func() models.CapResolution { return c.inner.Resolve(ctx, symbol) },
		func(r models.CapResolution) bool { return cacheableStatus(r.Status) })
}

func cacheableStatus(s models.Status) bool {
	return s == models.StatusOK || s == models.StatusNoData
}

// cached is the shared read-through path. Store errors degrade to a miss.
func cached[T any](ctx context.Context, store infra.Store, key string, ttl time.Duration, resolve func() T, keep func(T) bool) T {
	if data, ok, err := store.Get(ctx, key); err != nil {
		logger.Warn(ctx, "result cache read failed", "key", key, "error", err.Error())
	} else if ok {
		var v T
		if err := json.Unmarshal(data, &v); err == nil {
			return v
		}
		logger.Debug(ctx, "result cache entry unreadable", "key", key)
	}

	v := resolve()
	if ttl <= 0 || !keep(v) {
		return v
	}
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	if err := store.Set(ctx, key, data, ttl); err != nil {
		logger.Warn(ctx, "result cache write failed", "key", key, "error", err.Error())
	}
	return v
}
