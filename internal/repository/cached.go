package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/trackbus/internal/cache"
	"github.com/UnknownOlympus/trackbus/internal/models"
)

// CachedRepository serves route stops from the cache and falls back to the
// wrapped repository on a miss.
type CachedRepository struct {
	next  Interface
	cache cache.Cache
	ttl   time.Duration
	log   *slog.Logger
}

// NewCachedRepository wraps next with a read-through cache.
func NewCachedRepository(next Interface, c cache.Cache, ttl time.Duration, log *slog.Logger) *CachedRepository {
	return &CachedRepository{next: next, cache: c, ttl: ttl, log: log}
}

// RouteStopsKey is the cache key holding the stops of a route.
func RouteStopsKey(routeID string) string {
	return fmt.Sprintf("trackbus:route:%s:stops", routeID)
}

// FetchRouteStops returns the cached stops of routeID when present.
// Cache failures are logged and never fail the lookup.
func (c *CachedRepository) FetchRouteStops(ctx context.Context, routeID string) ([]models.Stop, error) {
	key := RouteStopsKey(routeID)

	data, err := c.cache.Get(ctx, key)
	switch {
	case err == nil:
		var stops []models.Stop
		if errDecode := json.Unmarshal(data, &stops); errDecode == nil {
			c.log.DebugContext(ctx, "Route stops served from cache", "route", routeID)
			return stops, nil
		}
		c.log.WarnContext(ctx, "Discarding corrupted cache entry", "key", key)
	case !errors.Is(err, cache.ErrMiss):
		c.log.WarnContext(ctx, "Cache lookup failed", "key", key, "error", err)
	}

	stops, err := c.next.FetchRouteStops(ctx, routeID)
	if err != nil {
		return nil, err
	}

	if len(stops) == 0 {
		return stops, nil
	}

	if data, err = json.Marshal(stops); err == nil {
		err = c.cache.Set(ctx, key, data, c.ttl)
	}
	if err != nil {
		c.log.WarnContext(ctx, "Cache write failed", "key", key, "error", err)
	}

	return stops, nil
}
