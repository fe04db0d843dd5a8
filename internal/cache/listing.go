// Package cache holds the short-lived listing cache. It is a read optimization only;
// transitions never consult it.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"hiring-workers/internal/common/clock"
	"hiring-workers/internal/common/logger"
	"hiring-workers/internal/common/metrics"
	"hiring-workers/internal/models"
)

const listingPrefix = "listing:"

type envelope struct {
	CachedAt time.Time            `json:"cachedAt"`
	Items    []models.Application `json:"items"`
}

// Listing caches listApplications results in Redis. Freshness is judged against the
// injected clock; the Redis expiry only reclaims memory.
type Listing struct {
	redis  redis.Cmdable
	ttl    time.Duration
	clock  clock.Clock
	logger logger.Logger
}

func NewListing(rdb redis.Cmdable, ttl time.Duration, clk clock.Clock, log logger.Logger) *Listing {
	if clk == nil {
		clk = clock.System()
	}
	return &Listing{
		redis:  rdb,
		ttl:    ttl,
		clock:  clk,
		logger: log.WithFields(map[string]interface{}{"component": "listing-cache"}),
	}
}

// Key is the cache key of a normalized filter: a digest of its JSON encoding, so
// separators inside filter values cannot alias another filter.
func Key(f models.ListFilter) string {
	// ListFilter holds only strings and ints; encoding cannot fail.
	b, _ := json.Marshal(f)
	sum := sha256.Sum256(b)
	return listingPrefix + hex.EncodeToString(sum[:])
}

func (l *Listing) Get(ctx context.Context, f models.ListFilter) ([]models.Application, bool) {
	raw, err := l.redis.Get(ctx, Key(f)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			metrics.ListingCacheRequests.WithLabelValues("error").Inc()
			l.logger.Warn("listing cache read failed", map[string]interface{}{"error": err})
			return nil, false
		}
		metrics.ListingCacheRequests.WithLabelValues("miss").Inc()
		return nil, false
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		metrics.ListingCacheRequests.WithLabelValues("error").Inc()
		return nil, false
	}
	if l.clock.Now().Sub(env.CachedAt) >= l.ttl {
		metrics.ListingCacheRequests.WithLabelValues("miss").Inc()
		return nil, false
	}
	metrics.ListingCacheRequests.WithLabelValues("hit").Inc()
	return env.Items, true
}

func (l *Listing) Put(ctx context.Context, f models.ListFilter, apps []models.Application) {
	if apps == nil {
		apps = []models.Application{}
	}
	b, err := json.Marshal(envelope{CachedAt: l.clock.Now(), Items: apps})
	if err != nil {
		l.logger.Warn("listing cache encode failed", map[string]interface{}{"error": err})
		return
	}
	if err := l.redis.Set(ctx, Key(f), b, l.ttl).Err(); err != nil {
		l.logger.Warn("listing cache write failed", map[string]interface{}{"error": err})
	}
}
