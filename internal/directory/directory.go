// Package directory provides read-only lookups of jobs, organizations and candidates.
package directory

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"hiring-workers/internal/common/logger"
	"hiring-workers/internal/models"
)

// Directory is implemented by postgres.Directory, memory.Store and Cached. A missing
// record is reported as store.ErrNotFound.
type Directory interface {
	GetJob(ctx context.Context, id string) (*models.Job, error)
	GetOrganization(ctx context.Context, id string) (*models.Organization, error)
	GetCandidateProfile(ctx context.Context, id string) (*models.CandidateProfile, error)
}

const keyPrefix = "directory:"

// Cached is a Redis read-through cache in front of another Directory. Redis failures
// degrade to direct lookups.
type Cached struct {
	next   Directory
	redis  redis.Cmdable
	ttl    time.Duration
	logger logger.Logger
}

func NewCached(next Directory, rdb redis.Cmdable, ttl time.Duration, log logger.Logger) *Cached {
	return &Cached{
		next:   next,
		redis:  rdb,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "directory-cache"}),
	}
}

func (c *Cached) GetJob(ctx context.Context, id string) (*models.Job, error) {
	return readThrough(ctx, c, "job:"+id, func() (*models.Job, error) {
		return c.next.GetJob(ctx, id)
	})
}

func (c *Cached) GetOrganization(ctx context.Context, id string) (*models.Organization, error) {
	return readThrough(ctx, c, "organization:"+id, func() (*models.Organization, error) {
		return c.next.GetOrganization(ctx, id)
	})
}

func (c *Cached) GetCandidateProfile(ctx context.Context, id string) (*models.CandidateProfile, error) {
	return readThrough(ctx, c, "candidate:"+id, func() (*models.CandidateProfile, error) {
		return c.next.GetCandidateProfile(ctx, id)
	})
}

// InvalidateCandidate drops the cached profile, used after a profile update.
func (c *Cached) InvalidateCandidate(ctx context.Context, id string) {
	if err := c.redis.Del(ctx, keyPrefix+"candidate:"+id).Err(); err != nil {
		c.logger.Warn("cache invalidation failed", map[string]interface{}{
			"candidateId": id,
			"error":       err,
		})
	}
}

// readThrough serves key from Redis or loads it from the source and caches it. A
// cached entry that fails to decode is discarded and never merged with the reload.
func readThrough[T any](ctx context.Context, c *Cached, key string, load func() (*T, error)) (*T, error) {
	key = keyPrefix + key

	raw, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached T
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
			return &cached, nil
		}
		c.logger.Warn("discarding unreadable cache entry", map[string]interface{}{"key": key})
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("cache read failed, falling back to source", map[string]interface{}{
			"key":   key,
			"error": err,
		})
	}

	v, err := load()
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if err := c.redis.Set(ctx, key, b, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", map[string]interface{}{
			"key":   key,
			"error": err,
		})
	}
	return v, nil
}
