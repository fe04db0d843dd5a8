package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hiring-workers/internal/common/clock"
	"hiring-workers/internal/common/logger"
	"hiring-workers/internal/models"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return mr, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

var filter = models.ListFilter{CandidateID: "cand-1"}.Normalize()

func TestListing_HitUntilTTLOnInjectedClock(t *testing.T) {
	_, rdb := setupRedis(t)
	clk := clock.NewManual(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	l := NewListing(rdb, 30*time.Second, clk, logger.NewTestLogger(t))
	ctx := context.Background()

	apps := []models.Application{{ID: "app-1", CandidateID: "cand-1", Status: models.StatusPending}}
	l.Put(ctx, filter, apps)

	got, ok := l.Get(ctx, filter)
	require.True(t, ok)
	assert.Equal(t, "app-1", got[0].ID)
	assert.Equal(t, models.StatusPending, got[0].Status)

	clk.Advance(29 * time.Second)
	_, ok = l.Get(ctx, filter)
	assert.True(t, ok)

	clk.Advance(time.Second)
	_, ok = l.Get(ctx, filter)
	assert.False(t, ok)
}

func TestListing_MissForOtherFilter(t *testing.T) {
	_, rdb := setupRedis(t)
	l := NewListing(rdb, time.Minute, clock.System(), logger.NewTestLogger(t))
	ctx := context.Background()

	l.Put(ctx, filter, nil)
	got, ok := l.Get(ctx, filter)
	require.True(t, ok)
	assert.Empty(t, got)

	_, ok = l.Get(ctx, models.ListFilter{CandidateID: "cand-2"}.Normalize())
	assert.False(t, ok)
}

func TestListing_SeparatorsInValuesDoNotShareEntries(t *testing.T) {
	_, rdb := setupRedis(t)
	l := NewListing(rdb, time.Minute, clock.System(), logger.NewTestLogger(t))
	ctx := context.Background()

	a := models.ListFilter{CandidateID: "x:org=y"}.Normalize()
	b := models.ListFilter{CandidateID: "x", OrganizationID: "y:org="}.Normalize()
	require.NotEqual(t, Key(a), Key(b))

	l.Put(ctx, a, []models.Application{{ID: "cand-x-app"}})
	_, ok := l.Get(ctx, b)
	assert.False(t, ok)

	got, ok := l.Get(ctx, a)
	require.True(t, ok)
	assert.Equal(t, "cand-x-app", got[0].ID)
}

func TestListing_RedisExpiryBacksTheTTL(t *testing.T) {
	mr, rdb := setupRedis(t)
	l := NewListing(rdb, time.Minute, clock.System(), logger.NewTestLogger(t))

	l.Put(context.Background(), filter, []models.Application{{ID: "app-1"}})
	assert.Equal(t, time.Minute, mr.TTL(Key(filter)))
}

func TestListing_RedisErrorIsAMiss(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	mock.ExpectGet(Key(filter)).SetErr(errors.New("connection refused"))

	l := NewListing(rdb, time.Minute, clock.System(), logger.NewTestLogger(t))
	_, ok := l.Get(context.Background(), filter)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListing_CorruptEntryIsAMiss(t *testing.T) {
	mr, rdb := setupRedis(t)
	require.NoError(t, mr.Set(Key(filter), "not json"))

	l := NewListing(rdb, time.Minute, clock.System(), logger.NewTestLogger(t))
	_, ok := l.Get(context.Background(), filter)
	assert.False(t, ok)
}
