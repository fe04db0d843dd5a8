package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hiring-workers/internal/models"
	"hiring-workers/internal/store"
)

var t0 = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func TestCompareAndSetStatus(t *testing.T) {
	ctx := context.Background()
	s := New()
	app := &models.Application{ID: "a1", JobID: "j1", CandidateID: "c1", Status: models.StatusPending, CreatedAt: t0}
	require.NoError(t, s.CreateApplication(ctx, app, nil))

	next := *app
	next.Status = models.StatusInReview
	assert.ErrorIs(t, s.CompareAndSetStatus(ctx, &next, models.StatusAccepted, nil), store.ErrStatusConflict)

	entry, err := models.NewOutboxEntry(models.OutboxIndexApplication, "a1", nil)
	require.NoError(t, err)
	require.NoError(t, s.CompareAndSetStatus(ctx, &next, models.StatusPending, []models.OutboxEntry{entry}))

	got, err := s.GetApplication(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusInReview, got.Status)
	assert.Len(t, s.Outbox(), 1)
}

func TestCreateApplication_Duplicate(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.CreateApplication(ctx, &models.Application{ID: "a1", JobID: "j1", CandidateID: "c1"}, nil))
	assert.ErrorIs(t, s.CreateApplication(ctx, &models.Application{ID: "a2", JobID: "j1", CandidateID: "c1"}, nil), store.ErrDuplicate)
}

func TestListApplications_NewestFirstWithPaging(t *testing.T) {
	ctx := context.Background()
	s := New()
	for i, id := range []string{"a1", "a2", "a3"} {
		require.NoError(t, s.CreateApplication(ctx, &models.Application{
			ID: id, JobID: id, CandidateID: "c1", OrganizationID: "o1",
			Status: models.StatusPending, CreatedAt: t0.Add(time.Duration(i) * time.Minute),
		}, nil))
	}

	got, err := s.ListApplications(ctx, models.ListFilter{CandidateID: "c1", Limit: 2})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a3", got[0].ID)
	assert.Equal(t, "a2", got[1].ID)

	got, err = s.ListApplications(ctx, models.ListFilter{CandidateID: "c1", Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestClaimOutbox_LeasesEntries(t *testing.T) {
	ctx := context.Background()
	s := New()
	e, err := models.NewOutboxEntry(models.OutboxNotifyTransition, "a1", nil)
	require.NoError(t, err)
	e.CreatedAt = t0
	s.Enqueue(e)

	claimed, err := s.ClaimOutbox(ctx, t0, 10, time.Minute)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, 1, claimed[0].Attempts)

	again, err := s.ClaimOutbox(ctx, t0.Add(30*time.Second), 10, time.Minute)
	require.NoError(t, err)
	assert.Empty(t, again)

	require.NoError(t, s.CompleteOutbox(ctx, claimed[0].ID))
	after, err := s.ClaimOutbox(ctx, t0.Add(2*time.Minute), 10, time.Minute)
	require.NoError(t, err)
	assert.Empty(t, after)
	assert.Equal(t, models.OutboxDone, s.Outbox()[0].Status)
}

func TestAwardBadge_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := New()
	ub := models.UserBadge{UserID: "c1", BadgeID: "b1", EarnedAt: t0}

	awarded, err := s.AwardBadge(ctx, ub)
	require.NoError(t, err)
	assert.True(t, awarded)

	awarded, err = s.AwardBadge(ctx, ub)
	require.NoError(t, err)
	assert.False(t, awarded)
}
