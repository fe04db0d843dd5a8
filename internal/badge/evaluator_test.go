package badge

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hiring-workers/internal/common/clock"
	apperrors "hiring-workers/internal/common/errors"
	"hiring-workers/internal/common/logger"
	"hiring-workers/internal/models"
	"hiring-workers/internal/store/memory"
)

var earned = time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	awarded []string
	err     error
}

func (r *recordingNotifier) NotifyBadgeAwarded(_ context.Context, candidateID string, b models.Badge) (*models.Notification, error) {
	r.awarded = append(r.awarded, candidateID+"/"+b.ID)
	return &models.Notification{}, r.err
}

func setup(t *testing.T) (*memory.Store, *Evaluator, *recordingNotifier) {
	s := memory.New()
	s.PutBadge(models.Badge{ID: "first-application", Name: "First Application", TriggerKind: models.TriggerApplicationCount, Threshold: 1, Active: true})
	s.PutBadge(models.Badge{ID: "five-applications", Name: "Five Applications", TriggerKind: models.TriggerApplicationCount, Threshold: 5, Active: true})
	s.PutBadge(models.Badge{ID: "retired", Name: "Retired", TriggerKind: models.TriggerApplicationCount, Threshold: 1, Active: false})
	s.PutBadge(models.Badge{ID: "profile-half", Name: "Halfway There", TriggerKind: models.TriggerProfileCompletion, Threshold: 50, Active: true})
	s.PutBadge(models.Badge{ID: "profile-complete", Name: "All Set", TriggerKind: models.TriggerProfileCompletion, Threshold: 100, Active: true})

	n := &recordingNotifier{}
	e := NewEvaluator(s, s, s, logger.NewTestLogger(t), WithClock(clock.NewManual(earned)), WithNotifier(n))
	return s, e, n
}

func addApplications(t *testing.T, s *memory.Store, candidateID string, n int) {
	for i := 0; i < n; i++ {
		require.NoError(t, s.CreateApplication(context.Background(), &models.Application{
			ID: candidateID + "-app-" + string(rune('a'+i)), CandidateID: candidateID,
			JobID: "job-" + string(rune('a'+i)), OrganizationID: "org-1", Status: models.StatusPending,
		}, nil))
	}
}

func TestEvaluate_FirstApplicationAwardedOnce(t *testing.T) {
	s, e, n := setup(t)
	addApplications(t, s, "cand-1", 1)

	got, err := e.Evaluate(context.Background(), "cand-1", models.TriggerApplicationCount)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.UserBadge{UserID: "cand-1", BadgeID: "first-application", EarnedAt: earned}, got[0])

	again, err := e.Evaluate(context.Background(), "cand-1", models.TriggerApplicationCount)
	require.NoError(t, err)
	assert.Empty(t, again)

	held, err := s.UserBadges(context.Background(), "cand-1")
	require.NoError(t, err)
	assert.Len(t, held, 1)
	assert.Equal(t, []string{"cand-1/first-application"}, n.awarded)
}

func TestEvaluate_CrossesSeveralThresholds(t *testing.T) {
	s, e, _ := setup(t)
	addApplications(t, s, "cand-1", 5)

	got, err := e.Evaluate(context.Background(), "cand-1", models.TriggerApplicationCount)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "first-application", got[0].BadgeID)
	assert.Equal(t, "five-applications", got[1].BadgeID)
}

func TestEvaluate_NoApplicationsNoBadge(t *testing.T) {
	_, e, n := setup(t)

	got, err := e.Evaluate(context.Background(), "cand-1", models.TriggerApplicationCount)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, n.awarded)
}

func TestEvaluate_ProfileCompletion(t *testing.T) {
	s, e, _ := setup(t)
	s.PutCandidate(models.CandidateProfile{
		ID: "cand-1", About: "Gopher", Phone: "+1555", Location: "Berlin", Title: "Engineer",
	})

	got, err := e.Evaluate(context.Background(), "cand-1", models.TriggerProfileCompletion)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "profile-half", got[0].BadgeID)

	s.PutCandidate(models.CandidateProfile{
		ID: "cand-1", About: "Gopher", Phone: "+1555", Location: "Berlin", Title: "Engineer",
		Skills: []string{"go"}, Languages: []string{"en"}, Experiences: []string{"acme"}, Educations: []string{"mit"},
	})
	got, err = e.Evaluate(context.Background(), "cand-1", models.TriggerProfileCompletion)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "profile-complete", got[0].BadgeID)
}

func TestEvaluate_NotifierFailureDoesNotFailEvaluation(t *testing.T) {
	s, e, n := setup(t)
	n.err = errors.New("smtp down")
	addApplications(t, s, "cand-1", 1)

	got, err := e.Evaluate(context.Background(), "cand-1", models.TriggerApplicationCount)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestEvaluate_Errors(t *testing.T) {
	t.Run("unknown trigger", func(t *testing.T) {
		_, e, _ := setup(t)
		_, err := e.Evaluate(context.Background(), "cand-1", models.TriggerKind("logins"))
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("unknown candidate profile", func(t *testing.T) {
		_, e, _ := setup(t)
		_, err := e.Evaluate(context.Background(), "cand-404", models.TriggerProfileCompletion)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("store outage is retryable", func(t *testing.T) {
		s, e, _ := setup(t)
		s.Fail = errors.New("connection refused")
		_, err := e.Evaluate(context.Background(), "cand-1", models.TriggerApplicationCount)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeBadgeEvaluationFailed, apperrors.CodeOf(err))
		assert.True(t, apperrors.IsRetryable(err))
	})
}

func TestCompletion(t *testing.T) {
	tests := []struct {
		name    string
		profile *models.CandidateProfile
		want    int
	}{
		{"nil profile", nil, 0},
		{"empty", &models.CandidateProfile{}, 0},
		{"blank strings count as empty", &models.CandidateProfile{About: "  ", Phone: ""}, 0},
		{"one of eight rounds half up", &models.CandidateProfile{About: "x"}, 13},
		{"three of eight", &models.CandidateProfile{About: "x", Skills: []string{"go"}, Title: "dev"}, 38},
		{"empty lists do not count", &models.CandidateProfile{Skills: []string{}, Languages: nil}, 0},
		{"all", &models.CandidateProfile{
			About: "a", Phone: "p", Location: "l", Title: "t",
			Skills: []string{"s"}, Languages: []string{"l"}, Experiences: []string{"e"}, Educations: []string{"e"},
		}, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Completion(tt.profile))
		})
	}
}
