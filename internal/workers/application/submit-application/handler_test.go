package submitapplication

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hiring-workers/internal/common/clock"
	apperrors "hiring-workers/internal/common/errors"
	"hiring-workers/internal/common/logger"
	"hiring-workers/internal/common/validation"
	"hiring-workers/internal/lifecycle"
	"hiring-workers/internal/models"
	"hiring-workers/internal/store/memory"
	"hiring-workers/pkg/registry"
)

var now = time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC)

func newHandler(t *testing.T) (*Handler, *memory.Store) {
	t.Helper()
	s := memory.New()
	s.PutOrganization(models.Organization{ID: "org-1", Name: "Acme"})
	s.PutJob(models.Job{ID: "job-1", Title: "Backend Engineer", OrganizationID: "org-1"})
	s.PutCandidate(models.CandidateProfile{ID: "cand-1", DisplayName: "Ada"})

	log := logger.NewTestLogger(t)
	n := 0
	co := lifecycle.New(s, s, log,
		lifecycle.WithClock(clock.NewManual(now)),
		lifecycle.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("app-%d", n)
		}))

	reg, err := registry.Default()
	require.NoError(t, err)
	return NewHandler(LoadConfig(), co, validation.NewValidator(reg), log), s
}

func TestHandler_Execute_Success(t *testing.T) {
	h, s := newHandler(t)

	out, err := h.Execute(context.Background(), &Input{CandidateID: "cand-1", JobID: "job-1", CoverLetter: "Hi"})
	require.NoError(t, err)
	assert.Equal(t, &Output{
		ApplicationID:  "app-1",
		Status:         "pending",
		OrganizationID: "org-1",
		JobID:          "job-1",
		CreatedAt:      "2025-04-02T10:00:00Z",
	}, out)

	app, err := s.GetApplication(context.Background(), "app-1")
	require.NoError(t, err)
	assert.Equal(t, "Hi", app.CoverLetter)
	assert.Len(t, s.Outbox(), 3)
}

func TestHandler_Execute_Duplicate(t *testing.T) {
	h, _ := newHandler(t)
	_, err := h.Execute(context.Background(), &Input{CandidateID: "cand-1", JobID: "job-1"})
	require.NoError(t, err)

	_, err = h.Execute(context.Background(), &Input{CandidateID: "cand-1", JobID: "job-1"})
	assert.ErrorIs(t, err, apperrors.ErrDuplicateApplication)
}

func TestHandler_Execute_UnknownJob(t *testing.T) {
	h, _ := newHandler(t)
	_, err := h.Execute(context.Background(), &Input{CandidateID: "cand-1", JobID: "job-404"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestHandler_Process_ValidatesVariables(t *testing.T) {
	h, _ := newHandler(t)

	_, err := h.process(context.Background(), `{"candidateId":"cand-1"}`)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInputValidationFailed, apperrors.CodeOf(err))

	out, err := h.process(context.Background(), `{"candidateId":"cand-1","jobId":"job-1"}`)
	require.NoError(t, err)
	assert.Equal(t, "app-1", out.ApplicationID)
}
