// Package lifecycle validates and commits application status changes.
package lifecycle

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"hiring-workers/internal/common/clock"
	apperrors "hiring-workers/internal/common/errors"
	"hiring-workers/internal/common/logger"
	"hiring-workers/internal/common/metrics"
	"hiring-workers/internal/directory"
	"hiring-workers/internal/models"
	"hiring-workers/internal/store"
)

// ListingCache serves listApplications reads. It never takes part in transitions.
type ListingCache interface {
	Get(ctx context.Context, filter models.ListFilter) ([]models.Application, bool)
	Put(ctx context.Context, filter models.ListFilter, apps []models.Application)
}

type Coordinator struct {
	apps    store.ApplicationStore
	dir     directory.Directory
	listing ListingCache
	clock   clock.Clock
	newID   func() string
	logger  logger.Logger
}

type Option func(*Coordinator)

func WithClock(c clock.Clock) Option {
	return func(co *Coordinator) { co.clock = c }
}

func WithListingCache(lc ListingCache) Option {
	return func(co *Coordinator) { co.listing = lc }
}

// WithIDGenerator replaces uuid.NewString for application and outbox ids.
func WithIDGenerator(fn func() string) Option {
	return func(co *Coordinator) { co.newID = fn }
}

func New(apps store.ApplicationStore, dir directory.Directory, log logger.Logger, opts ...Option) *Coordinator {
	c := &Coordinator{
		apps:   apps,
		dir:    dir,
		clock:  clock.System(),
		newID:  uuid.NewString,
		logger: log.WithFields(map[string]interface{}{"component": "lifecycle"}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SubmitRequest is a candidate's initial application.
type SubmitRequest struct {
	CandidateID string
	JobID       string
	CoverLetter string
	ResumeRef   string
}

// Submit stores a Pending application for the job, queuing the badge evaluation,
// the organization notice and the search projection.
func (c *Coordinator) Submit(ctx context.Context, req SubmitRequest) (*models.Application, error) {
	app, err := c.submit(ctx, req)
	result := "ok"
	if err != nil {
		result = strings.ToLower(string(apperrors.CodeOf(err)))
	}
	metrics.Submissions.WithLabelValues(result).Inc()
	return app, err
}

func (c *Coordinator) submit(ctx context.Context, req SubmitRequest) (*models.Application, error) {
	if strings.TrimSpace(req.CandidateID) == "" {
		return nil, apperrors.NewValidationError("candidateId", "candidateId is required")
	}
	if strings.TrimSpace(req.JobID) == "" {
		return nil, apperrors.NewValidationError("jobId", "jobId is required")
	}

	job, err := c.dir.GetJob(ctx, req.JobID)
	if err != nil {
		return nil, lookupError("job", req.JobID, err)
	}
	if _, err := c.dir.GetCandidateProfile(ctx, req.CandidateID); err != nil {
		return nil, lookupError("candidate", req.CandidateID, err)
	}

	now := c.clock.Now()
	app := &models.Application{
		ID:             c.newID(),
		JobID:          job.ID,
		CandidateID:    req.CandidateID,
		OrganizationID: job.OrganizationID,
		Status:         models.StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
		CoverLetter:    req.CoverLetter,
		ResumeRef:      req.ResumeRef,
	}

	outbox, err := c.outbox(app.ID,
		outboxItem{models.OutboxEvaluateBadges, models.BadgePayload{CandidateID: app.CandidateID, Trigger: models.TriggerApplicationCount}},
		outboxItem{models.OutboxNotifySubmission, nil},
		outboxItem{models.OutboxIndexApplication, nil},
	)
	if err != nil {
		return nil, err
	}

	if err := c.apps.CreateApplication(ctx, app, outbox); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperrors.NewDuplicateApplicationError(req.CandidateID, req.JobID)
		}
		return nil, apperrors.NewDependencyUnavailableError("application store", err)
	}

	c.logger.Info("application submitted", map[string]interface{}{
		"applicationId":  app.ID,
		"candidateId":    app.CandidateID,
		"jobId":          app.JobID,
		"organizationId": app.OrganizationID,
	})
	return app, nil
}

// Transition moves an application to target on behalf of actor.
//
// Checks run in order: existence, ownership, role, transition table, metadata. The
// write is a compare-and-set on the status that was read, so a concurrent winner
// turns this call into InvalidTransition.
func (c *Coordinator) Transition(ctx context.Context, applicationID string, actor models.Actor, target models.Status, meta models.TransitionMetadata) (*models.Application, error) {
	app, from, err := c.transition(ctx, applicationID, actor, target, meta)
	result := "ok"
	if err != nil {
		result = strings.ToLower(string(apperrors.CodeOf(err)))
	}
	metrics.Transitions.WithLabelValues(statusLabel(from), statusLabel(target), result).Inc()
	return app, err
}

// statusLabel keeps caller-supplied statuses from minting new metric series.
func statusLabel(s models.Status) string {
	if s == "" || !s.Valid() {
		return "unknown"
	}
	return string(s)
}

// ApproveByCandidate confirms an accepted offer.
func (c *Coordinator) ApproveByCandidate(ctx context.Context, applicationID, candidateID string) (*models.Application, error) {
	return c.Transition(ctx, applicationID,
		models.Actor{Kind: models.ActorCandidate, ID: candidateID},
		models.StatusApproved, models.TransitionMetadata{})
}

func (c *Coordinator) transition(ctx context.Context, applicationID string, actor models.Actor, target models.Status, meta models.TransitionMetadata) (*models.Application, models.Status, error) {
	app, err := c.load(ctx, applicationID)
	if err != nil {
		return nil, "", err
	}
	from := app.Status

	if err := authorize(app, actor, target); err != nil {
		return nil, from, err
	}
	if !CanTransition(from, target) {
		return nil, from, apperrors.NewInvalidTransitionError(string(from), string(target))
	}
	if err := validateMetadata(target, meta); err != nil {
		return nil, from, err
	}

	next := apply(*app, target, meta, c.clock.Now())
	outbox, err := c.outbox(app.ID,
		outboxItem{models.OutboxNotifyTransition, models.TransitionPayload{PreviousStatus: from, NewStatus: target, Actor: actor}},
		outboxItem{models.OutboxIndexApplication, nil},
	)
	if err != nil {
		return nil, from, err
	}

	if err := c.apps.CompareAndSetStatus(ctx, &next, from, outbox); err != nil {
		if !errors.Is(err, store.ErrStatusConflict) {
			return nil, from, apperrors.NewDependencyUnavailableError("application store", err)
		}
		current, loadErr := c.load(ctx, applicationID)
		if loadErr != nil {
			return nil, from, loadErr
		}
		c.logger.Info("transition lost to concurrent update", map[string]interface{}{
			"applicationId": applicationID,
			"expected":      string(from),
			"current":       string(current.Status),
			"target":        string(target),
		})
		return nil, from, apperrors.NewInvalidTransitionError(string(current.Status), string(target))
	}

	c.logger.Info("application transitioned", map[string]interface{}{
		"applicationId": app.ID,
		"from":          string(from),
		"to":            string(target),
		"actor":         actor.String(),
	})
	return &next, from, nil
}

// ListApplications returns matching applications, newest first.
func (c *Coordinator) ListApplications(ctx context.Context, filter models.ListFilter) ([]models.Application, error) {
	filter = filter.Normalize()
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperrors.NewValidationError("status", "unknown status "+string(filter.Status))
	}

	if c.listing != nil {
		if apps, ok := c.listing.Get(ctx, filter); ok {
			return apps, nil
		}
	}

	apps, err := c.apps.ListApplications(ctx, filter)
	if err != nil {
		return nil, apperrors.NewDependencyUnavailableError("application store", err)
	}
	if c.listing != nil {
		c.listing.Put(ctx, filter, apps)
	}
	return apps, nil
}

// GetApplication loads a single application.
func (c *Coordinator) GetApplication(ctx context.Context, id string) (*models.Application, error) {
	return c.load(ctx, id)
}

func (c *Coordinator) load(ctx context.Context, id string) (*models.Application, error) {
	app, err := c.apps.GetApplication(ctx, id)
	if err != nil {
		return nil, lookupError("application", id, err)
	}
	return app, nil
}

type outboxItem struct {
	kind    models.OutboxKind
	payload interface{}
}

func (c *Coordinator) outbox(applicationID string, items ...outboxItem) ([]models.OutboxEntry, error) {
	out := make([]models.OutboxEntry, 0, len(items))
	for _, it := range items {
		e, err := models.NewOutboxEntry(it.kind, applicationID, it.payload)
		if err != nil {
			return nil, apperrors.NewValidationError("outbox", err.Error())
		}
		e.ID = c.newID()
		out = append(out, e)
	}
	return out, nil
}

func lookupError(resource, id string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperrors.NewNotFoundError(resource, id)
	}
	return apperrors.NewDependencyUnavailableError(resource+" lookup", err)
}
