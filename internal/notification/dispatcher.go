// Package notification composes, stores and delivers notifications about application
// progress and badge awards.
package notification

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"hiring-workers/internal/common/clock"
	apperrors "hiring-workers/internal/common/errors"
	"hiring-workers/internal/common/logger"
	"hiring-workers/internal/common/metrics"
	"hiring-workers/internal/directory"
	"hiring-workers/internal/models"
	"hiring-workers/internal/store"
)

var idNamespace = uuid.MustParse("6f1c2a0e-4b7d-4d8e-9a51-3c2f0b9e7d14")

// NotificationID derives a stable notification id from key, so replaying the same
// key yields the same row.
func NotificationID(key string) string {
	return uuid.NewSHA1(idNamespace, []byte(key)).String()
}

type Dispatcher struct {
	store   store.NotificationStore
	dir     directory.Directory
	channel Channel
	clock   clock.Clock
	logger  logger.Logger
}

type Option func(*Dispatcher)

func WithClock(c clock.Clock) Option {
	return func(d *Dispatcher) { d.clock = c }
}

// NewDispatcher builds a dispatcher. channel may be nil, in which case notifications
// are only stored.
func NewDispatcher(ns store.NotificationStore, dir directory.Directory, channel Channel, log logger.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		store:   ns,
		dir:     dir,
		channel: channel,
		clock:   clock.System(),
		logger:  log.WithFields(map[string]interface{}{"component": "notification"}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type names struct {
	jobTitle         string
	organizationName string
	candidateName    string
}

// NotifyOnTransition records the notice for a committed transition. Organization
// actions notify the candidate; candidate actions notify the organization. key
// identifies the transition and makes the call idempotent.
func (d *Dispatcher) NotifyOnTransition(ctx context.Context, key string, app *models.Application, previous, next models.Status, actor models.Actor) (*models.Notification, error) {
	kind, ok := models.KindForStatus(next)
	if !ok {
		return nil, apperrors.NewValidationError("newStatus", "no notification for status "+string(next))
	}

	recipientKind, recipientID := models.RecipientCandidate, app.CandidateID
	if actor.Kind == models.ActorCandidate {
		recipientKind, recipientID = models.RecipientOrganization, app.OrganizationID
	}

	data := transitionData(app, d.names(ctx, app))
	if next == models.StatusApproved && data["approvedDate"] == "" {
		data["approvedDate"] = d.clock.Now().Format("2006-01-02")
	}

	d.logger.Debug("composing transition notice", map[string]interface{}{
		"applicationId": app.ID,
		"from":          string(previous),
		"to":            string(next),
	})
	return d.dispatch(ctx, key, kind, recipientKind, recipientID, app.ID, data)
}

// NotifySubmission tells the organization a new application arrived.
func (d *Dispatcher) NotifySubmission(ctx context.Context, key string, app *models.Application) (*models.Notification, error) {
	data := transitionData(app, d.names(ctx, app))
	return d.dispatch(ctx, key, models.KindApplicationSubmitted,
		models.RecipientOrganization, app.OrganizationID, app.ID, data)
}

// NotifyBadgeAwarded tells the candidate about a new badge. A badge is awarded once,
// so the pair is the idempotency key.
func (d *Dispatcher) NotifyBadgeAwarded(ctx context.Context, candidateID string, badge models.Badge) (*models.Notification, error) {
	key := "badge:" + candidateID + ":" + badge.ID
	return d.dispatch(ctx, key, models.KindBadgeAwarded,
		models.RecipientCandidate, candidateID, "", map[string]string{"badgeName": badge.Name})
}

func (d *Dispatcher) dispatch(ctx context.Context, key string, kind models.NotificationKind, recipientKind models.RecipientKind, recipientID, applicationID string, data map[string]string) (*models.Notification, error) {
	title, body, err := compose(kind, data)
	if err != nil {
		return nil, apperrors.NewValidationError("kind", err.Error())
	}

	n := &models.Notification{
		ID:                   NotificationID(key),
		RecipientKind:        recipientKind,
		RecipientID:          recipientID,
		Title:                title,
		Body:                 body,
		Kind:                 kind,
		RelatedApplicationID: applicationID,
		CreatedAt:            d.clock.Now(),
	}

	created, err := d.store.CreateNotification(ctx, n)
	if err != nil {
		return nil, apperrors.NewNotificationSendFailedError(string(kind), err)
	}
	if !created {
		d.logger.Debug("notification already recorded", map[string]interface{}{
			"notificationId": n.ID,
			"kind":           string(kind),
		})
		return n, nil
	}
	metrics.NotificationsCreated.WithLabelValues(string(kind)).Inc()

	d.deliver(ctx, n)
	return n, nil
}

func (d *Dispatcher) deliver(ctx context.Context, n *models.Notification) {
	if d.channel == nil {
		return
	}
	if err := d.channel.Deliver(ctx, n); err != nil {
		d.logger.Warn("notification delivery failed", map[string]interface{}{
			"notificationId": n.ID,
			"kind":           string(n.Kind),
			"recipientKind":  string(n.RecipientKind),
			"error":          err.Error(),
		})
	}
}

// names resolves display names for templates. Lookups that fail fall back to ids so a
// directory outage never blocks the notice.
func (d *Dispatcher) names(ctx context.Context, app *models.Application) names {
	out := names{jobTitle: app.JobID, organizationName: app.OrganizationID, candidateName: app.CandidateID}

	if job, err := d.dir.GetJob(ctx, app.JobID); err == nil {
		out.jobTitle = job.Title
	} else {
		d.lookupFailed("job", app.JobID, err)
	}
	if org, err := d.dir.GetOrganization(ctx, app.OrganizationID); err == nil {
		out.organizationName = org.Name
	} else {
		d.lookupFailed("organization", app.OrganizationID, err)
	}
	if p, err := d.dir.GetCandidateProfile(ctx, app.CandidateID); err == nil && p.DisplayName != "" {
		out.candidateName = p.DisplayName
	} else if err != nil {
		d.lookupFailed("candidate", app.CandidateID, err)
	}
	return out
}

func (d *Dispatcher) lookupFailed(resource, id string, err error) {
	d.logger.Warn("directory lookup failed, using id", map[string]interface{}{
		"resource": resource,
		"id":       id,
		"error":    err.Error(),
	})
}

// MarkRead flips readAt on the recipient's notification. Repeated calls keep the
// first timestamp. A foreign recipient sees NotFound.
func (d *Dispatcher) MarkRead(ctx context.Context, notificationID string, recipientKind models.RecipientKind, recipientID string) (*models.Notification, error) {
	n, err := d.store.GetNotification(ctx, notificationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("notification", notificationID)
		}
		return nil, apperrors.NewDependencyUnavailableError("notification store", err)
	}
	if n.RecipientKind != recipientKind || n.RecipientID != recipientID {
		return nil, apperrors.NewNotFoundError("notification", notificationID)
	}

	read, err := d.store.MarkNotificationRead(ctx, notificationID, d.clock.Now())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("notification", notificationID)
		}
		return nil, apperrors.NewDependencyUnavailableError("notification store", err)
	}
	return read, nil
}

// List returns the recipient's notifications, newest first.
func (d *Dispatcher) List(ctx context.Context, recipientKind models.RecipientKind, recipientID string, limit int) ([]models.Notification, error) {
	out, err := d.store.ListNotifications(ctx, recipientKind, recipientID, limit)
	if err != nil {
		return nil, apperrors.NewDependencyUnavailableError("notification store", err)
	}
	return out, nil
}
