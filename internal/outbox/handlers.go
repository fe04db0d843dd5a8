// internal/outbox/handlers.go
package outbox

import (
	"context"
	"encoding/json"
	"errors"

	apperrors "hiring-workers/internal/common/errors"
	"hiring-workers/internal/models"
	"hiring-workers/internal/store"
)

type ApplicationLoader interface {
	GetApplication(ctx context.Context, id string) (*models.Application, error)
}

type Notifier interface {
	NotifyOnTransition(ctx context.Context, key string, app *models.Application, previous, next models.Status, actor models.Actor) (*models.Notification, error)
	NotifySubmission(ctx context.Context, key string, app *models.Application) (*models.Notification, error)
}

type BadgeEvaluator interface {
	Evaluate(ctx context.Context, candidateID string, trigger models.TriggerKind) ([]models.UserBadge, error)
}

type Indexer interface {
	IndexApplication(ctx context.Context, app *models.Application) error
}

// Deps are the collaborators of the default handlers. A nil Indexer leaves
// index_application entries to be completed without work.
type Deps struct {
	Applications ApplicationLoader
	Notifier     Notifier
	Badges       BadgeEvaluator
	Indexer      Indexer
}

// RegisterDefaults wires the handler of every outbox kind.
func RegisterDefaults(r *Relay, d Deps) {
	r.Handle(models.OutboxNotifyTransition, NotifyTransition(d.Applications, d.Notifier))
	r.Handle(models.OutboxNotifySubmission, NotifySubmission(d.Applications, d.Notifier))
	r.Handle(models.OutboxEvaluateBadges, EvaluateBadges(d.Badges))
	r.Handle(models.OutboxIndexApplication, IndexApplication(d.Applications, d.Indexer))
}

// NotifyTransition uses the entry id as the notification key, so a retried entry
// maps to the same notification.
func NotifyTransition(apps ApplicationLoader, n Notifier) Handler {
	return func(ctx context.Context, e models.OutboxEntry) error {
		var p models.TransitionPayload
		if err := json.Unmarshal(e.Payload, &p); err != nil {
			return apperrors.NewValidationError("payload", err.Error())
		}
		app, err := load(ctx, apps, e.ApplicationID)
		if err != nil {
			return err
		}
		_, err = n.NotifyOnTransition(ctx, e.ID, app, p.PreviousStatus, p.NewStatus, p.Actor)
		return err
	}
}

func NotifySubmission(apps ApplicationLoader, n Notifier) Handler {
	return func(ctx context.Context, e models.OutboxEntry) error {
		app, err := load(ctx, apps, e.ApplicationID)
		if err != nil {
			return err
		}
		_, err = n.NotifySubmission(ctx, e.ID, app)
		return err
	}
}

func EvaluateBadges(ev BadgeEvaluator) Handler {
	return func(ctx context.Context, e models.OutboxEntry) error {
		var p models.BadgePayload
		if err := json.Unmarshal(e.Payload, &p); err != nil {
			return apperrors.NewValidationError("payload", err.Error())
		}
		_, err := ev.Evaluate(ctx, p.CandidateID, p.Trigger)
		return err
	}
}

// IndexApplication projects the application as currently stored, so entries handled
// out of order still converge on the latest status.
func IndexApplication(apps ApplicationLoader, idx Indexer) Handler {
	return func(ctx context.Context, e models.OutboxEntry) error {
		if idx == nil {
			return nil
		}
		app, err := load(ctx, apps, e.ApplicationID)
		if err != nil {
			return err
		}
		return idx.IndexApplication(ctx, app)
	}
}

func load(ctx context.Context, apps ApplicationLoader, id string) (*models.Application, error) {
	app, err := apps.GetApplication(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("application", id)
		}
		return nil, apperrors.NewDependencyUnavailableError("application store", err)
	}
	return app, nil
}
