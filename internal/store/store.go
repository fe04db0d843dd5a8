// Package store declares the persistence contracts of the lifecycle core. The postgres
// package is the production implementation; memory backs tests and local runs.
package store

import (
	"context"
	"errors"
	"time"

	"hiring-workers/internal/models"
)

var (
	ErrNotFound = errors.New("store: not found")
	// ErrStatusConflict means the stored status no longer matches the expected one.
	ErrStatusConflict = errors.New("store: status changed concurrently")
	// ErrDuplicate means the candidate already applied to the job.
	ErrDuplicate = errors.New("store: duplicate application")
)

type ApplicationStore interface {
	// CreateApplication inserts a new application and its outbox entries atomically.
	CreateApplication(ctx context.Context, app *models.Application, outbox []models.OutboxEntry) error
	GetApplication(ctx context.Context, id string) (*models.Application, error)
	// CompareAndSetStatus writes next only while the stored status equals expected,
	// appending outbox in the same transaction.
	CompareAndSetStatus(ctx context.Context, next *models.Application, expected models.Status, outbox []models.OutboxEntry) error
	// ListApplications returns matches ordered by createdAt descending.
	ListApplications(ctx context.Context, filter models.ListFilter) ([]models.Application, error)
	CountApplicationsByCandidate(ctx context.Context, candidateID string) (int, error)
}

type NotificationStore interface {
	// CreateNotification inserts n unless a row with the same id exists; created is
	// false in that case.
	CreateNotification(ctx context.Context, n *models.Notification) (created bool, err error)
	GetNotification(ctx context.Context, id string) (*models.Notification, error)
	// MarkNotificationRead sets readAt once; later calls keep the first value.
	MarkNotificationRead(ctx context.Context, id string, at time.Time) (*models.Notification, error)
	ListNotifications(ctx context.Context, kind models.RecipientKind, recipientID string, limit int) ([]models.Notification, error)
}

type BadgeStore interface {
	// ActiveBadges returns active badges of trigger ordered by ascending threshold.
	ActiveBadges(ctx context.Context, trigger models.TriggerKind) ([]models.Badge, error)
	// AwardBadge inserts ub if absent. awarded is false when the user already held it.
	AwardBadge(ctx context.Context, ub models.UserBadge) (awarded bool, err error)
	UserBadges(ctx context.Context, userID string) ([]models.UserBadge, error)
}

type OutboxStore interface {
	// ClaimOutbox leases up to limit pending entries due at now, bumping their attempt
	// count and hiding them until now+lease.
	ClaimOutbox(ctx context.Context, now time.Time, limit int, lease time.Duration) ([]models.OutboxEntry, error)
	CompleteOutbox(ctx context.Context, id string) error
	RetryOutbox(ctx context.Context, id string, availableAt time.Time, lastErr string) error
	FailOutbox(ctx context.Context, id string, lastErr string) error
}
