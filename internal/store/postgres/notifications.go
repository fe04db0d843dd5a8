// internal/store/postgres/notifications.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"hiring-workers/internal/models"
	"hiring-workers/internal/store"
)

const notificationColumns = `id, recipient_kind, recipient_id, title, body, kind, related_application_id, created_at, read_at`

func scanNotification(row scanner) (*models.Notification, error) {
	var (
		n                   models.Notification
		recipientKind, kind string
		related             sql.NullString
		readAt              sql.NullTime
	)
	if err := row.Scan(&n.ID, &recipientKind, &n.RecipientID, &n.Title, &n.Body, &kind, &related, &n.CreatedAt, &readAt); err != nil {
		return nil, err
	}
	n.RecipientKind = models.RecipientKind(recipientKind)
	n.Kind = models.NotificationKind(kind)
	n.RelatedApplicationID = related.String
	n.CreatedAt = n.CreatedAt.UTC()
	n.ReadAt = timePtr(readAt)
	return &n, nil
}

func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, recipient_kind, recipient_id, title, body, kind, related_application_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING`,
		n.ID, string(n.RecipientKind), n.RecipientID, n.Title, n.Body, string(n.Kind),
		nullString(n.RelatedApplicationID), n.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert notification: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert notification: %w", err)
	}
	return affected == 1, nil
}

func (s *Store) GetNotification(ctx context.Context, id string) (*models.Notification, error) {
	n, err := scanNotification(s.db.QueryRowContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get notification: %w", err)
	}
	return n, nil
}

func (s *Store) MarkNotificationRead(ctx context.Context, id string, at time.Time) (*models.Notification, error) {
	n, err := scanNotification(s.db.QueryRowContext(ctx, `
		UPDATE notifications SET read_at = COALESCE(read_at, $2)
		WHERE id = $1
		RETURNING `+notificationColumns, id, at))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mark notification read: %w", err)
	}
	return n, nil
}

func (s *Store) ListNotifications(ctx context.Context, kind models.RecipientKind, recipientID string, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = models.DefaultListLimit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+notificationColumns+` FROM notifications
		WHERE recipient_kind = $1 AND recipient_id = $2
		ORDER BY created_at DESC
		LIMIT $3`, string(kind), recipientID, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	out := make([]models.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}
