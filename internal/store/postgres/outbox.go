// internal/store/postgres/outbox.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"hiring-workers/internal/models"
	"hiring-workers/internal/store"
)

func insertOutbox(ctx context.Context, tx *sql.Tx, entries []models.OutboxEntry, at time.Time) error {
	for _, e := range entries {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if e.CreatedAt.IsZero() {
			e.CreatedAt = at
		}
		if e.AvailableAt.IsZero() {
			e.AvailableAt = e.CreatedAt
		}
		payload := []byte(e.Payload)
		if len(payload) == 0 {
			payload = []byte("{}")
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO outbox (id, kind, application_id, payload, status, attempts, available_at, created_at)
			VALUES ($1, $2, $3, $4, 'pending', 0, $5, $6)`,
			e.ID, string(e.Kind), e.ApplicationID, payload, e.AvailableAt, e.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert outbox %s: %w", e.Kind, err)
		}
	}
	return nil
}

func (s *Store) ClaimOutbox(ctx context.Context, now time.Time, limit int, lease time.Duration) ([]models.OutboxEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		UPDATE outbox SET attempts = attempts + 1, available_at = $2
		WHERE id IN (
			SELECT id FROM outbox
			WHERE status = 'pending' AND available_at <= $1
			ORDER BY created_at
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, kind, application_id, payload, status, attempts, available_at, last_error, created_at`,
		now, now.Add(lease), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("claim outbox: %w", err)
	}
	defer rows.Close()

	out := make([]models.OutboxEntry, 0)
	for rows.Next() {
		var (
			e       models.OutboxEntry
			kind    string
			status  string
			payload []byte
		)
		if err := rows.Scan(&e.ID, &kind, &e.ApplicationID, &payload, &status, &e.Attempts,
			&e.AvailableAt, &e.LastError, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox: %w", err)
		}
		e.Kind = models.OutboxKind(kind)
		e.Status = models.OutboxStatus(status)
		e.Payload = payload
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("claim outbox: %w", err)
	}
	return out, nil
}

func (s *Store) CompleteOutbox(ctx context.Context, id string) error {
	return s.execOne(ctx, `UPDATE outbox SET status = 'done', last_error = '' WHERE id = $1`, id)
}

func (s *Store) RetryOutbox(ctx context.Context, id string, availableAt time.Time, lastErr string) error {
	return s.execOne(ctx, `UPDATE outbox SET available_at = $2, last_error = $3 WHERE id = $1`, id, availableAt, lastErr)
}

func (s *Store) FailOutbox(ctx context.Context, id string, lastErr string) error {
	return s.execOne(ctx, `UPDATE outbox SET status = 'failed', last_error = $2 WHERE id = $1`, id, lastErr)
}

func (s *Store) execOne(ctx context.Context, query string, args ...interface{}) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update outbox: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update outbox: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
