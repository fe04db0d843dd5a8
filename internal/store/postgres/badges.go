// internal/store/postgres/badges.go
package postgres

import (
	"context"
	"fmt"

	"hiring-workers/internal/models"
)

func (s *Store) ActiveBadges(ctx context.Context, trigger models.TriggerKind) ([]models.Badge, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, trigger_kind, threshold, active
		FROM badges
		WHERE active AND trigger_kind = $1
		ORDER BY threshold ASC, id ASC`, string(trigger))
	if err != nil {
		return nil, fmt.Errorf("list badges: %w", err)
	}
	defer rows.Close()

	out := make([]models.Badge, 0)
	for rows.Next() {
		var (
			b    models.Badge
			kind string
		)
		if err := rows.Scan(&b.ID, &b.Name, &kind, &b.Threshold, &b.Active); err != nil {
			return nil, fmt.Errorf("scan badge: %w", err)
		}
		b.TriggerKind = models.TriggerKind(kind)
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) AwardBadge(ctx context.Context, ub models.UserBadge) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO user_badges (user_id, badge_id, earned_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, badge_id) DO NOTHING`,
		ub.UserID, ub.BadgeID, ub.EarnedAt)
	if err != nil {
		return false, fmt.Errorf("award badge: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("award badge: %w", err)
	}
	return n == 1, nil
}

func (s *Store) UserBadges(ctx context.Context, userID string) ([]models.UserBadge, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, badge_id, earned_at FROM user_badges
		WHERE user_id = $1 ORDER BY badge_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list user badges: %w", err)
	}
	defer rows.Close()

	out := make([]models.UserBadge, 0)
	for rows.Next() {
		var ub models.UserBadge
		if err := rows.Scan(&ub.UserID, &ub.BadgeID, &ub.EarnedAt); err != nil {
			return nil, fmt.Errorf("scan user badge: %w", err)
		}
		ub.EarnedAt = ub.EarnedAt.UTC()
		out = append(out, ub)
	}
	return out, rows.Err()
}
