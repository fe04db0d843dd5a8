// Package badge awards candidate badges when application or profile metrics cross
// their thresholds.
package badge

import (
	"context"
	"errors"
	"math"
	"strings"

	"hiring-workers/internal/common/clock"
	apperrors "hiring-workers/internal/common/errors"
	"hiring-workers/internal/common/logger"
	"hiring-workers/internal/common/metrics"
	"hiring-workers/internal/directory"
	"hiring-workers/internal/models"
	"hiring-workers/internal/store"
)

// trackedFields is the number of profile fields counted by Completion.
const trackedFields = 8

// Notifier is told about badges that were newly awarded.
type Notifier interface {
	NotifyBadgeAwarded(ctx context.Context, candidateID string, badge models.Badge) (*models.Notification, error)
}

type Evaluator struct {
	apps     store.ApplicationStore
	badges   store.BadgeStore
	dir      directory.Directory
	notifier Notifier
	clock    clock.Clock
	logger   logger.Logger
}

type Option func(*Evaluator)

func WithClock(c clock.Clock) Option {
	return func(e *Evaluator) { e.clock = c }
}

func WithNotifier(n Notifier) Option {
	return func(e *Evaluator) { e.notifier = n }
}

// NewEvaluator builds an evaluator. dir should not be cached: completion is computed
// from the profile as just saved.
func NewEvaluator(apps store.ApplicationStore, badges store.BadgeStore, dir directory.Directory, log logger.Logger, opts ...Option) *Evaluator {
	e := &Evaluator{
		apps:   apps,
		badges: badges,
		dir:    dir,
		clock:  clock.System(),
		logger: log.WithFields(map[string]interface{}{"component": "badge"}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate awards every active badge of trigger whose threshold the candidate meets
// and returns the awards that did not exist before.
func (e *Evaluator) Evaluate(ctx context.Context, candidateID string, trigger models.TriggerKind) ([]models.UserBadge, error) {
	if strings.TrimSpace(candidateID) == "" {
		return nil, apperrors.NewValidationError("candidateId", "candidateId is required")
	}
	if !trigger.Valid() {
		return nil, apperrors.NewValidationError("trigger", "unknown trigger kind "+string(trigger))
	}

	metric, err := e.metric(ctx, candidateID, trigger)
	if err != nil {
		return nil, err
	}

	active, err := e.badges.ActiveBadges(ctx, trigger)
	if err != nil {
		return nil, apperrors.NewBadgeEvaluationFailedError(candidateID, err)
	}

	now := e.clock.Now()
	awarded := make([]models.UserBadge, 0)
	for _, b := range active {
		if metric < b.Threshold {
			break
		}
		ub := models.UserBadge{UserID: candidateID, BadgeID: b.ID, EarnedAt: now}
		isNew, err := e.badges.AwardBadge(ctx, ub)
		if err != nil {
			return awarded, apperrors.NewBadgeEvaluationFailedError(candidateID, err)
		}
		if !isNew {
			continue
		}
		awarded = append(awarded, ub)
		metrics.BadgesAwarded.WithLabelValues(b.ID).Inc()
		e.logger.Info("badge awarded", map[string]interface{}{
			"candidateId": candidateID,
			"badgeId":     b.ID,
			"trigger":     string(trigger),
			"metric":      metric,
		})
		e.notify(ctx, candidateID, b)
	}
	return awarded, nil
}

func (e *Evaluator) metric(ctx context.Context, candidateID string, trigger models.TriggerKind) (int, error) {
	switch trigger {
	case models.TriggerApplicationCount:
		n, err := e.apps.CountApplicationsByCandidate(ctx, candidateID)
		if err != nil {
			return 0, apperrors.NewBadgeEvaluationFailedError(candidateID, err)
		}
		return n, nil
	default:
		p, err := e.dir.GetCandidateProfile(ctx, candidateID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return 0, apperrors.NewNotFoundError("candidate", candidateID)
			}
			return 0, apperrors.NewBadgeEvaluationFailedError(candidateID, err)
		}
		return Completion(p), nil
	}
}

func (e *Evaluator) notify(ctx context.Context, candidateID string, b models.Badge) {
	if e.notifier == nil {
		return
	}
	if _, err := e.notifier.NotifyBadgeAwarded(ctx, candidateID, b); err != nil {
		e.logger.Warn("badge notification failed", map[string]interface{}{
			"candidateId": candidateID,
			"badgeId":     b.ID,
			"error":       err.Error(),
		})
	}
}

// Completion is the rounded percentage of filled profile fields: about, phone,
// location, title, skills, languages, experiences, educations.
func Completion(p *models.CandidateProfile) int {
	if p == nil {
		return 0
	}
	filled := 0
	for _, s := range []string{p.About, p.Phone, p.Location, p.Title} {
		if strings.TrimSpace(s) != "" {
			filled++
		}
	}
	for _, list := range [][]string{p.Skills, p.Languages, p.Experiences, p.Educations} {
		if len(list) > 0 {
			filled++
		}
	}
	return int(math.Round(float64(filled) / trackedFields * 100))
}
