// internal/lifecycle/rules.go
package lifecycle

import (
	"strings"
	"time"

	apperrors "hiring-workers/internal/common/errors"
	"hiring-workers/internal/models"
)

// transitions is the complete transition table. Statuses missing as keys, and the
// terminal ones, allow nothing.
var transitions = map[models.Status][]models.Status{
	models.StatusPending:  {models.StatusInReview, models.StatusAccepted, models.StatusRejected},
	models.StatusInReview: {models.StatusAccepted, models.StatusRejected},
	models.StatusAccepted: {models.StatusApproved},
}

// CanTransition reports whether the table has an edge from -> to.
func CanTransition(from, to models.Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// AllowedTargets returns the targets reachable from s.
func AllowedTargets(s models.Status) []models.Status {
	out := make([]models.Status, len(transitions[s]))
	copy(out, transitions[s])
	return out
}

var roleTargets = map[models.ActorKind]map[models.Status]bool{
	models.ActorOrganization: {
		models.StatusInReview: true,
		models.StatusAccepted: true,
		models.StatusRejected: true,
	},
	models.ActorCandidate: {
		models.StatusApproved: true,
	},
}

// authorize checks ownership, then whether the actor's role may drive the target.
// Targets that no role owns (Pending, unknown values) are left for the transition
// table to reject.
func authorize(app *models.Application, actor models.Actor, target models.Status) error {
	if actor.ID == "" {
		return apperrors.NewUnauthorizedError("actor id is required")
	}

	switch actor.Kind {
	case models.ActorOrganization:
		if app.OrganizationID != actor.ID {
			return apperrors.NewUnauthorizedError("organization does not own the job")
		}
	case models.ActorCandidate:
		if app.CandidateID != actor.ID {
			return apperrors.NewUnauthorizedError("candidate does not own the application")
		}
	default:
		return apperrors.NewUnauthorizedError("unknown actor kind " + string(actor.Kind))
	}

	if !roleOwned(target) {
		return nil
	}
	if !roleTargets[actor.Kind][target] {
		return apperrors.NewUnauthorizedError(string(actor.Kind) + " may not move an application to " + string(target))
	}
	return nil
}

func roleOwned(target models.Status) bool {
	for _, targets := range roleTargets {
		if targets[target] {
			return true
		}
	}
	return false
}

// validateMetadata enforces the per-target required fields. Accept date and time
// are free text shown to the candidate as written.
func validateMetadata(target models.Status, meta models.TransitionMetadata) error {
	switch target {
	case models.StatusRejected:
		if strings.TrimSpace(meta.RejectReason) == "" {
			return apperrors.NewValidationError("rejectReason", "a reject reason is required")
		}
	case models.StatusAccepted:
		if strings.TrimSpace(meta.AcceptDate) == "" {
			return apperrors.NewValidationError("acceptDate", "acceptDate is required")
		}
		if strings.TrimSpace(meta.AcceptTime) == "" {
			return apperrors.NewValidationError("acceptTime", "acceptTime is required")
		}
	}
	return nil
}

// apply returns app moved to target with the target's fields stamped at now.
func apply(app models.Application, target models.Status, meta models.TransitionMetadata, now time.Time) models.Application {
	app.Status = target
	app.UpdatedAt = now
	switch target {
	case models.StatusRejected:
		app.RejectReason = strings.TrimSpace(meta.RejectReason)
		app.RejectDate = &now
	case models.StatusAccepted:
		app.AcceptDate = meta.AcceptDate
		app.AcceptTime = meta.AcceptTime
		app.AcceptDetails = meta.AcceptDetails
		app.AcceptedAt = &now
	case models.StatusApproved:
		app.ApprovedAt = &now
	}
	return app
}
