// internal/models/notification.go
package models

import "time"

type RecipientKind string

const (
	RecipientCandidate    RecipientKind = "candidate"
	RecipientOrganization RecipientKind = "organization"
)

type NotificationKind string

const (
	KindApplicationSubmitted NotificationKind = "application_submitted"
	KindApplicationInReview  NotificationKind = "application_in_review"
	KindApplicationAccepted  NotificationKind = "application_accepted"
	KindApplicationRejected  NotificationKind = "application_rejected"
	KindApplicationApproved  NotificationKind = "application_approved"
	KindBadgeAwarded         NotificationKind = "badge_awarded"
)

// KindForStatus maps a transition target to its notification kind.
func KindForStatus(s Status) (NotificationKind, bool) {
	switch s {
	case StatusInReview:
		return KindApplicationInReview, true
	case StatusAccepted:
		return KindApplicationAccepted, true
	case StatusRejected:
		return KindApplicationRejected, true
	case StatusApproved:
		return KindApplicationApproved, true
	}
	return "", false
}

// Notification is immutable once stored, except for ReadAt.
type Notification struct {
	ID                   string           `json:"id"`
	RecipientKind        RecipientKind    `json:"recipientKind"`
	RecipientID          string           `json:"recipientId"`
	Title                string           `json:"title"`
	Body                 string           `json:"body"`
	Kind                 NotificationKind `json:"kind"`
	RelatedApplicationID string           `json:"relatedApplicationId,omitempty"`
	CreatedAt            time.Time        `json:"createdAt"`
	ReadAt               *time.Time       `json:"readAt,omitempty"`
}
