// internal/models/badge.go
package models

import "time"

type TriggerKind string

const (
	TriggerApplicationCount  TriggerKind = "applicationCount"
	TriggerProfileCompletion TriggerKind = "profileCompletion"
)

func (k TriggerKind) Valid() bool {
	return k == TriggerApplicationCount || k == TriggerProfileCompletion
}

type Badge struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	TriggerKind TriggerKind `json:"triggerKind"`
	Threshold   int         `json:"threshold"`
	Active      bool        `json:"active"`
}

// UserBadge is unique per (UserID, BadgeID).
type UserBadge struct {
	UserID   string    `json:"userId"`
	BadgeID  string    `json:"badgeId"`
	EarnedAt time.Time `json:"earnedAt"`
}
