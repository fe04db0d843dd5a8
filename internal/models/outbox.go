// internal/models/outbox.go
package models

import (
	"encoding/json"
	"time"
)

type OutboxKind string

const (
	OutboxNotifyTransition OutboxKind = "notify_transition"
	OutboxNotifySubmission OutboxKind = "notify_submission"
	OutboxEvaluateBadges   OutboxKind = "evaluate_badges"
	OutboxIndexApplication OutboxKind = "index_application"
)

type OutboxStatus string

const (
	OutboxPending OutboxStatus = "pending"
	OutboxDone    OutboxStatus = "done"
	OutboxFailed  OutboxStatus = "failed"
)

// OutboxEntry is side-effect work recorded in the same transaction as the state change
// that caused it.
type OutboxEntry struct {
	ID            string          `json:"id"`
	Kind          OutboxKind      `json:"kind"`
	ApplicationID string          `json:"applicationId"`
	Payload       json.RawMessage `json:"payload"`
	Status        OutboxStatus    `json:"status"`
	Attempts      int             `json:"attempts"`
	AvailableAt   time.Time       `json:"availableAt"`
	LastError     string          `json:"lastError,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// TransitionPayload is the payload of notify_transition entries.
type TransitionPayload struct {
	PreviousStatus Status `json:"previousStatus"`
	NewStatus      Status `json:"newStatus"`
	Actor          Actor  `json:"actor"`
}

// BadgePayload is the payload of evaluate_badges entries.
type BadgePayload struct {
	CandidateID string      `json:"candidateId"`
	Trigger     TriggerKind `json:"trigger"`
}

// NewOutboxEntry builds a pending entry. The id is filled by the store when empty.
func NewOutboxEntry(kind OutboxKind, applicationID string, payload interface{}) (OutboxEntry, error) {
	raw := json.RawMessage("{}")
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return OutboxEntry{}, err
		}
		raw = b
	}
	return OutboxEntry{
		Kind:          kind,
		ApplicationID: applicationID,
		Payload:       raw,
		Status:        OutboxPending,
	}, nil
}
