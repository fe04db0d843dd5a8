// internal/models/application.go
package models

import (
	"fmt"
	"time"
)

// Status is the closed set of application lifecycle states.
type Status string

const (
	StatusPending  Status = "pending"
	StatusInReview Status = "in_review"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
	StatusApproved Status = "approved"
)

// AllStatuses lists every status in lifecycle order.
var AllStatuses = []Status{StatusPending, StatusInReview, StatusAccepted, StatusRejected, StatusApproved}

var statusLabels = map[Status]string{
	StatusPending:  "Pending",
	StatusInReview: "In Review",
	StatusAccepted: "Accepted",
	StatusRejected: "Rejected",
	StatusApproved: "Approved",
}

// ParseStatus accepts only the stored form of a status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if _, ok := statusLabels[st]; !ok {
		return "", fmt.Errorf("unknown application status %q", s)
	}
	return st, nil
}

// Valid reports whether s is one of the five statuses.
func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label is the display text for s. Display only.
func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// IsTerminal reports whether no transition may leave s.
func (s Status) IsTerminal() bool {
	return s == StatusRejected || s == StatusApproved
}

// ActorKind identifies which party is acting.
type ActorKind string

const (
	ActorOrganization ActorKind = "organization"
	ActorCandidate    ActorKind = "candidate"
)

// Actor is the party requesting a transition.
type Actor struct {
	Kind ActorKind `json:"kind"`
	ID   string    `json:"id"`
}

func (a Actor) String() string {
	return string(a.Kind) + ":" + a.ID
}

// Application is a candidate's application to a job.
type Application struct {
	ID             string     `json:"id"`
	JobID          string     `json:"jobId"`
	CandidateID    string     `json:"candidateId"`
	OrganizationID string     `json:"organizationId"`
	Status         Status     `json:"status"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	RejectReason   string     `json:"rejectReason,omitempty"`
	RejectDate     *time.Time `json:"rejectDate,omitempty"`
	AcceptDate     string     `json:"acceptDate,omitempty"`
	AcceptTime     string     `json:"acceptTime,omitempty"`
	AcceptDetails  string     `json:"acceptDetails,omitempty"`
	AcceptedAt     *time.Time `json:"acceptedAt,omitempty"`
	ApprovedAt     *time.Time `json:"approvedAt,omitempty"`
	CoverLetter    string     `json:"coverLetter,omitempty"`
	ResumeRef      string     `json:"resumeRef,omitempty"`
}

// TransitionMetadata carries the fields a target status needs.
type TransitionMetadata struct {
	RejectReason  string `json:"rejectReason,omitempty"`
	AcceptDate    string `json:"acceptDate,omitempty"`
	AcceptTime    string `json:"acceptTime,omitempty"`
	AcceptDetails string `json:"acceptDetails,omitempty"`
}

// ListFilter narrows listApplications. Zero values are ignored.
type ListFilter struct {
	CandidateID    string `json:"candidateId,omitempty"`
	OrganizationID string `json:"organizationId,omitempty"`
	JobID          string `json:"jobId,omitempty"`
	Status         Status `json:"status,omitempty"`
	Limit          int    `json:"limit,omitempty"`
	Offset         int    `json:"offset,omitempty"`
}

// DefaultListLimit applies when ListFilter.Limit is zero.
const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// Normalize clamps Limit and Offset.
func (f ListFilter) Normalize() ListFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}
