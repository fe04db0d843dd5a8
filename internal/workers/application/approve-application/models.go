// internal/workers/application/approve-application/models.go
package approveapplication

type Input struct {
	ApplicationID string `json:"applicationId"`
	CandidateID   string `json:"candidateId"`
}

type Output struct {
	ApplicationID string `json:"applicationId"`
	Status        string `json:"status"`
	ApprovedAt    string `json:"approvedAt,omitempty"` // RFC 3339
}
