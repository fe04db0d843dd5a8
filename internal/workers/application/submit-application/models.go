// internal/workers/application/submit-application/models.go
package submitapplication

type Input struct {
	CandidateID string `json:"candidateId"`
	JobID       string `json:"jobId"`
	CoverLetter string `json:"coverLetter,omitempty"`
	ResumeRef   string `json:"resumeRef,omitempty"`
}

type Output struct {
	ApplicationID  string `json:"applicationId"`
	Status         string `json:"status"`
	OrganizationID string `json:"organizationId"`
	JobID          string `json:"jobId"`
	CreatedAt      string `json:"createdAt"` // RFC 3339
}
