// internal/workers/application/list-applications/models.go
package listapplications

import "hiring-workers/internal/models"

type Input struct {
	CandidateID    string `json:"candidateId,omitempty"`
	OrganizationID string `json:"organizationId,omitempty"`
	JobID          string `json:"jobId,omitempty"`
	Status         string `json:"status,omitempty"`
	Limit          int    `json:"limit,omitempty"`
	Offset         int    `json:"offset,omitempty"`
}

type Output struct {
	Applications []models.Application `json:"applications"`
	Count        int                  `json:"count"`
}
