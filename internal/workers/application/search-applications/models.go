// internal/workers/application/search-applications/models.go
package searchapplications

import "hiring-workers/internal/search"

type Input struct {
	Query          string `json:"query,omitempty"`
	Status         string `json:"status,omitempty"`
	OrganizationID string `json:"organizationId,omitempty"`
	CandidateID    string `json:"candidateId,omitempty"`
	From           int    `json:"from,omitempty"`
	Size           int    `json:"size,omitempty"`
}

type Output struct {
	Total int64             `json:"total"`
	Items []search.Document `json:"items"`
}
