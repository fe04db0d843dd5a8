// internal/workers/gamification/evaluate-badges/models.go
package evaluatebadges

type Input struct {
	CandidateID string `json:"candidateId"`
	Trigger     string `json:"trigger"`
}

type Output struct {
	Awarded []string `json:"awarded"` // badge ids earned by this evaluation
}
