// internal/workers/application/transition-application/models.go
package transitionapplication

import "hiring-workers/internal/models"

type Input struct {
	ApplicationID string                    `json:"applicationId"`
	Actor         models.Actor              `json:"actor"`
	TargetStatus  string                    `json:"targetStatus"`
	Metadata      models.TransitionMetadata `json:"metadata"`
}

type Output struct {
	ApplicationID string `json:"applicationId"`
	Status        string `json:"status"`
	StatusLabel   string `json:"statusLabel"`
	UpdatedAt     string `json:"updatedAt"` // RFC 3339
}
