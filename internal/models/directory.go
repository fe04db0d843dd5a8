// internal/models/directory.go
package models

// Job is the directory view of a job posting.
type Job struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	OrganizationID string `json:"organizationId"`
}

type Organization struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ContactEmail string `json:"contactEmail"`
}

// CandidateProfile holds the descriptive fields of a candidate. The last eight fields
// are the ones profile completion is measured on.
type CandidateProfile struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"displayName"`
	Email       string   `json:"email,omitempty"`
	About       string   `json:"about,omitempty"`
	Phone       string   `json:"phone,omitempty"`
	Location    string   `json:"location,omitempty"`
	Title       string   `json:"title,omitempty"`
	Skills      []string `json:"skills,omitempty"`
	Languages   []string `json:"languages,omitempty"`
	Experiences []string `json:"experiences,omitempty"`
	Educations  []string `json:"educations,omitempty"`
}
