// pkg/registry/schema.go
package registry

import (
	"fmt"
	"time"

	"github.com/xeipuuv/gojsonschema"
)

// ActivityRegistry is the catalog of BPMN service tasks this worker manager serves.
type ActivityRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Activities  []Activity `json:"activities"`
}

// Implementation states an activity moves through.
const (
	StatusPlanned    = "planned"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusVerified   = "verified"
)

var implementationStatuses = map[string]bool{
	StatusPlanned:    true,
	StatusInProgress: true,
	StatusCompleted:  true,
	StatusVerified:   true,
}

// Activity binds a task type to the JSON schemas of its job variables and result.
type Activity struct {
	ID                   string                 `json:"id"`
	DisplayName          string                 `json:"displayName"`
	Description          string                 `json:"description"`
	Category             string                 `json:"category"`
	Version              string                 `json:"version"`
	TaskType             string                 `json:"taskType"`
	ImplementationStatus string                 `json:"implementationStatus"`
	InputSchema          map[string]interface{} `json:"inputSchema"`
	OutputSchema         map[string]interface{} `json:"outputSchema"`
	ErrorCodes           []string               `json:"errorCodes"`
	Timeout              string                 `json:"timeout"`
	Retries              int                    `json:"retries"`
	Workflows            []string               `json:"workflows"`
	Tags                 []string               `json:"tags"`
}

// TimeoutDuration parses Timeout; zero when unset.
func (a Activity) TimeoutDuration() (time.Duration, error) {
	if a.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(a.Timeout)
	if err != nil {
		return 0, fmt.Errorf("activity %s: invalid timeout %q: %w", a.ID, a.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("activity %s: negative timeout %q", a.ID, a.Timeout)
	}
	return d, nil
}

// Check validates a single entry: required fields, implementation status, timeout,
// retries and both schemas.
func (a Activity) Check() error {
	if a.ID == "" || a.DisplayName == "" || a.TaskType == "" {
		return fmt.Errorf("activity %q: id, displayName and taskType are required", a.ID)
	}
	if a.ImplementationStatus != "" && !implementationStatuses[a.ImplementationStatus] {
		return fmt.Errorf("activity %s: unknown implementation status %q", a.ID, a.ImplementationStatus)
	}
	if _, err := a.TimeoutDuration(); err != nil {
		return err
	}
	if a.Retries < 0 {
		return fmt.Errorf("activity %s: retries must not be negative", a.ID)
	}
	for name, schema := range map[string]map[string]interface{}{"input": a.InputSchema, "output": a.OutputSchema} {
		if len(schema) == 0 {
			continue
		}
		if _, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema)); err != nil {
			return fmt.Errorf("activity %s: invalid %s schema: %w", a.ID, name, err)
		}
	}
	return nil
}
