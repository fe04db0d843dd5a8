package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "hiring-workers/internal/common/errors"
	"hiring-workers/pkg/registry"
)

func newValidator(t *testing.T) *Validator {
	reg, err := registry.Default()
	require.NoError(t, err)
	return NewValidator(reg)
}

func TestValidate(t *testing.T) {
	v := newValidator(t)

	tests := []struct {
		name     string
		taskType string
		vars     string
		wantErr  string
	}{
		{"valid submission", "submit-application", `{"candidateId":"c1","jobId":"j1"}`, ""},
		{"missing job", "submit-application", `{"candidateId":"c1"}`, "jobId"},
		{"empty candidate", "submit-application", `{"candidateId":"","jobId":"j1"}`, "candidateId"},
		{"bad actor kind", "transition-application", `{"applicationId":"a","actor":{"kind":"admin","id":"x"},"targetStatus":"Accepted"}`, "actor.kind"},
		{"unknown target passes schema", "transition-application", `{"applicationId":"a","actor":{"kind":"organization","id":"x"},"targetStatus":"Hired"}`, ""},
		{"limit too large", "list-applications", `{"limit":500}`, "limit"},
		{"empty list filter", "list-applications", ``, ""},
		{"bad trigger", "evaluate-badges", `{"candidateId":"c1","trigger":"logins"}`, "trigger"},
		{"unregistered task passes", "unknown-task", `{"x":1}`, ""},
		{"not json", "submit-application", `{`, "invalid JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.taskType, tt.vars)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, apperrors.ErrCodeInputValidationFailed, apperrors.CodeOf(err))
			assert.Contains(t, apperrors.AsStandard(err).Details, tt.wantErr)
			assert.False(t, apperrors.IsRetryable(err))
		})
	}
}

func TestValidate_NilRegistry(t *testing.T) {
	v := NewValidator(nil)
	assert.NoError(t, v.Validate("submit-application", `{}`))
}
