package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardError_IsMatchesByCode(t *testing.T) {
	err := NewInvalidTransitionError("rejected", "accepted")
	wrapped := fmt.Errorf("transition: %w", err)

	assert.True(t, stderrors.Is(wrapped, ErrInvalidTransition))
	assert.False(t, stderrors.Is(wrapped, ErrValidation))
	assert.Equal(t, ErrCodeInvalidTransition, CodeOf(wrapped))
	assert.Equal(t, "rejected", err.Metadata["currentStatus"])
}

func TestDependencyUnavailable_IsRetryableAndUnwraps(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := NewDependencyUnavailableError("postgres", cause)

	assert.True(t, IsRetryable(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
	assert.False(t, IsRetryable(NewValidationError("rejectReason", "required")))
	assert.False(t, IsRetryable(stderrors.New("plain")))
}

func TestAsStandard_WrapsForeignErrors(t *testing.T) {
	assert.Nil(t, AsStandard(nil))

	std := AsStandard(stderrors.New("boom"))
	require.NotNil(t, std)
	assert.Equal(t, ErrCodeInternal, std.Code)
	assert.Equal(t, "boom", std.Details)
}

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name        string
		err         *StandardError
		wantRetries int
	}{
		{"business error", NewUnauthorizedError("not owner"), 0},
		{"not found", NewNotFoundError("application", "a1"), 0},
		{"dependency", NewDependencyUnavailableError("redis", nil), 3},
		{"indexing", NewIndexingFailedError("a1", stderrors.New("timeout")), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmn := ConvertToBPMNError(tt.err)
			assert.Equal(t, string(tt.err.Code), bpmn.Code)
			assert.Equal(t, tt.wantRetries, bpmn.Retries)

			vars := bpmn.ToErrorVariables()
			assert.Equal(t, string(tt.err.Code), vars["errorCode"])
			assert.Equal(t, string(tt.err.Code), vars["originalErrorCode"])
		})
	}
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "LIFECYCLE", GetErrorCategory(ErrCodeInvalidTransition))
	assert.Equal(t, "AUTHORITY", GetErrorCategory(ErrCodeUnauthorized))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeValidation))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeDuplicateApplication))
	assert.Equal(t, "DEPENDENCY", GetErrorCategory(ErrCodeDependencyUnavailable))
	assert.Equal(t, "GAMIFICATION", GetErrorCategory(ErrCodeBadgeEvaluationFailed))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}
