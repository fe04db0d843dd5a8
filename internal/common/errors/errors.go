// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Lifecycle errors surfaced verbatim to callers.
const (
	ErrCodeNotFound              ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized          ErrorCode = "UNAUTHORIZED"
	ErrCodeInvalidTransition     ErrorCode = "INVALID_TRANSITION"
	ErrCodeValidation            ErrorCode = "VALIDATION_ERROR"
	ErrCodeDuplicateApplication  ErrorCode = "DUPLICATE_APPLICATION"
	ErrCodeDependencyUnavailable ErrorCode = "DEPENDENCY_UNAVAILABLE"
)

// Side-effect errors, only seen by the outbox relay.
const (
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeBadgeEvaluationFailed  ErrorCode = "BADGE_EVALUATION_FAILED"
	ErrCodeIndexingFailed         ErrorCode = "INDEXING_FAILED"
	ErrCodeInputValidationFailed  ErrorCode = "INPUT_VALIDATION_FAILED"
	ErrCodeInternal               ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Cause     error                  `json:"-"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error { return e.Cause }

// Is matches any *StandardError carrying the same code, so the sentinels below work
// with errors.Is.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is comparisons.
var (
	ErrNotFound              = &StandardError{Code: ErrCodeNotFound}
	ErrUnauthorized          = &StandardError{Code: ErrCodeUnauthorized}
	ErrInvalidTransition     = &StandardError{Code: ErrCodeInvalidTransition}
	ErrValidation            = &StandardError{Code: ErrCodeValidation}
	ErrDuplicateApplication  = &StandardError{Code: ErrCodeDuplicateApplication}
	ErrDependencyUnavailable = &StandardError{Code: ErrCodeDependencyUnavailable}
)

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		Cause:     cause,
	}
}

// NewNotFoundError reports a missing application, job, organization, candidate or
// notification.
func NewNotFoundError(resource, id string) *StandardError {
	return newError(ErrCodeNotFound, fmt.Sprintf("%s not found", resource),
		fmt.Sprintf("%sId: %s", resource, id), false, nil)
}

// NewUnauthorizedError reports an actor acting outside its authority.
func NewUnauthorizedError(details string) *StandardError {
	return newError(ErrCodeUnauthorized, "Actor is not allowed to perform this action", details, false, nil)
}

// NewInvalidTransitionError reports a transition absent from the transition table, or
// one lost to a concurrent writer.
func NewInvalidTransitionError(from, to string) *StandardError {
	e := newError(ErrCodeInvalidTransition, "Status transition is not allowed",
		fmt.Sprintf("from: %s, to: %s", from, to), false, nil)
	e.Metadata = map[string]interface{}{"currentStatus": from, "targetStatus": to}
	return e
}

// NewValidationError reports missing or malformed transition metadata.
func NewValidationError(field, details string) *StandardError {
	e := newError(ErrCodeValidation, "Validation failed", details, false, nil)
	e.Metadata = map[string]interface{}{"field": field}
	return e
}

// NewDuplicateApplicationError reports a second application to the same job.
func NewDuplicateApplicationError(candidateID, jobID string) *StandardError {
	return newError(ErrCodeDuplicateApplication, "Application already exists",
		fmt.Sprintf("candidateId: %s, jobId: %s", candidateID, jobID), false, nil)
}

// NewDependencyUnavailableError wraps a store or directory failure. Retryable.
func NewDependencyUnavailableError(dependency string, err error) *StandardError {
	details := dependency
	if err != nil {
		details = fmt.Sprintf("%s: %s", dependency, err.Error())
	}
	return newError(ErrCodeDependencyUnavailable, "Dependency unavailable", details, true, err)
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(kind string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, "Notification dispatch failed",
		fmt.Sprintf("kind: %s, error: %v", kind, err), true, err)
}

// NewBadgeEvaluationFailedError creates a retryable badge evaluation error.
func NewBadgeEvaluationFailedError(candidateID string, err error) *StandardError {
	return newError(ErrCodeBadgeEvaluationFailed, "Badge evaluation failed",
		fmt.Sprintf("candidateId: %s, error: %v", candidateID, err), true, err)
}

// NewIndexingFailedError creates a retryable search projection error.
func NewIndexingFailedError(applicationID string, err error) *StandardError {
	return newError(ErrCodeIndexingFailed, "Search indexing failed",
		fmt.Sprintf("applicationId: %s, error: %v", applicationID, err), true, err)
}

// NewInputValidationError reports job variables that do not match the task schema.
func NewInputValidationError(details string) *StandardError {
	return newError(ErrCodeInputValidationFailed, "Job variables failed schema validation", details, false, nil)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDependencyUnavailable,
		ErrCodeNotificationSendFailed,
		ErrCodeBadgeEvaluationFailed,
		ErrCodeIndexingFailed:
		return 3
	default:
		return 0 // Business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           string(stdErr.Code),
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// AsStandard unwraps err to a *StandardError, wrapping unknown errors as INTERNAL_ERROR.
func AsStandard(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false, err)
}

// CodeOf returns the code of err, or INTERNAL_ERROR for foreign errors.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	return AsStandard(err).Code
}

// IsRetryable reports whether err should be retried by the caller.
func IsRetryable(err error) bool {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Retryable
	}
	return false
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case code == ErrCodeNotFound:
		return "LOOKUP"
	case code == ErrCodeUnauthorized:
		return "AUTHORITY"
	case code == ErrCodeInvalidTransition:
		return "LIFECYCLE"
	case strings.Contains(codeStr, "VALIDATION") || code == ErrCodeDuplicateApplication:
		return "VALIDATION"
	case code == ErrCodeDependencyUnavailable:
		return "DEPENDENCY"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "BADGE"):
		return "GAMIFICATION"
	case strings.Contains(codeStr, "INDEXING"):
		return "SEARCH"
	default:
		return "OTHER"
	}
}
