package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is lets sentinel DomainErrors match wrapped copies of themselves by
// code and message.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeTimeout          = "TIMEOUT"
	ErrCodeResolutionFailed = "RESOLUTION_FAILED"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
)

// Validation errors
var (
	ErrInvalidStatusMapping = NewDomainError(ErrCodeValidation, "invalid status-key mapping")
	ErrInvalidThresholds    = NewDomainError(ErrCodeValidation, "invalid confidence thresholds")
	ErrInvalidEmbedding     = NewDomainError(ErrCodeValidation, "embedding is not unit-normalized")
	ErrMissingRequiredField = NewDomainError(ErrCodeValidation, "missing required field")
)

// Infrastructure errors. These surface to callers only after the retry
// budget is exhausted.
var (
	ErrTimeout          = NewDomainError(ErrCodeTimeout, "external call exceeded its deadline")
	ErrEmbeddingFailure = NewDomainError(ErrCodeInternalError, "text could not be embedded")
	ErrIndexUnavailable = NewDomainError(ErrCodeInternalError, "vector store unreachable")
	ErrResolutionFailed = NewDomainError(ErrCodeResolutionFailed, "resolution could not be attempted")
)

// Operation errors
var (
	ErrIngestionInProgress = NewDomainError(ErrCodeInvalidOperation, "partition rebuild already in progress")
	ErrPartitionNotFound   = NewDomainError(ErrCodeNotFound, "knowledge partition not found")
)
