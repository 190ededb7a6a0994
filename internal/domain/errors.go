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
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"

	// Pipeline failure taxonomy
	ErrCodeTransientProvider   = "TRANSIENT_PROVIDER"
	ErrCodeConfiguration       = "CONFIGURATION_ERROR"
	ErrCodeContent             = "CONTENT_ERROR"
	ErrCodePartialIndexFailure = "PARTIAL_INDEX_FAILURE"
)

// Validation errors
var (
	ErrInvalidFileStatus    = NewDomainError(ErrCodeValidation, "invalid file status")
	ErrMissingRequiredField = NewDomainError(ErrCodeValidation, "missing required field")
)

// Not found errors
var (
	ErrFileNotFound   = NewDomainError(ErrCodeNotFound, "file not found")
	ErrFolderNotFound = NewDomainError(ErrCodeNotFound, "folder not found")
)

// Pipeline errors
var (
	ErrNoChunksProduced = NewDomainError(ErrCodeContent, "document produced no chunks after analysis")
	ErrNothingIndexed   = NewDomainError(ErrCodePartialIndexFailure, "no chunks could be indexed")
)

// NewTransientProviderError wraps a failed provider call (OCR, embedding,
// index upload). Files failed this way stay eligible for the retry sweep.
func NewTransientProviderError(provider string, err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeTransientProvider, fmt.Sprintf("%s call failed", provider), err)
}

// NewConfigurationError reports missing credentials or endpoints.
func NewConfigurationError(message string) *DomainError {
	return NewDomainError(ErrCodeConfiguration, message)
}
