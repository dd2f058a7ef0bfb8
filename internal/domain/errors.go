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
	ErrCodeAlreadyExists    = "ALREADY_EXISTS"
	ErrCodeExtractionFailed = "EXTRACTION_FAILED"
	ErrCodeEmbeddingFailed  = "EMBEDDING_FAILED"
	ErrCodeStoreWriteFailed = "STORE_WRITE_FAILED"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrInvalidCategory      = NewDomainError(ErrCodeValidation, "invalid category")
	ErrInvalidChunkIndex    = NewDomainError(ErrCodeValidation, "chunk index cannot be negative")
	ErrEmptyChunkContent    = NewDomainError(ErrCodeValidation, "chunk content cannot be empty")
	ErrEmptyQuery           = NewDomainError(ErrCodeValidation, "search query cannot be empty")
	ErrEmptyDocumentText    = NewDomainError(ErrCodeValidation, "document text cannot be empty")
	ErrMissingRequiredField = NewDomainError(ErrCodeValidation, "missing required field")
)

// Not found errors
var (
	ErrDocumentNotFound = NewDomainError(ErrCodeNotFound, "source document not found")
	ErrChunkNotFound    = NewDomainError(ErrCodeNotFound, "knowledge chunk not found")
)

// Already exists errors
var (
	ErrDocumentAlreadyExists = NewDomainError(ErrCodeAlreadyExists, "source document already registered")
)

// Pipeline errors
var (
	ErrExtractionFailed  = NewDomainError(ErrCodeExtractionFailed, "document is unreadable or scanned")
	ErrEmbeddingFailed   = NewDomainError(ErrCodeEmbeddingFailed, "embedding generation failed")
	ErrStoreWriteFailed  = NewDomainError(ErrCodeStoreWriteFailed, "failed to persist chunk")
	ErrStorageUnreadable = NewDomainError(ErrCodeInternalError, "failed to read document from storage")
)
