package core

import (
	"fmt"
)

// ProviderError represents a structured provider failure with category and code.
// The assembly engine treats these as opaque attempt failures; codes exist for
// diagnostics and reporting only.
type ProviderError struct {
	Category Category
	Code     string // Machine-readable code: element_not_found, timeout, etc.
	Message  string // Human-readable message
	Cause    error  // Underlying error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// WithCause returns a copy of the error with the given cause.
func (e *ProviderError) WithCause(cause error) *ProviderError {
	return &ProviderError{
		Category: e.Category,
		Code:     e.Code,
		Message:  e.Message,
		Cause:    cause,
	}
}

// WithMessage returns a copy of the error with a custom message.
func (e *ProviderError) WithMessage(msg string) *ProviderError {
	return &ProviderError{
		Category: e.Category,
		Code:     e.Code,
		Message:  msg,
		Cause:    e.Cause,
	}
}

// Predefined provider errors.
var (
	ErrElementNotFound = &ProviderError{
		Category: CategoryElementSource,
		Code:     "element_not_found",
		Message:  "element not found",
	}
	ErrTextNotFound = &ProviderError{
		Category: CategoryTextDetection,
		Code:     "text_not_found",
		Message:  "text not found on screen",
	}
	ErrTemplateNotFound = &ProviderError{
		Category: CategoryImageDetection,
		Code:     "template_not_found",
		Message:  "template image not matched",
	}
	ErrDriverUnreachable = &ProviderError{
		Category: CategoryDriver,
		Code:     "driver_unreachable",
		Message:  "could not connect to automation server",
	}
	ErrSessionLost = &ProviderError{
		Category: CategoryDriver,
		Code:     "session_lost",
		Message:  "device session lost",
	}
	ErrUnsupportedKeyword = &ProviderError{
		Category: CategoryDriver,
		Code:     "unsupported_keyword",
		Message:  "keyword not supported by driver",
	}
)

// NewProviderError creates a ProviderError with the given parameters.
func NewProviderError(category Category, code, message string) *ProviderError {
	return &ProviderError{
		Category: category,
		Code:     code,
		Message:  message,
	}
}
