package assistant

import "fmt"

// ErrorType partitions pipeline failures for the chat response.
type ErrorType string

const (
	ErrorValidation ErrorType = "validation"
	ErrorNotFound   ErrorType = "not_found"
	ErrorConflict   ErrorType = "conflict"
	ErrorQuota      ErrorType = "quota"
	ErrorLLM        ErrorType = "llm"
	ErrorNetwork    ErrorType = "network"
)

// DomainError is a pipeline failure whose Message is already phrased for the
// user (pt-BR). Validation, not_found and conflict carry no error_type on the
// wire; the reply text conveys the reason.
type DomainError struct {
	Type    ErrorType
	Message string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Validation builds a validation failure with a user-facing clarification.
func Validation(format string, args ...any) *DomainError {
	return &DomainError{Type: ErrorValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound builds a not_found failure.
func NotFound(format string, args ...any) *DomainError {
	return &DomainError{Type: ErrorNotFound, Message: fmt.Sprintf(format, args...)}
}

// surfaced reports whether the error type rides on the chat response's
// error_type field.
func (t ErrorType) surfaced() bool {
	return t == ErrorQuota || t == ErrorLLM || t == ErrorNetwork
}
