package errors

import (
	"fmt"
)

// ErrorType represents the category of error
type ErrorType int

const (
	// Access errors - the scan root is missing or unreadable; fatal
	ErrorTypeAccess ErrorType = iota
	// Extraction errors - one repository's git query failed; recoverable
	ErrorTypeExtraction
	// Analysis errors - the AI call failed or returned invalid data; recoverable
	ErrorTypeAnalysis
	// Configuration errors - missing or invalid configuration
	ErrorTypeConfig
	// Validation errors - invalid input data
	ErrorTypeValidation
)

// Severity represents how critical an error is
type Severity int

const (
	// SeverityLow - can continue with degraded functionality
	SeverityLow Severity = iota
	// SeverityMedium - handled locally, the run continues
	SeverityMedium
	// SeverityCritical - must be addressed, stops the run
	SeverityCritical
)

// Error represents a structured error with context
type Error struct {
	Type     ErrorType
	Severity Severity
	Message  string
	Cause    error
	Context  map[string]any
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// Is checks if this error matches the target error type
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// IsFatal returns true if this error should stop the run
func (e *Error) IsFatal() bool {
	return e.Severity == SeverityCritical
}

// New creates a new error with the given type, severity, and message
func New(errType ErrorType, severity Severity, message string) *Error {
	return &Error{
		Type:     errType,
		Severity: severity,
		Message:  message,
		Context:  make(map[string]any),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, errType ErrorType, severity Severity, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Type:     errType,
		Severity: severity,
		Message:  message,
		Cause:    err,
		Context:  make(map[string]any),
	}
}

// Convenience constructors for the run's error taxonomy

// AccessError wraps a fatal scan-root failure
func AccessError(err error, message string) *Error {
	return Wrap(err, ErrorTypeAccess, SeverityCritical, message)
}

// AccessErrorf creates a fatal scan-root failure with formatting
func AccessErrorf(format string, args ...any) *Error {
	return New(ErrorTypeAccess, SeverityCritical, fmt.Sprintf(format, args...))
}

// ExtractionError wraps a per-repository git failure. The aggregator
// recovers from these; they never abort the run.
func ExtractionError(err error, message string) *Error {
	return Wrap(err, ErrorTypeExtraction, SeverityMedium, message)
}

// ExtractionErrorf creates a per-repository git failure with formatting
func ExtractionErrorf(format string, args ...any) *Error {
	return New(ErrorTypeExtraction, SeverityMedium, fmt.Sprintf(format, args...))
}

// AnalysisError wraps an AI-path failure. The analyzer recovers by
// substituting the fallback narrative.
func AnalysisError(err error, message string) *Error {
	return Wrap(err, ErrorTypeAnalysis, SeverityLow, message)
}

// AnalysisErrorf creates an AI-path failure with formatting
func AnalysisErrorf(format string, args ...any) *Error {
	return New(ErrorTypeAnalysis, SeverityLow, fmt.Sprintf(format, args...))
}

// ConfigError creates a configuration error
func ConfigError(message string) *Error {
	return New(ErrorTypeConfig, SeverityCritical, message)
}

// ConfigErrorf creates a configuration error with formatting
func ConfigErrorf(format string, args ...any) *Error {
	return New(ErrorTypeConfig, SeverityCritical, fmt.Sprintf(format, args...))
}

// ValidationError creates a validation error
func ValidationError(message string) *Error {
	return New(ErrorTypeValidation, SeverityCritical, message)
}

// ValidationErrorf creates a validation error with formatting
func ValidationErrorf(format string, args ...any) *Error {
	return New(ErrorTypeValidation, SeverityCritical, fmt.Sprintf(format, args...))
}

// IsFatal checks if an error is fatal (should stop the run)
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if e, ok := err.(*Error); ok {
		return e.IsFatal()
	}
	return false
}

// GetType returns the type of an error
func GetType(err error) ErrorType {
	if e, ok := err.(*Error); ok {
		return e.Type
	}
	return ErrorTypeValidation
}
