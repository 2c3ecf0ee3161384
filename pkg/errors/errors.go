package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"
)

// ErrorCode represents a unique error code for categorizing errors
type ErrorCode string

const (
	// Connection errors (1xxx)
	ErrCodeConnectionFailed     ErrorCode = "SNLF1001"
	ErrCodeConnectionTimeout    ErrorCode = "SNLF1002"
	ErrCodeAuthenticationFailed ErrorCode = "SNLF1003"

	// Configuration errors (2xxx)
	ErrCodeConfigNotFound ErrorCode = "SNLF2001"
	ErrCodeConfigInvalid  ErrorCode = "SNLF2002"
	ErrCodeConfigMissing  ErrorCode = "SNLF2003"

	// Extraction errors (3xxx)
	ErrCodeExtractionFailed    ErrorCode = "SNLF3001"
	ErrCodeProcedureNotFound   ErrorCode = "SNLF3002"
	ErrCodeSchemaIntrospection ErrorCode = "SNLF3003"
	ErrCodeProductCodeMissing  ErrorCode = "SNLF3004"

	// Warehouse load errors (4xxx)
	ErrCodeSQLExecution  ErrorCode = "SNLF4001"
	ErrCodeSQLTimeout    ErrorCode = "SNLF4002"
	ErrCodeStagingFailed ErrorCode = "SNLF4003"
	ErrCodeCopyFailed    ErrorCode = "SNLF4004"
	ErrCodeCreateTable   ErrorCode = "SNLF4005"
	ErrCodeRenameBackup  ErrorCode = "SNLF4006"

	// File system errors (5xxx)
	ErrCodeFileNotFound  ErrorCode = "SNLF5001"
	ErrCodeFileOperation ErrorCode = "SNLF5002"

	// Validation errors (6xxx)
	ErrCodeValidationFailed ErrorCode = "SNLF6001"
	ErrCodeInvalidInput     ErrorCode = "SNLF6002"
	ErrCodeRequiredField    ErrorCode = "SNLF6003"

	// System errors (9xxx)
	ErrCodeInternal ErrorCode = "SNLF9001"
	ErrCodeTimeout  ErrorCode = "SNLF9002"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity string

const (
	SeverityCritical ErrorSeverity = "CRITICAL" // System failure, pipeline cannot start
	SeverityError    ErrorSeverity = "ERROR"    // Item failed, run continues with the next item
	SeverityWarning  ErrorSeverity = "WARNING"  // Operation succeeded with degraded behavior
	SeverityInfo     ErrorSeverity = "INFO"     // Informational, not an error
)

// AppError represents a structured application error with context
type AppError struct {
	Code        ErrorCode
	Message     string
	Severity    ErrorSeverity
	Context     map[string]interface{}
	Cause       error
	Stack       string
	Timestamp   time.Time
	Recoverable bool
	Suggestions []string
}

// Error implements the error interface
func (e *AppError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s] %s: %s", e.Code, e.Severity, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\nCaused by: %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\nSuggestions:")
		for i, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  %d. %s", i+1, suggestion))
		}
	}

	return b.String()
}

// Unwrap returns the cause of the error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:        code,
		Message:     message,
		Severity:    SeverityError,
		Context:     make(map[string]interface{}),
		Stack:       captureStack(),
		Timestamp:   time.Now(),
		Recoverable: false,
	}
}

// Wrap wraps an existing error with AppError
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}

	appErr := New(code, message)
	appErr.Cause = err

	// If wrapping another AppError, inherit some properties
	if ae, ok := err.(*AppError); ok {
		for k, v := range ae.Context {
			appErr.Context[k] = v
		}
	}

	return appErr
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithSeverity sets the error severity
func (e *AppError) WithSeverity(severity ErrorSeverity) *AppError {
	e.Severity = severity
	return e
}

// WithSuggestions adds recovery suggestions
func (e *AppError) WithSuggestions(suggestions ...string) *AppError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// AsRecoverable marks the error as recoverable
func (e *AppError) AsRecoverable() *AppError {
	e.Recoverable = true
	return e
}

// captureStack captures the current stack trace
func captureStack() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])

	var b strings.Builder
	frames := runtime.CallersFrames(pcs[:n])

	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") {
			b.WriteString(fmt.Sprintf("%s:%d %s\n", frame.File, frame.Line, frame.Function))
		}
		if !more {
			break
		}
	}

	return b.String()
}

// Common error constructors

// ConnectionError creates a connection-related error
func ConnectionError(message string, cause error) *AppError {
	return Wrap(cause, ErrCodeConnectionFailed, message).
		WithSeverity(SeverityError).
		WithSuggestions(
			"Check your network connection",
			"Verify the server endpoint is reachable",
			"Check firewall settings",
		)
}

// ConfigError creates a configuration-related error
func ConfigError(message string, field string) *AppError {
	return New(ErrCodeConfigInvalid, message).
		WithContext("field", field).
		WithSuggestions(
			fmt.Sprintf("Check the '%s' configuration value", field),
			"Review config.yaml against the documented settings",
		)
}

// SQLError creates an SQL execution error
func SQLError(message string, query string, cause error) *AppError {
	err := Wrap(cause, ErrCodeSQLExecution, message).
		WithContext("query", truncateString(query, 200))

	if strings.Contains(message, "timeout") {
		err.Code = ErrCodeSQLTimeout
		_ = err.WithSuggestions(
			"Increase the statement timeout setting",
			"Check warehouse sizing for large extracts",
		)
	}

	return err
}

// ExtractionError creates an extraction failure scoped to a country and source
func ExtractionError(message, country, source string, cause error) *AppError {
	return Wrap(cause, ErrCodeExtractionFailed, message).
		WithContext("country", country).
		WithContext("source", source)
}

// ProcedureNotFound creates the distinguished "remote procedure absent" error
func ProcedureNotFound(country, procedure string, cause error) *AppError {
	return Wrap(cause, ErrCodeProcedureNotFound,
		fmt.Sprintf("stored procedure %s does not exist", procedure)).
		WithContext("country", country).
		WithContext("procedure", procedure).
		AsRecoverable()
}

// ValidationError creates a validation error
func ValidationError(field string, value interface{}, reason string) *AppError {
	return New(ErrCodeValidationFailed, fmt.Sprintf("Validation failed for %s: %s", field, reason)).
		WithContext("field", field).
		WithContext("value", value).
		WithSeverity(SeverityWarning).
		AsRecoverable()
}

// IsRecoverable checks if an error is recoverable
func IsRecoverable(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Recoverable
	}
	return false
}

// IsProcedureNotFound reports whether err is the distinguished
// "remote procedure absent" failure that enables fallback dispatch.
func IsProcedureNotFound(err error) bool {
	return GetErrorCode(err) == ErrCodeProcedureNotFound
}

// GetErrorCode extracts the error code from an error
func GetErrorCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

// truncateString truncates a string to maxLen characters
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
