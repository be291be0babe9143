package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context, keeping the code of a wrapped AppError
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   err,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode adds an error code to an existing error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// GetCode returns the code of the outermost AppError in the chain, or "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// HasCode reports whether err carries the given code
func HasCode(err error, code string) bool {
	return err != nil && GetCode(err) == code
}

// Predefined error codes
const (
	CodeConfigInvalid   = "CONFIG_INVALID"
	CodeNotFound        = "NOT_FOUND"
	CodeInternalError   = "INTERNAL_ERROR"
	CodeExternalService = "EXTERNAL_SERVICE_ERROR"
	CodeInvalidInput    = "INVALID_INPUT"
	CodeEmptyInput      = "EMPTY_INPUT"
	CodeHTMLResponse    = "HTML_RESPONSE"
	CodeSourceTooLarge  = "SOURCE_TOO_LARGE"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

func ExternalServiceError(service string, cause error) *AppError {
	return &AppError{
		Code:    CodeExternalService,
		Message: fmt.Sprintf("%s service error", service),
		Cause:   cause,
	}
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

// EmptyInput reports a table with no data rows under the header. The message
// carries the checklist a user needs to fix the published sheet.
func EmptyInput(headers []string) *AppError {
	lines := []string{
		"No rows parsed. Check:",
		"• Row 1 must be the header (Stage,Stakeholder,...)",
		"• At least one data row under the header",
		"• Correct tab is published (try &single=true&gid=<tab>)",
	}
	if len(headers) > 0 {
		lines = append(lines, "Headers detected: "+strings.Join(headers, " | "))
	}
	return New(CodeEmptyInput, strings.Join(lines, "\n"))
}

func HTMLResponse(origin string) *AppError {
	return New(CodeHTMLResponse, fmt.Sprintf(
		"received HTML instead of CSV from %s. Check: publish the correct tab to web, or add &single=true&gid=<tab_gid>", origin))
}

func SourceTooLarge(limit int64) *AppError {
	return New(CodeSourceTooLarge, fmt.Sprintf("source exceeds %d bytes", limit))
}

// IsEmptyInput reports whether err is the EmptyInput outcome of a load
func IsEmptyInput(err error) bool {
	return HasCode(err, CodeEmptyInput)
}
