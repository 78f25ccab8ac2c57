// Package errors provides the unified error type and factory functions for the
// MarkSentinel platform.  Every layer of the application (domain, application,
// infrastructure, interfaces) uses AppError as the single carrier for structured
// error information, enabling consistent HTTP responses, logging, and monitoring.
package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// stackDepth is the maximum number of frames captured per error.
const stackDepth = 32

// captureStack returns a formatted call-stack string starting two frames above
// the caller (skipping captureStack itself and New/Wrap).
func captureStack(skip int) string {
	pcs := make([]uintptr, stackDepth)
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return ""
	}
	frames := runtime.CallersFrames(pcs[:n])
	var sb strings.Builder
	for {
		f, more := frames.Next()
		// Trim standard-library noise to keep traces readable.
		if !strings.Contains(f.File, "runtime/") {
			fmt.Fprintf(&sb, "\n\t%s:%d %s", f.File, f.Line, f.Function)
		}
		if !more {
			break
		}
	}
	return sb.String()
}

// AppError is the single structured error type used throughout MarkSentinel.
// It satisfies the standard error interface and supports Go 1.13+ error wrapping
// so that errors.Is / errors.As / errors.Unwrap work transparently across all
// layers of the application.
//
// Usage:
//
//	return errors.New(errors.ErrCodeItemNotFound, "item 4e2a... not found")
//	return errors.Wrap(repoErr, errors.ErrCodeDatabaseError, "failed to load item")
//	return errors.NewValidation("keywords must not be empty")
type AppError struct {
	// Code is the typed error code that uniquely identifies the failure category.
	Code ErrorCode

	// Message is the primary human-readable description of the error, suitable
	// for inclusion in API responses returned to callers.
	Message string

	// Detail carries supplementary context (query parameters, entity IDs, etc.)
	// that aids debugging without leaking sensitive internals to end users.
	Detail string

	// Cause is the underlying error that triggered this AppError, enabling
	// errors.Is / errors.As traversal of the full error chain.
	Cause error

	// Stack contains the formatted call-stack captured at the point of error
	// creation.  It is intentionally not included in Error() output; the
	// logging package emits it as a separate field via StackTrace.
	Stack string
}

// StackTrace returns the call stack captured when the error was created.
// Structured logging attaches it as its own field instead of flattening it
// into the message.
func (e *AppError) StackTrace() string {
	if e == nil {
		return ""
	}
	return e.Stack
}

// Error implements the standard error interface.
// Format: "[<code>] <message>: <detail>", detail omitted when empty.
func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code.String(), e.Message, e.Detail)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// Unwrap returns the underlying cause error, enabling errors.Is and errors.As
// to traverse the full error chain without any additional boilerplate at call sites.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetail returns a shallow copy of the receiver with Detail set.
// It is safe to call on a nil pointer (returns nil).
func (e *AppError) WithDetail(detail string) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Detail = detail
	return &clone
}

// WithCause returns a shallow copy of the receiver with Cause set to err.
func (e *AppError) WithCause(err error) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Cause = err
	return &clone
}

// New constructs a fresh AppError with the given code and message.  The
// message accepts printf-style formatting when args are supplied; without
// args it is used verbatim, so literal percent signs are safe.
// New is the preferred factory for errors that originate in the current layer
// without an underlying cause from a lower layer.
func New(code ErrorCode, message string, args ...interface{}) *AppError {
	if len(args) > 0 {
		message = fmt.Sprintf(message, args...)
	}
	return &AppError{
		Code:    code,
		Message: message,
		Stack:   captureStack(1),
	}
}

// Wrap constructs an AppError that wraps an existing error.
// If err is nil, Wrap returns nil so it can be used inline.
//
// When err is already an *AppError and code is ErrCodeInternal the original
// code is preserved, preventing loss of the original domain classification
// during cross-layer propagation.
func Wrap(err error, code ErrorCode, message string, args ...interface{}) *AppError {
	if err == nil {
		return nil
	}
	if len(args) > 0 {
		message = fmt.Sprintf(message, args...)
	}
	if code == ErrCodeInternal {
		var ae *AppError
		if errors.As(err, &ae) {
			code = ae.Code
		}
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
		Stack:   captureStack(1),
	}
}

// IsCode reports whether any error in err's chain is an *AppError with the
// given code.  It is the idiomatic way to check domain-specific failure modes:
//
//	if errors.IsCode(err, errors.ErrCodeItemNotFound) { ... }
func IsCode(err error, code ErrorCode) bool {
	var ae *AppError
	for err != nil {
		if errors.As(err, &ae) && ae.Code == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// IsNotFound reports whether any error in err's chain is an *AppError carrying
// one of the not-found codes.
func IsNotFound(err error) bool {
	var ae *AppError
	for err != nil {
		if errors.As(err, &ae) {
			switch ae.Code {
			case ErrCodeNotFound, ErrCodeItemNotFound, ErrCodeAlertNotFound, ErrCodeRecordNotFound:
				return true
			}
		}
		err = errors.Unwrap(err)
	}
	return false
}

// IsValidation reports whether any error in err's chain is a validation error.
func IsValidation(err error) bool {
	return IsCode(err, ErrCodeValidation) || IsCode(err, ErrCodeEmptyKeywords) || IsCode(err, ErrCodeBadRequest)
}

// IsConflict reports whether any error in err's chain is a conflict error.
func IsConflict(err error) bool {
	return IsCode(err, ErrCodeConflict) || IsCode(err, ErrCodeCheckInProgress) || IsCode(err, ErrCodeItemNotActive)
}

// GetCode extracts the ErrorCode from the first *AppError found in err's chain.
// If no *AppError is present, ErrCodeInternal is returned.  This is useful in
// middleware / logging layers that need a single code to emit as a metric label
// without coupling to specific domain errors.
func GetCode(err error) ErrorCode {
	if err == nil {
		return ErrorCode("OK")
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ErrCodeInternal
}

// Convenience factories.  Each mirrors the pattern used in well-known Go HTTP
// frameworks so that call sites read naturally:
//
//	return errors.NewNotFound("monitoring item %s not found", id)
//	return errors.NewValidation("keywords must not be empty")

// NewValidation constructs an ErrCodeValidation AppError.
func NewValidation(format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(1),
	}
}

// NewNotFound constructs an ErrCodeNotFound AppError.
func NewNotFound(format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(1),
	}
}

// NewInternal constructs an ErrCodeInternal AppError.
// Always log the underlying cause before or after calling NewInternal.
func NewInternal(format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(1),
	}
}

// NewConflict constructs an ErrCodeConflict AppError.
func NewConflict(format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeConflict,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(1),
	}
}

// NewExternal constructs an ErrCodeExternalService AppError, used for failures
// of the registry and scan-source collaborators.
func NewExternal(format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeExternalService,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(1),
	}
}

// NewTimeout constructs an ErrCodeTimeout AppError.
func NewTimeout(format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeTimeout,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(1),
	}
}

// NewUnsupported constructs an ErrCodeUnsupportedItemType AppError.
func NewUnsupported(format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeUnsupportedItemType,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(1),
	}
}
