package http

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ClientError represents the errors returned by the client.
type ClientError interface {
	error
	Type() ErrorType
}

// ErrorType defines the category of client error
type ErrorType string

const (
	ValidationError    ErrorType = "validation"
	FailedRequestError ErrorType = "failed_request"
	InterceptorError   ErrorType = "interceptor"
	CodecError         ErrorType = "codec"
)

// FailedRequest reports an attempt that timed out or returned an unexpected
// status. It carries the raw transport response for inspection.
type FailedRequest struct {
	Method   Method
	URI      string
	Expected []int
	Timeout  time.Duration
	Response *TransportResponse
}

// TimedOut reports whether the attempt timed out. A zero status counts.
func (e *FailedRequest) TimedOut() bool {
	return TimedOut(e.Response)
}

// Retryable reports whether the caller may retry the attempt.
func (e *FailedRequest) Retryable() bool {
	return IsRetryable(e.Response)
}

// StatusCode returns the received status, 0 when nothing was received.
func (e *FailedRequest) StatusCode() int {
	if e.Response == nil {
		return 0
	}
	return e.Response.StatusCode
}

func (e *FailedRequest) Error() string {
	if e.TimedOut() {
		return fmt.Sprintf("%s %s - Response exceeded %dms.", e.Method, e.URI, e.Timeout.Milliseconds())
	}
	return fmt.Sprintf("%s %s - Expected %s from the server but received %d.",
		e.Method, e.URI, formatExpected(e.Expected), e.StatusCode())
}

func (e *FailedRequest) Type() ErrorType {
	return FailedRequestError
}

// Unwrap exposes the underlying transport error, if any.
func (e *FailedRequest) Unwrap() error {
	if e.Response == nil {
		return nil
	}
	return e.Response.Err
}

func formatExpected(codes []int) string {
	if len(codes) == 1 {
		return strconv.Itoa(codes[0])
	}
	parts := make([]string, len(codes))
	for i, code := range codes {
		parts[i] = strconv.Itoa(code)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// validationError represents request validation errors
type validationError struct {
	message string
	field   string
	wrapped error
}

func (e *validationError) Error() string {
	if e.field != "" {
		return fmt.Sprintf("validation error: %s (field: %s)", e.message, e.field)
	}
	return fmt.Sprintf("validation error: %s", e.message)
}

func (e *validationError) Type() ErrorType {
	return ValidationError
}

func (e *validationError) Unwrap() error {
	return e.wrapped
}

// Field returns the offending request field.
func (e *validationError) Field() string {
	return e.field
}

// interceptorError represents interceptor-related errors
type interceptorError struct {
	message string
	wrapped error
	stage   string
}

func (e *interceptorError) Error() string {
	return fmt.Sprintf("interceptor error: %s (stage: %s): %v", e.message, e.stage, e.wrapped)
}

func (e *interceptorError) Type() ErrorType {
	return InterceptorError
}

func (e *interceptorError) Unwrap() error {
	return e.wrapped
}

// codecError represents JSON encode or decode failures.
type codecError struct {
	message string
	wrapped error
}

func (e *codecError) Error() string {
	return fmt.Sprintf("codec error: %s: %v", e.message, e.wrapped)
}

func (e *codecError) Type() ErrorType {
	return CodecError
}

func (e *codecError) Unwrap() error {
	return e.wrapped
}

// NewValidationError creates a new validation error
func NewValidationError(message, field string) ClientError {
	return &validationError{
		message: message,
		field:   field,
	}
}

func wrapValidationError(message, field string, err error) ClientError {
	return &validationError{
		message: message,
		field:   field,
		wrapped: err,
	}
}

// NewInterceptorError creates a new interceptor error
func NewInterceptorError(message, stage string, wrapped error) ClientError {
	return &interceptorError{
		message: message,
		wrapped: wrapped,
		stage:   stage,
	}
}

// NewCodecError creates a new codec error
func NewCodecError(message string, wrapped error) ClientError {
	return &codecError{
		message: message,
		wrapped: wrapped,
	}
}

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errorType ErrorType) bool {
	if err == nil {
		return false
	}
	var clientErr ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type() == errorType
	}
	return false
}

// AsFailedRequest extracts a *FailedRequest from err.
func AsFailedRequest(err error) (*FailedRequest, bool) {
	var failed *FailedRequest
	if errors.As(err, &failed) {
		return failed, true
	}
	return nil, false
}

// IsHTTPStatusError checks if err is a FailedRequest with the given status.
func IsHTTPStatusError(err error, statusCode int) bool {
	failed, ok := AsFailedRequest(err)
	return ok && failed.StatusCode() == statusCode
}
