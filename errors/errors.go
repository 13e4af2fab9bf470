package errors

import (
	"fmt"
	"net/http"
	"time"
)

// AppError is the custom error type for the application
type AppError struct {
	Raw       error
	HTTPCode  int
	Code      ErrorCode
	Message   string
	Details   map[string]string
	Timestamp time.Time
}

// Error implements error interface
func (e AppError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code.String(), e.Message, e.Raw)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// Unwrap exposes the underlying cause to errors.Is/As.
func (e AppError) Unwrap() error {
	return e.Raw
}

// WithDetail adds a detail to the error
func (e AppError) WithDetail(key, value string) AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// General Errors
func ErrInternal(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_INTERNAL,
		Message:  "Internal server error",
	}
}

// ErrInvalidInput reports unreadable or unsupported caller input. The
// pipeline must not progress past this.
func ErrInvalidInput(message string) AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_INPUT,
		Message:  message,
	}
}

// ErrUnreadableAudio flags an audio file that could not be read or decoded.
func ErrUnreadableAudio(filename string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_INPUT,
		Message:  "Audio file is unreadable or unsupported",
	}.WithDetail("filename", filename)
}

func ErrNotFound(resource string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_NOT_FOUND,
		Message:  fmt.Sprintf("%s not found", resource),
	}
}

// ErrServiceUnavailable reports an unreachable or timed-out backend.
// Transcription failures of this class are fatal to a pipeline run.
func ErrServiceUnavailable(service string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusServiceUnavailable,
		Code:     ErrorCode_SERVICE_UNAVAILABLE,
		Message:  fmt.Sprintf("%s is unavailable", service),
	}.WithDetail("service", service)
}

// ErrMalformedResponse reports non-JSON or schema-violating output from a
// remote analysis service.
func ErrMalformedResponse(service string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadGateway,
		Code:     ErrorCode_MALFORMED_RESPONSE,
		Message:  fmt.Sprintf("%s returned a malformed response", service),
	}.WithDetail("service", service)
}

// ErrMissingCredential distinguishes "no API key configured" from a failed
// service call in user-visible messages.
func ErrMissingCredential(service string) AppError {
	return AppError{
		HTTPCode: http.StatusServiceUnavailable,
		Code:     ErrorCode_MISSING_CREDENTIAL,
		Message:  fmt.Sprintf("No %s credential configured", service),
	}.WithDetail("service", service)
}

// ErrStorage reports a failed store operation. No partial record is left
// behind when this is returned.
func ErrStorage(operation string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_STORAGE,
		Message:  fmt.Sprintf("Storage operation failed: %s", operation),
	}
}
