package errors

import (
	goerrors "errors"
	"fmt"
	"net/http"
)

// ErrorType classifies failures across the ingestion pipeline
type ErrorType string

const (
	// Resolver-layer failures
	ErrorTypeInvalidURL     ErrorType = "invalid_url"
	ErrorTypePrivateContent ErrorType = "private_content"
	ErrorTypeNotFound       ErrorType = "not_found"
	ErrorTypeThrottled      ErrorType = "upstream_throttled"
	ErrorTypeUnavailable    ErrorType = "temporarily_unavailable"

	// Fetch/validation-layer failures
	ErrorTypeDownload  ErrorType = "download_failed"
	ErrorTypeCorrupted ErrorType = "corrupted_download"

	// Drive provider failures, passed through with the provider message
	ErrorTypeDrive ErrorType = "drive"

	ErrorTypeConfig  ErrorType = "config"
	ErrorTypeUnknown ErrorType = "unknown"
)

// Error represents a classified InstaVault error
type Error struct {
	Type    ErrorType
	Message string
	Code    int // upstream HTTP status where one exists, otherwise 0
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// New creates an Error with the given type and message
func New(errorType ErrorType, message string) *Error {
	return &Error{Type: errorType, Message: message}
}

// NewWithCode creates an Error carrying an upstream status code
func NewWithCode(errorType ErrorType, message string, code int) *Error {
	return &Error{Type: errorType, Message: message, Code: code}
}

// InvalidURL creates an invalid_url error
func InvalidURL(message string) *Error {
	return New(ErrorTypeInvalidURL, message)
}

// PrivateContent creates a private_content error
func PrivateContent(message string) *Error {
	return New(ErrorTypePrivateContent, message)
}

// NotFound creates a not_found error
func NotFound(message string) *Error {
	return New(ErrorTypeNotFound, message)
}

// Throttled creates an upstream_throttled error
func Throttled(message string, code int) *Error {
	return NewWithCode(ErrorTypeThrottled, message, code)
}

// Unavailable creates a temporarily_unavailable error
func Unavailable(message string) *Error {
	return New(ErrorTypeUnavailable, message)
}

// Download creates a download_failed error
func Download(message string) *Error {
	return New(ErrorTypeDownload, message)
}

// Corrupted creates a corrupted_download error
func Corrupted(message string) *Error {
	return New(ErrorTypeCorrupted, message)
}

// Drive wraps a provider error, keeping the original message
func Drive(message string, code int) *Error {
	return NewWithCode(ErrorTypeDrive, message, code)
}

// GetType extracts the ErrorType from an error chain.
// Returns ErrorTypeUnknown for non-taxonomy errors.
func GetType(err error) ErrorType {
	var e *Error
	if goerrors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}

// IsType reports whether err carries the given type
func IsType(err error, errorType ErrorType) bool {
	return GetType(err) == errorType
}

// HTTPStatus maps an error type to the status code the API surfaces
func HTTPStatus(err error) int {
	switch GetType(err) {
	case ErrorTypeInvalidURL:
		return http.StatusBadRequest
	case ErrorTypePrivateContent:
		return http.StatusForbidden
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeThrottled:
		return http.StatusTooManyRequests
	case ErrorTypeUnavailable:
		return http.StatusServiceUnavailable
	case ErrorTypeCorrupted:
		return http.StatusUnprocessableEntity
	case ErrorTypeDownload, ErrorTypeDrive:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
