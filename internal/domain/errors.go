package domain

import "fmt"

// ErrorKind classifies conversion errors
type ErrorKind string

const (
	KindNoFilesSelected     ErrorKind = "no_files_selected"
	KindTooManyFiles        ErrorKind = "too_many_files"
	KindSizeLimitExceeded   ErrorKind = "size_limit_exceeded"
	KindIncompatibleFileSet ErrorKind = "incompatible_file_set"
	KindNoCompatibleTargets ErrorKind = "no_compatible_targets"
	KindInvalidTarget       ErrorKind = "invalid_target"
	KindNotSubmittable      ErrorKind = "not_submittable"
	KindBusy                ErrorKind = "busy"
	KindNetworkFailure      ErrorKind = "network_failure"
	KindServiceError        ErrorKind = "service_error"
	KindCancelled           ErrorKind = "cancelled"
)

// Sentinels for errors.Is checks. They match any error of the same kind.
var (
	ErrNoFilesSelected     = &ConversionError{Kind: KindNoFilesSelected}
	ErrTooManyFiles        = &ConversionError{Kind: KindTooManyFiles}
	ErrSizeLimitExceeded   = &ConversionError{Kind: KindSizeLimitExceeded}
	ErrIncompatibleFileSet = &ConversionError{Kind: KindIncompatibleFileSet}
	ErrNoCompatibleTargets = &ConversionError{Kind: KindNoCompatibleTargets}
	ErrInvalidTarget       = &ConversionError{Kind: KindInvalidTarget}
	ErrNotSubmittable      = &ConversionError{Kind: KindNotSubmittable}
	ErrBusy                = &ConversionError{Kind: KindBusy}
	ErrNetworkFailure      = &ConversionError{Kind: KindNetworkFailure}
	ErrServiceError        = &ConversionError{Kind: KindServiceError}
	ErrCancelled           = &ConversionError{Kind: KindCancelled}
)

// ConversionError is an error surfaced to the user as a single status message
type ConversionError struct {
	Kind       ErrorKind
	Message    string
	StatusCode int // only set for service errors
	Err        error
}

// Error returns the user-visible message
func (e *ConversionError) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

// Unwrap returns the underlying cause
func (e *ConversionError) Unwrap() error {
	return e.Err
}

// Is matches another ConversionError of the same kind
func (e *ConversionError) Is(target error) bool {
	t, ok := target.(*ConversionError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// IsClientSide reports whether the error was detected before any network call
func (e *ConversionError) IsClientSide() bool {
	switch e.Kind {
	case KindNetworkFailure, KindServiceError, KindCancelled:
		return false
	default:
		return true
	}
}

// NewError creates a ConversionError with a formatted message
func NewError(kind ErrorKind, format string, args ...interface{}) *ConversionError {
	return &ConversionError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NewNetworkFailure wraps a transport error
func NewNetworkFailure(err error) *ConversionError {
	return &ConversionError{
		Kind:    KindNetworkFailure,
		Message: fmt.Sprintf("Network error: %v", err),
		Err:     err,
	}
}

// NewServiceError creates an error reported by the conversion endpoint
func NewServiceError(statusCode int, message string) *ConversionError {
	return &ConversionError{Kind: KindServiceError, Message: message, StatusCode: statusCode}
}
