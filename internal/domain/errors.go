package domain

import "errors"

// Domain errors
var (
	// ErrHardwareUnavailable means the driver subsystem itself is missing.
	// It is the only hard failure device enumeration can produce.
	ErrHardwareUnavailable = errors.New("scanner hardware unavailable")

	// ErrDeviceNotFound means the device id no longer matches any connected
	// device; the caller must re-enumerate.
	ErrDeviceNotFound = errors.New("device not found")

	// ErrNotConnected guards against transfers before a session is open.
	ErrNotConnected = errors.New("not connected to device")

	ErrDocumentNotFound = errors.New("document not found")
	ErrPageNotFound     = errors.New("page not found")
	ErrJobNotFound      = errors.New("scan job not found")
	ErrDeviceBusy       = errors.New("device busy with another scan")
	ErrInvalidFile      = errors.New("invalid file")
)

// ValidationError represents a validation error with field and message information.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}

// NewValidationError creates a validation error for a field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
