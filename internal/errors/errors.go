package errors

import (
	"errors"
	"fmt"
)

// Common error values for the storefront client
var (
	// Session errors
	ErrNoSession      = errors.New("no authentication token found")
	ErrSessionExpired = errors.New("session expired")

	// Tenant errors
	ErrInvalidTenant = errors.New("invalid tenant")
	ErrTenantMissing = errors.New("tenant not resolved")

	// Storage errors
	ErrQuotaExceeded    = errors.New("storage quota exceeded")
	ErrStorageCorrupted = errors.New("stored value is corrupted")

	// Reading errors
	ErrNotLoaded       = errors.New("reader not loaded")
	ErrUnknownSection  = errors.New("unknown section")
	ErrBookmarkMissing = errors.New("bookmark not found")

	// General errors
	ErrNotFound    = errors.New("not found")
	ErrInvalidItem = errors.New("invalid item")
)

// AuthError reports rejected credentials or a token the collaborator no
// longer accepts. Receiving one means the session has been dropped.
type AuthError struct {
	Message string
	Cause   error
}

func (e *AuthError) Error() string {
	if e.Message == "" && e.Cause != nil {
		return e.Cause.Error()
	}
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Cause
}

// ValidationError is a client-side form check failure. It is never sent to
// the collaborator.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// RemoteError is a non-2xx response from the collaborator.
// Detail holds the response body's detail field when present; Message is the
// user-facing text (Detail, or a localized generic message).
type RemoteError struct {
	Status  int
	Detail  string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote error %d: %s", e.Status, e.Message)
}

// NewAuthError wraps cause into an AuthError with a user-facing message.
func NewAuthError(message string, cause error) *AuthError {
	return &AuthError{Message: message, Cause: cause}
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsAuth reports whether err is, or wraps, an AuthError.
func IsAuth(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// RemoteStatus returns the HTTP status of a wrapped RemoteError, or 0.
func RemoteStatus(err error) int {
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		return remoteErr.Status
	}
	return 0
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
