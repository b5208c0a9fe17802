// Package common defines sentinel errors shared by the server layers of
// conduit. Callers should match them with errors.Is; lower layers wrap them
// with fmt.Errorf("...: %w", err) to add context.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound    = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Token errors. Every token failure kind wraps ErrInvalidToken.
	ErrInvalidToken = errors.New("invalid token")
)

// Credential errors, produced by the authentication gate.
var (
	ErrMissingCredential   = errors.New("missing credential")
	ErrMalformedCredential = errors.New("invalid authorization format")
	ErrInvalidCredential   = errors.New("could not validate credentials")
	ErrUnknownSubject      = errors.New("token subject does not exist")
)

// Validation errors: the caller has to correct the input and retry.
var (
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrDuplicateUsername = errors.New("username already in use")
	ErrBadCredential     = errors.New("incorrect email or password")
	ErrValidation        = errors.New("validation error")
)

// Not-found errors visible to clients.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrTargetNotFound = errors.New("user not found")
)

// ErrStorageDisabled is returned by features that need object storage when
// none is configured.
var ErrStorageDisabled = errors.New("object storage is not configured")

// IsForbidden reports credential failures caused by a missing or malformed
// Authorization header.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrMissingCredential) || errors.Is(err, ErrMalformedCredential)
}

// IsUnauthorized reports credential failures where the header was well formed
// but the token was not valid or did not resolve to a user.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrInvalidCredential) || errors.Is(err, ErrUnknownSubject)
}

// IsValidation reports errors the client can fix by re-submitting corrected input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrDuplicateEmail) ||
		errors.Is(err, ErrDuplicateUsername) ||
		errors.Is(err, ErrBadCredential)
}

// IsNotFound reports errors that map to a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrTargetNotFound)
}
