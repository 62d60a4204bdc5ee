// Package v1 provides session and authentication business logic for API
// version 1.
//
// Error Handling:
// This package defines sentinel errors that represent common authentication
// failures. These errors should be wrapped with context using
// fmt.Errorf("%w") when returned from business logic methods.
//
// Sign-in and sign-up expose rejections as *AuthError values instead, so
// callers can render field-level feedback without unwinding through a
// global error path.
package v1

import "errors"

// Sentinel errors for authentication operations.
// These errors should be wrapped with context using fmt.Errorf("%w") when returned.
var (
	// ErrInvalidCredentials indicates the provided credentials are incorrect.
	// HTTP Status: 401 Unauthorized
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserNotFound indicates the user does not exist in the system.
	// HTTP Status: 401 Unauthorized (don't reveal user existence)
	ErrUserNotFound = errors.New("user not found")

	// ErrUserExists indicates the email already exists in the system.
	// HTTP Status: 409 Conflict
	ErrUserExists = errors.New("user already exists")

	// ErrUserNotConfirmed indicates the account still awaits confirmation.
	// HTTP Status: 403 Forbidden
	ErrUserNotConfirmed = errors.New("account not confirmed")

	// ErrSessionNotFound indicates the session token does not exist.
	// HTTP Status: 401 Unauthorized
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired indicates the session token has expired.
	// HTTP Status: 401 Unauthorized
	ErrSessionExpired = errors.New("session expired")
)

// AuthError codes surfaced to clients.
const (
	CodeInvalidCredentials = "invalid_credentials"
	CodeUserExists         = "user_exists"
	CodeNotConfirmed       = "not_confirmed"
	CodeProviderFailure    = "provider_failure"
)

// AuthError is an identity-provider rejection returned as a value from
// sign-in and sign-up. It carries a human-readable message suitable for
// inline display.
type AuthError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *AuthError) Error() string {
	return e.Message
}

func authErrorFrom(err error) *AuthError {
	switch {
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrUserNotFound):
		// One message for both, to not reveal account existence.
		return &AuthError{Code: CodeInvalidCredentials, Message: "invalid email or password"}
	case errors.Is(err, ErrUserExists):
		return &AuthError{Code: CodeUserExists, Message: "an account with this email already exists"}
	case errors.Is(err, ErrUserNotConfirmed):
		return &AuthError{Code: CodeNotConfirmed, Message: "confirm your account before signing in"}
	default:
		return &AuthError{Code: CodeProviderFailure, Message: err.Error()}
	}
}
