package domain

import (
	"context"
	"time"
)

// User is the authenticated identity exposed to the rest of the service.
type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// AuthSession pairs an identity with its live session token.
type AuthSession struct {
	User      *User     `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Provider is the identity-provider surface the session container consumes.
// A nil session from SignUp with a nil error means the account needs an
// out-of-band confirmation step before it can sign in.
type Provider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*AuthSession, error)
	SignUp(ctx context.Context, email, password, name string) (*AuthSession, error)
	SignOut(ctx context.Context, token string) error

	// CurrentSession validates a previously issued token.
	// Returns (nil, nil) when the token is unknown or expired.
	CurrentSession(ctx context.Context, token string) (*AuthSession, error)

	// OnSessionChange registers a callback for out-of-band session changes
	// (external sign-out, credential rotation). A nil session means the
	// session is gone.
	OnSessionChange(fn func(*AuthSession))

	RequestPasswordReset(ctx context.Context, email string) error
	UpdatePassword(ctx context.Context, token, newPassword string) error
}

// LoginRequest is the sign-in payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest is the sign-up payload.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name"`
}

// AuthResponse is returned by login and register on success.
type AuthResponse struct {
	Token string `json:"token,omitempty"`
	User  *User  `json:"user,omitempty"`
	// ConfirmationRequired is set when registration succeeded but no
	// session was established yet.
	ConfirmationRequired bool `json:"confirmation_required,omitempty"`
}
