package v1

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"github.com/vinculo/crm-service/internal/core/domain"
	"github.com/vinculo/crm-service/middleware"
	pkgzerolog "github.com/vinculo/crm-service/pkg/logger/zerolog"
)

// PasswordProviderConfig tunes the password identity provider.
type PasswordProviderConfig struct {
	TokenTTL time.Duration
	// RequireConfirmation makes SignUp return without a session until the
	// account is confirmed out of band.
	RequireConfirmation bool
}

// PasswordProvider implements domain.Provider with password credentials.
// It depends on repository interfaces (injected via constructor) and
// MUST NOT access the database or SQL directly.
type PasswordProvider struct {
	users    domain.UserRepository
	sessions domain.SessionRepository
	cfg      PasswordProviderConfig

	mu   sync.Mutex
	subs []func(*domain.AuthSession)
}

// NewPasswordProvider creates a provider over the given repositories.
func NewPasswordProvider(users domain.UserRepository, sessions domain.SessionRepository, cfg PasswordProviderConfig) *PasswordProvider {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	return &PasswordProvider{
		users:    users,
		sessions: sessions,
		cfg:      cfg,
	}
}

// SignInWithPassword authenticates a user and issues a session token.
func (p *PasswordProvider) SignInWithPassword(ctx context.Context, email, password string) (*domain.AuthSession, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.sign_in", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	row, err := p.users.GetByEmail(ctx, email)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query user %q: %w", email, err)
	}
	if row == nil {
		span.SetAttributes(attribute.Bool("auth.success", false))
		span.AddEvent("authentication.failed")
		return nil, fmt.Errorf("authenticate user %q: %w", email, ErrUserNotFound)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(password)); err != nil {
		span.SetAttributes(attribute.Bool("auth.success", false))
		span.AddEvent("authentication.failed")
		return nil, fmt.Errorf("authenticate user %q: %w", email, ErrInvalidCredentials)
	}

	if !row.Confirmed {
		span.SetAttributes(attribute.Bool("auth.success", false))
		return nil, fmt.Errorf("authenticate user %q: %w", email, ErrUserNotConfirmed)
	}

	// Update last_login timestamp (best-effort, don't fail sign-in)
	if updateErr := p.users.UpdateLastLogin(ctx, row.ID); updateErr != nil {
		span.RecordError(fmt.Errorf("update last_login: %w", updateErr))
	}

	session, err := p.issueSession(ctx, row)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int64("user.id", row.ID),
		attribute.Bool("auth.success", true),
	)
	span.AddEvent("user.authenticated")

	return session, nil
}

// SignUp registers a new user. With confirmation required, no session is
// issued and (nil, nil) is returned.
func (p *PasswordProvider) SignUp(ctx context.Context, email, password, name string) (*domain.AuthSession, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.sign_up", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	exists, err := p.users.ExistsByEmail(ctx, email)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		span.SetAttributes(attribute.Bool("registration.success", false))
		return nil, fmt.Errorf("register user %q: %w", email, ErrUserExists)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	confirmed := !p.cfg.RequireConfirmation
	userID, err := p.users.Create(ctx, email, name, string(passwordHash), confirmed)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("insert user: %w", err)
	}

	span.SetAttributes(
		attribute.Int64("user.id", userID),
		attribute.Bool("registration.success", true),
	)
	span.AddEvent("user.registered")

	if p.cfg.RequireConfirmation {
		// Valid non-error outcome: account created, session pending
		// confirmation.
		return nil, nil
	}

	return p.issueSession(ctx, &domain.UserRow{ID: userID, Email: email, Name: name})
}

// SignOut invalidates the session with the given token.
func (p *PasswordProvider) SignOut(ctx context.Context, token string) error {
	if err := p.sessions.DeleteByToken(ctx, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// CurrentSession validates a previously issued token.
// Returns (nil, nil) when the token is unknown or expired.
func (p *PasswordProvider) CurrentSession(ctx context.Context, token string) (*domain.AuthSession, error) {
	if token == "" {
		return nil, nil
	}

	row, err := p.sessions.GetUserByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	if row == nil {
		return nil, nil
	}
	if time.Now().After(row.ExpiresAt) {
		// Expired sessions are reaped lazily here.
		if delErr := p.sessions.DeleteByToken(ctx, token); delErr != nil {
			pkgzerolog.FromContext(ctx).Warn().Err(delErr).Msg("Failed to delete expired session")
		}
		return nil, nil
	}

	return &domain.AuthSession{
		User:      &domain.User{ID: row.UserID, Email: row.Email, Name: row.Name},
		Token:     token,
		ExpiresAt: row.ExpiresAt,
	}, nil
}

// OnSessionChange registers a callback for out-of-band session changes.
func (p *PasswordProvider) OnSessionChange(fn func(*domain.AuthSession)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subs = append(p.subs, fn)
}

// RequestPasswordReset acknowledges a reset request. Delivery of the reset
// message is owned by an external channel; unknown emails are accepted
// silently so the endpoint does not reveal account existence.
func (p *PasswordProvider) RequestPasswordReset(ctx context.Context, email string) error {
	row, err := p.users.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("query user %q: %w", email, err)
	}
	if row == nil {
		return nil
	}
	pkgzerolog.FromContext(ctx).Info().Int64("user_id", row.ID).Msg("Password reset requested")
	return nil
}

// UpdatePassword replaces the password of the session's owner and
// invalidates every other session of that user. Subscribers are notified
// that their sessions are gone.
func (p *PasswordProvider) UpdatePassword(ctx context.Context, token, newPassword string) error {
	session, err := p.CurrentSession(ctx, token)
	if err != nil {
		return err
	}
	if session == nil {
		return fmt.Errorf("update password: %w", ErrSessionNotFound)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := p.users.UpdatePasswordHash(ctx, session.User.ID, string(passwordHash)); err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}
	if err := p.sessions.DeleteByUserID(ctx, session.User.ID); err != nil {
		return fmt.Errorf("invalidate sessions: %w", err)
	}

	p.emit(nil)
	return nil
}

func (p *PasswordProvider) issueSession(ctx context.Context, row *domain.UserRow) (*domain.AuthSession, error) {
	token := uuid.NewString()
	expiresAt := time.Now().Add(p.cfg.TokenTTL)

	if err := p.sessions.Create(ctx, row.ID, token, expiresAt); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &domain.AuthSession{
		User:      &domain.User{ID: row.ID, Email: row.Email, Name: row.Name},
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

func (p *PasswordProvider) emit(session *domain.AuthSession) {
	p.mu.Lock()
	subs := make([]func(*domain.AuthSession), len(p.subs))
	copy(subs, p.subs)
	p.mu.Unlock()

	for _, fn := range subs {
		fn(session)
	}
}
