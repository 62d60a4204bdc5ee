package v1

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/vinculo/crm-service/internal/core/domain"
)

type memUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*domain.UserRow
	err    error

	lastLoginCalls int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{nextID: 1, users: map[int64]*domain.UserRow{}}
}

func (r *memUserRepo) add(email, name, password string, confirmed bool) *domain.UserRow {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	row := &domain.UserRow{
		ID:           r.nextID,
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Confirmed:    confirmed,
	}
	r.users[row.ID] = row
	r.nextID++
	return row
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.UserRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, row := range r.users {
		if row.Email == email {
			cp := *row
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) GetByID(_ context.Context, id int64) (*domain.UserRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *row
	return &cp, nil
}

func (r *memUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	row, err := r.GetByEmail(ctx, email)
	return row != nil, err
}

func (r *memUserRepo) Create(_ context.Context, email, name, passwordHash string, confirmed bool) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	id := r.nextID
	r.nextID++
	r.users[id] = &domain.UserRow{ID: id, Email: email, Name: name, PasswordHash: passwordHash, Confirmed: confirmed}
	return id, nil
}

func (r *memUserRepo) UpdatePasswordHash(_ context.Context, id int64, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if row, ok := r.users[id]; ok {
		row.PasswordHash = passwordHash
	}
	return nil
}

func (r *memUserRepo) UpdateLastLogin(context.Context, int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastLoginCalls++
	return nil
}

type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]struct {
		userID    int64
		expiresAt time.Time
	}
	users *memUserRepo
}

func newMemSessionRepo(users *memUserRepo) *memSessionRepo {
	return &memSessionRepo{
		sessions: map[string]struct {
			userID    int64
			expiresAt time.Time
		}{},
		users: users,
	}
}

func (r *memSessionRepo) Create(_ context.Context, userID int64, token string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[token] = struct {
		userID    int64
		expiresAt time.Time
	}{userID, expiresAt}
	return nil
}

func (r *memSessionRepo) GetUserByToken(ctx context.Context, token string) (*domain.SessionRow, error) {
	r.mu.Lock()
	s, ok := r.sessions[token]
	r.mu.Unlock()
	if !ok {
		return nil, nil
	}
	user, err := r.users.GetByID(ctx, s.userID)
	if err != nil || user == nil {
		return nil, err
	}
	return &domain.SessionRow{UserID: user.ID, Email: user.Email, Name: user.Name, ExpiresAt: s.expiresAt}, nil
}

func (r *memSessionRepo) DeleteByToken(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, token)
	return nil
}

func (r *memSessionRepo) DeleteByUserID(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for token, s := range r.sessions {
		if s.userID == userID {
			delete(r.sessions, token)
		}
	}
	return nil
}

func (r *memSessionRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *memSessionRepo) expire(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[token]; ok {
		s.expiresAt = time.Now().Add(-time.Minute)
		r.sessions[token] = s
	}
}

func newTestProvider(cfg PasswordProviderConfig) (*PasswordProvider, *memUserRepo, *memSessionRepo) {
	users := newMemUserRepo()
	sessions := newMemSessionRepo(users)
	return NewPasswordProvider(users, sessions, cfg), users, sessions
}

func TestSignInWithPassword(t *testing.T) {
	provider, users, _ := newTestProvider(PasswordProviderConfig{TokenTTL: time.Hour})
	users.add("ana@acme.com", "Ana", "secret123", true)

	session, err := provider.SignInWithPassword(context.Background(), "ana@acme.com", "secret123")
	if err != nil {
		t.Fatalf("SignInWithPassword: %v", err)
	}
	if session.User == nil || session.User.Email != "ana@acme.com" {
		t.Errorf("unexpected user: %+v", session.User)
	}
	if session.Token == "" {
		t.Error("expected an issued token")
	}
	if !session.ExpiresAt.After(time.Now()) {
		t.Error("expected a future expiry")
	}
	if users.lastLoginCalls != 1 {
		t.Errorf("expected last login touch, calls=%d", users.lastLoginCalls)
	}
}

func TestSignInWrongPassword(t *testing.T) {
	provider, users, _ := newTestProvider(PasswordProviderConfig{TokenTTL: time.Hour})
	users.add("ana@acme.com", "Ana", "secret123", true)

	_, err := provider.SignInWithPassword(context.Background(), "ana@acme.com", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestSignInUnknownUser(t *testing.T) {
	provider, _, _ := newTestProvider(PasswordProviderConfig{TokenTTL: time.Hour})

	_, err := provider.SignInWithPassword(context.Background(), "nobody@acme.com", "whatever")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestSignInUnconfirmedUser(t *testing.T) {
	provider, users, _ := newTestProvider(PasswordProviderConfig{TokenTTL: time.Hour})
	users.add("ana@acme.com", "Ana", "secret123", false)

	_, err := provider.SignInWithPassword(context.Background(), "ana@acme.com", "secret123")
	if !errors.Is(err, ErrUserNotConfirmed) {
		t.Errorf("expected ErrUserNotConfirmed, got %v", err)
	}
}

func TestSignUpIssuesSession(t *testing.T) {
	provider, _, _ := newTestProvider(PasswordProviderConfig{TokenTTL: time.Hour})

	session, err := provider.SignUp(context.Background(), "new@acme.com", "password1", "New")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if session == nil || session.Token == "" {
		t.Fatalf("expected an immediate session, got %+v", session)
	}

	// The fresh account can sign in with its password.
	if _, err := provider.SignInWithPassword(context.Background(), "new@acme.com", "password1"); err != nil {
		t.Errorf("sign-in after sign-up: %v", err)
	}
}

func TestSignUpDuplicateEmail(t *testing.T) {
	provider, users, _ := newTestProvider(PasswordProviderConfig{TokenTTL: time.Hour})
	users.add("ana@acme.com", "Ana", "secret123", true)

	_, err := provider.SignUp(context.Background(), "ana@acme.com", "password1", "Ana Again")
	if !errors.Is(err, ErrUserExists) {
		t.Errorf("expected ErrUserExists, got %v", err)
	}
}

func TestSignUpWithConfirmationWithholdsSession(t *testing.T) {
	provider, users, _ := newTestProvider(PasswordProviderConfig{TokenTTL: time.Hour, RequireConfirmation: true})

	session, err := provider.SignUp(context.Background(), "new@acme.com", "password1", "New")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if session != nil {
		t.Fatalf("expected no session pending confirmation, got %+v", session)
	}

	// The account exists but is locked until confirmed.
	row, err := users.GetByEmail(context.Background(), "new@acme.com")
	if err != nil || row == nil {
		t.Fatalf("account not created: row=%v err=%v", row, err)
	}
	if row.Confirmed {
		t.Error("account must start unconfirmed")
	}
	if _, err := provider.SignInWithPassword(context.Background(), "new@acme.com", "password1"); !errors.Is(err, ErrUserNotConfirmed) {
		t.Errorf("expected ErrUserNotConfirmed, got %v", err)
	}
}

func TestCurrentSessionRoundTrip(t *testing.T) {
	provider, users, _ := newTestProvider(PasswordProviderConfig{TokenTTL: time.Hour})
	users.add("ana@acme.com", "Ana", "secret123", true)

	issued, err := provider.SignInWithPassword(context.Background(), "ana@acme.com", "secret123")
	if err != nil {
		t.Fatalf("SignInWithPassword: %v", err)
	}

	current, err := provider.CurrentSession(context.Background(), issued.Token)
	if err != nil {
		t.Fatalf("CurrentSession: %v", err)
	}
	if current == nil || current.User.ID != issued.User.ID {
		t.Errorf("expected the issued session back, got %+v", current)
	}
}

func TestCurrentSessionUnknownOrEmptyToken(t *testing.T) {
	provider, _, _ := newTestProvider(PasswordProviderConfig{TokenTTL: time.Hour})

	for _, token := range []string{"", "no-such-token"} {
		session, err := provider.CurrentSession(context.Background(), token)
		if err != nil {
			t.Fatalf("CurrentSession(%q): %v", token, err)
		}
		if session != nil {
			t.Errorf("token %q: expected nil session, got %+v", token, session)
		}
	}
}

func TestCurrentSessionReapsExpired(t *testing.T) {
	provider, users, sessions := newTestProvider(PasswordProviderConfig{TokenTTL: time.Hour})
	users.add("ana@acme.com", "Ana", "secret123", true)

	issued, err := provider.SignInWithPassword(context.Background(), "ana@acme.com", "secret123")
	if err != nil {
		t.Fatalf("SignInWithPassword: %v", err)
	}
	sessions.expire(issued.Token)

	current, err := provider.CurrentSession(context.Background(), issued.Token)
	if err != nil {
		t.Fatalf("CurrentSession: %v", err)
	}
	if current != nil {
		t.Errorf("expected expired session to be invalid, got %+v", current)
	}
	if sessions.count() != 0 {
		t.Errorf("expected expired session to be deleted, have %d", sessions.count())
	}
}

func TestSignOutInvalidatesToken(t *testing.T) {
	provider, users, _ := newTestProvider(PasswordProviderConfig{TokenTTL: time.Hour})
	users.add("ana@acme.com", "Ana", "secret123", true)

	issued, err := provider.SignInWithPassword(context.Background(), "ana@acme.com", "secret123")
	if err != nil {
		t.Fatalf("SignInWithPassword: %v", err)
	}
	if err := provider.SignOut(context.Background(), issued.Token); err != nil {
		t.Fatalf("SignOut: %v", err)
	}

	current, err := provider.CurrentSession(context.Background(), issued.Token)
	if err != nil {
		t.Fatalf("CurrentSession: %v", err)
	}
	if current != nil {
		t.Errorf("expected invalidated token, got %+v", current)
	}

	// Signing out an already-gone token stays silent.
	if err := provider.SignOut(context.Background(), issued.Token); err != nil {
		t.Errorf("repeat SignOut: %v", err)
	}
}

func TestUpdatePasswordInvalidatesAllSessions(t *testing.T) {
	provider, users, sessions := newTestProvider(PasswordProviderConfig{TokenTTL: time.Hour})
	users.add("ana@acme.com", "Ana", "secret123", true)

	first, err := provider.SignInWithPassword(context.Background(), "ana@acme.com", "secret123")
	if err != nil {
		t.Fatalf("first sign-in: %v", err)
	}
	if _, err := provider.SignInWithPassword(context.Background(), "ana@acme.com", "secret123"); err != nil {
		t.Fatalf("second sign-in: %v", err)
	}

	var notified bool
	provider.OnSessionChange(func(s *domain.AuthSession) {
		if s == nil {
			notified = true
		}
	})

	if err := provider.UpdatePassword(context.Background(), first.Token, "newsecret1"); err != nil {
		t.Fatalf("UpdatePassword: %v", err)
	}
	if sessions.count() != 0 {
		t.Errorf("expected every session invalidated, have %d", sessions.count())
	}
	if !notified {
		t.Error("expected a nil session-change notification")
	}

	if _, err := provider.SignInWithPassword(context.Background(), "ana@acme.com", "secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("old password must stop working, got %v", err)
	}
	if _, err := provider.SignInWithPassword(context.Background(), "ana@acme.com", "newsecret1"); err != nil {
		t.Errorf("new password must work: %v", err)
	}
}

func TestUpdatePasswordWithoutSession(t *testing.T) {
	provider, _, _ := newTestProvider(PasswordProviderConfig{TokenTTL: time.Hour})

	err := provider.UpdatePassword(context.Background(), "no-such-token", "newsecret1")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestRequestPasswordResetDoesNotRevealExistence(t *testing.T) {
	provider, users, _ := newTestProvider(PasswordProviderConfig{TokenTTL: time.Hour})
	users.add("ana@acme.com", "Ana", "secret123", true)

	if err := provider.RequestPasswordReset(context.Background(), "ana@acme.com"); err != nil {
		t.Errorf("known email: %v", err)
	}
	if err := provider.RequestPasswordReset(context.Background(), "nobody@acme.com"); err != nil {
		t.Errorf("unknown email: %v", err)
	}
}
