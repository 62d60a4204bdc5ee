package domain

import "context"

// UserRow represents a credential record returned from the database.
// It includes the password hash so the Logic layer can verify credentials.
type UserRow struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	Confirmed    bool
}

// UserRepository defines the data-access contract for credential records.
// Implementations live in internal/core/repository (Core layer).
// The Logic layer depends on this interface only — never on SQL or pgx directly.
type UserRepository interface {
	// GetByEmail returns the user matching the given email.
	// Returns (nil, nil) when no user is found.
	GetByEmail(ctx context.Context, email string) (*UserRow, error)

	// GetByID returns the user with the given id, or (nil, nil) when absent.
	GetByID(ctx context.Context, id int64) (*UserRow, error)

	// ExistsByEmail returns true when a user with the given email already
	// exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Create inserts a new user and returns the generated user ID.
	Create(ctx context.Context, email, name, passwordHash string, confirmed bool) (int64, error)

	// UpdatePasswordHash replaces the stored password hash.
	UpdatePasswordHash(ctx context.Context, id int64, passwordHash string) error

	// UpdateLastLogin sets the last_login timestamp to now for the given user.
	UpdateLastLogin(ctx context.Context, id int64) error
}
