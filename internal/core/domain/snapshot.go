package domain

import "context"

// SessionSnapshot is the persisted subset of session state. The hydrated
// flag is intentionally absent: it is re-derived at every startup.
type SessionSnapshot struct {
	User          *User    `json:"user,omitempty"`
	Token         string   `json:"token,omitempty"`
	Profile       *Profile `json:"profile,omitempty"`
	Authenticated bool     `json:"authenticated"`
}

// SnapshotStore durably persists the session snapshot across restarts.
type SnapshotStore interface {
	// Load returns the saved snapshot, or (nil, nil) when none exists.
	Load(ctx context.Context) (*SessionSnapshot, error)
	Save(ctx context.Context, s *SessionSnapshot) error
	Clear(ctx context.Context) error
}
