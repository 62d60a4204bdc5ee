package domain

import "time"

// Profile is the dashboard-facing view of a user, stored separately from
// the credential record. Keyed by the owning user's id.
type Profile struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Company   string    `json:"company"`
	Role      string    `json:"role"`
	AvatarURL string    `json:"avatar_url"`
	Active    bool      `json:"active"`
	Deleted   bool      `json:"deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateProfile struct {
	ID        int64  `json:"id" binding:"required"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Company   string `json:"company"`
	Role      string `json:"role"`
	AvatarURL string `json:"avatar_url"`
}

// ProfilePatch is a shallow merge; nil fields are left untouched.
type ProfilePatch struct {
	Name      *string `json:"name,omitempty"`
	Company   *string `json:"company,omitempty"`
	Role      *string `json:"role,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}
