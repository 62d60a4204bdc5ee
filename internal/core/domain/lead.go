package domain

import "time"

// Lead is a sales contact moving through the pipeline.
type Lead struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Company   string    `json:"company"`
	Source    string    `json:"source"`
	Notes     string    `json:"notes"`
	StageID   *int64    `json:"stage_id,omitempty"`
	StatusID  *int64    `json:"status_id,omitempty"`
	OwnerID   *int64    `json:"owner_id,omitempty"`
	Active    bool      `json:"active"`
	Deleted   bool      `json:"deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateLead carries the caller-supplied fields for a new lead. Identity,
// audit and tombstone columns are assigned by the backend.
type CreateLead struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Company  string `json:"company"`
	Source   string `json:"source"`
	Notes    string `json:"notes"`
	StageID  *int64 `json:"stage_id,omitempty"`
	StatusID *int64 `json:"status_id,omitempty"`
	OwnerID  *int64 `json:"owner_id,omitempty"`
}

// LeadPatch is a partial update; nil fields mean "no change".
type LeadPatch struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Company  *string `json:"company,omitempty"`
	Source   *string `json:"source,omitempty"`
	Notes    *string `json:"notes,omitempty"`
	StageID  *int64  `json:"stage_id,omitempty"`
	StatusID *int64  `json:"status_id,omitempty"`
	OwnerID  *int64  `json:"owner_id,omitempty"`
}
