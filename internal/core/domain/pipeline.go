package domain

import "time"

// Stage is one column of the lead pipeline board.
type Stage struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Position  int       `json:"position"`
	Color     string    `json:"color"`
	Active    bool      `json:"active"`
	Deleted   bool      `json:"deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateStage struct {
	Name     string `json:"name" binding:"required"`
	Position int    `json:"position"`
	Color    string `json:"color"`
}

type StagePatch struct {
	Name     *string `json:"name,omitempty"`
	Position *int    `json:"position,omitempty"`
	Color    *string `json:"color,omitempty"`
}

// LeadStatus labels a lead independently of its stage (e.g. hot, cold).
type LeadStatus struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Active    bool      `json:"active"`
	Deleted   bool      `json:"deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateLeadStatus struct {
	Name  string `json:"name" binding:"required"`
	Color string `json:"color"`
}

type LeadStatusPatch struct {
	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
}
