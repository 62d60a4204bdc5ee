package domain

import "time"

// AgentConfig configures one automated conversation agent.
type AgentConfig struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Prompt      string    `json:"prompt"`
	Model       string    `json:"model"`
	Temperature float64   `json:"temperature"`
	Enabled     bool      `json:"enabled"`
	Active      bool      `json:"active"`
	Deleted     bool      `json:"deleted"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreateAgentConfig struct {
	Name        string  `json:"name" binding:"required"`
	Prompt      string  `json:"prompt"`
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	Enabled     bool    `json:"enabled"`
}

type AgentConfigPatch struct {
	Name        *string  `json:"name,omitempty"`
	Prompt      *string  `json:"prompt,omitempty"`
	Model       *string  `json:"model,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	Enabled     *bool    `json:"enabled,omitempty"`
}

// Campaign is an outbound marketing campaign with delivery counters.
type Campaign struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Status     string    `json:"status"`
	SentCount  int       `json:"sent_count"`
	OpenCount  int       `json:"open_count"`
	ReplyCount int       `json:"reply_count"`
	Active     bool      `json:"active"`
	Deleted    bool      `json:"deleted"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type CreateCampaign struct {
	Name   string `json:"name" binding:"required"`
	Status string `json:"status"`
}

type CampaignPatch struct {
	Name       *string `json:"name,omitempty"`
	Status     *string `json:"status,omitempty"`
	SentCount  *int    `json:"sent_count,omitempty"`
	OpenCount  *int    `json:"open_count,omitempty"`
	ReplyCount *int    `json:"reply_count,omitempty"`
}
