package domain

import "time"

// Chat is one messaging conversation with a lead.
type Chat struct {
	ID            int64      `json:"id"`
	LeadID        int64      `json:"lead_id"`
	Channel       string     `json:"channel"`
	UnreadCount   int        `json:"unread_count"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
	Active        bool       `json:"active"`
	Deleted       bool       `json:"deleted"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type CreateChat struct {
	LeadID  int64  `json:"lead_id" binding:"required"`
	Channel string `json:"channel"`
}

type ChatPatch struct {
	UnreadCount   *int       `json:"unread_count,omitempty"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
}

// Message directions, from the business's point of view.
const (
	MessageInbound  = "inbound"
	MessageOutbound = "outbound"
)

// Message is a single entry inside a chat.
type Message struct {
	ID        int64     `json:"id"`
	ChatID    int64     `json:"chat_id"`
	Direction string    `json:"direction"`
	Body      string    `json:"body"`
	SentAt    time.Time `json:"sent_at"`
	Active    bool      `json:"active"`
	Deleted   bool      `json:"deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateMessage struct {
	ChatID    int64  `json:"chat_id" binding:"required"`
	Direction string `json:"direction" binding:"required,oneof=inbound outbound"`
	Body      string `json:"body" binding:"required"`
}

type MessagePatch struct {
	Body *string `json:"body,omitempty"`
}
