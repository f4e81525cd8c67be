package entity

import "time"

// SessionIdentity is created once per widget session and reused for every message.
// UserID survives across visits, SessionID does not.
type SessionIdentity struct {
	UserID    string
	SessionID string
}

// ChatMessage bitta chat xabari (append-only tarix)
type ChatMessage struct {
	ID               string
	UserID           string
	Text             string
	IsUser           bool
	ExtractedContext []Mention
	Order            *OrderSnapshot
	CreatedAt        time.Time
}

// ChatRequest is what the chat transport receives.
type ChatRequest struct {
	Message   string     `json:"message"`
	UserID    string     `json:"userId"`
	SessionID string     `json:"sessionId"`
	Cart      []CartLine `json:"cartSnapshot"`
	AuthToken string     `json:"-"`
}

// ChatReply is what the chat transport answers.
// Cart is non-nil only when the assistant reports a cart it mutated itself.
type ChatReply struct {
	Text              string         `json:"replyText"`
	StructuredContext map[string]any `json:"structuredContext,omitempty"`
	Order             *OrderSnapshot `json:"orderSnapshot,omitempty"`
	Cart              *CartState     `json:"cartSnapshot,omitempty"`
}
