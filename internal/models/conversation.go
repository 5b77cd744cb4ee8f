package models

import "time"

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a conversation, append-only within a session.
type Message struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// ConversationSession is the per-conversation state owned by the session
// manager: ordered replayable history plus the running slot record.
type ConversationSession struct {
	ID        string     `json:"id"`
	Messages  []Message  `json:"messages"`
	Slots     SlotRecord `json:"slots"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Complete reports whether every ticket field has been confirmed.
func (s *ConversationSession) Complete() bool {
	return s.Slots.Complete()
}

// Append records a turn at the end of the session history.
func (s *ConversationSession) Append(role Role, text string, at time.Time) {
	s.Messages = append(s.Messages, Message{Role: role, Text: text, Timestamp: at})
	s.UpdatedAt = at
}
