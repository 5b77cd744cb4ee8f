// Package audit emits per-turn events to an external history sink.
// Emission is fire-and-forget: a sink failure must never fail the turn.
package audit

import (
	"context"
	"time"
)

type EventType string

const (
	EventChatMessage   EventType = "chat_message"
	EventAIResponse    EventType = "ai_response"
	EventTicketCreated EventType = "ticket_created"
)

// Event is one audit record.
type Event struct {
	Type      EventType              `json:"type"`
	SessionID string                 `json:"sessionId"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// Sink records events. Implementations swallow their own errors (logging
// them), which is why Emit has no error return.
type Sink interface {
	Emit(ctx context.Context, event Event)
}

// NopSink discards everything; used when auditing is disabled and in tests.
type NopSink struct{}

func (NopSink) Emit(context.Context, Event) {}

// NewEvent stamps an event with the current UTC time.
func NewEvent(t EventType, sessionID string, data map[string]interface{}) Event {
	return Event{
		Type:      t,
		SessionID: sessionID,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}
