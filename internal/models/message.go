package models

import (
	"errors"
	"time"
)

// Validation errors for stored domain types.
var (
	// ErrRuleUserRequired is returned when a rule has no user id
	ErrRuleUserRequired = errors.New("rule user_id is required")
	// ErrRuleShapeRequired is returned when a rule has neither a keyword nor a flow graph
	ErrRuleShapeRequired = errors.New("rule requires a keyword or a flow graph")
)

// FlowType labels which routing path produced an action. Boundary
// failures append an "_error" suffix to the flow type that was in
// progress when the failure occurred.
type FlowType string

const (
	// FlowKeyword is the flat keyword-forward path
	FlowKeyword FlowType = "keyword"
	// FlowSwarm is the AI-classified incident escalation path
	FlowSwarm FlowType = "ai_swarm"
	// FlowGhost is the AI-classified auto-reply path
	FlowGhost FlowType = "ai_ghost"
	// FlowDefault is the fallback delegate-routing path
	FlowDefault FlowType = "ai_default"
)

// WithErrorSuffix marks a flow type as having failed at the boundary.
func (f FlowType) WithErrorSuffix() FlowType {
	return f + "_error"
}

// Message is a normalized inbound chat message. Messages are
// ephemeral; the engine never persists them directly.
type Message struct {
	SenderID    string    `json:"sender_id"`
	RecipientID string    `json:"recipient_id"`
	Text        string    `json:"text"`
	ReceivedAt  time.Time `json:"received_at"`
}

// Classification is the result of running a message through a
// classifier: a coarse domain label plus an urgency score from 0 to 10.
type Classification struct {
	Domain       string `json:"domain"`
	UrgencyScore int    `json:"urgency_score"`
}

// ActionResult is what the engine returns to its caller after a
// dispatch, and what gets surfaced back through the webhook response.
type ActionResult struct {
	Text     string                 `json:"text"`
	FlowType FlowType               `json:"flow_type"`
	Meta     map[string]interface{} `json:"meta,omitempty"`
}

// LogEvent is one append-only relay log record. Events are write-once:
// the engine never updates or deletes them.
type LogEvent struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	SenderID     string    `json:"sender_id"`
	DelegateID   string    `json:"delegate_id,omitempty"`
	MessageText  string    `json:"message_text"`
	Domain       string    `json:"domain,omitempty"`
	UrgencyScore int       `json:"urgency_score,omitempty"`
	ActionTaken  string    `json:"action_taken"`
	FlowType     FlowType  `json:"flow_type"`
	LoggedAt     time.Time `json:"logged_at"`
}
