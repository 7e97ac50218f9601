// Package routing implements the rule evaluation and action-dispatch
// engine for out-of-office handover.
//
// For each inbound message the engine decides whether a handover rule
// applies, whether it has lazily expired (triggering self-healing
// deactivation), and which action runs. The system consists of:
//
// 1. Engine: the orchestrator processing one message at a time
// 2. ExpiryGuard: lazy expiry detection with self-healing deactivation
// 3. Classifier: maps message text to a domain and urgency score
// 4. FlowGraphEvaluator: decides an action for graph-based rules
// 5. Dispatcher: executes the chosen action and appends the log event
//
// The engine fails open toward the end user: collaborator failures
// degrade to "no action" or default routing, never to an error
// escaping the boundary.
//
// Example usage:
//
//	engine := routing.NewEngine(store, store, gatewayClient, nil)
//
//	result, outcome := engine.Route(ctx, models.Message{
//		SenderID:    "sender-1",
//		RecipientID: "away-user",
//		Text:        "Question about Billing",
//	})
//	if outcome == routing.OutcomeDispatched {
//		log.Printf("dispatched %s", result.FlowType)
//	}
package routing

import (
	"context"

	"relay-router/internal/models"
)

// RuleStore is the persistence surface the engine reads rules from
// and self-heals through. Implementations must treat deactivation of
// an already inactive rule as a no-op.
type RuleStore interface {
	// FindActiveRule returns the active rule for a user, or nil when
	// none exists.
	FindActiveRule(ctx context.Context, userID string) (*models.Rule, error)

	// DeactivateRule flips a rule's is_active flag to false.
	DeactivateRule(ctx context.Context, id string) error
}

// EventLog receives append-only relay log events. Append failures are
// swallowed by the engine; losing a log entry never blocks a message.
type EventLog interface {
	AppendLogEvent(ctx context.Context, event *models.LogEvent) error
}

// Classifier maps message text to a classification. Implementations
// must be deterministic for a given text. The default is the keyword
// classifier; a real model can replace it without touching the engine
// or the dispatcher.
type Classifier interface {
	Classify(text string) (models.Classification, error)
}

// ActionKind enumerates the four mutually exclusive dispatch actions.
type ActionKind int

const (
	// ActionKeywordForward forwards a flat-rule keyword match to the delegate
	ActionKeywordForward ActionKind = iota
	// ActionEscalate runs the swarm protocol for a P1 incident
	ActionEscalate
	// ActionAutoReply answers the sender directly in ghost mode
	ActionAutoReply
	// ActionDefaultRoute records delegate routing with no outward call
	ActionDefaultRoute
)

// String returns the action kind name for logging.
func (k ActionKind) String() string {
	switch k {
	case ActionKeywordForward:
		return "keyword_forward"
	case ActionEscalate:
		return "escalate"
	case ActionAutoReply:
		return "auto_reply"
	case ActionDefaultRoute:
		return "default_route"
	default:
		return "unknown"
	}
}

// Outcome reports how the engine terminated for one message. It lets
// the boundary distinguish "no rule" from "expired" from "keyword did
// not match" without any of them being errors.
type Outcome int

const (
	// OutcomeNoRule means no active rule exists for the recipient
	OutcomeNoRule Outcome = iota
	// OutcomeExpired means the rule had lazily expired; self-healing ran
	OutcomeExpired
	// OutcomeNoMatch means a flat rule's keyword was absent from the text
	OutcomeNoMatch
	// OutcomeDispatched means an action ran and a result was produced
	OutcomeDispatched
	// OutcomeError means an internal failure was contained at the boundary
	OutcomeError
)

// String returns the outcome name for logging and responses.
func (o Outcome) String() string {
	switch o {
	case OutcomeNoRule:
		return "no_rule"
	case OutcomeExpired:
		return "expired"
	case OutcomeNoMatch:
		return "no_match"
	case OutcomeDispatched:
		return "dispatched"
	case OutcomeError:
		return "error"
	default:
		return "unknown"
	}
}
