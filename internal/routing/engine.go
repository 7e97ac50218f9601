package routing

import (
	"context"
	"fmt"
	"time"

	"relay-router/internal/common/logging"
	"relay-router/internal/gateway"
	"relay-router/internal/models"
)

// Engine orchestrates routing for one message: rule lookup, lazy
// expiry, flow selection, and dispatch. The engine never returns an
// error; internal failures collapse to OutcomeError and the boundary
// keeps acknowledging.
type Engine struct {
	store      RuleStore
	events     EventLog
	dispatcher *Dispatcher
	guard      *ExpiryGuard
	evaluator  *FlowGraphEvaluator
	classifier Classifier
	now        func() time.Time
}

// NewEngine wires an engine from its collaborators. A nil classifier
// selects the default keyword classifier.
func NewEngine(store RuleStore, events EventLog, gw gateway.Gateway, classifier Classifier) *Engine {
	if classifier == nil {
		classifier = NewKeywordClassifier()
	}
	return &Engine{
		store:      store,
		events:     events,
		dispatcher: NewDispatcher(gw, events),
		guard:      NewExpiryGuard(store),
		evaluator:  NewFlowGraphEvaluator(),
		classifier: classifier,
		now:        time.Now,
	}
}

// Route processes one inbound message end to end. The returned result
// is non-nil only when the outcome is OutcomeDispatched.
func (e *Engine) Route(ctx context.Context, msg models.Message) (result *models.ActionResult, outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("routing panic contained", fmt.Errorf("panic: %v", r),
				logging.String("recipient_id", msg.RecipientID),
			)
			e.recordFailure(ctx, msg, fmt.Sprintf("panic: %v", r))
			result, outcome = nil, OutcomeError
		}
	}()

	rule, err := e.store.FindActiveRule(ctx, msg.RecipientID)
	if err != nil {
		// An unreachable store is treated as "no rule found": no
		// event log write, nothing surfaced to the sender.
		logging.Error("rule lookup failed", err,
			logging.String("recipient_id", msg.RecipientID),
		)
		return nil, OutcomeNoRule
	}
	if rule == nil {
		return nil, OutcomeNoRule
	}

	if e.guard.Check(ctx, rule, e.now()) {
		return nil, OutcomeExpired
	}

	if rule.HasFlowGraph() {
		return e.routeGraph(ctx, rule, msg)
	}
	return e.routeKeyword(ctx, rule, msg)
}

// routeGraph classifies the message and lets the flow graph decide.
func (e *Engine) routeGraph(ctx context.Context, rule *models.Rule, msg models.Message) (*models.ActionResult, Outcome) {
	c, err := e.classifier.Classify(msg.Text)
	if err != nil {
		logging.Warn("classifier failed, using neutral classification",
			logging.String("rule_id", rule.ID),
			logging.Err(err),
		)
		c = defaultClassification()
	}

	eval := e.evaluator.Evaluate(rule.FlowGraph, c)
	logging.Debug("flow graph evaluated",
		logging.String("rule_id", rule.ID),
		logging.String("decision", eval.Decision.String()),
		logging.String("domain", c.Domain),
		logging.Int("urgency_score", c.UrgencyScore),
		logging.Int("nodes_processed", eval.NodesProcessed),
	)

	var kind ActionKind
	switch eval.Decision {
	case DecisionEscalate:
		kind = ActionEscalate
	case DecisionAutoReply:
		kind = ActionAutoReply
	default:
		kind = ActionDefaultRoute
	}

	result := e.dispatcher.Dispatch(ctx, kind, rule, msg, c)
	if result == nil {
		return nil, OutcomeError
	}
	return result, OutcomeDispatched
}

// routeKeyword handles flat rules. A non-matching keyword is a normal
// terminal state, not a failure.
func (e *Engine) routeKeyword(ctx context.Context, rule *models.Rule, msg models.Message) (*models.ActionResult, Outcome) {
	result := e.dispatcher.Dispatch(ctx, ActionKeywordForward, rule, msg, models.Classification{})
	if result == nil {
		return nil, OutcomeNoMatch
	}
	return result, OutcomeDispatched
}

// recordFailure makes a best-effort log entry for a contained failure.
// It must never panic or fail loudly itself.
func (e *Engine) recordFailure(ctx context.Context, msg models.Message, action string) {
	defer func() { _ = recover() }()
	event := &models.LogEvent{
		UserID:      msg.RecipientID,
		SenderID:    msg.SenderID,
		MessageText: msg.Text,
		ActionTaken: action,
		FlowType:    models.FlowDefault.WithErrorSuffix(),
		LoggedAt:    e.now().UTC(),
	}
	if err := e.events.AppendLogEvent(ctx, event); err != nil {
		logging.Warn("failure log append failed", logging.Err(err))
	}
}
