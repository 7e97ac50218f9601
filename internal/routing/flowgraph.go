package routing

import (
	"relay-router/internal/models"
)

// Decision is what a flow graph evaluation resolves to.
type Decision int

const (
	// DecisionDefaultRoute falls through to delegate routing
	DecisionDefaultRoute Decision = iota
	// DecisionEscalate triggers the swarm protocol
	DecisionEscalate
	// DecisionAutoReply triggers a ghost-mode reply to the sender
	DecisionAutoReply
)

// String returns the decision name for logging.
func (d Decision) String() string {
	switch d {
	case DecisionEscalate:
		return "escalate"
	case DecisionAutoReply:
		return "auto_reply"
	default:
		return "default_route"
	}
}

// Decision thresholds. Both bounds are exclusive: a score of exactly 7
// does not escalate and a score of exactly 4 does not auto-reply.
const (
	escalateAbove  = 7
	autoReplyBelow = 4
)

// Evaluation is the outcome of interpreting a flow graph against a
// classification.
type Evaluation struct {
	Decision       Decision
	NodesProcessed int
}

// FlowGraphEvaluator interprets stored flow graphs. The editor's edge
// topology is recorded but carries no conditional semantics: the
// decision depends on the classification alone, and the node count is
// reported for logging only.
type FlowGraphEvaluator struct{}

func NewFlowGraphEvaluator() *FlowGraphEvaluator {
	return &FlowGraphEvaluator{}
}

// Evaluate maps a classification onto a decision. A nil or node-less
// graph is treated as zero nodes processed and follows the same
// decision table, which for a neutral classification means the
// default route.
func (e *FlowGraphEvaluator) Evaluate(graph *models.FlowGraph, c models.Classification) Evaluation {
	eval := Evaluation{Decision: DecisionDefaultRoute}
	if graph != nil {
		eval.NodesProcessed = len(graph.Nodes)
	}

	switch {
	case c.UrgencyScore > escalateAbove && c.Domain == DomainP1Incident:
		eval.Decision = DecisionEscalate
	case c.UrgencyScore < autoReplyBelow && c.Domain == DomainInfoRequest:
		eval.Decision = DecisionAutoReply
	}

	return eval
}
