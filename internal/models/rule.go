// Package models defines the core domain types for the relay router:
// handover rules, flow graphs, inbound messages, classifications, and
// the append-only relay log records.
package models

import (
	"time"
)

// Rule represents a handover rule describing how to treat messages
// while a user is away.
//
// A rule is either "flat" (Keyword and DelegateID set, FlowGraph nil)
// or "graph-based" (FlowGraph set). The engine prefers the graph form
// when present. At most one active rule exists per user at any time;
// the storage layer enforces that invariant, not the engine.
type Rule struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	Keyword        string     `json:"keyword,omitempty"`
	DelegateID     string     `json:"delegate_id,omitempty"`
	FlowGraph      *FlowGraph `json:"flow_graph,omitempty"`
	ExpiryTime     *time.Time `json:"expiry_time,omitempty"`
	ActivationTime time.Time  `json:"activation_time"`
	IsActive       bool       `json:"is_active"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// HasFlowGraph reports whether the rule carries a flow graph. A
// malformed graph with no nodes still counts: it evaluates as zero
// nodes processed and default-routes, rather than falling back to the
// flat keyword path.
func (r *Rule) HasFlowGraph() bool {
	return r.FlowGraph != nil
}

// ExpiryString renders the expiry time for user-facing reply text.
// Rules without an expiry render as "unknown time".
func (r *Rule) ExpiryString() string {
	if r.ExpiryTime == nil {
		return "unknown time"
	}
	return r.ExpiryTime.UTC().Format(time.RFC3339)
}

// Validate checks that a rule is well-formed enough to store. A rule
// must identify a user and carry either a keyword/delegate pair or a
// flow graph.
func (r *Rule) Validate() error {
	if r.UserID == "" {
		return ErrRuleUserRequired
	}
	if r.FlowGraph == nil && r.Keyword == "" {
		return ErrRuleShapeRequired
	}
	return nil
}
