package models

import (
	"testing"
	"time"
)

func TestRule_Validate(t *testing.T) {
	expiry := time.Now().Add(24 * time.Hour)

	tests := []struct {
		name    string
		rule    Rule
		wantErr error
	}{
		{
			name: "flat rule",
			rule: Rule{UserID: "u1", Keyword: "billing", DelegateID: "jane"},
		},
		{
			name: "graph rule without keyword",
			rule: Rule{
				UserID:    "u1",
				FlowGraph: &FlowGraph{Nodes: []Node{{ID: "n1", Kind: NodeIntentClassifier}}},
			},
		},
		{
			name:    "missing user",
			rule:    Rule{Keyword: "billing"},
			wantErr: ErrRuleUserRequired,
		},
		{
			name:    "neither keyword nor graph",
			rule:    Rule{UserID: "u1", ExpiryTime: &expiry},
			wantErr: ErrRuleShapeRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Validate()
			if err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRule_ExpiryString(t *testing.T) {
	r := &Rule{}
	if got := r.ExpiryString(); got != "unknown time" {
		t.Errorf("ExpiryString() without expiry = %q, want %q", got, "unknown time")
	}

	expiry := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	r.ExpiryTime = &expiry
	if got := r.ExpiryString(); got != "2026-03-14T09:00:00Z" {
		t.Errorf("ExpiryString() = %q, want RFC3339 form", got)
	}
}

func TestRule_HasFlowGraph(t *testing.T) {
	r := &Rule{UserID: "u1", Keyword: "server"}
	if r.HasFlowGraph() {
		t.Error("flat rule should not report a flow graph")
	}

	r.FlowGraph = &FlowGraph{}
	if !r.HasFlowGraph() {
		t.Error("nodeless graph should still select the graph path")
	}

	r.FlowGraph = &FlowGraph{Nodes: []Node{{ID: "n1", Kind: NodeActionHandler}}}
	if !r.HasFlowGraph() {
		t.Error("rule with nodes should report a flow graph")
	}
}

func TestParseFlowGraph(t *testing.T) {
	graph, err := ParseFlowGraph(nil)
	if err != nil || graph != nil {
		t.Errorf("ParseFlowGraph(nil) = %v, %v; want nil, nil", graph, err)
	}

	graph, err = ParseFlowGraph([]byte(`{"nodes":[],"edges":[]}`))
	if err != nil || graph != nil {
		t.Errorf("ParseFlowGraph(empty graph) = %v, %v; want nil, nil", graph, err)
	}

	data := []byte(`{"nodes":[{"id":"n1","kind":"intent-classifier"},{"id":"n2","kind":"action-handler"}],"edges":[{"from":"n1","to":"n2"}]}`)
	graph, err = ParseFlowGraph(data)
	if err != nil {
		t.Fatalf("ParseFlowGraph() error = %v", err)
	}
	if len(graph.Nodes) != 2 || len(graph.Edges) != 1 {
		t.Errorf("ParseFlowGraph() nodes=%d edges=%d, want 2 and 1", len(graph.Nodes), len(graph.Edges))
	}
	if graph.Nodes[0].Kind != NodeIntentClassifier {
		t.Errorf("first node kind = %q, want %q", graph.Nodes[0].Kind, NodeIntentClassifier)
	}

	if _, err := ParseFlowGraph([]byte(`{not json`)); err == nil {
		t.Error("ParseFlowGraph() should fail on malformed JSON")
	}
}
