package models

import "encoding/json"

// NodeKind identifies the behavior of a flow graph node. The visual
// flow editor produces these kinds; the engine dispatches on them.
type NodeKind string

const (
	// NodeIntentClassifier marks a node that classifies message intent
	NodeIntentClassifier NodeKind = "intent-classifier"
	// NodeActionHandler marks a node that executes routing, ghost mode,
	// or swarm protocol actions
	NodeActionHandler NodeKind = "action-handler"
	// NodeEnd marks a terminal node
	NodeEnd NodeKind = "end"
)

// FlowGraph is the stored representation of a visual handover flow:
// a set of nodes plus the edges drawn between them. Edges record the
// drawn topology only; the current evaluation policy dispatches on
// node kind and classification, not on edge conditions.
type FlowGraph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node is a single element of a flow graph.
type Node struct {
	ID     string                 `json:"id"`
	Kind   NodeKind               `json:"kind"`
	Config map[string]interface{} `json:"config,omitempty"`
}

// Edge connects two nodes in a flow graph.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ParseFlowGraph decodes the JSON form stored in the rules table.
// An empty payload yields a nil graph rather than an error so a rule
// row with a blank flow_json column stays a flat rule.
func ParseFlowGraph(data []byte) (*FlowGraph, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var graph FlowGraph
	if err := json.Unmarshal(data, &graph); err != nil {
		return nil, err
	}
	if len(graph.Nodes) == 0 && len(graph.Edges) == 0 {
		return nil, nil
	}
	return &graph, nil
}

// MarshalFlowGraph encodes a graph for storage. A nil graph encodes
// as an empty payload.
func MarshalFlowGraph(graph *FlowGraph) ([]byte, error) {
	if graph == nil {
		return nil, nil
	}
	return json.Marshal(graph)
}
