package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"relay-router/internal/models"
)

func TestKeywordClassifier(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantDomain string
		wantScore  int
	}{
		{"critical incident", "the API is CRITICAL right now", DomainP1Incident, 9},
		{"service down", "prod is down again", DomainP1Incident, 9},
		{"budget question", "what was the Q3 budget?", DomainInfoRequest, 3},
		{"policy question", "where is the remote work Policy?", DomainInfoRequest, 3},
		{"neutral text", "are we still on for lunch", DomainGeneral, 5},
		{"empty text", "", DomainGeneral, 5},
	}

	c := NewKeywordClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Classify(tt.text)
			assert.NoError(t, err)
			assert.Equal(t, tt.wantDomain, got.Domain)
			assert.Equal(t, tt.wantScore, got.UrgencyScore)
		})
	}
}

func TestFlowGraphEvaluatorThresholds(t *testing.T) {
	tests := []struct {
		name string
		c    models.Classification
		want Decision
	}{
		{"urgency 8 p1 escalates", models.Classification{Domain: DomainP1Incident, UrgencyScore: 8}, DecisionEscalate},
		{"urgency 7 p1 does not escalate", models.Classification{Domain: DomainP1Incident, UrgencyScore: 7}, DecisionDefaultRoute},
		{"urgency 8 non-p1 does not escalate", models.Classification{Domain: DomainGeneral, UrgencyScore: 8}, DecisionDefaultRoute},
		{"urgency 3 info auto-replies", models.Classification{Domain: DomainInfoRequest, UrgencyScore: 3}, DecisionAutoReply},
		{"urgency 4 info does not auto-reply", models.Classification{Domain: DomainInfoRequest, UrgencyScore: 4}, DecisionDefaultRoute},
		{"urgency 3 non-info does not auto-reply", models.Classification{Domain: DomainGeneral, UrgencyScore: 3}, DecisionDefaultRoute},
		{"neutral defaults", models.Classification{Domain: DomainGeneral, UrgencyScore: 5}, DecisionDefaultRoute},
	}

	e := NewFlowGraphEvaluator()
	graph := &models.FlowGraph{Nodes: []models.Node{{ID: "n1", Kind: models.NodeIntentClassifier}}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Evaluate(graph, tt.c)
			assert.Equal(t, tt.want, got.Decision)
			assert.Equal(t, 1, got.NodesProcessed)
		})
	}
}

func TestFlowGraphEvaluatorNilGraph(t *testing.T) {
	e := NewFlowGraphEvaluator()

	got := e.Evaluate(nil, models.Classification{Domain: DomainP1Incident, UrgencyScore: 9})

	assert.Equal(t, DecisionEscalate, got.Decision)
	assert.Equal(t, 0, got.NodesProcessed)
}

func TestGhostAnswerKnowledgeBase(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"what is the budget", ghostBudgetAnswer},
		{"where is the expense POLICY", ghostPolicyAnswer},
		{"how do I request leave", ghostLeaveAnswer},
		{"anything else", ghostFallback},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ghostAnswer(tt.text), tt.text)
	}
}
