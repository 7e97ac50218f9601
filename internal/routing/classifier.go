package routing

import (
	"strings"

	"relay-router/internal/models"
)

// Domain labels produced by the default classifier.
const (
	DomainP1Incident  = "P1 Incident"
	DomainInfoRequest = "Info Request"
	DomainGeneral     = "General"
)

// KeywordClassifier is the default classifier: a fixed keyword table
// standing in for a real model. It satisfies the Classifier contract
// so swapping in actual inference changes nothing downstream.
type KeywordClassifier struct{}

// NewKeywordClassifier returns the default keyword-based classifier.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

// Classify is a pure function of the message text.
func (c *KeywordClassifier) Classify(text string) (models.Classification, error) {
	lower := strings.ToLower(text)

	switch {
	case strings.Contains(lower, "critical") || strings.Contains(lower, "down"):
		return models.Classification{Domain: DomainP1Incident, UrgencyScore: 9}, nil
	case strings.Contains(lower, "budget") || strings.Contains(lower, "policy"):
		return models.Classification{Domain: DomainInfoRequest, UrgencyScore: 3}, nil
	default:
		return models.Classification{Domain: DomainGeneral, UrgencyScore: 5}, nil
	}
}

// defaultClassification is the fallback when a classifier fails:
// routing proceeds on a neutral classification instead of aborting.
func defaultClassification() models.Classification {
	return models.Classification{Domain: DomainGeneral, UrgencyScore: 5}
}
