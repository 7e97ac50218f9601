package routing

import (
	"context"
	"time"

	"relay-router/internal/common/logging"
	"relay-router/internal/models"
)

// ExpiryGuard detects lazily expired rules and triggers self-healing
// deactivation. Expiry is checked here, never in the store query, so
// an expired-but-still-active row is noticed and repaired the first
// time a message observes it.
type ExpiryGuard struct {
	store RuleStore
}

func NewExpiryGuard(store RuleStore) *ExpiryGuard {
	return &ExpiryGuard{store: store}
}

// Check reports whether the rule has expired as of now. On expiry it
// deactivates the rule through the store; a deactivation failure is
// logged but the expired verdict stands, so the message is still not
// routed and a later message can retry the self-heal.
func (g *ExpiryGuard) Check(ctx context.Context, rule *models.Rule, now time.Time) bool {
	if rule.ExpiryTime == nil {
		return false
	}
	if !rule.ExpiryTime.Before(now) {
		return false
	}

	if err := g.store.DeactivateRule(ctx, rule.ID); err != nil {
		logging.Warn("self-healing deactivation failed",
			logging.String("rule_id", rule.ID),
			logging.String("user_id", rule.UserID),
			logging.Err(err),
		)
	} else {
		logging.Info("expired rule deactivated",
			logging.String("rule_id", rule.ID),
			logging.String("user_id", rule.UserID),
			logging.Time("expiry_time", *rule.ExpiryTime),
		)
	}

	return true
}
