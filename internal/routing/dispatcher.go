package routing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"relay-router/internal/common/logging"
	"relay-router/internal/gateway"
	"relay-router/internal/models"
)

// SwarmAlertText is surfaced to the caller when the swarm protocol
// fires.
const SwarmAlertText = "🚨 P1 Incident Alert: Swarm Protocol Initiated"

// Canned ghost-mode knowledge base answers.
const (
	ghostBudgetAnswer = "Budget figures for this quarter are tracked in the Finance workspace under 'Q-Budget'. The owner will confirm specifics on their return."
	ghostPolicyAnswer = "Company policy documents live in the HR portal under 'Policies & Guidelines'. The latest revisions are always published there."
	ghostLeaveAnswer  = "Leave requests go through the HR portal; approvals continue while the owner is away."
	ghostFallback     = "The person you reached is currently out of office. Your message has been recorded and will be handled on their return."
)

// Dispatcher executes the four action kinds and appends the relay log
// event for each dispatched action. Gateway calls are single attempts;
// a delivery failure is logged and swallowed so the event log append
// still runs.
type Dispatcher struct {
	gateway gateway.Gateway
	events  EventLog
	now     func() time.Time
}

func NewDispatcher(gw gateway.Gateway, events EventLog) *Dispatcher {
	return &Dispatcher{
		gateway: gw,
		events:  events,
		now:     time.Now,
	}
}

// Dispatch runs one action. The switch is exhaustive over ActionKind;
// KeywordForward may return nil when the keyword is absent, every
// other kind always produces a result.
func (d *Dispatcher) Dispatch(ctx context.Context, kind ActionKind, rule *models.Rule, msg models.Message, c models.Classification) *models.ActionResult {
	switch kind {
	case ActionKeywordForward:
		return d.keywordForward(ctx, rule, msg)
	case ActionEscalate:
		return d.escalate(ctx, rule, msg, c)
	case ActionAutoReply:
		return d.autoReply(ctx, rule, msg, c)
	case ActionDefaultRoute:
		return d.defaultRoute(ctx, rule, msg, c)
	default:
		logging.Warn("unknown action kind", logging.String("kind", kind.String()))
		return nil
	}
}

// keywordForward handles flat rules: a case-insensitive substring
// match of the rule keyword against the message text. No match means
// no action and no log event.
func (d *Dispatcher) keywordForward(ctx context.Context, rule *models.Rule, msg models.Message) *models.ActionResult {
	if rule.Keyword == "" {
		return nil
	}
	if !strings.Contains(strings.ToLower(msg.Text), strings.ToLower(rule.Keyword)) {
		return nil
	}

	reply := fmt.Sprintf("User is OOO until %s. Forwarding to %s.", rule.ExpiryString(), rule.DelegateID)

	if msg.SenderID != "" {
		d.try(ctx, "reply", func() error {
			return d.gateway.Reply(ctx, msg.SenderID, reply)
		})
	}
	if rule.DelegateID != "" {
		d.try(ctx, "notify", func() error {
			return d.gateway.Notify(ctx, rule.DelegateID, msg.Text)
		})
	}

	d.appendEvent(ctx, &models.LogEvent{
		UserID:      rule.UserID,
		SenderID:    msg.SenderID,
		DelegateID:  rule.DelegateID,
		MessageText: msg.Text,
		ActionTaken: fmt.Sprintf("Forwarded to %s", rule.DelegateID),
		FlowType:    models.FlowKeyword,
	})

	return &models.ActionResult{
		Text:     reply,
		FlowType: models.FlowKeyword,
		Meta: map[string]interface{}{
			"delegate_id": rule.DelegateID,
			"keyword":     rule.Keyword,
		},
	}
}

// escalate runs the swarm protocol: a dedicated incident channel plus
// a context post carrying the classification and the original text.
func (d *Dispatcher) escalate(ctx context.Context, rule *models.Rule, msg models.Message, c models.Classification) *models.ActionResult {
	channelName := fmt.Sprintf("p1-incident-%s", d.now().UTC().Format("20060102-150405"))

	var channelID string
	d.try(ctx, "create_channel", func() error {
		id, err := d.gateway.CreateChannel(ctx, channelName)
		channelID = id
		return err
	})

	if channelID != "" {
		contextPost := fmt.Sprintf("Domain: %s | Urgency: %d/10\nOriginal message from %s: %s",
			c.Domain, c.UrgencyScore, msg.SenderID, msg.Text)
		d.try(ctx, "post", func() error {
			return d.gateway.Post(ctx, channelID, contextPost)
		})
	}

	d.appendEvent(ctx, &models.LogEvent{
		UserID:       rule.UserID,
		SenderID:     msg.SenderID,
		DelegateID:   rule.DelegateID,
		MessageText:  msg.Text,
		Domain:       c.Domain,
		UrgencyScore: c.UrgencyScore,
		ActionTaken:  "Swarm Protocol Initiated",
		FlowType:     models.FlowSwarm,
	})

	return &models.ActionResult{
		Text:     SwarmAlertText,
		FlowType: models.FlowSwarm,
		Meta: map[string]interface{}{
			"channel_name": channelName,
			"channel_id":   channelID,
		},
	}
}

// autoReply answers the sender directly from the canned knowledge
// base (ghost mode).
func (d *Dispatcher) autoReply(ctx context.Context, rule *models.Rule, msg models.Message, c models.Classification) *models.ActionResult {
	answer := ghostAnswer(msg.Text)

	if msg.SenderID != "" {
		d.try(ctx, "reply", func() error {
			return d.gateway.Reply(ctx, msg.SenderID, answer)
		})
	}

	d.appendEvent(ctx, &models.LogEvent{
		UserID:       rule.UserID,
		SenderID:     msg.SenderID,
		DelegateID:   rule.DelegateID,
		MessageText:  msg.Text,
		Domain:       c.Domain,
		UrgencyScore: c.UrgencyScore,
		ActionTaken:  "Ghost Mode Reply Sent",
		FlowType:     models.FlowGhost,
	})

	return &models.ActionResult{
		Text:     answer,
		FlowType: models.FlowGhost,
	}
}

// defaultRoute makes no outward call; it records that the message is
// left for the designated delegate.
func (d *Dispatcher) defaultRoute(ctx context.Context, rule *models.Rule, msg models.Message, c models.Classification) *models.ActionResult {
	d.appendEvent(ctx, &models.LogEvent{
		UserID:       rule.UserID,
		SenderID:     msg.SenderID,
		DelegateID:   rule.DelegateID,
		MessageText:  msg.Text,
		Domain:       c.Domain,
		UrgencyScore: c.UrgencyScore,
		ActionTaken:  "Routed to Designated Delegate",
		FlowType:     models.FlowDefault,
	})

	return &models.ActionResult{
		Text:     "Routed to Designated Delegate",
		FlowType: models.FlowDefault,
		Meta: map[string]interface{}{
			"delegate_id": rule.DelegateID,
		},
	}
}

// ghostAnswer picks a canned answer by keywords in the message text.
func ghostAnswer(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "budget"):
		return ghostBudgetAnswer
	case strings.Contains(lower, "policy"):
		return ghostPolicyAnswer
	case strings.Contains(lower, "leave"):
		return ghostLeaveAnswer
	default:
		return ghostFallback
	}
}

// try runs one gateway call and swallows its failure.
func (d *Dispatcher) try(ctx context.Context, operation string, fn func() error) {
	if err := fn(); err != nil {
		logging.Warn("gateway call failed",
			logging.String("operation", operation),
			logging.Err(err),
		)
	}
}

// appendEvent writes the relay log entry. Log failures never block
// message handling.
func (d *Dispatcher) appendEvent(ctx context.Context, event *models.LogEvent) {
	event.LoggedAt = d.now().UTC()
	if err := d.events.AppendLogEvent(ctx, event); err != nil {
		logging.Warn("relay log append failed",
			logging.String("flow_type", string(event.FlowType)),
			logging.Err(err),
		)
	}
}
