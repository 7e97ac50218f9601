// Package briefing builds the return briefing a user receives when
// they switch their out-of-office status off: a summary card of what
// was relayed while they were away.
package briefing

import (
	"fmt"
	"strings"
	"time"

	"relay-router/internal/models"
)

// Card is the summary card sent back to a returning user. The shape
// follows the adaptive-card convention of a title block followed by a
// fact table.
type Card struct {
	Title     string    `json:"title"`
	UserID    string    `json:"user_id"`
	Since     time.Time `json:"since"`
	Until     time.Time `json:"until"`
	Total     int       `json:"total"`
	Forwarded int       `json:"forwarded"`
	Escalated int       `json:"escalated"`
	Answered  int       `json:"answered"`
	Rows      []Row     `json:"rows"`
}

// Row is one relayed message in the card table.
type Row struct {
	At       time.Time `json:"at"`
	Sender   string    `json:"sender"`
	Message  string    `json:"message"`
	Delegate string    `json:"delegate,omitempty"`
	Action   string    `json:"action"`
}

// maxRows caps the card table; the full history stays queryable
// through the logs API.
const maxRows = 20

// maxMessageLen truncates long message texts in card rows.
const maxMessageLen = 120

// Build assembles a card from a user's relay log events, oldest
// first. An empty event list still yields a valid card.
func Build(userID string, since, until time.Time, events []*models.LogEvent) *Card {
	card := &Card{
		Title:  "While you were away",
		UserID: userID,
		Since:  since,
		Until:  until,
		Total:  len(events),
	}

	for _, event := range events {
		switch event.FlowType {
		case models.FlowKeyword:
			card.Forwarded++
		case models.FlowSwarm:
			card.Escalated++
		case models.FlowGhost:
			card.Answered++
		}

		if len(card.Rows) < maxRows {
			card.Rows = append(card.Rows, Row{
				At:       event.LoggedAt,
				Sender:   event.SenderID,
				Message:  truncate(event.MessageText, maxMessageLen),
				Delegate: event.DelegateID,
				Action:   event.ActionTaken,
			})
		}
	}
	return card
}

// Text renders the card as a plain chat message for gateways without
// card support.
func (c *Card) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s to %s)\n", c.Title,
		c.Since.UTC().Format(time.RFC3339), c.Until.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "%d messages handled: %d forwarded, %d escalated, %d auto-answered.\n",
		c.Total, c.Forwarded, c.Escalated, c.Answered)

	for _, row := range c.Rows {
		fmt.Fprintf(&b, "- [%s] %s: %s (%s)\n",
			row.At.UTC().Format("Jan 2 15:04"), row.Sender, row.Message, row.Action)
	}
	if c.Total > len(c.Rows) {
		fmt.Fprintf(&b, "...and %d more.\n", c.Total-len(c.Rows))
	}
	return b.String()
}

// truncate shortens s to at most max runes, never splitting a
// multi-byte character.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
