package briefing

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relay-router/internal/models"
)

func TestBuildCountsByFlowType(t *testing.T) {
	since := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	until := since.Add(72 * time.Hour)

	events := []*models.LogEvent{
		{SenderID: "s1", MessageText: "billing question", DelegateID: "jane", ActionTaken: "Forwarded to jane", FlowType: models.FlowKeyword, LoggedAt: since.Add(time.Hour)},
		{SenderID: "s2", MessageText: "system is down", ActionTaken: "Swarm Protocol Initiated", FlowType: models.FlowSwarm, LoggedAt: since.Add(2 * time.Hour)},
		{SenderID: "s3", MessageText: "budget?", ActionTaken: "Ghost Mode Reply Sent", FlowType: models.FlowGhost, LoggedAt: since.Add(3 * time.Hour)},
		{SenderID: "s4", MessageText: "hi", ActionTaken: "Routed to Designated Delegate", FlowType: models.FlowDefault, LoggedAt: since.Add(4 * time.Hour)},
	}

	card := Build("u1", since, until, events)

	assert.Equal(t, 4, card.Total)
	assert.Equal(t, 1, card.Forwarded)
	assert.Equal(t, 1, card.Escalated)
	assert.Equal(t, 1, card.Answered)
	require.Len(t, card.Rows, 4)
	assert.Equal(t, "s1", card.Rows[0].Sender)
	assert.Equal(t, "jane", card.Rows[0].Delegate)
}

func TestBuildEmptyWindow(t *testing.T) {
	now := time.Now()

	card := Build("u1", now.Add(-time.Hour), now, nil)

	assert.Equal(t, 0, card.Total)
	assert.Empty(t, card.Rows)
	assert.Contains(t, card.Text(), "0 messages handled")
}

func TestBuildCapsRows(t *testing.T) {
	now := time.Now()
	events := make([]*models.LogEvent, maxRows+5)
	for i := range events {
		events[i] = &models.LogEvent{SenderID: "s", MessageText: "m", FlowType: models.FlowDefault, LoggedAt: now}
	}

	card := Build("u1", now.Add(-time.Hour), now, events)

	assert.Equal(t, maxRows+5, card.Total)
	assert.Len(t, card.Rows, maxRows)
	assert.Contains(t, card.Text(), "and 5 more")
}

func TestBuildTruncatesLongMessages(t *testing.T) {
	now := time.Now()
	long := strings.Repeat("x", 300)
	events := []*models.LogEvent{
		{SenderID: "s1", MessageText: long, FlowType: models.FlowKeyword, LoggedAt: now},
	}

	card := Build("u1", now.Add(-time.Hour), now, events)

	require.Len(t, card.Rows, 1)
	assert.Len(t, []rune(card.Rows[0].Message), maxMessageLen)
	assert.True(t, strings.HasSuffix(card.Rows[0].Message, "..."))
}

func TestBuildTruncatesOnRuneBoundaries(t *testing.T) {
	now := time.Now()
	long := strings.Repeat("é", 300)
	events := []*models.LogEvent{
		{SenderID: "s1", MessageText: long, FlowType: models.FlowKeyword, LoggedAt: now},
	}

	card := Build("u1", now.Add(-time.Hour), now, events)

	require.Len(t, card.Rows, 1)
	got := card.Rows[0].Message
	assert.True(t, utf8.ValidString(got))
	assert.Len(t, []rune(got), maxMessageLen)
	assert.True(t, strings.HasSuffix(got, "..."))
}
