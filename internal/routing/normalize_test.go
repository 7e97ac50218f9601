package routing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "relay-router/internal/common/errors"
)

func TestNormalizeInbound(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name          string
		body          string
		wantSender    string
		wantRecipient string
		wantText      string
	}{
		{
			name:          "canonical fields",
			body:          `{"sender_id":"s1","recipient_id":"r1","message":"hello"}`,
			wantSender:    "s1",
			wantRecipient: "r1",
			wantText:      "hello",
		},
		{
			name:          "from and to aliases",
			body:          `{"from":"s2","to":"r2","text":"hi"}`,
			wantSender:    "s2",
			wantRecipient: "r2",
			wantText:      "hi",
		},
		{
			name:          "nested platform shape",
			body:          `{"sender":{"id":"s3"},"recipient":{"id":"r3"},"message":{"text":"nested"}}`,
			wantSender:    "s3",
			wantRecipient: "r3",
			wantText:      "nested",
		},
		{
			name:          "canonical wins over alias",
			body:          `{"sender_id":"s1","from":"other","recipient_id":"r1","message":"x"}`,
			wantSender:    "s1",
			wantRecipient: "r1",
			wantText:      "x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := NormalizeInbound([]byte(tt.body), now)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSender, msg.SenderID)
			assert.Equal(t, tt.wantRecipient, msg.RecipientID)
			assert.Equal(t, tt.wantText, msg.Text)
			assert.Equal(t, now, msg.ReceivedAt)
		})
	}
}

func TestNormalizeInboundMissingRecipient(t *testing.T) {
	_, err := NormalizeInbound([]byte(`{"sender_id":"s1","message":"hello"}`), time.Now())

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypePayload))
}

func TestNormalizeInboundRawText(t *testing.T) {
	_, err := NormalizeInbound([]byte("just some text"), time.Now())

	// a bare text body has no recipient and cannot be routed
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypePayload))
}
