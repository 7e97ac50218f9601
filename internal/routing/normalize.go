package routing

import (
	"encoding/json"
	"strings"
	"time"

	"relay-router/internal/common/errors"
	"relay-router/internal/models"
)

// NormalizeInbound converts a raw webhook body into a Message.
// Connected chat platforms disagree on field names, so each field is
// resolved from a list of known aliases. A body that is not JSON at
// all is treated as a bare text payload with no sender or recipient.
func NormalizeInbound(body []byte, receivedAt time.Time) (models.Message, error) {
	msg := models.Message{ReceivedAt: receivedAt}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		msg.Text = strings.TrimSpace(string(body))
	} else {
		msg.SenderID = firstString(payload,
			[]string{"sender_id"}, []string{"from"}, []string{"sender", "id"})
		msg.RecipientID = firstString(payload,
			[]string{"recipient_id"}, []string{"to"}, []string{"recipient", "id"})
		msg.Text = firstString(payload,
			[]string{"message"}, []string{"text"}, []string{"message", "text"})
	}

	if msg.RecipientID == "" {
		return models.Message{}, errors.PayloadError("payload has no recipient id")
	}
	return msg, nil
}

// firstString walks alias paths in order and returns the first
// non-empty string value found.
func firstString(payload map[string]interface{}, paths ...[]string) string {
	for _, path := range paths {
		if s := lookupString(payload, path); s != "" {
			return s
		}
	}
	return ""
}

func lookupString(payload map[string]interface{}, path []string) string {
	var current interface{} = payload
	for _, key := range path {
		m, ok := current.(map[string]interface{})
		if !ok {
			return ""
		}
		current = m[key]
	}
	s, _ := current.(string)
	return s
}
