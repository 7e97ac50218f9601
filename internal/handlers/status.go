package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"relay-router/internal/briefing"
	"relay-router/internal/common/logging"
)

// statusOffUserID resolves the returning user's id from the request
// body. Platforms disagree on the field name, so the known aliases
// are tried in order: user_id, owner_id, user.id.
func statusOffUserID(body []byte) string {
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if id, ok := payload["user_id"].(string); ok && id != "" {
		return id
	}
	if id, ok := payload["owner_id"].(string); ok && id != "" {
		return id
	}
	if user, ok := payload["user"].(map[string]interface{}); ok {
		if id, ok := user["id"].(string); ok {
			return id
		}
	}
	return ""
}

// HandleStatusOff switches a user's out-of-office status off: it
// deactivates their active rule, assembles the return briefing from
// the relay logs accumulated since activation, and makes a
// best-effort delivery of the card back to the user. The endpoint
// always answers 200: the caller is the chat platform, and neither a
// bad payload nor a storage failure should make it retry or surface
// an error.
func (h *Handlers) HandleStatusOff(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		logging.Warn("status off body read failed", logging.Err(err))
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	userID := statusOffUserID(body)
	if userID == "" {
		logging.Warn("status off payload has no user id")
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	ctx := r.Context()
	rule, err := h.storage.FindActiveRule(ctx, userID)
	if err != nil {
		logging.Error("status off rule lookup failed", err,
			logging.String("user_id", userID),
		)
		writeJSON(w, http.StatusOK, map[string]string{"status": "error"})
		return
	}
	if rule == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "no_active_rule"})
		return
	}

	if err := h.storage.DeactivateRule(ctx, rule.ID); err != nil {
		logging.Error("status off deactivation failed", err,
			logging.String("rule_id", rule.ID),
		)
		writeJSON(w, http.StatusOK, map[string]string{"status": "error"})
		return
	}

	now := time.Now().UTC()
	since := rule.ActivationTime
	events, err := h.storage.ListLogEventsSince(ctx, userID, since)
	if err != nil {
		logging.Warn("briefing log query failed",
			logging.String("user_id", userID),
			logging.Err(err),
		)
		events = nil
	}

	card := briefing.Build(userID, since, now, events)

	if h.gateway != nil {
		if err := h.gateway.Reply(ctx, userID, card.Text()); err != nil {
			logging.Warn("briefing delivery failed",
				logging.String("user_id", userID),
				logging.Err(err),
			)
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "deactivated",
		"rule_id":  rule.ID,
		"briefing": card,
	})
}
