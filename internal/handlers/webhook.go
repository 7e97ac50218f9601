package handlers

import (
	"io"
	"net/http"
	"time"

	"relay-router/internal/common/logging"
	"relay-router/internal/routing"
)

// botResponse is what the chat platform gets back. The platform only
// needs the acknowledgment; outcome and text are informational.
type botResponse struct {
	Outcome string `json:"outcome"`
	Text    string `json:"text,omitempty"`
	Flow    string `json:"flow_type,omitempty"`
}

// HandleBotMessage is the inbound message webhook. It always answers
// 200 toward the platform: a malformed payload or an engine failure
// must never make the platform retry or surface an error to the
// sender.
func (h *Handlers) HandleBotMessage(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		logging.Warn("bot webhook body read failed", logging.Err(err))
		writeJSON(w, http.StatusOK, botResponse{Outcome: "ignored"})
		return
	}

	msg, err := routing.NormalizeInbound(body, time.Now().UTC())
	if err != nil {
		logging.Warn("bot webhook payload ignored", logging.Err(err))
		writeJSON(w, http.StatusOK, botResponse{Outcome: "ignored"})
		return
	}

	result, outcome := h.engine.Route(r.Context(), msg)

	resp := botResponse{Outcome: outcome.String()}
	if result != nil {
		resp.Text = result.Text
		resp.Flow = string(result.FlowType)
	}
	writeJSON(w, http.StatusOK, resp)
}
