package handlers

import (
	"net/http"

	"relay-router/internal/common/logging"
)

// HandleListLogs returns relay log events, newest first, with
// limit/offset pagination.
func (h *Handlers) HandleListLogs(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)

	events, total, err := h.storage.ListLogEvents(r.Context(), limit, offset)
	if err != nil {
		logging.Error("log listing failed", err)
		writeError(w, http.StatusInternalServerError, "log listing failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"events": events,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}
