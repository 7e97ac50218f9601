package handlers

import (
	"net/http"
	"time"
)

// HandleHealth reports storage and cache health. A degraded cache is
// reported but does not fail the check; the service runs without it.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	checks := map[string]string{}

	if err := h.storage.Health(); err != nil {
		checks["storage"] = err.Error()
		status = http.StatusServiceUnavailable
	} else {
		checks["storage"] = "ok"
	}

	if h.cache != nil {
		if err := h.cache.Health(); err != nil {
			checks["cache"] = err.Error()
		} else {
			checks["cache"] = "ok"
		}
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}

	writeJSON(w, status, map[string]interface{}{
		"status": overall,
		"checks": checks,
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
