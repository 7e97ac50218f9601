package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	apperrors "relay-router/internal/common/errors"
	"relay-router/internal/common/logging"
	"relay-router/internal/models"
)

type createRuleRequest struct {
	UserID     string          `json:"user_id"`
	Keyword    string          `json:"keyword,omitempty"`
	DelegateID string          `json:"delegate_id,omitempty"`
	FlowGraph  json.RawMessage `json:"flow_graph,omitempty"`
	ExpiryTime *time.Time      `json:"expiry_time,omitempty"`
}

// HandleCreateRule creates a handover rule. A rule is either flat
// (keyword plus delegate) or graph-based; the shape requirement is
// enforced by model validation.
func (h *Handlers) HandleCreateRule(w http.ResponseWriter, r *http.Request) {
	var req createRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	graph, err := models.ParseFlowGraph(req.FlowGraph)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid flow graph")
		return
	}

	rule := &models.Rule{
		UserID:     req.UserID,
		Keyword:    req.Keyword,
		DelegateID: req.DelegateID,
		FlowGraph:  graph,
		ExpiryTime: req.ExpiryTime,
		IsActive:   true,
	}

	if err := h.storage.CreateRule(r.Context(), rule); err != nil {
		if errors.Is(err, models.ErrRuleUserRequired) || errors.Is(err, models.ErrRuleShapeRequired) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		logging.Error("rule creation failed", err,
			logging.String("user_id", req.UserID),
		)
		writeError(w, http.StatusInternalServerError, "rule creation failed")
		return
	}

	writeJSON(w, http.StatusCreated, rule)
}

// HandleListRules returns rules with limit/offset pagination.
func (h *Handlers) HandleListRules(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)

	rules, total, err := h.storage.ListRules(r.Context(), limit, offset)
	if err != nil {
		logging.Error("rule listing failed", err)
		writeError(w, http.StatusInternalServerError, "rule listing failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"rules":  rules,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *Handlers) HandleGetRule(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	rule, err := h.storage.GetRule(r.Context(), id)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrTypeNotFound) {
			writeError(w, http.StatusNotFound, "rule not found")
			return
		}
		logging.Error("rule fetch failed", err, logging.String("rule_id", id))
		writeError(w, http.StatusInternalServerError, "rule fetch failed")
		return
	}
	if rule == nil {
		writeError(w, http.StatusNotFound, "rule not found")
		return
	}

	writeJSON(w, http.StatusOK, rule)
}

func (h *Handlers) HandleDeleteRule(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.storage.DeleteRule(r.Context(), id); err != nil {
		if apperrors.IsType(err, apperrors.ErrTypeNotFound) {
			writeError(w, http.StatusNotFound, "rule not found")
			return
		}
		logging.Error("rule deletion failed", err, logging.String("rule_id", id))
		writeError(w, http.StatusInternalServerError, "rule deletion failed")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
