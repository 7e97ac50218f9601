// Package handlers contains the HTTP surface of the relay router:
// the inbound message webhook, the return-briefing endpoint, rules
// CRUD, relay log queries, and health.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"relay-router/internal/common/logging"
	"relay-router/internal/gateway"
	"relay-router/internal/ratelimit"
	"relay-router/internal/routing"
	"relay-router/internal/storage"
)

// HealthChecker is anything with a pingable health state; the redis
// client satisfies it when caching is enabled.
type HealthChecker interface {
	Health() error
}

type Handlers struct {
	storage storage.Storage
	engine  *routing.Engine
	gateway gateway.Gateway
	limiter *ratelimit.Limiter
	cache   HealthChecker
}

func New(store storage.Storage, engine *routing.Engine, gw gateway.Gateway, limiter *ratelimit.Limiter, cache HealthChecker) *Handlers {
	return &Handlers{
		storage: store,
		engine:  engine,
		gateway: gw,
		limiter: limiter,
		cache:   cache,
	}
}

// RegisterRoutes wires all endpoints onto the router. The bot webhook
// carries the rate limit; the api routes do not.
func (h *Handlers) RegisterRoutes(r *mux.Router) {
	bot := r.PathPrefix("/bot-handler").Subrouter()
	if h.limiter != nil {
		bot.Use(h.limiter.HTTPMiddleware(senderKey))
	}
	bot.HandleFunc("", h.HandleBotMessage).Methods(http.MethodPost)

	r.HandleFunc("/status/off", h.HandleStatusOff).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/rules", h.HandleCreateRule).Methods(http.MethodPost)
	api.HandleFunc("/rules", h.HandleListRules).Methods(http.MethodGet)
	api.HandleFunc("/rules/{id}", h.HandleGetRule).Methods(http.MethodGet)
	api.HandleFunc("/rules/{id}", h.HandleDeleteRule).Methods(http.MethodDelete)
	api.HandleFunc("/logs", h.HandleListLogs).Methods(http.MethodGet)

	r.HandleFunc("/health", h.HandleHealth).Methods(http.MethodGet)
}

// senderKey rate-limits the bot webhook per sender when the platform
// supplies one, falling back to the remote IP.
func senderKey(r *http.Request) string {
	if sender := r.Header.Get("X-Sender-ID"); sender != "" {
		return "sender:" + sender
	}
	return ratelimit.IPBasedKey(r)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Warn("response encoding failed", logging.Err(err))
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// pagination parses limit/offset query params with bounded defaults.
func pagination(r *http.Request) (limit, offset int) {
	limit = 50
	offset = 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
