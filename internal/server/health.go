package server

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"
)

// Pinger is implemented by [database/sql.DB].
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports whether the service and its store are reachable.
type HealthHandler struct {
	db     Pinger
	logger *log.Logger
}

// NewHealthHandler creates a [HealthHandler]. A nil db skips the store check.
func NewHealthHandler(db Pinger, logger *log.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

func (h *HealthHandler) Routes() []Route {
	return []Route{{Method: http.MethodGet, Path: "/health", Handler: h.Health}}
}

// Health answers 200 {"status":"ok"}, or 503 when the store does not respond.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		if err := h.db.PingContext(r.Context()); err != nil {
			if h.logger != nil {
				h.logger.Error("health check failed", "error", err)
			}
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
