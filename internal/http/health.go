package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	pinger    Pinger
	timeout   time.Duration
	responder responder
}

func NewHealthHandler(pinger Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{pinger: pinger, timeout: 2 * time.Second, responder: newResponder(defaultLogger(logger))}
}

type healthResponse struct {
	Status string `json:"status"`
}

func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	h.responder.writeJSON(r.Context(), w, http.StatusOK, healthResponse{Status: "ok"})
}

// Ready reports 503 while the database cannot be reached.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
		defer cancel()
		if err := h.pinger.PingContext(ctx); err != nil {
			h.responder.loggerFor(r.Context()).WarnContext(r.Context(), "readiness check failed", "error", err)
			h.responder.writeJSON(r.Context(), w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
			return
		}
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, healthResponse{Status: "ready"})
}
