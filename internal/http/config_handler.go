package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/example/availability-scheduler/internal/application"
)

type configService interface {
	GetConfig(ctx context.Context) (*application.Config, error)
	SaveConfig(ctx context.Context, principal application.Principal, input application.ConfigInput) (application.Config, error)
}

type ConfigHandler struct {
	service   configService
	responder responder
	logger    *slog.Logger
}

func NewConfigHandler(service configService, logger *slog.Logger) *ConfigHandler {
	base := defaultLogger(logger)
	return &ConfigHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ConfigHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ConfigHandler", operation, attrs...)
}

// Get returns the widget configuration, or a null config when none was saved.
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	config, err := h.service.GetConfig(r.Context())
	if err != nil {
		h.log(r.Context(), "Get").ErrorContext(r.Context(), "config lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	resp := ConfigResponse{}
	if config != nil {
		dto := ConfigToDTO(*config)
		resp.Config = &dto
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

func (h *ConfigHandler) Save(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req ConfigDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Save", "session_id", principal.SessionID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode config", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Save", "session_id", principal.SessionID)

	config, err := h.service.SaveConfig(r.Context(), principal, req.Input())
	if err != nil {
		logger.ErrorContext(r.Context(), "config save failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "config saved")
	dto := ConfigToDTO(config)
	h.responder.writeJSON(r.Context(), w, http.StatusOK, ConfigResponse{Config: &dto})
}
