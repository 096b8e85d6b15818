package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/availability-scheduler/internal/application"
	"github.com/example/availability-scheduler/internal/scheduler"
)

type slotService interface {
	ListSlots(ctx context.Context, principal application.Principal, profileID string) ([]scheduler.Slot, error)
	SaveSlot(ctx context.Context, params application.SaveSlotParams) (scheduler.Slot, error)
	DeleteSlot(ctx context.Context, principal application.Principal, id string) error
}

type SlotHandler struct {
	service   slotService
	responder responder
	logger    *slog.Logger
}

func NewSlotHandler(service slotService, logger *slog.Logger) *SlotHandler {
	base := defaultLogger(logger)
	return &SlotHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *SlotHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "SlotHandler", operation, attrs...)
}

// List returns the slots of the profile in the path. Viewers only see visible
// slots; admins see all of them.
func (h *SlotHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	profileID, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(profileID) == "" {
		h.log(r.Context(), "List", "error_kind", "bad_request").ErrorContext(r.Context(), "missing profile id for slot list")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidProfileID)
		return
	}

	principal := principalOrAnonymous(r.Context())
	logger := h.log(r.Context(), "List", "profile_id", profileID, "is_admin", principal.IsAdmin)

	slots, err := h.service.ListSlots(r.Context(), principal, profileID)
	if err != nil {
		logger.ErrorContext(r.Context(), "slot list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(slots)).DebugContext(r.Context(), "slots listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, SlotsResponse{Slots: SlotsToDTOs(slots)})
}

func (h *SlotHandler) Save(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req SlotDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Save", "session_id", principal.SessionID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode slot", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	creating := strings.TrimSpace(req.ID) == ""
	logger := h.log(r.Context(), "Save", "session_id", principal.SessionID, "slot_id", req.ID, "profile_id", req.ProfileID)

	slot, err := h.service.SaveSlot(r.Context(), application.SaveSlotParams{
		Principal: principal,
		Input:     req.Input(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "slot save failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	status := http.StatusOK
	if creating {
		status = http.StatusCreated
	}
	logger.With("slot_id", slot.ID).InfoContext(r.Context(), "slot saved")
	h.responder.writeJSON(r.Context(), w, status, SlotResponse{Slot: SlotToDTO(slot)})
}

func (h *SlotHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	slotID, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(slotID) == "" {
		h.log(r.Context(), "Delete", "error_kind", "bad_request").ErrorContext(r.Context(), "missing slot id for delete")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidSlotID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "session_id", principal.SessionID, "slot_id", slotID)
	if err := h.service.DeleteSlot(r.Context(), principal, slotID); err != nil {
		logger.ErrorContext(r.Context(), "slot delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "slot deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}
