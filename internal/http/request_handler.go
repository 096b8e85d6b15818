package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/availability-scheduler/internal/application"
)

type requestService interface {
	SubmitRequest(ctx context.Context, params application.SubmitRequestParams) (application.SlotRequest, error)
	ListRequests(ctx context.Context, principal application.Principal, filter application.RequestFilter) ([]application.SlotRequest, error)
	ReviewRequest(ctx context.Context, params application.ReviewRequestParams) (application.SlotRequest, error)
	UpdateRequest(ctx context.Context, params application.UpdateRequestParams) (application.SlotRequest, error)
	DeleteRequest(ctx context.Context, principal application.Principal, id string) error
}

type RequestHandler struct {
	service   requestService
	responder responder
	logger    *slog.Logger
}

func NewRequestHandler(service requestService, logger *slog.Logger) *RequestHandler {
	base := defaultLogger(logger)
	return &RequestHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *RequestHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "RequestHandler", operation, attrs...)
}

// Submit records a public join request.
func (h *RequestHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req SubmitSlotRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Submit", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode slot request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Submit", "slot_id", req.SlotID)

	request, err := h.service.SubmitRequest(r.Context(), application.SubmitRequestParams{
		SlotID:  req.SlotID,
		Contact: req.ContactDTO.Contact(),
	})
	if err != nil {
		logger.WarnContext(r.Context(), "slot request rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("request_id", request.ID).InfoContext(r.Context(), "slot request submitted")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, SlotRequestResponse{SlotRequest: SlotRequestToDTO(request)})
}

// List accepts optional profile_id and status query parameters.
func (h *RequestHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	query := r.URL.Query()
	filter := application.RequestFilter{
		ProfileID: query.Get("profile_id"),
		Status:    application.RequestStatus(strings.TrimSpace(query.Get("status"))),
	}
	logger := h.log(r.Context(), "List", "session_id", principal.SessionID, "profile_id", filter.ProfileID, "status", string(filter.Status))

	requests, err := h.service.ListRequests(r.Context(), principal, filter)
	if err != nil {
		logger.ErrorContext(r.Context(), "slot request list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(requests)).DebugContext(r.Context(), "slot requests listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, SlotRequestsResponse{SlotRequests: SlotRequestsToDTOs(requests)})
}

func (h *RequestHandler) Review(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	requestID, ok := h.requestID(w, r, "Review")
	if !ok {
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req ReviewSlotRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Review", "request_id", requestID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode review", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Review", "session_id", principal.SessionID, "request_id", requestID, "status", req.Status)

	request, err := h.service.ReviewRequest(r.Context(), application.ReviewRequestParams{
		Principal: principal,
		RequestID: requestID,
		Status:    application.RequestStatus(strings.TrimSpace(req.Status)),
		AdminNote: req.AdminNote,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "slot request review failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "slot request reviewed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, SlotRequestResponse{SlotRequest: SlotRequestToDTO(request)})
}

func (h *RequestHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	requestID, ok := h.requestID(w, r, "Update")
	if !ok {
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req ContactDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "request_id", requestID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode contact update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "session_id", principal.SessionID, "request_id", requestID)

	request, err := h.service.UpdateRequest(r.Context(), application.UpdateRequestParams{
		Principal: principal,
		RequestID: requestID,
		Contact:   req.Contact(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "slot request update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "slot request updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, SlotRequestResponse{SlotRequest: SlotRequestToDTO(request)})
}

func (h *RequestHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	requestID, ok := h.requestID(w, r, "Delete")
	if !ok {
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "session_id", principal.SessionID, "request_id", requestID)
	if err := h.service.DeleteRequest(r.Context(), principal, requestID); err != nil {
		logger.ErrorContext(r.Context(), "slot request delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "slot request deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *RequestHandler) requestID(w http.ResponseWriter, r *http.Request, operation string) (string, bool) {
	id, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.log(r.Context(), operation, "error_kind", "bad_request").ErrorContext(r.Context(), "missing slot request id")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRequestID)
		return "", false
	}
	return id, true
}
