package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/availability-scheduler/internal/application"
)

type profileService interface {
	ListProfiles(ctx context.Context, principal application.Principal) ([]application.Profile, error)
	GetProfileBySlug(ctx context.Context, principal application.Principal, slug string) (application.Profile, error)
	SaveProfile(ctx context.Context, params application.SaveProfileParams) (application.Profile, error)
	DeleteProfile(ctx context.Context, principal application.Principal, id string) error
}

type ProfileHandler struct {
	service   profileService
	responder responder
	logger    *slog.Logger
}

func NewProfileHandler(service profileService, logger *slog.Logger) *ProfileHandler {
	base := defaultLogger(logger)
	return &ProfileHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ProfileHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ProfileHandler", operation, attrs...)
}

// List returns public profiles to viewers and every profile to admins.
func (h *ProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal := principalOrAnonymous(r.Context())
	logger := h.log(r.Context(), "List", "is_admin", principal.IsAdmin)

	profiles, err := h.service.ListProfiles(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "profile list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(profiles)).DebugContext(r.Context(), "profiles listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, ProfilesResponse{Profiles: ProfilesToDTOs(profiles)})
}

func (h *ProfileHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	slug, _ := ResourceIDFromContext(r.Context())
	principal := principalOrAnonymous(r.Context())
	logger := h.log(r.Context(), "GetBySlug", "slug", slug)

	profile, err := h.service.GetProfileBySlug(r.Context(), principal, slug)
	if err != nil {
		logger.WarnContext(r.Context(), "profile lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, ProfileResponse{Profile: ProfileToDTO(profile)})
}

// Save creates the profile when the body carries no id and updates it otherwise.
func (h *ProfileHandler) Save(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req ProfileDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Save", "session_id", principal.SessionID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode profile", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	creating := strings.TrimSpace(req.ID) == ""
	logger := h.log(r.Context(), "Save", "session_id", principal.SessionID, "profile_id", req.ID)

	profile, err := h.service.SaveProfile(r.Context(), application.SaveProfileParams{
		Principal: principal,
		Input:     req.Input(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "profile save failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	status := http.StatusOK
	if creating {
		status = http.StatusCreated
	}
	logger.With("profile_id", profile.ID, "slug", profile.Slug).InfoContext(r.Context(), "profile saved")
	h.responder.writeJSON(r.Context(), w, status, ProfileResponse{Profile: ProfileToDTO(profile)})
}

func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	profileID, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(profileID) == "" {
		h.log(r.Context(), "Delete", "error_kind", "bad_request").ErrorContext(r.Context(), "missing profile id for delete")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidProfileID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "session_id", principal.SessionID, "profile_id", profileID)
	if err := h.service.DeleteProfile(r.Context(), principal, profileID); err != nil {
		logger.ErrorContext(r.Context(), "profile delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "profile deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}
