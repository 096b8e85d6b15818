package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/availability-scheduler/internal/application"
	"github.com/example/availability-scheduler/internal/logging"
)

var (
	errBadRequestBody      = errors.New("request body is malformed")
	errInvalidProfileID    = errors.New("profile id is invalid")
	errInvalidSlotID       = errors.New("slot id is invalid")
	errInvalidRequestID    = errors.New("slot request id is invalid")
	errMissingSessionToken = errors.New("a session token is required")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := statusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, ErrorResponse{Message: message})
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	switch {
	case errors.Is(err, application.ErrInvalidCredentials):
		r.writeJSON(ctx, w, http.StatusUnauthorized, ErrorResponse{
			ErrorCode: ErrorCodeInvalidCredentials,
			Message:   "the admin password is incorrect or the session is unknown",
		})
	case errors.Is(err, application.ErrSessionExpired), errors.Is(err, application.ErrSessionRevoked):
		r.writeJSON(ctx, w, http.StatusUnauthorized, ErrorResponse{
			ErrorCode: ErrorCodeSessionExpired,
			Message:   "the session has ended, log in again",
		})
	case errors.Is(err, application.ErrUnauthorized):
		r.writeJSON(ctx, w, http.StatusForbidden, ErrorResponse{
			ErrorCode: ErrorCodeForbidden,
			Message:   statusMessage(http.StatusForbidden),
		})
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, ErrorResponse{Message: statusMessage(http.StatusNotFound)})
	case errors.Is(err, application.ErrAlreadyExists):
		r.writeJSON(ctx, w, http.StatusConflict, ErrorResponse{Message: statusMessage(http.StatusConflict)})
	case errors.Is(err, application.ErrRateLimited):
		r.writeJSON(ctx, w, http.StatusTooManyRequests, ErrorResponse{
			ErrorCode: ErrorCodeRateLimited,
			Message:   statusMessage(http.StatusTooManyRequests),
		})
	default:
		var vErr *application.ValidationError
		if errors.As(err, &vErr) {
			r.writeJSON(ctx, w, http.StatusUnprocessableEntity, ErrorResponse{
				Message: statusMessage(http.StatusUnprocessableEntity),
				Errors:  validationDetails(vErr),
			})
			return
		}

		r.writeJSON(ctx, w, http.StatusInternalServerError, ErrorResponse{Message: statusMessage(http.StatusInternalServerError)})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := logging.FromContext(ctx); logger != nil {
		return logger
	}
	return logging.Or(r.logger)
}

func statusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "the request could not be understood"
	case http.StatusUnauthorized:
		return "authentication is required"
	case http.StatusForbidden:
		return "you are not allowed to perform this operation"
	case http.StatusNotFound:
		return "the requested resource was not found"
	case http.StatusConflict:
		return "the request conflicts with an existing record"
	case http.StatusUnprocessableEntity:
		return "some fields are invalid"
	case http.StatusTooManyRequests:
		return "too many requests, try again later"
	case http.StatusServiceUnavailable:
		return "the service is temporarily unavailable"
	default:
		return "an internal server error occurred"
	}
}

func validationDetails(vErr *application.ValidationError) map[string]string {
	if vErr == nil || len(vErr.FieldErrors) == 0 {
		return nil
	}
	details := make(map[string]string, len(vErr.FieldErrors))
	for field, msg := range vErr.FieldErrors {
		details[field] = msg
	}
	return details
}

// Error codes carried in ErrorResponse.ErrorCode.
const (
	ErrorCodeInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	ErrorCodeSessionExpired     = "AUTH_SESSION_EXPIRED"
	ErrorCodeForbidden          = "AUTH_FORBIDDEN"
	ErrorCodeRateLimited        = "RATE_LIMITED"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}
