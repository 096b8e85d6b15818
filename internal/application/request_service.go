package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// SlotRequestRepository captures the persistence operations needed by the service.
type SlotRequestRepository interface {
	CreateSlotRequest(ctx context.Context, request SlotRequest) (SlotRequest, error)
	GetSlotRequest(ctx context.Context, id string) (SlotRequest, error)
	ListSlotRequests(ctx context.Context, filter RequestFilter) ([]SlotRequest, error)
	UpdateSlotRequest(ctx context.Context, request SlotRequest) (SlotRequest, error)
	DeleteSlotRequest(ctx context.Context, id string) error
}

// RequestService handles join requests: public submission and admin review.
type RequestService struct {
	requests    SlotRequestRepository
	slots       SlotRepository
	profiles    ProfileRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewRequestService constructs a request service with the provided dependencies.
func NewRequestService(requests SlotRequestRepository, slots SlotRepository, profiles ProfileRepository, idGenerator func() string, now func() time.Time) *RequestService {
	return NewRequestServiceWithLogger(requests, slots, profiles, idGenerator, now, nil)
}

// NewRequestServiceWithLogger constructs a request service with a specified logger.
func NewRequestServiceWithLogger(requests SlotRequestRepository, slots SlotRepository, profiles ProfileRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *RequestService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &RequestService{requests: requests, slots: slots, profiles: profiles, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *RequestService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RequestService", operation, attrs...)
}

// SubmitRequest records a pending join request for a visible, selectable
// slot of a public profile and snapshots the slot's schedule into it.
func (s *RequestService) SubmitRequest(ctx context.Context, params SubmitRequestParams) (request SlotRequest, err error) {
	if s == nil {
		err = fmt.Errorf("RequestService is nil")
		return
	}
	if s.requests == nil || s.slots == nil || s.profiles == nil {
		err = fmt.Errorf("request repository not configured")
		return
	}

	slotID := strings.TrimSpace(params.SlotID)
	logger := s.loggerWith(ctx, "SubmitRequest", "slot_id", slotID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to submit slot request", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("request_id", request.ID, "profile_id", request.ProfileID).InfoContext(ctx, "slot request submitted")
	}()

	contact := normalizeContact(params.Contact)
	vErr := validateContact(contact, true)
	if slotID == "" {
		vErr.add("slot_id", "slot id is required")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	slot, getErr := s.slots.GetSlot(ctx, slotID)
	if getErr != nil {
		if err = mapRepoError(getErr, "slot_id"); errors.Is(err, ErrNotFound) {
			err = fieldError("slot_id", "slot does not exist")
		}
		return
	}
	if !slot.Visible() || !slot.Selectable() {
		err = fieldError("slot_id", "slot is not open for requests")
		return
	}

	// Slots of private profiles are hidden from visitors, so they read as closed.
	profile, getErr := s.profiles.GetProfile(ctx, slot.ProfileID)
	if getErr != nil {
		if err = mapRepoError(getErr, "slot_id"); errors.Is(err, ErrNotFound) {
			err = fieldError("slot_id", "slot is not open for requests")
		}
		return
	}
	if !profile.IsPublic {
		err = fieldError("slot_id", "slot is not open for requests")
		return
	}

	request = SlotRequest{
		ID:        s.idGenerator(),
		ProfileID: slot.ProfileID,
		SlotID:    slot.ID,
		Contact:   contact,
		Status:    RequestPending,
		CreatedAt: s.now(),
		Snapshot: &SlotSnapshot{
			Date:      slot.Date,
			DayOfWeek: slot.DayOfWeek,
			StartTime: slot.StartTime,
			EndTime:   slot.EndTime,
			Label:     slot.Label,
		},
	}

	var persisted SlotRequest
	persisted, err = s.requests.CreateSlotRequest(ctx, request)
	if err != nil {
		err = mapRepoError(err, "slot_id")
		return
	}
	request = persisted
	return
}

// ListRequests returns join requests newest first for administrators.
func (s *RequestService) ListRequests(ctx context.Context, principal Principal, filter RequestFilter) (requests []SlotRequest, err error) {
	if s == nil {
		err = fmt.Errorf("RequestService is nil")
		return
	}
	if s.requests == nil {
		err = fmt.Errorf("request repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "ListRequests",
		"session_id", principal.SessionID,
		"profile_id", filter.ProfileID,
		"status", string(filter.Status),
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list slot requests", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("count", len(requests)).DebugContext(ctx, "slot requests listed")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	filter.ProfileID = strings.TrimSpace(filter.ProfileID)
	if filter.Status != "" {
		if _, ok := ParseRequestStatus(string(filter.Status)); !ok {
			err = fieldError("status", "status must be one of pending, approved, rejected")
			return
		}
	}

	requests, err = s.requests.ListSlotRequests(ctx, filter)
	if err != nil {
		err = mapRepoError(err, "filter")
	}
	return
}

// ReviewRequest approves or rejects a request and stamps the review time.
func (s *RequestService) ReviewRequest(ctx context.Context, params ReviewRequestParams) (request SlotRequest, err error) {
	if s == nil {
		err = fmt.Errorf("RequestService is nil")
		return
	}
	if s.requests == nil {
		err = fmt.Errorf("request repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "ReviewRequest",
		"session_id", params.Principal.SessionID,
		"request_id", params.RequestID,
		"status", string(params.Status),
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to review slot request", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "slot request reviewed")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	switch params.Status {
	case RequestApproved, RequestRejected:
	default:
		err = fieldError("status", "status must be approved or rejected")
		return
	}

	request, err = s.requests.GetSlotRequest(ctx, strings.TrimSpace(params.RequestID))
	if err != nil {
		err = mapRepoError(err, "request_id")
		return
	}

	reviewedAt := s.now()
	request.Status = params.Status
	request.AdminNote = strings.TrimSpace(params.AdminNote)
	request.ReviewedAt = &reviewedAt

	request, err = s.requests.UpdateSlotRequest(ctx, request)
	if err != nil {
		err = mapRepoError(err, "status")
	}
	return
}

// UpdateRequest corrects the contact details of a request.
func (s *RequestService) UpdateRequest(ctx context.Context, params UpdateRequestParams) (request SlotRequest, err error) {
	if s == nil {
		err = fmt.Errorf("RequestService is nil")
		return
	}
	if s.requests == nil {
		err = fmt.Errorf("request repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateRequest",
		"session_id", params.Principal.SessionID,
		"request_id", params.RequestID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update slot request", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "slot request updated")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	contact := normalizeContact(params.Contact)
	if vErr := validateContact(contact, false); vErr.HasErrors() {
		err = vErr
		return
	}

	request, err = s.requests.GetSlotRequest(ctx, strings.TrimSpace(params.RequestID))
	if err != nil {
		err = mapRepoError(err, "request_id")
		return
	}

	request.Contact = contact
	request, err = s.requests.UpdateSlotRequest(ctx, request)
	if err != nil {
		err = mapRepoError(err, "contact")
	}
	return
}

// DeleteRequest removes a request for administrators.
func (s *RequestService) DeleteRequest(ctx context.Context, principal Principal, id string) (err error) {
	if s == nil {
		return fmt.Errorf("RequestService is nil")
	}
	if s.requests == nil {
		return fmt.Errorf("request repository not configured")
	}

	trimmed := strings.TrimSpace(id)
	logger := s.loggerWith(ctx, "DeleteRequest", "session_id", principal.SessionID, "request_id", trimmed)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete slot request", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "slot request deleted")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if trimmed == "" {
		err = fieldError("id", "request id is required")
		return
	}

	err = mapRepoError(s.requests.DeleteSlotRequest(ctx, trimmed), "id")
	return
}

func normalizeContact(contact Contact) Contact {
	return Contact{
		Name:  strings.TrimSpace(contact.Name),
		Value: strings.TrimSpace(contact.Value),
		Class: strings.TrimSpace(contact.Class),
		Note:  strings.TrimSpace(contact.Note),
	}
}

// validateContact requires a name and a contact; submissions also need the class.
func validateContact(contact Contact, requireClass bool) *ValidationError {
	vErr := &ValidationError{}
	if contact.Name == "" {
		vErr.add("student_name", "name is required")
	}
	if contact.Value == "" {
		vErr.add("student_contact", "contact is required")
	}
	if requireClass && contact.Class == "" {
		vErr.add("student_class", "class is required")
	}
	return vErr
}
