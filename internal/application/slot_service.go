package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/availability-scheduler/internal/scheduler"
)

// SlotRepository captures the persistence operations needed by the service.
type SlotRepository interface {
	UpsertSlot(ctx context.Context, slot scheduler.Slot) (scheduler.Slot, error)
	GetSlot(ctx context.Context, id string) (scheduler.Slot, error)
	ListSlotsForProfile(ctx context.Context, profileID string) ([]scheduler.Slot, error)
	DeleteSlot(ctx context.Context, id string) error
}

// SlotService validates and stores the slots of a profile.
type SlotService struct {
	slots       SlotRepository
	profiles    ProfileRepository
	idGenerator func() string
	logger      *slog.Logger
}

// NewSlotService constructs a slot service with the provided dependencies.
func NewSlotService(slots SlotRepository, profiles ProfileRepository, idGenerator func() string) *SlotService {
	return NewSlotServiceWithLogger(slots, profiles, idGenerator, nil)
}

// NewSlotServiceWithLogger constructs a slot service with a specified logger.
func NewSlotServiceWithLogger(slots SlotRepository, profiles ProfileRepository, idGenerator func() string, logger *slog.Logger) *SlotService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	return &SlotService{slots: slots, profiles: profiles, idGenerator: idGenerator, logger: defaultLogger(logger)}
}

func (s *SlotService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "SlotService", operation, attrs...)
}

// ListSlots returns the slots of a profile ordered for its mode. Viewers only
// see slots whose visibility flag is not false, and only on public profiles.
func (s *SlotService) ListSlots(ctx context.Context, principal Principal, profileID string) (slots []scheduler.Slot, err error) {
	if s == nil {
		err = fmt.Errorf("SlotService is nil")
		return
	}
	if s.slots == nil || s.profiles == nil {
		err = fmt.Errorf("slot repository not configured")
		return
	}

	trimmed := strings.TrimSpace(profileID)
	logger := s.loggerWith(ctx, "ListSlots", "profile_id", trimmed, "admin", principal.IsAdmin)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list slots", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("count", len(slots)).DebugContext(ctx, "slots listed")
	}()

	var profile Profile
	profile, err = s.profiles.GetProfile(ctx, trimmed)
	if err != nil {
		err = mapRepoError(err, "profile_id")
		return
	}
	if !profile.IsPublic && !principal.IsAdmin {
		err = ErrNotFound
		return
	}

	var all []scheduler.Slot
	all, err = s.slots.ListSlotsForProfile(ctx, profile.ID)
	if err != nil {
		err = mapRepoError(err, "profile_id")
		return
	}

	slots = make([]scheduler.Slot, 0, len(all))
	for _, slot := range all {
		if principal.IsAdmin || slot.Visible() {
			slots = append(slots, slot)
		}
	}
	scheduler.SortSlots(slots, profile.Mode)
	return
}

// SaveSlot validates and upserts a slot for administrators. Calendar slots get
// their day of week from the date.
func (s *SlotService) SaveSlot(ctx context.Context, params SaveSlotParams) (slot scheduler.Slot, err error) {
	if s == nil {
		err = fmt.Errorf("SlotService is nil")
		return
	}

	logger := s.loggerWith(ctx, "SaveSlot",
		"session_id", params.Principal.SessionID,
		"slot_id", params.Input.ID,
		"profile_id", params.Input.ProfileID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to save slot", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("slot_id", slot.ID).InfoContext(ctx, "slot saved")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	var vErr *ValidationError
	slot, vErr = parseSlotInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if slot.ID == "" {
		slot.ID = s.idGenerator()
	}

	if s.profiles != nil {
		if _, err = s.profiles.GetProfile(ctx, slot.ProfileID); err != nil {
			if err = mapRepoError(err, "profile_id"); errors.Is(err, ErrNotFound) {
				err = fieldError("profile_id", "profile does not exist")
			}
			return
		}
	}

	if s.slots == nil {
		return
	}

	var persisted scheduler.Slot
	persisted, err = s.slots.UpsertSlot(ctx, slot)
	if err != nil {
		err = mapRepoError(err, "slot")
		return
	}
	slot = persisted
	return
}

// DeleteSlot removes a slot for administrators.
func (s *SlotService) DeleteSlot(ctx context.Context, principal Principal, id string) (err error) {
	if s == nil {
		return fmt.Errorf("SlotService is nil")
	}
	if s.slots == nil {
		return fmt.Errorf("slot repository not configured")
	}

	trimmed := strings.TrimSpace(id)
	logger := s.loggerWith(ctx, "DeleteSlot", "session_id", principal.SessionID, "slot_id", trimmed)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete slot", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "slot deleted")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if trimmed == "" {
		err = fieldError("id", "slot id is required")
		return
	}

	err = mapRepoError(s.slots.DeleteSlot(ctx, trimmed), "id")
	return
}

func parseSlotInput(input SlotInput) (scheduler.Slot, *ValidationError) {
	vErr := &ValidationError{}

	slot := scheduler.Slot{
		ID:             strings.TrimSpace(input.ID),
		ProfileID:      strings.TrimSpace(input.ProfileID),
		DayOfWeek:      input.DayOfWeek,
		SpotsTotal:     input.SpotsTotal,
		SpotsAvailable: input.SpotsAvailable,
		Label:          strings.TrimSpace(input.Label),
		Note:           strings.TrimSpace(input.Note),
		Visibility:     input.Visibility,
	}

	if slot.ProfileID == "" {
		vErr.add("profile_id", "profile id is required")
	}

	date, err := scheduler.ParseDate(input.Date)
	if err != nil {
		vErr.add("slot_date", "date must be YYYY-MM-DD")
	}
	slot.Date = date
	if slot.HasDate() {
		slot.SyncDayOfWeek()
	} else if !scheduler.ValidDayOfWeek(slot.DayOfWeek) {
		vErr.add("day_of_week", "day of week must be between 0 (Sunday) and 6 (Saturday)")
	}

	if slot.StartTime, err = scheduler.ParseTimeOfDay(input.StartTime); err != nil {
		vErr.add("start_time", "start time must be HH:MM")
	}
	if slot.EndTime, err = scheduler.ParseTimeOfDay(input.EndTime); err != nil {
		vErr.add("end_time", "end time must be HH:MM")
	}

	slot.Status = scheduler.StatusAvailable
	if status := strings.TrimSpace(input.Status); status != "" {
		if slot.Status, err = scheduler.ParseStatus(status); err != nil {
			vErr.add("status", "status must be one of Available, FewLeft, Full, Occupied, Hidden")
		}
	}

	if slot.SpotsTotal != nil && *slot.SpotsTotal < 0 {
		vErr.add("spots_total", "spots total must not be negative")
	}
	if slot.SpotsAvailable != nil && *slot.SpotsAvailable < 0 {
		vErr.add("spots_available", "spots available must not be negative")
	}

	return slot, vErr
}
