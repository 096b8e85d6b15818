package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/availability-scheduler/internal/persistence"
)

var (
	profileCounter uint64
	slotCounter    uint64
	requestCounter uint64
)

// referenceTime is a Wednesday, so the Monday-start week around it runs from
// 1 Jan to 7 Jan 2024.
var referenceTime = time.Date(2024, time.January, 3, 12, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// ---------------------------- Profile fixtures ----------------------------

// ProfileOption configures a generated profile row.
type ProfileOption func(*persistence.Profile)

// NewProfile returns a deterministic public weekly profile.
func NewProfile(opts ...ProfileOption) persistence.Profile {
	idx := atomic.AddUint64(&profileCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	profile := persistence.Profile{
		ID:        fmt.Sprintf("profile-%03d", idx),
		Slug:      fmt.Sprintf("profile-%03d", idx),
		Title:     fmt.Sprintf("Profile %03d", idx),
		Mode:      "weekly",
		Timezone:  Ptr("Europe/Chisinau"),
		IsPublic:  true,
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&profile)
	}
	return profile
}

// WithProfileID overrides the generated profile ID.
func WithProfileID(id string) ProfileOption {
	return func(p *persistence.Profile) { p.ID = id }
}

// WithProfileSlug overrides the generated slug.
func WithProfileSlug(slug string) ProfileOption {
	return func(p *persistence.Profile) { p.Slug = slug }
}

// WithProfileMode sets the schedule mode.
func WithProfileMode(mode string) ProfileOption {
	return func(p *persistence.Profile) { p.Mode = mode }
}

// WithProfilePrivate hides the profile from public listings.
func WithProfilePrivate() ProfileOption {
	return func(p *persistence.Profile) { p.IsPublic = false }
}

// WithProfileCreatedAt sets both timestamps.
func WithProfileCreatedAt(t time.Time) ProfileOption {
	return func(p *persistence.Profile) {
		p.CreatedAt = t
		p.UpdatedAt = t
	}
}

// ------------------------------ Slot fixtures ------------------------------

// SlotOption configures a generated slot row.
type SlotOption func(*persistence.Slot)

// NewSlot returns a deterministic weekly Monday 10:00-11:00 slot for profileID.
func NewSlot(profileID string, opts ...SlotOption) persistence.Slot {
	idx := atomic.AddUint64(&slotCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Second)
	slot := persistence.Slot{
		ID:             fmt.Sprintf("slot-%03d", idx),
		ProfileID:      profileID,
		DayOfWeek:      1,
		StartTime:      "10:00",
		EndTime:        "11:00",
		Status:         "Available",
		SpotsTotal:     Ptr(1),
		SpotsAvailable: Ptr(1),
		Label:          fmt.Sprintf("Slot %03d", idx),
		Visibility:     Ptr(true),
		CreatedAt:      created,
		UpdatedAt:      created,
	}
	for _, opt := range opts {
		opt(&slot)
	}
	return slot
}

// WithSlotID overrides the generated slot ID.
func WithSlotID(id string) SlotOption {
	return func(s *persistence.Slot) { s.ID = id }
}

// WithSlotWeekly places the slot on a weekday with the given clock times.
func WithSlotWeekly(dayOfWeek int, start, end string) SlotOption {
	return func(s *persistence.Slot) {
		s.SlotDate = nil
		s.DayOfWeek = dayOfWeek
		s.StartTime = start
		s.EndTime = end
	}
}

// WithSlotDate pins the slot to a calendar date; dayOfWeek must match it.
func WithSlotDate(date string, dayOfWeek int) SlotOption {
	return func(s *persistence.Slot) {
		s.SlotDate = Ptr(date)
		s.DayOfWeek = dayOfWeek
	}
}

// WithSlotStatus sets the slot status.
func WithSlotStatus(status string) SlotOption {
	return func(s *persistence.Slot) { s.Status = status }
}

// WithSlotLabel sets the slot label.
func WithSlotLabel(label string) SlotOption {
	return func(s *persistence.Slot) { s.Label = label }
}

// WithSlotHidden sets visibility to false.
func WithSlotHidden() SlotOption {
	return func(s *persistence.Slot) { s.Visibility = Ptr(false) }
}

// -------------------------- Slot request fixtures --------------------------

// SlotRequestOption configures a generated slot request row.
type SlotRequestOption func(*persistence.SlotRequest)

// NewSlotRequest returns a pending request snapshotting slot.
func NewSlotRequest(slot persistence.Slot, opts ...SlotRequestOption) persistence.SlotRequest {
	idx := atomic.AddUint64(&requestCounter, 1)
	request := persistence.SlotRequest{
		ID:             fmt.Sprintf("request-%03d", idx),
		ProfileID:      slot.ProfileID,
		SlotID:         slot.ID,
		StudentName:    Ptr(fmt.Sprintf("Student %03d", idx)),
		StudentContact: Ptr(fmt.Sprintf("student%03d@example.com", idx)),
		Status:         "pending",
		CreatedAt:      referenceTime.Add(time.Duration(idx) * time.Minute),
		SlotDate:       slot.SlotDate,
		SlotDayOfWeek:  Ptr(slot.DayOfWeek),
		SlotStartTime:  Ptr(slot.StartTime),
		SlotEndTime:    Ptr(slot.EndTime),
		SlotLabel:      Ptr(slot.Label),
	}
	for _, opt := range opts {
		opt(&request)
	}
	return request
}

// WithRequestID overrides the generated request ID.
func WithRequestID(id string) SlotRequestOption {
	return func(r *persistence.SlotRequest) { r.ID = id }
}

// WithRequestStatus sets the review status.
func WithRequestStatus(status string) SlotRequestOption {
	return func(r *persistence.SlotRequest) { r.Status = status }
}

// WithRequestCreatedAt sets the submission time.
func WithRequestCreatedAt(t time.Time) SlotRequestOption {
	return func(r *persistence.SlotRequest) { r.CreatedAt = t }
}
