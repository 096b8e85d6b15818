package application

import (
	"time"

	"github.com/example/availability-scheduler/internal/scheduler"
)

// Principal represents the caller invoking a service method. Anonymous
// viewers carry the zero value.
type Principal struct {
	SessionID string
	IsAdmin   bool
}

// Anonymous is the principal of unauthenticated widget viewers.
var Anonymous = Principal{}

// Config is the singleton widget configuration.
type Config struct {
	Title string
	// DefaultLanguage and Timezone are empty when unset.
	DefaultLanguage string
	Timezone        string
	ShowFullSlots   bool
	UpdatedAt       time.Time
}

// ConfigInput captures caller provided configuration fields.
type ConfigInput struct {
	Title           string
	DefaultLanguage string
	Timezone        string
	// ShowFullSlots nil keeps the default of showing full slots.
	ShowFullSlots *bool
}

// Profile is one published schedule view.
type Profile struct {
	ID              string
	Slug            string
	Title           string
	Description     string
	Mode            scheduler.Mode
	Timezone        string
	DefaultLanguage string
	IsPublic        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ProfileInput captures caller provided profile fields. An empty ID creates
// a new profile.
type ProfileInput struct {
	ID              string
	Slug            string
	Title           string
	Description     string
	Mode            string
	Timezone        string
	DefaultLanguage string
	IsPublic        bool
}

// SaveProfileParams wraps the data required to upsert a profile.
type SaveProfileParams struct {
	Principal Principal
	Input     ProfileInput
}

// SlotInput captures caller provided slot fields in their wire form so that
// every malformed field can be reported at once.
type SlotInput struct {
	ID             string
	ProfileID      string
	Date           string
	DayOfWeek      int
	StartTime      string
	EndTime        string
	Status         string
	SpotsTotal     *int
	SpotsAvailable *int
	Label          string
	Note           string
	Visibility     *bool
}

// SaveSlotParams wraps the data required to upsert a slot.
type SaveSlotParams struct {
	Principal Principal
	Input     SlotInput
}

// RequestStatus is the review state of a slot request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// ParseRequestStatus validates a stored or submitted status literal.
func ParseRequestStatus(value string) (RequestStatus, bool) {
	switch RequestStatus(value) {
	case RequestPending, RequestApproved, RequestRejected:
		return RequestStatus(value), true
	}
	return "", false
}

// Contact holds the details a viewer leaves with a join request.
type Contact struct {
	Name  string
	Value string
	Class string
	Note  string
}

// SlotSnapshot is the copy of the slot taken when a request is submitted, so
// the request stays readable after the slot is edited or deleted.
type SlotSnapshot struct {
	Date      scheduler.Date
	DayOfWeek int
	StartTime scheduler.TimeOfDay
	EndTime   scheduler.TimeOfDay
	Label     string
}

// Slot rebuilds a displayable slot from the snapshot.
func (s SlotSnapshot) Slot(id, profileID string) scheduler.Slot {
	return scheduler.Slot{
		ID:        id,
		ProfileID: profileID,
		Date:      s.Date,
		DayOfWeek: s.DayOfWeek,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
		Label:     s.Label,
	}
}

// SlotRequest is a viewer's request to join a slot.
type SlotRequest struct {
	ID           string
	ProfileID    string
	ProfileSlug  string
	ProfileTitle string
	SlotID       string
	Contact      Contact
	Status       RequestStatus
	AdminNote    string
	CreatedAt    time.Time
	ReviewedAt   *time.Time
	// Snapshot is nil for requests whose slot was unknown at submission.
	Snapshot *SlotSnapshot
}

// SubmitRequestParams wraps a public join request.
type SubmitRequestParams struct {
	SlotID  string
	Contact Contact
}

// RequestFilter narrows slot request listings. Zero fields match everything.
type RequestFilter struct {
	ProfileID string
	Status    RequestStatus
}

// ReviewRequestParams wraps an admin decision on a request.
type ReviewRequestParams struct {
	Principal Principal
	RequestID string
	Status    RequestStatus
	AdminNote string
}

// UpdateRequestParams wraps an admin correction of a request's contact details.
type UpdateRequestParams struct {
	Principal Principal
	RequestID string
	Contact   Contact
}

// AdminCredential is the stored admin password hash.
type AdminCredential struct {
	PasswordHash string
	UpdatedAt    time.Time
}

// Session is an issued admin session.
type Session struct {
	ID        string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

// LoginParams carries the admin password.
type LoginParams struct {
	Password string
}

// ChangePasswordParams carries an admin password change.
type ChangePasswordParams struct {
	Principal       Principal
	CurrentPassword string
	NewPassword     string
}
