package http

import (
	"fmt"
	"time"

	"github.com/example/availability-scheduler/internal/application"
	"github.com/example/availability-scheduler/internal/scheduler"
)

// The DTOs below are the wire contract of the store API. They are exported so
// the widget store client decodes exactly what the handlers encode.

// ConfigDTO is the singleton widget configuration.
type ConfigDTO struct {
	Title           string `json:"title"`
	DefaultLanguage string `json:"default_language,omitempty"`
	Timezone        string `json:"timezone,omitempty"`
	ShowFullSlots   *bool  `json:"show_full_slots,omitempty"`
	UpdatedAt       string `json:"updated_at,omitempty"`
}

// ConfigResponse wraps the configuration. Config is null when none was saved.
type ConfigResponse struct {
	Config *ConfigDTO `json:"config"`
}

// ProfileDTO is one schedule view.
type ProfileDTO struct {
	ID              string `json:"id"`
	Slug            string `json:"slug"`
	Title           string `json:"title"`
	Description     string `json:"description,omitempty"`
	Mode            string `json:"mode"`
	Timezone        string `json:"timezone,omitempty"`
	DefaultLanguage string `json:"default_language,omitempty"`
	IsPublic        bool   `json:"is_public"`
	CreatedAt       string `json:"created_at,omitempty"`
	UpdatedAt       string `json:"updated_at,omitempty"`
}

type ProfileResponse struct {
	Profile ProfileDTO `json:"profile"`
}

type ProfilesResponse struct {
	Profiles []ProfileDTO `json:"profiles"`
}

// SlotDTO is one offered window. Times are HH:MM in the profile timezone.
type SlotDTO struct {
	ID             string `json:"id"`
	ProfileID      string `json:"profile_id,omitempty"`
	Date           string `json:"date,omitempty"`
	DayOfWeek      int    `json:"day_of_week"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
	Status         string `json:"status"`
	SpotsTotal     *int   `json:"spots_total,omitempty"`
	SpotsAvailable *int   `json:"spots_available,omitempty"`
	Label          string `json:"label"`
	Note           string `json:"note,omitempty"`
	Visibility     *bool  `json:"visibility,omitempty"`
}

type SlotResponse struct {
	Slot SlotDTO `json:"slot"`
}

type SlotsResponse struct {
	Slots []SlotDTO `json:"slots"`
}

// SlotRequestDTO is a join request with its flattened slot snapshot.
type SlotRequestDTO struct {
	ID             string `json:"id"`
	ProfileID      string `json:"profile_id"`
	ProfileSlug    string `json:"profile_slug,omitempty"`
	ProfileTitle   string `json:"profile_title,omitempty"`
	SlotID         string `json:"slot_id"`
	StudentName    string `json:"student_name"`
	StudentContact string `json:"student_contact"`
	StudentClass   string `json:"student_class,omitempty"`
	StudentNote    string `json:"student_note,omitempty"`
	Status         string `json:"status"`
	AdminNote      string `json:"admin_note,omitempty"`
	CreatedAt      string `json:"created_at"`
	ReviewedAt     string `json:"reviewed_at,omitempty"`
	SlotDate       string `json:"slot_date,omitempty"`
	SlotDayOfWeek  *int   `json:"slot_day_of_week,omitempty"`
	SlotStartTime  string `json:"slot_start_time,omitempty"`
	SlotEndTime    string `json:"slot_end_time,omitempty"`
	SlotLabel      string `json:"slot_label,omitempty"`
}

type SlotRequestResponse struct {
	SlotRequest SlotRequestDTO `json:"slot_request"`
}

type SlotRequestsResponse struct {
	SlotRequests []SlotRequestDTO `json:"slot_requests"`
}

// ContactDTO carries the contact fields of a submission or correction.
type ContactDTO struct {
	StudentName    string `json:"student_name"`
	StudentContact string `json:"student_contact"`
	StudentClass   string `json:"student_class,omitempty"`
	StudentNote    string `json:"student_note,omitempty"`
}

// SubmitSlotRequestDTO is the body of POST /slot-requests.
type SubmitSlotRequestDTO struct {
	SlotID string `json:"slot_id"`
	ContactDTO
}

// ReviewSlotRequestDTO is the body of POST /admin/slot-requests/{id}/review.
type ReviewSlotRequestDTO struct {
	Status    string `json:"status"`
	AdminNote string `json:"admin_note,omitempty"`
}

// LoginRequest is the body of POST /admin/sessions.
type LoginRequest struct {
	Password string `json:"password"`
}

// LoginResponse carries the issued session token.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

// SessionResponse answers GET /admin/sessions/current.
type SessionResponse struct {
	SessionID string `json:"session_id"`
	IsAdmin   bool   `json:"is_admin"`
}

// ChangePasswordRequest is the body of POST /admin/password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, value)
}

func ConfigToDTO(config application.Config) ConfigDTO {
	show := config.ShowFullSlots
	return ConfigDTO{
		Title:           config.Title,
		DefaultLanguage: config.DefaultLanguage,
		Timezone:        config.Timezone,
		ShowFullSlots:   &show,
		UpdatedAt:       formatTime(config.UpdatedAt),
	}
}

// Input converts a request body into service input.
func (d ConfigDTO) Input() application.ConfigInput {
	return application.ConfigInput{
		Title:           d.Title,
		DefaultLanguage: d.DefaultLanguage,
		Timezone:        d.Timezone,
		ShowFullSlots:   d.ShowFullSlots,
	}
}

// Config converts a decoded response. A missing show_full_slots means true.
func (d ConfigDTO) Config() (application.Config, error) {
	updated, err := parseTime(d.UpdatedAt)
	if err != nil {
		return application.Config{}, fmt.Errorf("config updated_at: %w", err)
	}
	return application.Config{
		Title:           d.Title,
		DefaultLanguage: d.DefaultLanguage,
		Timezone:        d.Timezone,
		ShowFullSlots:   d.ShowFullSlots == nil || *d.ShowFullSlots,
		UpdatedAt:       updated,
	}, nil
}

func ProfileToDTO(profile application.Profile) ProfileDTO {
	return ProfileDTO{
		ID:              profile.ID,
		Slug:            profile.Slug,
		Title:           profile.Title,
		Description:     profile.Description,
		Mode:            profile.Mode.String(),
		Timezone:        profile.Timezone,
		DefaultLanguage: profile.DefaultLanguage,
		IsPublic:        profile.IsPublic,
		CreatedAt:       formatTime(profile.CreatedAt),
		UpdatedAt:       formatTime(profile.UpdatedAt),
	}
}

func ProfilesToDTOs(profiles []application.Profile) []ProfileDTO {
	out := make([]ProfileDTO, 0, len(profiles))
	for _, profile := range profiles {
		out = append(out, ProfileToDTO(profile))
	}
	return out
}

func (d ProfileDTO) Input() application.ProfileInput {
	return application.ProfileInput{
		ID:              d.ID,
		Slug:            d.Slug,
		Title:           d.Title,
		Description:     d.Description,
		Mode:            d.Mode,
		Timezone:        d.Timezone,
		DefaultLanguage: d.DefaultLanguage,
		IsPublic:        d.IsPublic,
	}
}

func (d ProfileDTO) Profile() (application.Profile, error) {
	created, err := parseTime(d.CreatedAt)
	if err != nil {
		return application.Profile{}, fmt.Errorf("profile %s created_at: %w", d.ID, err)
	}
	updated, err := parseTime(d.UpdatedAt)
	if err != nil {
		return application.Profile{}, fmt.Errorf("profile %s updated_at: %w", d.ID, err)
	}
	return application.Profile{
		ID:              d.ID,
		Slug:            d.Slug,
		Title:           d.Title,
		Description:     d.Description,
		Mode:            scheduler.ParseMode(d.Mode),
		Timezone:        d.Timezone,
		DefaultLanguage: d.DefaultLanguage,
		IsPublic:        d.IsPublic,
		CreatedAt:       created,
		UpdatedAt:       updated,
	}, nil
}

func SlotToDTO(slot scheduler.Slot) SlotDTO {
	return SlotDTO{
		ID:             slot.ID,
		ProfileID:      slot.ProfileID,
		Date:           slot.Date.String(),
		DayOfWeek:      slot.DayOfWeek,
		StartTime:      slot.StartTime.String(),
		EndTime:        slot.EndTime.String(),
		Status:         slot.Status.String(),
		SpotsTotal:     slot.SpotsTotal,
		SpotsAvailable: slot.SpotsAvailable,
		Label:          slot.Label,
		Note:           slot.Note,
		Visibility:     slot.Visibility,
	}
}

func SlotsToDTOs(slots []scheduler.Slot) []SlotDTO {
	out := make([]SlotDTO, 0, len(slots))
	for _, slot := range slots {
		out = append(out, SlotToDTO(slot))
	}
	return out
}

func (d SlotDTO) Input() application.SlotInput {
	return application.SlotInput{
		ID:             d.ID,
		ProfileID:      d.ProfileID,
		Date:           d.Date,
		DayOfWeek:      d.DayOfWeek,
		StartTime:      d.StartTime,
		EndTime:        d.EndTime,
		Status:         d.Status,
		SpotsTotal:     d.SpotsTotal,
		SpotsAvailable: d.SpotsAvailable,
		Label:          d.Label,
		Note:           d.Note,
		Visibility:     d.Visibility,
	}
}

// Slot parses a decoded slot back into the scheduler model.
func (d SlotDTO) Slot() (scheduler.Slot, error) {
	date, err := scheduler.ParseDate(d.Date)
	if err != nil {
		return scheduler.Slot{}, fmt.Errorf("slot %s: %w", d.ID, err)
	}
	start, err := scheduler.ParseTimeOfDay(d.StartTime)
	if err != nil {
		return scheduler.Slot{}, fmt.Errorf("slot %s start: %w", d.ID, err)
	}
	end, err := scheduler.ParseTimeOfDay(d.EndTime)
	if err != nil {
		return scheduler.Slot{}, fmt.Errorf("slot %s end: %w", d.ID, err)
	}
	status, err := scheduler.ParseStatus(d.Status)
	if err != nil {
		return scheduler.Slot{}, fmt.Errorf("slot %s: %w", d.ID, err)
	}
	return scheduler.Slot{
		ID:             d.ID,
		ProfileID:      d.ProfileID,
		Date:           date,
		DayOfWeek:      d.DayOfWeek,
		StartTime:      start,
		EndTime:        end,
		Status:         status,
		SpotsTotal:     d.SpotsTotal,
		SpotsAvailable: d.SpotsAvailable,
		Label:          d.Label,
		Note:           d.Note,
		Visibility:     d.Visibility,
	}, nil
}

func ContactToDTO(contact application.Contact) ContactDTO {
	return ContactDTO{
		StudentName:    contact.Name,
		StudentContact: contact.Value,
		StudentClass:   contact.Class,
		StudentNote:    contact.Note,
	}
}

func (d ContactDTO) Contact() application.Contact {
	return application.Contact{
		Name:  d.StudentName,
		Value: d.StudentContact,
		Class: d.StudentClass,
		Note:  d.StudentNote,
	}
}

func SlotRequestToDTO(request application.SlotRequest) SlotRequestDTO {
	contact := ContactToDTO(request.Contact)
	dto := SlotRequestDTO{
		ID:             request.ID,
		ProfileID:      request.ProfileID,
		ProfileSlug:    request.ProfileSlug,
		ProfileTitle:   request.ProfileTitle,
		SlotID:         request.SlotID,
		StudentName:    contact.StudentName,
		StudentContact: contact.StudentContact,
		StudentClass:   contact.StudentClass,
		StudentNote:    contact.StudentNote,
		Status:         string(request.Status),
		AdminNote:      request.AdminNote,
		CreatedAt:      formatTime(request.CreatedAt),
	}
	if request.ReviewedAt != nil {
		dto.ReviewedAt = formatTime(*request.ReviewedAt)
	}
	if snap := request.Snapshot; snap != nil {
		dow := snap.DayOfWeek
		dto.SlotDate = snap.Date.String()
		dto.SlotDayOfWeek = &dow
		dto.SlotStartTime = snap.StartTime.String()
		dto.SlotEndTime = snap.EndTime.String()
		dto.SlotLabel = snap.Label
	}
	return dto
}

func SlotRequestsToDTOs(requests []application.SlotRequest) []SlotRequestDTO {
	out := make([]SlotRequestDTO, 0, len(requests))
	for _, request := range requests {
		out = append(out, SlotRequestToDTO(request))
	}
	return out
}

// SlotRequest parses a decoded request. The snapshot is rebuilt only when the
// start and end times are present.
func (d SlotRequestDTO) SlotRequest() (application.SlotRequest, error) {
	status, ok := application.ParseRequestStatus(d.Status)
	if !ok {
		return application.SlotRequest{}, fmt.Errorf("slot request %s: unknown status %q", d.ID, d.Status)
	}
	created, err := parseTime(d.CreatedAt)
	if err != nil {
		return application.SlotRequest{}, fmt.Errorf("slot request %s created_at: %w", d.ID, err)
	}
	request := application.SlotRequest{
		ID:           d.ID,
		ProfileID:    d.ProfileID,
		ProfileSlug:  d.ProfileSlug,
		ProfileTitle: d.ProfileTitle,
		SlotID:       d.SlotID,
		Contact: ContactDTO{
			StudentName:    d.StudentName,
			StudentContact: d.StudentContact,
			StudentClass:   d.StudentClass,
			StudentNote:    d.StudentNote,
		}.Contact(),
		Status:    status,
		AdminNote: d.AdminNote,
		CreatedAt: created,
	}
	if d.ReviewedAt != "" {
		reviewed, err := parseTime(d.ReviewedAt)
		if err != nil {
			return application.SlotRequest{}, fmt.Errorf("slot request %s reviewed_at: %w", d.ID, err)
		}
		request.ReviewedAt = &reviewed
	}
	if d.SlotStartTime != "" && d.SlotEndTime != "" {
		date, err := scheduler.ParseDate(d.SlotDate)
		if err != nil {
			return application.SlotRequest{}, fmt.Errorf("slot request %s: %w", d.ID, err)
		}
		start, err := scheduler.ParseTimeOfDay(d.SlotStartTime)
		if err != nil {
			return application.SlotRequest{}, fmt.Errorf("slot request %s: %w", d.ID, err)
		}
		end, err := scheduler.ParseTimeOfDay(d.SlotEndTime)
		if err != nil {
			return application.SlotRequest{}, fmt.Errorf("slot request %s: %w", d.ID, err)
		}
		snap := &application.SlotSnapshot{Date: date, StartTime: start, EndTime: end, Label: d.SlotLabel}
		if d.SlotDayOfWeek != nil {
			snap.DayOfWeek = *d.SlotDayOfWeek
		} else if !date.IsZero() {
			snap.DayOfWeek = date.DayOfWeek()
		}
		request.Snapshot = snap
	}
	return request, nil
}
