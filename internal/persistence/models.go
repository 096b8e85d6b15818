package persistence

import "time"

// Config is the singleton widget configuration row.
type Config struct {
	Title           string
	DefaultLanguage *string
	Timezone        *string
	ShowFullSlots   *bool
	UpdatedAt       time.Time
}

// Profile is a named, sluggable schedule view.
type Profile struct {
	ID              string
	Slug            string
	Title           string
	Description     *string
	Mode            string
	Timezone        *string
	DefaultLanguage *string
	IsPublic        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Slot is one offered time window as stored. Dates use YYYY-MM-DD and clock
// times HH:MM.
type Slot struct {
	ID             string
	ProfileID      string
	SlotDate       *string
	DayOfWeek      int
	StartTime      string
	EndTime        string
	Status         string
	SpotsTotal     *int
	SpotsAvailable *int
	Label          string
	Note           *string
	Visibility     *bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SlotRequest is a visitor's booking inquiry with a snapshot of the slot it
// referenced at submission time.
type SlotRequest struct {
	ID             string
	ProfileID      string
	SlotID         string
	StudentName    *string
	StudentContact *string
	StudentClass   *string
	StudentNote    *string
	Status         string
	AdminNote      *string
	CreatedAt      time.Time
	ReviewedAt     *time.Time
	SlotDate       *string
	SlotDayOfWeek  *int
	SlotStartTime  *string
	SlotEndTime    *string
	SlotLabel      *string
	// ProfileSlug and ProfileTitle are filled from the owning profile on reads.
	ProfileSlug  *string
	ProfileTitle *string
}

// AdminCredential holds the hash of the single administrator password.
type AdminCredential struct {
	PasswordHash string
	UpdatedAt    time.Time
}

// Session represents an administrator session.
type Session struct {
	ID        string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}
