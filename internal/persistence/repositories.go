package persistence

import (
	"context"
	"time"
)

// ConfigRepository stores the singleton widget configuration.
type ConfigRepository interface {
	GetConfig(ctx context.Context) (Config, error)
	SaveConfig(ctx context.Context, cfg Config) error
}

// ProfileRepository exposes CRUD operations for schedule profiles.
type ProfileRepository interface {
	UpsertProfile(ctx context.Context, profile Profile) error
	GetProfile(ctx context.Context, id string) (Profile, error)
	GetProfileBySlug(ctx context.Context, slug string) (Profile, error)
	ListProfiles(ctx context.Context, includePrivate bool) ([]Profile, error)
	DeleteProfile(ctx context.Context, id string) error
}

// SlotRepository exposes CRUD operations for slots belonging to a profile.
type SlotRepository interface {
	UpsertSlot(ctx context.Context, slot Slot) error
	GetSlot(ctx context.Context, id string) (Slot, error)
	ListSlotsForProfile(ctx context.Context, profileID string) ([]Slot, error)
	DeleteSlot(ctx context.Context, id string) error
}

// SlotRequestFilter narrows slot request listings.
type SlotRequestFilter struct {
	ProfileID string
	Status    string
}

// SlotRequestRepository stores visitor booking inquiries.
type SlotRequestRepository interface {
	CreateSlotRequest(ctx context.Context, request SlotRequest) error
	GetSlotRequest(ctx context.Context, id string) (SlotRequest, error)
	ListSlotRequests(ctx context.Context, filter SlotRequestFilter) ([]SlotRequest, error)
	UpdateSlotRequest(ctx context.Context, request SlotRequest) error
	DeleteSlotRequest(ctx context.Context, id string) error
}

// AdminCredentialRepository stores the administrator password hash.
type AdminCredentialRepository interface {
	GetAdminCredential(ctx context.Context) (AdminCredential, error)
	SetAdminCredential(ctx context.Context, credential AdminCredential) error
}

// SessionRepository stores administrator session state.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) (int64, error)
}
