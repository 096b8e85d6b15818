package widget

import (
	"context"
	"errors"

	"github.com/example/availability-scheduler/internal/application"
	"github.com/example/availability-scheduler/internal/scheduler"
)

// ErrAdminSessionRequired is returned by admin operations when no admin
// credential is stored. Callers should ask for a login instead of retrying.
var ErrAdminSessionRequired = errors.New("widget: admin session not found, login required")

// Store is the data access contract of the widget.
type Store interface {
	GetConfig(ctx context.Context) (*application.Config, error)
	GetProfiles(ctx context.Context, asAdmin bool) ([]application.Profile, error)
	GetProfileBySlug(ctx context.Context, slug string) (application.Profile, error)
	GetSlots(ctx context.Context, profileID string, asAdmin bool) ([]scheduler.Slot, error)
	SaveSlot(ctx context.Context, slot scheduler.Slot) (scheduler.Slot, error)
	DeleteSlot(ctx context.Context, id string) error
	SaveProfile(ctx context.Context, profile application.Profile) (application.Profile, error)
	DeleteProfile(ctx context.Context, id string) error

	SubmitSlotRequest(ctx context.Context, slotID string, contact application.Contact) (application.SlotRequest, error)
	GetSlotRequests(ctx context.Context, filter application.RequestFilter) ([]application.SlotRequest, error)
	ReviewSlotRequest(ctx context.Context, id string, status application.RequestStatus, adminNote string) (application.SlotRequest, error)
	UpdateSlotRequest(ctx context.Context, id string, contact application.Contact) (application.SlotRequest, error)
	DeleteSlotRequest(ctx context.Context, id string) error

	// LoginAdmin reports false without an error when the password is wrong.
	LoginAdmin(ctx context.Context, password string) (bool, error)
	// RestoreSession checks the stored admin credential and forgets it when
	// the store no longer accepts it.
	RestoreSession(ctx context.Context) (bool, error)
	Logout(ctx context.Context) error
	ChangeAdminPassword(ctx context.Context, current, next string) error
}
