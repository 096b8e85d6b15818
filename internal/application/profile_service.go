package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/availability-scheduler/internal/scheduler"
)

// DefaultProfileTitle replaces an empty profile title.
const DefaultProfileTitle = "Disponibilitate"

// ProfileRepository captures the persistence operations needed by the service.
type ProfileRepository interface {
	UpsertProfile(ctx context.Context, profile Profile) (Profile, error)
	GetProfile(ctx context.Context, id string) (Profile, error)
	GetProfileBySlug(ctx context.Context, slug string) (Profile, error)
	ListProfiles(ctx context.Context, includePrivate bool) ([]Profile, error)
	DeleteProfile(ctx context.Context, id string) error
}

// ProfileService orchestrates validation, visibility, and persistence for schedule profiles.
type ProfileService struct {
	profiles    ProfileRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewProfileService constructs a profile service with the provided dependencies.
func NewProfileService(profiles ProfileRepository, idGenerator func() string, now func() time.Time) *ProfileService {
	return NewProfileServiceWithLogger(profiles, idGenerator, now, nil)
}

// NewProfileServiceWithLogger constructs a profile service with a specified logger.
func NewProfileServiceWithLogger(profiles ProfileRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ProfileService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ProfileService{profiles: profiles, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *ProfileService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ProfileService", operation, attrs...)
}

// ListProfiles returns public profiles, or every profile for administrators,
// in creation order.
func (s *ProfileService) ListProfiles(ctx context.Context, principal Principal) (profiles []Profile, err error) {
	if s == nil {
		err = fmt.Errorf("ProfileService is nil")
		return
	}
	if s.profiles == nil {
		return nil, nil
	}

	logger := s.loggerWith(ctx, "ListProfiles", "admin", principal.IsAdmin)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list profiles", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("count", len(profiles)).DebugContext(ctx, "profiles listed")
	}()

	profiles, err = s.profiles.ListProfiles(ctx, principal.IsAdmin)
	if err != nil {
		err = mapRepoError(err, "profile")
	}
	return
}

// GetProfileBySlug resolves a profile. Private profiles are reported as not
// found to non-admin callers.
func (s *ProfileService) GetProfileBySlug(ctx context.Context, principal Principal, slug string) (profile Profile, err error) {
	if s == nil {
		err = fmt.Errorf("ProfileService is nil")
		return
	}
	if s.profiles == nil {
		err = fmt.Errorf("profile repository not configured")
		return
	}

	normalized := Slugify(slug)
	logger := s.loggerWith(ctx, "GetProfileBySlug", "slug", normalized)
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "failed to resolve profile", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	if normalized == "" {
		err = ErrNotFound
		return
	}

	profile, err = s.profiles.GetProfileBySlug(ctx, normalized)
	if err != nil {
		err = mapRepoError(err, "slug")
		return
	}
	if !profile.IsPublic && !principal.IsAdmin {
		profile = Profile{}
		err = ErrNotFound
	}
	return
}

// GetProfile loads a profile by id, hiding private ones from non-admins.
func (s *ProfileService) GetProfile(ctx context.Context, principal Principal, id string) (profile Profile, err error) {
	if s == nil {
		err = fmt.Errorf("ProfileService is nil")
		return
	}
	if s.profiles == nil {
		err = fmt.Errorf("profile repository not configured")
		return
	}

	profile, err = s.profiles.GetProfile(ctx, strings.TrimSpace(id))
	if err != nil {
		err = mapRepoError(err, "profile_id")
		return
	}
	if !profile.IsPublic && !principal.IsAdmin {
		profile = Profile{}
		err = ErrNotFound
	}
	return
}

// SaveProfile normalizes and upserts a profile for administrators.
func (s *ProfileService) SaveProfile(ctx context.Context, params SaveProfileParams) (profile Profile, err error) {
	if s == nil {
		err = fmt.Errorf("ProfileService is nil")
		return
	}

	logger := s.loggerWith(ctx, "SaveProfile",
		"session_id", params.Principal.SessionID,
		"profile_id", params.Input.ID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to save profile", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("profile_id", profile.ID, "slug", profile.Slug).InfoContext(ctx, "profile saved")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	var vErr *ValidationError
	profile, vErr = normalizeProfileInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	// Storage keeps created_at of an existing row.
	now := s.now()
	if profile.ID == "" {
		profile.ID = s.idGenerator()
	}
	profile.CreatedAt = now
	profile.UpdatedAt = now

	if s.profiles == nil {
		return
	}

	var persisted Profile
	persisted, err = s.profiles.UpsertProfile(ctx, profile)
	if err != nil {
		err = mapRepoError(err, "slug")
		return
	}
	profile = persisted
	return
}

// DeleteProfile removes a profile together with its slots for administrators.
func (s *ProfileService) DeleteProfile(ctx context.Context, principal Principal, id string) (err error) {
	if s == nil {
		return fmt.Errorf("ProfileService is nil")
	}
	if s.profiles == nil {
		return fmt.Errorf("profile repository not configured")
	}

	trimmed := strings.TrimSpace(id)
	logger := s.loggerWith(ctx, "DeleteProfile", "session_id", principal.SessionID, "profile_id", trimmed)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete profile", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "profile deleted")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if trimmed == "" {
		err = fieldError("id", "profile id is required")
		return
	}

	err = mapRepoError(s.profiles.DeleteProfile(ctx, trimmed), "id")
	return
}

// Slugify lowercases value, drops characters outside [a-z0-9 -] and turns
// runs of whitespace and dashes into a single dash. Leading and trailing
// dashes are dropped.
func Slugify(value string) string {
	lowered := strings.ToLower(strings.TrimSpace(value))

	var b strings.Builder
	b.Grow(len(lowered))
	pendingDash := false
	for _, r := range lowered {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		case r == '-' || r == ' ' || r == '\t' || r == '\n' || r == '\r':
			pendingDash = true
		}
	}
	return b.String()
}

func normalizeProfileInput(input ProfileInput) (Profile, *ValidationError) {
	vErr := &ValidationError{}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = DefaultProfileTitle
	}

	slugSource := input.Slug
	if strings.TrimSpace(slugSource) == "" {
		slugSource = title
	}
	slug := Slugify(slugSource)
	if slug == "" {
		vErr.add("slug", "slug must contain letters or digits")
	}

	profile := Profile{
		ID:          strings.TrimSpace(input.ID),
		Slug:        slug,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Mode:        scheduler.ParseMode(input.Mode),
		IsPublic:    input.IsPublic,
	}
	profile.Timezone, vErr = normalizeTimezone(input.Timezone, "timezone", vErr)
	profile.DefaultLanguage, vErr = normalizeLanguage(input.DefaultLanguage, "default_language", vErr)
	return profile, vErr
}
