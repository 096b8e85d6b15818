package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/example/availability-scheduler/internal/persistence"
)

// ProfileRepository implements persistence.ProfileRepository using SQLite
type ProfileRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewProfileRepository creates a new SQLite profile repository
func NewProfileRepository(pool *ConnectionPool) *ProfileRepository {
	return &ProfileRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const profileColumns = `id, slug, title, description, mode, timezone, default_language, is_public, created_at, updated_at`

// UpsertProfile inserts the profile or updates the row with the same id.
// created_at of an existing row is preserved.
func (r *ProfileRepository) UpsertProfile(ctx context.Context, profile persistence.Profile) error {
	if profile.ID == "" || strings.TrimSpace(profile.Slug) == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO schedule_profiles (` + profileColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			slug = excluded.slug,
			title = excluded.title,
			description = excluded.description,
			mode = excluded.mode,
			timezone = excluded.timezone,
			default_language = excluded.default_language,
			is_public = excluded.is_public,
			updated_at = excluded.updated_at
	`

	_, err := r.helper.Exec(ctx, query,
		profile.ID,
		profile.Slug,
		profile.Title,
		nullString(profile.Description),
		profile.Mode,
		nullString(profile.Timezone),
		nullString(profile.DefaultLanguage),
		profile.IsPublic,
		formatTime(profile.CreatedAt),
		formatTime(profile.UpdatedAt),
	)
	return r.mapper.MapError(err)
}

// GetProfile retrieves a profile by ID
func (r *ProfileRepository) GetProfile(ctx context.Context, id string) (persistence.Profile, error) {
	if id == "" {
		return persistence.Profile{}, persistence.ErrNotFound
	}
	row := r.helper.QueryRow(ctx, `SELECT `+profileColumns+` FROM schedule_profiles WHERE id = ?`, id)
	return r.scanProfile(row)
}

// GetProfileBySlug retrieves a profile by its slug
func (r *ProfileRepository) GetProfileBySlug(ctx context.Context, slug string) (persistence.Profile, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return persistence.Profile{}, persistence.ErrNotFound
	}
	row := r.helper.QueryRow(ctx, `SELECT `+profileColumns+` FROM schedule_profiles WHERE slug = ?`, slug)
	return r.scanProfile(row)
}

// ListProfiles returns profiles ordered by creation time. Private profiles
// are included only when includePrivate is set.
func (r *ProfileRepository) ListProfiles(ctx context.Context, includePrivate bool) ([]persistence.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM schedule_profiles`
	if !includePrivate {
		query += ` WHERE is_public = 1`
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := r.helper.Query(ctx, query)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	profiles := []persistence.Profile{}
	for rows.Next() {
		profile, err := r.scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return profiles, nil
}

// DeleteProfile removes a profile together with its slots and requests.
func (r *ProfileRepository) DeleteProfile(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		// Explicit deletes keep the cascade intact on connections opened
		// without the foreign_keys pragma.
		if _, err := r.helper.ExecTx(ctx, tx, `DELETE FROM slot_requests WHERE profile_id = ?`, id); err != nil {
			return r.mapper.MapError(err)
		}
		if _, err := r.helper.ExecTx(ctx, tx, `DELETE FROM slots WHERE profile_id = ?`, id); err != nil {
			return r.mapper.MapError(err)
		}

		result, err := r.helper.ExecTx(ctx, tx, `DELETE FROM schedule_profiles WHERE id = ?`, id)
		if err != nil {
			return r.mapper.MapError(err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return persistence.ErrNotFound
		}
		return nil
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *ProfileRepository) scanProfile(row rowScanner) (persistence.Profile, error) {
	var (
		profile         persistence.Profile
		description     sql.NullString
		timezone        sql.NullString
		defaultLanguage sql.NullString
		createdAtStr    string
		updatedAtStr    string
	)

	err := row.Scan(
		&profile.ID,
		&profile.Slug,
		&profile.Title,
		&description,
		&profile.Mode,
		&timezone,
		&defaultLanguage,
		&profile.IsPublic,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return persistence.Profile{}, r.mapper.MapError(err)
	}

	profile.Description = stringPtr(description)
	profile.Timezone = stringPtr(timezone)
	profile.DefaultLanguage = stringPtr(defaultLanguage)

	if profile.CreatedAt, err = parseTime(createdAtStr); err != nil {
		return persistence.Profile{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if profile.UpdatedAt, err = parseTime(updatedAtStr); err != nil {
		return persistence.Profile{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return profile, nil
}
