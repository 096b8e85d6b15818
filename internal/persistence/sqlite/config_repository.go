package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/example/availability-scheduler/internal/persistence"
)

// ConfigRepository implements persistence.ConfigRepository using SQLite
type ConfigRepository struct {
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewConfigRepository creates a new SQLite config repository
func NewConfigRepository(pool *ConnectionPool) *ConfigRepository {
	return &ConfigRepository{helper: NewQueryHelper(pool), mapper: NewErrorMapper()}
}

// GetConfig returns the singleton configuration or persistence.ErrNotFound
// when none has been saved.
func (r *ConfigRepository) GetConfig(ctx context.Context) (persistence.Config, error) {
	query := `
		SELECT title, default_language, timezone, show_full_slots, updated_at
		FROM schedule_config
		WHERE id = 1
	`

	var (
		cfg             persistence.Config
		defaultLanguage sql.NullString
		timezone        sql.NullString
		showFull        sql.NullBool
		updatedAtStr    string
	)

	err := r.helper.QueryRow(ctx, query).Scan(&cfg.Title, &defaultLanguage, &timezone, &showFull, &updatedAtStr)
	if err != nil {
		return persistence.Config{}, r.mapper.MapError(err)
	}

	cfg.DefaultLanguage = stringPtr(defaultLanguage)
	cfg.Timezone = stringPtr(timezone)
	cfg.ShowFullSlots = boolPtr(showFull)
	if cfg.UpdatedAt, err = parseTime(updatedAtStr); err != nil {
		return persistence.Config{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return cfg, nil
}

// SaveConfig inserts or replaces the singleton configuration.
func (r *ConfigRepository) SaveConfig(ctx context.Context, cfg persistence.Config) error {
	if strings.TrimSpace(cfg.Title) == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO schedule_config (id, title, default_language, timezone, show_full_slots, updated_at)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			default_language = excluded.default_language,
			timezone = excluded.timezone,
			show_full_slots = excluded.show_full_slots,
			updated_at = excluded.updated_at
	`

	_, err := r.helper.Exec(ctx, query,
		cfg.Title,
		nullString(cfg.DefaultLanguage),
		nullString(cfg.Timezone),
		nullBool(cfg.ShowFullSlots),
		formatTime(cfg.UpdatedAt),
	)
	return r.mapper.MapError(err)
}
