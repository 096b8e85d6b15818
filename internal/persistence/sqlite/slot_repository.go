package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/availability-scheduler/internal/persistence"
)

// SlotRepository implements persistence.SlotRepository using SQLite
type SlotRepository struct {
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewSlotRepository creates a new SQLite slot repository
func NewSlotRepository(pool *ConnectionPool) *SlotRepository {
	return &SlotRepository{helper: NewQueryHelper(pool), mapper: NewErrorMapper()}
}

const slotColumns = `id, profile_id, slot_date, day_of_week, start_time, end_time, status,
	spots_total, spots_available, label, note, visibility, created_at, updated_at`

// UpsertSlot inserts the slot or updates the row with the same id.
func (r *SlotRepository) UpsertSlot(ctx context.Context, slot persistence.Slot) error {
	if slot.ID == "" || slot.ProfileID == "" {
		return persistence.ErrConstraintViolation
	}
	if slot.DayOfWeek < 0 || slot.DayOfWeek > 6 {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO slots (` + slotColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			profile_id = excluded.profile_id,
			slot_date = excluded.slot_date,
			day_of_week = excluded.day_of_week,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			status = excluded.status,
			spots_total = excluded.spots_total,
			spots_available = excluded.spots_available,
			label = excluded.label,
			note = excluded.note,
			visibility = excluded.visibility,
			updated_at = excluded.updated_at
	`

	_, err := r.helper.Exec(ctx, query,
		slot.ID,
		slot.ProfileID,
		nullString(slot.SlotDate),
		slot.DayOfWeek,
		slot.StartTime,
		slot.EndTime,
		slot.Status,
		nullInt(slot.SpotsTotal),
		nullInt(slot.SpotsAvailable),
		slot.Label,
		nullString(slot.Note),
		nullBool(slot.Visibility),
		formatTime(slot.CreatedAt),
		formatTime(slot.UpdatedAt),
	)
	return r.mapper.MapError(err)
}

// GetSlot retrieves a slot by ID
func (r *SlotRepository) GetSlot(ctx context.Context, id string) (persistence.Slot, error) {
	if id == "" {
		return persistence.Slot{}, persistence.ErrNotFound
	}
	return r.scanSlot(r.helper.QueryRow(ctx, `SELECT `+slotColumns+` FROM slots WHERE id = ?`, id))
}

// ListSlotsForProfile returns the slots of a profile ordered by date (undated
// last), weekday and start time.
func (r *SlotRepository) ListSlotsForProfile(ctx context.Context, profileID string) ([]persistence.Slot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM slots
		WHERE profile_id = ?
		ORDER BY slot_date IS NULL, slot_date ASC, day_of_week ASC, start_time ASC, id ASC
	`

	rows, err := r.helper.Query(ctx, query, profileID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	slots := []persistence.Slot{}
	for rows.Next() {
		slot, err := r.scanSlot(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return slots, nil
}

// DeleteSlot removes a slot by ID
func (r *SlotRepository) DeleteSlot(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.helper.Exec(ctx, `DELETE FROM slots WHERE id = ?`, id)
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
}

func (r *SlotRepository) scanSlot(row rowScanner) (persistence.Slot, error) {
	var (
		slot           persistence.Slot
		slotDate       sql.NullString
		spotsTotal     sql.NullInt64
		spotsAvailable sql.NullInt64
		note           sql.NullString
		visibility     sql.NullBool
		createdAtStr   string
		updatedAtStr   string
	)

	err := row.Scan(
		&slot.ID,
		&slot.ProfileID,
		&slotDate,
		&slot.DayOfWeek,
		&slot.StartTime,
		&slot.EndTime,
		&slot.Status,
		&spotsTotal,
		&spotsAvailable,
		&slot.Label,
		&note,
		&visibility,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return persistence.Slot{}, r.mapper.MapError(err)
	}

	slot.SlotDate = stringPtr(slotDate)
	slot.SpotsTotal = intPtr(spotsTotal)
	slot.SpotsAvailable = intPtr(spotsAvailable)
	slot.Note = stringPtr(note)
	slot.Visibility = boolPtr(visibility)

	if slot.CreatedAt, err = parseTime(createdAtStr); err != nil {
		return persistence.Slot{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if slot.UpdatedAt, err = parseTime(updatedAtStr); err != nil {
		return persistence.Slot{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return slot, nil
}
