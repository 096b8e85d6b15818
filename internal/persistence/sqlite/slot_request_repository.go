package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/example/availability-scheduler/internal/persistence"
)

// SlotRequestRepository implements persistence.SlotRequestRepository using SQLite
type SlotRequestRepository struct {
	helper *QueryHelper
	mapper *ErrorMapper
	retry  *RetryHelper
}

// NewSlotRequestRepository creates a new SQLite slot request repository
func NewSlotRequestRepository(pool *ConnectionPool) *SlotRequestRepository {
	return &SlotRequestRepository{
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
		retry:  NewRetryHelper(DefaultRetryConfig()),
	}
}

const slotRequestSelect = `
	SELECT r.id, r.profile_id, r.slot_id, r.student_name, r.student_contact, r.student_class,
		r.student_note, r.status, r.admin_note, r.created_at, r.reviewed_at,
		r.slot_date, r.slot_day_of_week, r.slot_start_time, r.slot_end_time, r.slot_label,
		p.slug, p.title
	FROM slot_requests r
	LEFT JOIN schedule_profiles p ON p.id = r.profile_id
`

// CreateSlotRequest stores a new request. Public submissions may race with
// admin writes, so lock errors are retried.
func (r *SlotRequestRepository) CreateSlotRequest(ctx context.Context, request persistence.SlotRequest) error {
	if request.ID == "" || request.ProfileID == "" || request.SlotID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO slot_requests (
			id, profile_id, slot_id, student_name, student_contact, student_class, student_note,
			status, admin_note, created_at, reviewed_at,
			slot_date, slot_day_of_week, slot_start_time, slot_end_time, slot_label
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	return r.retry.WithRetry(ctx, func() error {
		_, err := r.helper.Exec(ctx, query,
			request.ID,
			request.ProfileID,
			request.SlotID,
			nullString(request.StudentName),
			nullString(request.StudentContact),
			nullString(request.StudentClass),
			nullString(request.StudentNote),
			request.Status,
			nullString(request.AdminNote),
			formatTime(request.CreatedAt),
			nullTime(request.ReviewedAt),
			nullString(request.SlotDate),
			nullInt(request.SlotDayOfWeek),
			nullString(request.SlotStartTime),
			nullString(request.SlotEndTime),
			nullString(request.SlotLabel),
		)
		return err
	})
}

// GetSlotRequest retrieves a request by ID
func (r *SlotRequestRepository) GetSlotRequest(ctx context.Context, id string) (persistence.SlotRequest, error) {
	if id == "" {
		return persistence.SlotRequest{}, persistence.ErrNotFound
	}
	return r.scanSlotRequest(r.helper.QueryRow(ctx, slotRequestSelect+` WHERE r.id = ?`, id))
}

// ListSlotRequests returns requests newest first, narrowed by filter.
func (r *SlotRequestRepository) ListSlotRequests(ctx context.Context, filter persistence.SlotRequestFilter) ([]persistence.SlotRequest, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.ProfileID != "" {
		conditions = append(conditions, "r.profile_id = ?")
		args = append(args, filter.ProfileID)
	}
	if filter.Status != "" {
		conditions = append(conditions, "r.status = ?")
		args = append(args, filter.Status)
	}

	query := slotRequestSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY r.created_at DESC, r.id DESC"

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	requests := []persistence.SlotRequest{}
	for rows.Next() {
		request, err := r.scanSlotRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return requests, nil
}

// UpdateSlotRequest replaces the mutable fields of a request: contact
// details, status, admin note and review time.
func (r *SlotRequestRepository) UpdateSlotRequest(ctx context.Context, request persistence.SlotRequest) error {
	if request.ID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		UPDATE slot_requests
		SET student_name = ?, student_contact = ?, student_class = ?, student_note = ?,
			status = ?, admin_note = ?, reviewed_at = ?
		WHERE id = ?
	`

	result, err := r.helper.Exec(ctx, query,
		nullString(request.StudentName),
		nullString(request.StudentContact),
		nullString(request.StudentClass),
		nullString(request.StudentNote),
		request.Status,
		nullString(request.AdminNote),
		nullTime(request.ReviewedAt),
		request.ID,
	)
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

// DeleteSlotRequest removes a request by ID
func (r *SlotRequestRepository) DeleteSlotRequest(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.helper.Exec(ctx, `DELETE FROM slot_requests WHERE id = ?`, id)
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

func (r *SlotRequestRepository) scanSlotRequest(row rowScanner) (persistence.SlotRequest, error) {
	var (
		request                                 persistence.SlotRequest
		name, contact, class, note, adminNote   sql.NullString
		createdAtStr                            string
		reviewedAt                              sql.NullString
		slotDate, slotStart, slotEnd, slotLabel sql.NullString
		slotDayOfWeek                           sql.NullInt64
		profileSlug, profileTitle               sql.NullString
	)

	err := row.Scan(
		&request.ID,
		&request.ProfileID,
		&request.SlotID,
		&name,
		&contact,
		&class,
		&note,
		&request.Status,
		&adminNote,
		&createdAtStr,
		&reviewedAt,
		&slotDate,
		&slotDayOfWeek,
		&slotStart,
		&slotEnd,
		&slotLabel,
		&profileSlug,
		&profileTitle,
	)
	if err != nil {
		return persistence.SlotRequest{}, r.mapper.MapError(err)
	}

	request.StudentName = stringPtr(name)
	request.StudentContact = stringPtr(contact)
	request.StudentClass = stringPtr(class)
	request.StudentNote = stringPtr(note)
	request.AdminNote = stringPtr(adminNote)
	request.SlotDate = stringPtr(slotDate)
	request.SlotDayOfWeek = intPtr(slotDayOfWeek)
	request.SlotStartTime = stringPtr(slotStart)
	request.SlotEndTime = stringPtr(slotEnd)
	request.SlotLabel = stringPtr(slotLabel)
	request.ProfileSlug = stringPtr(profileSlug)
	request.ProfileTitle = stringPtr(profileTitle)

	if request.CreatedAt, err = parseTime(createdAtStr); err != nil {
		return persistence.SlotRequest{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if request.ReviewedAt, err = parseTimePtr(reviewedAt); err != nil {
		return persistence.SlotRequest{}, fmt.Errorf("failed to parse reviewed_at: %w", err)
	}
	return request, nil
}
