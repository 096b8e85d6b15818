package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/availability-scheduler/internal/persistence"
)

// AdminCredentialRepository implements persistence.AdminCredentialRepository using SQLite
type AdminCredentialRepository struct {
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewAdminCredentialRepository creates a new SQLite admin credential repository
func NewAdminCredentialRepository(pool *ConnectionPool) *AdminCredentialRepository {
	return &AdminCredentialRepository{helper: NewQueryHelper(pool), mapper: NewErrorMapper()}
}

// GetAdminCredential returns the stored password hash or persistence.ErrNotFound.
func (r *AdminCredentialRepository) GetAdminCredential(ctx context.Context) (persistence.AdminCredential, error) {
	var (
		credential   persistence.AdminCredential
		updatedAtStr string
	)

	err := r.helper.QueryRow(ctx, `SELECT password_hash, updated_at FROM admin_credentials WHERE id = 1`).
		Scan(&credential.PasswordHash, &updatedAtStr)
	if err != nil {
		return persistence.AdminCredential{}, r.mapper.MapError(err)
	}

	if credential.UpdatedAt, err = parseTime(updatedAtStr); err != nil {
		return persistence.AdminCredential{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return credential, nil
}

// SetAdminCredential stores the password hash, replacing any previous one.
func (r *AdminCredentialRepository) SetAdminCredential(ctx context.Context, credential persistence.AdminCredential) error {
	if strings.TrimSpace(credential.PasswordHash) == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO admin_credentials (id, password_hash, updated_at)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			password_hash = excluded.password_hash,
			updated_at = excluded.updated_at
	`

	_, err := r.helper.Exec(ctx, query, credential.PasswordHash, formatTime(credential.UpdatedAt))
	return r.mapper.MapError(err)
}
