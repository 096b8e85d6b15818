package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"

	"github.com/example/availability-scheduler/internal/persistence"
	"github.com/example/availability-scheduler/internal/persistence/sqlite/migration"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

var (
	_ persistence.ConfigRepository          = (*Store)(nil)
	_ persistence.ProfileRepository         = (*Store)(nil)
	_ persistence.SlotRepository            = (*Store)(nil)
	_ persistence.SlotRequestRepository     = (*Store)(nil)
	_ persistence.AdminCredentialRepository = (*Store)(nil)
	_ persistence.SessionRepository         = (*Store)(nil)
)

// Store bundles the SQLite repositories over one connection pool.
type Store struct {
	*ConfigRepository
	*ProfileRepository
	*SlotRepository
	*SlotRequestRepository
	*AdminCredentialRepository
	*SessionRepository

	pool   *ConnectionPool
	logger *slog.Logger
}

// Open connects to the database described by config. Call Migrate before use.
func Open(config migration.SQLiteConfig, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	pool, err := NewConnectionPool(config)
	if err != nil {
		return nil, err
	}

	return &Store{
		ConfigRepository:          NewConfigRepository(pool),
		ProfileRepository:         NewProfileRepository(pool),
		SlotRepository:            NewSlotRepository(pool),
		SlotRequestRepository:     NewSlotRequestRepository(pool),
		AdminCredentialRepository: NewAdminCredentialRepository(pool),
		SessionRepository:         NewSessionRepository(pool),
		pool:                      pool,
		logger:                    logger,
	}, nil
}

// Migrate applies the embedded schema migrations.
func (s *Store) Migrate(ctx context.Context) error {
	manager := migration.NewManager(s.pool.DB(), migrationFiles, "migrations", s.logger)
	if err := manager.RunMigrations(ctx); err != nil {
		return fmt.Errorf("sqlite: migrate: %w", err)
	}
	return nil
}

// Ping reports whether the database answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// DB exposes the underlying handle for health probes.
func (s *Store) DB() *sql.DB {
	return s.pool.DB()
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.pool.Close()
}
