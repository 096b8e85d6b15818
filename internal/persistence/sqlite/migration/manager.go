package migration

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"time"
)

// Manager orchestrates scanning and applying migrations.
type Manager struct {
	scanner  *FileScanner
	executor *SQLiteExecutor
	dir      string
	logger   *slog.Logger
}

// NewManager builds a Manager reading migration files from dir inside fsys.
func NewManager(db *sql.DB, fsys fs.FS, dir string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		scanner:  NewFileScanner(fsys),
		executor: NewSQLiteExecutor(db),
		dir:      dir,
		logger:   logger.With("component", "migration"),
	}
}

// RunMigrations executes all pending migrations in version order. A migration
// whose file changed after it was applied aborts the run.
func (m *Manager) RunMigrations(ctx context.Context) error {
	start := time.Now()

	if err := m.executor.InitializeVersionTable(ctx); err != nil {
		m.logger.ErrorContext(ctx, "failed to initialize schema_migrations", "error", err)
		return fmt.Errorf("failed to initialize version table: %w", err)
	}

	pending, err := m.PendingMigrations(ctx)
	if err != nil {
		m.logger.ErrorContext(ctx, "failed to resolve pending migrations", "dir", m.dir, "error", err)
		return err
	}

	if len(pending) == 0 {
		m.logger.DebugContext(ctx, "schema up to date", "dir", m.dir)
		return nil
	}

	for i, migration := range pending {
		migrationStart := time.Now()
		m.logger.InfoContext(ctx, "applying migration",
			"version", migration.Version,
			"description", migration.Description,
			"position", i+1,
			"pending", len(pending),
		)

		if err := m.executor.ExecuteMigration(ctx, migration); err != nil {
			m.logger.ErrorContext(ctx, "migration failed", "version", migration.Version, "file", migration.FilePath, "error", err)
			return NewMigrationError(migration.Version, migration.FilePath, "execute migration",
				fmt.Errorf("%w: %v", ErrMigrationFailed, err))
		}

		m.logger.InfoContext(ctx, "migration applied",
			"version", migration.Version,
			"duration_ms", time.Since(migrationStart).Milliseconds(),
		)
	}

	m.logger.InfoContext(ctx, "migrations completed",
		"count", len(pending),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// PendingMigrations returns the migrations not yet recorded in schema_migrations.
func (m *Manager) PendingMigrations(ctx context.Context) ([]Migration, error) {
	all, err := m.scanner.ScanMigrations(m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan migrations: %w", err)
	}

	applied, err := m.executor.GetAppliedVersions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get applied versions: %w", err)
	}

	checksums := make(map[string]string, len(applied))
	for _, record := range applied {
		checksums[record.Version] = record.Checksum
	}

	var pending []Migration
	for _, migration := range all {
		sum, ok := checksums[migration.Version]
		if !ok {
			pending = append(pending, migration)
			continue
		}
		if sum != "" && sum != migration.Checksum {
			return nil, NewMigrationError(migration.Version, migration.FilePath, "verify checksum", ErrChecksumMismatch)
		}
	}
	return pending, nil
}

// AppliedVersions returns the applied migration records ordered by version.
func (m *Manager) AppliedVersions(ctx context.Context) ([]AppliedMigration, error) {
	if err := m.executor.InitializeVersionTable(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize version table: %w", err)
	}
	return m.executor.GetAppliedVersions(ctx)
}
