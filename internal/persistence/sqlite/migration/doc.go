// Package migration applies versioned SQL files to a SQLite database.
//
// Migration files are read from an fs.FS (usually an embed.FS compiled into
// the binary) and follow the naming convention {version}_{description}.sql,
// e.g. "001_init.sql". Each file runs in its own transaction and is recorded
// in the schema_migrations table together with its checksum, so a file that
// changes after being applied is reported instead of silently skipped.
//
// Example usage:
//
//	manager := migration.NewManager(db, migrationFiles, "migrations", logger)
//	if err := manager.RunMigrations(ctx); err != nil {
//		return err
//	}
package migration
