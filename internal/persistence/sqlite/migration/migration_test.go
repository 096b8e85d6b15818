package migration

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := NewConnectionManager(TempFileTestSQLiteConfig(filepath.Join(t.TempDir(), "test.db"))).GetConnection()
	if err != nil {
		t.Fatalf("GetConnection failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestValidateFileName(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		"001_init.sql":          true,
		"12_add-index.sql":      true,
		"init.sql":              false,
		"001_.sql":              false,
		"001_init.txt":          false,
		"abc_init.sql":          false,
		"001_init with sp.sql":  false,
	}
	for name, valid := range cases {
		err := ValidateFileName(name)
		if valid && err != nil {
			t.Errorf("%s: unexpected error %v", name, err)
		}
		if !valid && err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestFileScanner_ScanMigrations(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"migrations/010_later.sql":  {Data: []byte("CREATE TABLE later (id TEXT);")},
		"migrations/002_second.sql": {Data: []byte("CREATE TABLE second (id TEXT);")},
		"migrations/README.md":      {Data: []byte("ignored")},
	}

	migrations, err := NewFileScanner(fsys).ScanMigrations("migrations")
	if err != nil {
		t.Fatalf("ScanMigrations failed: %v", err)
	}
	if len(migrations) != 2 || migrations[0].Version != "002" || migrations[1].Version != "010" {
		t.Fatalf("unexpected order: %+v", migrations)
	}
	if migrations[0].Description != "second" || migrations[0].Checksum == "" {
		t.Fatalf("unexpected metadata: %+v", migrations[0])
	}

	t.Run("duplicate versions", func(t *testing.T) {
		t.Parallel()
		dup := fstest.MapFS{
			"m/1_a.sql":   {Data: []byte("SELECT 1;")},
			"m/001_b.sql": {Data: []byte("SELECT 1;")},
		}
		_, err := NewFileScanner(dup).ScanMigrations("m")
		if !errors.Is(err, ErrDuplicateVersion) {
			t.Fatalf("expected ErrDuplicateVersion, got %v", err)
		}
	})

	t.Run("comment only file", func(t *testing.T) {
		t.Parallel()
		empty := fstest.MapFS{"m/001_empty.sql": {Data: []byte("-- nothing here\n")}}
		_, err := NewFileScanner(empty).ScanMigrations("m")
		if !errors.Is(err, ErrInvalidMigrationFile) {
			t.Fatalf("expected ErrInvalidMigrationFile, got %v", err)
		}
	})
}

func TestParseSQL(t *testing.T) {
	t.Parallel()

	got := parseSQL("-- header\nCREATE TABLE a (id TEXT);\n\n-- second\nCREATE INDEX idx ON a(id);\n")
	if len(got) != 2 {
		t.Fatalf("expected 2 statements, got %d: %q", len(got), got)
	}
	if got[0] != "CREATE TABLE a (id TEXT)" {
		t.Fatalf("unexpected first statement %q", got[0])
	}
}

func TestManager_RunMigrations(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := openTestDB(t)

	fsys := fstest.MapFS{
		"migrations/001_init.sql":  {Data: []byte("CREATE TABLE items (id TEXT PRIMARY KEY);")},
		"migrations/002_seed.sql":  {Data: []byte("INSERT INTO items (id) VALUES ('a');")},
	}

	manager := NewManager(db, fsys, "migrations", quietLogger())
	if err := manager.RunMigrations(ctx); err != nil {
		t.Fatalf("RunMigrations failed: %v", err)
	}
	if err := manager.RunMigrations(ctx); err != nil {
		t.Fatalf("second RunMigrations should be a no-op: %v", err)
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM items").Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("seed migration ran %d times", count)
	}

	applied, err := manager.AppliedVersions(ctx)
	if err != nil {
		t.Fatalf("AppliedVersions failed: %v", err)
	}
	if len(applied) != 2 || applied[0].Version != "001" || applied[1].Version != "002" {
		t.Fatalf("unexpected applied versions %+v", applied)
	}

	t.Run("edited migration is rejected", func(t *testing.T) {
		edited := fstest.MapFS{
			"migrations/001_init.sql": {Data: []byte("CREATE TABLE items (id TEXT PRIMARY KEY, name TEXT);")},
			"migrations/002_seed.sql": fsys["migrations/002_seed.sql"],
		}
		err := NewManager(db, edited, "migrations", quietLogger()).RunMigrations(ctx)
		if !errors.Is(err, ErrChecksumMismatch) {
			t.Fatalf("expected ErrChecksumMismatch, got %v", err)
		}
	})
}

func TestManager_FailedMigrationRollsBack(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := openTestDB(t)

	fsys := fstest.MapFS{
		"m/001_broken.sql": {Data: []byte("CREATE TABLE ok (id TEXT);\nNOT VALID SQL;")},
	}

	err := NewManager(db, fsys, "m", quietLogger()).RunMigrations(ctx)
	if !errors.Is(err, ErrMigrationFailed) {
		t.Fatalf("expected ErrMigrationFailed, got %v", err)
	}

	applied, err := NewSQLiteExecutor(db).IsVersionApplied(ctx, "001")
	if err != nil {
		t.Fatalf("IsVersionApplied failed: %v", err)
	}
	if applied {
		t.Fatalf("failed migration must not be recorded")
	}

	var name string
	err = db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name='ok'").Scan(&name)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("table from failed migration should be rolled back, got %q %v", name, err)
	}
}

func TestConnectionManager_DataSourceName(t *testing.T) {
	t.Parallel()

	cm := NewConnectionManager(SQLiteConfig{DSN: "file:app.db?_pragma=foreign_keys(0)", EnableForeignKeys: true, JournalMode: "WAL"})
	dsn := cm.DataSourceName()
	if !strings.HasPrefix(dsn, "file:app.db?") {
		t.Fatalf("unexpected dsn %q", dsn)
	}
	if strings.Contains(dsn, "foreign_keys%281%29") {
		t.Fatalf("explicit pragma must win over config: %q", dsn)
	}
	if !strings.Contains(dsn, "journal_mode%28WAL%29") {
		t.Fatalf("journal mode pragma missing: %q", dsn)
	}

	if got := databasePath("file::memory:?cache=shared"); got != "" {
		t.Fatalf("memory dsn should have no path, got %q", got)
	}
	if got := databasePath("file:data/app.db?x=1"); got != "data/app.db" {
		t.Fatalf("unexpected path %q", got)
	}
}

func TestError(t *testing.T) {
	t.Parallel()

	err := NewMigrationError("002", "002_slot_requests.sql", "verify checksum", ErrChecksumMismatch)
	if !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("expected the sentinel to unwrap, got %v", err)
	}
	if got := err.Error(); got != "migration error in 002 (002_slot_requests.sql) during verify checksum: migration checksum mismatch" {
		t.Fatalf("unexpected message %q", got)
	}

	dbErr := NewDatabaseError("", "SELECT 1", "get applied versions", io.ErrUnexpectedEOF)
	if got := dbErr.Error(); got != "database error during get applied versions: unexpected EOF" {
		t.Fatalf("unexpected message %q", got)
	}
	var target *Error
	if !errors.As(error(dbErr), &target) || target.Kind != KindDatabase || target.Query != "SELECT 1" {
		t.Fatalf("expected a database error carrying the query, got %+v", target)
	}
}
