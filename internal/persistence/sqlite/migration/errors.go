package migration

import (
	"errors"
	"fmt"
)

var (
	ErrMigrationFailed      = errors.New("migration execution failed")
	ErrInvalidMigrationFile = errors.New("invalid migration file format")
	ErrInvalidVersion       = errors.New("invalid migration version")
	ErrDuplicateVersion     = errors.New("duplicate migration version")
	// ErrChecksumMismatch means an applied migration file was edited afterwards.
	ErrChecksumMismatch = errors.New("migration checksum mismatch")
)

// Kind tells which layer a migration failure came from.
type Kind string

const (
	KindMigration  Kind = "migration"
	KindFileSystem Kind = "filesystem"
	KindDatabase   Kind = "database"
)

// Error annotates a failure with the migration version, the file or query
// involved and the step that was running.
type Error struct {
	Kind      Kind
	Version   string
	Path      string
	Query     string
	Operation string
	Err       error
}

func (e *Error) Error() string {
	subject := e.Path
	if e.Version != "" {
		subject = e.Version
		if e.Path != "" {
			subject += " (" + e.Path + ")"
		}
	}
	if subject == "" {
		return fmt.Sprintf("%s error during %s: %v", e.Kind, e.Operation, e.Err)
	}
	return fmt.Sprintf("%s error in %s during %s: %v", e.Kind, subject, e.Operation, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func NewMigrationError(version, filePath, operation string, err error) *Error {
	return &Error{Kind: KindMigration, Version: version, Path: filePath, Operation: operation, Err: err}
}

func NewFileSystemError(path, operation string, err error) *Error {
	return &Error{Kind: KindFileSystem, Path: path, Operation: operation, Err: err}
}

// NewDatabaseError keeps the failing statement on the error for debugging;
// it is not part of the message.
func NewDatabaseError(version, query, operation string, err error) *Error {
	return &Error{Kind: KindDatabase, Version: version, Query: query, Operation: operation, Err: err}
}
