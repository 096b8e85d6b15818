package application

import (
	"errors"

	"github.com/example/availability-scheduler/internal/persistence"
)

// mapRepoError translates persistence sentinels into application errors.
// Constraint violations are reported against field.
func mapRepoError(err error, field string) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrDuplicate):
		return ErrAlreadyExists
	case errors.Is(err, persistence.ErrForeignKeyViolation):
		return fieldError(field, "referenced record does not exist")
	case errors.Is(err, persistence.ErrConstraintViolation):
		return fieldError(field, "value rejected by storage constraints")
	}
	return err
}
