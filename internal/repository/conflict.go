package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrPersistenceConflict marks a transaction that lost a race with a
	// concurrent writer and may succeed if retried.
	ErrPersistenceConflict = errors.New("persistence conflict")
	ErrDuplicate           = errors.New("duplicate record")
)

const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
	pgUniqueViolation      = "23505"
)

// ClassifyError maps driver errors onto ErrPersistenceConflict or ErrDuplicate
// and returns anything else unchanged.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrPersistenceConflict) || errors.Is(err, ErrDuplicate) {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
			return fmt.Errorf("%w: %s", ErrPersistenceConflict, pgErr.Message)
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
		}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueConstraintErr(err) {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	if isBusyErr(err) {
		return fmt.Errorf("%w: %v", ErrPersistenceConflict, err)
	}
	return err
}

func isUniqueConstraintErr(err error) bool {
	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "unique constraint") ||
		strings.Contains(lower, "duplicate key") ||
		strings.Contains(lower, "unique violation")
}

func isBusyErr(err error) bool {
	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "database is locked") ||
		strings.Contains(lower, "database table is locked") ||
		strings.Contains(lower, "sqlite_busy")
}
