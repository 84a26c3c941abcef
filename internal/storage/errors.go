package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	sqlite3 "github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned for lookups by identifier with no matching row.
	ErrNotFound = errors.New("not found")

	// ErrConstraint is returned when the store rejects a write for a
	// uniqueness or foreign key breach.
	ErrConstraint = errors.New("constraint violation")

	// ErrUnavailable is returned when the store cannot be reached or the
	// operation ran out of its time budget. Reads may be retried; creates
	// must not be blindly retried, there is no idempotency key.
	ErrUnavailable = errors.New("storage unavailable")
)

// mapError translates driver errors into the package error kinds. Errors
// with no mapping propagate untouched.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return fmt.Errorf("%w: %v", ErrConstraint, err)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// Class 23: integrity constraint violation
		if pqErr.Code.Class() == "23" {
			return fmt.Errorf("%w: %v", ErrConstraint, err)
		}
		// Class 08: connection exceptions
		if pqErr.Code.Class() == "08" {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}

	return err
}
