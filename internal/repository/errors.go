package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// mapPostgresError maps driver errors onto the package sentinels. Errors it
// does not recognise are returned unchanged.
func mapPostgresError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		return fmt.Errorf("%w: %s: %w", ErrConflict, pgErr.ConstraintName, err)
	case pgerrcode.ForeignKeyViolation:
		return fmt.Errorf("%w: %s: %w", ErrNotFound, pgErr.ConstraintName, err)
	default:
		return err
	}
}

// isRetryable reports whether a failed transaction may succeed if re-run.
func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected
}

// ConstraintOf extracts the violated constraint name from a conflict error,
// or "" when err is not a Postgres constraint violation.
func ConstraintOf(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}
