package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes we translate into domain errors
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

func hasPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

// IsPgDuplicateError checks if error is a unique constraint violation
func IsPgDuplicateError(err error) bool { return hasPgCode(err, pgUniqueViolation) }

// IsPgForeignKeyError checks if error is a foreign key violation
func IsPgForeignKeyError(err error) bool { return hasPgCode(err, pgForeignKeyViolation) }

// IsPgCheckError checks if error is a check constraint violation
func IsPgCheckError(err error) bool { return hasPgCode(err, pgCheckViolation) }

// IsPgNoRowsError checks if error is a "no rows" error
func IsPgNoRowsError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
