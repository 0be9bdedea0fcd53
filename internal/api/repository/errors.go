package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Errors raised by storage-layer constraints. Not-found conditions are
// reported as gorm.ErrRecordNotFound so callers handle one sentinel for
// all lookups.
var (
	ErrBookUnavailable     = errors.New("book has no available copies")
	ErrDuplicateActiveLoan = errors.New("user already has an active loan for this book")
	ErrDuplicateEmail      = errors.New("email already registered")
)

const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
