package store

import (
	"errors"

	"github.com/ixnv/anon-fl-api/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the Postgres-backed persistence layer. All SQL lives here; the
// service layer only sees models and the core error taxonomy.
type Store struct {
	Pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{Pool: pool}
}

const (
	uniqueViolation     = "23505"
	invalidTextEncoding = "22P02"
)

// mapErr translates storage errors into the core taxonomy so pgx details
// never cross the store boundary. A malformed uuid in a lookup can only
// come from unvalidated client input, so it maps to not-found rather than
// surfacing as a server error.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return models.ErrConflict
		case invalidTextEncoding:
			return models.ErrNotFound
		}
	}
	return err
}
