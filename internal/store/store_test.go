package store

import (
	"errors"
	"testing"

	"github.com/ixnv/anon-fl-api/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapErr(t *testing.T) {
	assert.NoError(t, mapErr(nil))
	assert.ErrorIs(t, mapErr(pgx.ErrNoRows), models.ErrNotFound)
	assert.ErrorIs(t, mapErr(&pgconn.PgError{Code: uniqueViolation}), models.ErrConflict)
	assert.ErrorIs(t, mapErr(&pgconn.PgError{Code: invalidTextEncoding}), models.ErrNotFound)

	boom := errors.New("boom")
	assert.ErrorIs(t, mapErr(boom), boom)
}
