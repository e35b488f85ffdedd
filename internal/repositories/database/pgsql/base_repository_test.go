package pgsql

import (
	"errors"
	"testing"

	"github.com/SscSPs/neuron_ledger/internal/apperrors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestNotFoundOr(t *testing.T) {
	assert.ErrorIs(t, notFoundOr(pgx.ErrNoRows, "find"), apperrors.ErrNotFound)
	assert.ErrorIs(t, notFoundOr(&pgconn.PgError{Code: invalidTextRepresentation}, "find"), apperrors.ErrNotFound)

	other := notFoundOr(&pgconn.PgError{Code: uniqueViolation}, "find")
	assert.NotErrorIs(t, other, apperrors.ErrNotFound)
	assert.True(t, isUniqueViolation(other))

	assert.EqualError(t, notFoundOr(errors.New("conn reset"), "failed to find invoice"), "failed to find invoice: conn reset")
}

func TestIsValidID(t *testing.T) {
	assert.True(t, isValidID(uuid.NewString()))
	assert.False(t, isValidID("not-a-uuid"))
	assert.False(t, isValidID(""))
}
