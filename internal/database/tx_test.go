package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsRetryableSerializationFailure(t *testing.T) {
	err := &pgconn.PgError{Code: "40001"}
	assert.True(t, IsRetryable(err))
}

func TestIsRetryableDeadlock(t *testing.T) {
	err := &pgconn.PgError{Code: "40P01"}
	assert.True(t, IsRetryable(err))
}

func TestIsRetryableWrapped(t *testing.T) {
	err := fmt.Errorf("settle bet: %w", &pgconn.PgError{Code: "40001"})
	assert.True(t, IsRetryable(err))
}

func TestIsRetryableOtherPgError(t *testing.T) {
	err := &pgconn.PgError{Code: "23505"}
	assert.False(t, IsRetryable(err))
}

func TestIsRetryablePlainError(t *testing.T) {
	assert.False(t, IsRetryable(errors.New("boom")))
}
