package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	MaxRetries = 3
	RetryDelay = 10 * time.Millisecond
)

// ErrTxConflict marks a transaction that kept colliding with
// concurrent writers after all retries were spent.
var ErrTxConflict = errors.New("transaction conflict")

// Postgres error codes that signal the transaction should be retried
// rather than surfaced: serialization_failure and deadlock_detected.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
	}
	return false
}

// TxRunner executes functions inside serializable transactions with a
// bounded retry loop. Every settlement and wallet mutation goes
// through here so isolation and retry policy live in one place.
type TxRunner struct {
	db *gorm.DB
}

func NewTxRunner(db *gorm.DB) *TxRunner {
	return &TxRunner{db: db}
}

func (r *TxRunner) RunSerializable(ctx context.Context, fn func(tx *gorm.DB) error) error {
	var err error
	for attempt := 0; attempt < MaxRetries; attempt++ {
		err = r.db.WithContext(ctx).Transaction(fn, &sql.TxOptions{Isolation: sql.LevelSerializable})
		if err == nil || !IsRetryable(err) {
			return err
		}
		time.Sleep(RetryDelay)
	}
	return fmt.Errorf("%w: %v", ErrTxConflict, err)
}
