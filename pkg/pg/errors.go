package pg

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrFailedToOpenDBConnection = errors.New("failed to open db connection")
	ErrFailedToParseDBConfig    = errors.New("failed to parse db config")
	ErrHealthcheckFailed        = errors.New("healthcheck failed, connection is not available")
	ErrFailedToApplyMigrations  = errors.New("failed to apply migrations")
	ErrMigrationsDirNotFound    = errors.New("migrations directory not found")
)

// IsNotFoundError detects pgx.ErrNoRows for uniform "not found" handling.
func IsNotFoundError(err error) bool {
	return err != nil && errors.Is(err, pgx.ErrNoRows)
}

// IsTxClosedError detects use of an already finished transaction.
func IsTxClosedError(err error) bool {
	return err != nil && errors.Is(err, pgx.ErrTxClosed)
}

// IsDuplicateKeyError detects unique constraint violations (SQLSTATE 23505),
// including partial unique indexes.
func IsDuplicateKeyError(err error) bool {
	return hasSQLState(err, "23505")
}

// IsForeignKeyViolationError detects referential integrity violations
// (SQLSTATE 23503).
func IsForeignKeyViolationError(err error) bool {
	return hasSQLState(err, "23503")
}

// IsLockNotAvailableError detects a lock_timeout expiry (SQLSTATE 55P03),
// the signal that a bounded per-row or advisory lock wait ran out.
func IsLockNotAvailableError(err error) bool {
	return hasSQLState(err, "55P03")
}

// IsSerializationError detects serialization failures (SQLSTATE 40001) and
// deadlock aborts (40P01); both are safe to retry on a fresh transaction.
func IsSerializationError(err error) bool {
	return hasSQLState(err, "40001") || hasSQLState(err, "40P01")
}

func hasSQLState(err error, code string) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
