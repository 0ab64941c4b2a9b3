package pg_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/contractly/contractly/pkg/pg"
)

func pgErr(code string) error {
	return fmt.Errorf("query failed: %w", &pgconn.PgError{Code: code})
}

func TestErrorClassifiers(t *testing.T) {
	t.Parallel()

	assert.True(t, pg.IsNotFoundError(pgx.ErrNoRows))
	assert.True(t, pg.IsNotFoundError(fmt.Errorf("scan: %w", pgx.ErrNoRows)))
	assert.False(t, pg.IsNotFoundError(nil))
	assert.False(t, pg.IsNotFoundError(errors.New("other")))

	assert.True(t, pg.IsTxClosedError(pgx.ErrTxClosed))

	assert.True(t, pg.IsDuplicateKeyError(pgErr("23505")))
	assert.False(t, pg.IsDuplicateKeyError(pgErr("23503")))

	assert.True(t, pg.IsForeignKeyViolationError(pgErr("23503")))

	assert.True(t, pg.IsLockNotAvailableError(pgErr("55P03")))
	assert.False(t, pg.IsLockNotAvailableError(pgErr("23505")))

	assert.True(t, pg.IsSerializationError(pgErr("40001")))
	assert.True(t, pg.IsSerializationError(pgErr("40P01")))
	assert.False(t, pg.IsSerializationError(pgErr("55P03")))
}
