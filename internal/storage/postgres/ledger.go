package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/contractly/contractly/internal/billing"
	"github.com/contractly/contractly/pkg/pg"
)

// defaultLockWait bounds how long a transition waits for the per-user lock
// before failing with billing.ErrContention.
const defaultLockWait = 3 * time.Second

// Ledger is the PostgreSQL billing.LedgerStore.
type Ledger struct {
	pool     *pgxpool.Pool
	lockWait time.Duration
}

// NewLedger wraps the pool. Panics on nil pool to fail fast at startup.
func NewLedger(pool *pgxpool.Pool) *Ledger {
	if pool == nil {
		panic("postgres: pgx pool is required")
	}
	return &Ledger{pool: pool, lockWait: defaultLockWait}
}

// UpdateUser implements billing.LedgerStore. The advisory lock keys on the
// user ID, so transitions for one user run strictly one at a time while
// unrelated users proceed in parallel.
func (l *Ledger) UpdateUser(ctx context.Context, userID uuid.UUID, fn func(tx billing.LedgerTx) error) error {
	return l.inTx(ctx, func(tx pgx.Tx) error {
		// SET LOCAL cannot take a bind parameter; the interval is a
		// server-side duration string built from a trusted config value.
		if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", l.lockWait.Milliseconds())); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))", userID); err != nil {
			return translateErr(err)
		}
		return fn(&ledgerTx{q: tx})
	})
}

// Update implements billing.LedgerStore.
func (l *Ledger) Update(ctx context.Context, fn func(tx billing.LedgerTx) error) error {
	return l.inTx(ctx, func(tx pgx.Tx) error {
		return fn(&ledgerTx{q: tx})
	})
}

func (l *Ledger) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := l.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return translateErr(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return translateErr(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return translateErr(err)
	}
	return nil
}

func (l *Ledger) ActiveContract(ctx context.Context, userID uuid.UUID) (*billing.Contract, error) {
	return (&ledgerTx{q: l.pool}).ActiveContract(ctx, userID)
}

func (l *Ledger) ContractHistory(ctx context.Context, userID uuid.UUID) ([]billing.Contract, error) {
	return (&ledgerTx{q: l.pool}).ContractHistory(ctx, userID)
}

func (l *Ledger) Payments(ctx context.Context, userID uuid.UUID) ([]billing.Payment, error) {
	return (&ledgerTx{q: l.pool}).Payments(ctx, userID)
}

func (l *Ledger) UnexpiredUnusedCredits(ctx context.Context, userID uuid.UUID, now time.Time) ([]billing.Credit, error) {
	return (&ledgerTx{q: l.pool}).UnexpiredUnusedCredits(ctx, userID, now)
}

func (l *Ledger) Payment(ctx context.Context, id uuid.UUID) (*billing.Payment, error) {
	return (&ledgerTx{q: l.pool}).Payment(ctx, id)
}

func (l *Ledger) Credit(ctx context.Context, id uuid.UUID) (*billing.Credit, error) {
	return (&ledgerTx{q: l.pool}).Credit(ctx, id)
}

// translateErr maps driver-level failures onto the billing taxonomy.
func translateErr(err error) error {
	switch {
	case err == nil:
		return nil
	case pg.IsLockNotAvailableError(err), pg.IsSerializationError(err):
		return errors.Join(billing.ErrContention, err)
	case pg.IsTxClosedError(err):
		return errors.Join(billing.ErrIntegrity, err)
	default:
		return err
	}
}
