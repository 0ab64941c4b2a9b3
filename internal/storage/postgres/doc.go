// Package postgres implements the billing LedgerStore, PlanCatalog and
// UserDirectory on PostgreSQL via pgx.
//
// Per-user serialization takes a transaction-scoped advisory lock on the
// user ID, with a SET LOCAL lock_timeout bounding the wait; a timed-out lock
// surfaces as billing.ErrContention, which callers may retry. The partial
// unique index on contracts(user_id) WHERE status = 'active' backstops the
// one-active-contract invariant even for writes that skip the lock, mapping
// the resulting duplicate-key error to billing.ErrActiveContractExists.
//
// Monetary columns are NUMERIC(12,2) and travel as text between Postgres and
// decimal.Decimal, never through floats.
package postgres
