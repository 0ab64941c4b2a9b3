// Package billing implements the subscription contract engine: subscribing a
// user to a plan, switching plans mid-cycle with prorated credit, redeeming
// credits against pending payments, and settling payments.
//
// The engine is a small per-user state machine over {no active contract,
// active contract}. Every transition that touches more than one record runs
// inside a single ledger transaction, so a torn state (a contract without its
// payment, or two active contracts for one user) is unreachable by
// construction.
//
// Persistence is abstracted behind the LedgerStore interface defined in this
// package; implementations live under internal/storage. Plan and user lookups
// are read-only collaborators behind PlanCatalog and UserDirectory.
//
// All monetary values are decimal.Decimal with two-digit cent semantics.
// Current time is injected through the service clock option, never read
// ambiently, so proration math is deterministic under test.
package billing
