package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// LedgerStore is the durable record of contracts, payments and credits.
// Implementations must guarantee that everything written inside a single
// Update/UpdateUser callback lands atomically, or nothing does.
type LedgerStore interface {
	// UpdateUser runs fn in a transaction that holds the given user's write
	// lock, serializing concurrent transitions for one user without blocking
	// unrelated users. Returns ErrContention if the lock cannot be acquired
	// within the store's bounded wait.
	UpdateUser(ctx context.Context, userID uuid.UUID, fn func(tx LedgerTx) error) error

	// Update runs fn in a plain transaction. Used for transitions keyed by
	// record identity rather than user (credit redemption, settlement),
	// which rely on the compare-and-set mark operations for safety.
	Update(ctx context.Context, fn func(tx LedgerTx) error) error

	LedgerReader
}

// LedgerReader provides the query side. Reads see committed state and never
// block writes of unrelated entities.
type LedgerReader interface {
	// ActiveContract returns the user's single active contract, or
	// ErrNoActiveContract.
	ActiveContract(ctx context.Context, userID uuid.UUID) (*Contract, error)

	// ContractHistory returns all of the user's contracts, started_at
	// descending.
	ContractHistory(ctx context.Context, userID uuid.UUID) ([]Contract, error)

	// Payments returns every payment across the user's contracts, due_date
	// ascending.
	Payments(ctx context.Context, userID uuid.UUID) ([]Payment, error)

	// UnexpiredUnusedCredits returns the user's redeemable credits at the
	// given time.
	UnexpiredUnusedCredits(ctx context.Context, userID uuid.UUID, now time.Time) ([]Credit, error)

	// Payment returns a payment by ID, or ErrPaymentNotFound.
	Payment(ctx context.Context, id uuid.UUID) (*Payment, error)

	// Credit returns a credit by ID, or ErrCreditNotFound.
	Credit(ctx context.Context, id uuid.UUID) (*Credit, error)
}

// LedgerTx is the write surface available inside a transaction. The mark
// operations are compare-and-set: they fail without side effects when the
// record is not in the expected source state, so two racing transitions
// cannot both win.
type LedgerTx interface {
	LedgerReader

	// CreateContract inserts a new contract. Returns
	// ErrActiveContractExists if the user already has an active one.
	CreateContract(ctx context.Context, c *Contract) error

	// CloseContract flips an active contract to inactive with the given end
	// time. Returns ErrContractNotFound if the contract is missing or
	// already closed.
	CloseContract(ctx context.Context, id uuid.UUID, endedAt time.Time) error

	// CreatePayment inserts a new payment.
	CreatePayment(ctx context.Context, p *Payment) error

	// MarkPaymentPaid transitions a pending payment to paid, recording the
	// settlement time and proof. Returns ErrPaymentNotPending if the payment
	// is not pending, ErrPaymentNotFound if it does not exist.
	MarkPaymentPaid(ctx context.Context, id uuid.UUID, paidAt time.Time, pixCode string) error

	// CreditPendingPayments flips all pending payments of a contract to
	// credited, returning how many were absorbed.
	CreditPendingPayments(ctx context.Context, contractID uuid.UUID) (int64, error)

	// CreateCredit inserts a new credit.
	CreateCredit(ctx context.Context, c *Credit) error

	// MarkCreditUsed consumes an unused credit. Returns ErrCreditConsumed if
	// it was already used, ErrCreditNotFound if it does not exist.
	MarkCreditUsed(ctx context.Context, id uuid.UUID) error
}
