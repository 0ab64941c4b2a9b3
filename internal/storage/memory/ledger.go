// Package memory provides an in-memory LedgerStore for tests and local
// development. A single mutex serializes all transactions, which trivially
// satisfies the per-user single-writer requirement; writes stage into cloned
// maps and swap in on commit, so a failed callback leaves no trace.
package memory

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/contractly/contractly/internal/billing"
)

// Ledger is an in-memory billing.LedgerStore.
type Ledger struct {
	mu        sync.RWMutex
	contracts map[uuid.UUID]billing.Contract
	payments  map[uuid.UUID]billing.Payment
	credits   map[uuid.UUID]billing.Credit
}

// NewLedger returns an empty store.
func NewLedger() *Ledger {
	return &Ledger{
		contracts: make(map[uuid.UUID]billing.Contract),
		payments:  make(map[uuid.UUID]billing.Payment),
		credits:   make(map[uuid.UUID]billing.Credit),
	}
}

// UpdateUser implements billing.LedgerStore. The global mutex stands in for
// the per-user lock; unrelated users block too, which is acceptable for the
// dev store.
func (l *Ledger) UpdateUser(ctx context.Context, _ uuid.UUID, fn func(tx billing.LedgerTx) error) error {
	return l.Update(ctx, fn)
}

// Update implements billing.LedgerStore.
func (l *Ledger) Update(_ context.Context, fn func(tx billing.LedgerTx) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx := &ledgerTx{
		contracts: maps.Clone(l.contracts),
		payments:  maps.Clone(l.payments),
		credits:   maps.Clone(l.credits),
	}
	if err := fn(tx); err != nil {
		return err
	}

	l.contracts = tx.contracts
	l.payments = tx.payments
	l.credits = tx.credits
	return nil
}

func (l *Ledger) ActiveContract(ctx context.Context, userID uuid.UUID) (*billing.Contract, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return view(l).ActiveContract(ctx, userID)
}

func (l *Ledger) ContractHistory(ctx context.Context, userID uuid.UUID) ([]billing.Contract, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return view(l).ContractHistory(ctx, userID)
}

func (l *Ledger) Payments(ctx context.Context, userID uuid.UUID) ([]billing.Payment, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return view(l).Payments(ctx, userID)
}

func (l *Ledger) UnexpiredUnusedCredits(ctx context.Context, userID uuid.UUID, now time.Time) ([]billing.Credit, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return view(l).UnexpiredUnusedCredits(ctx, userID, now)
}

func (l *Ledger) Payment(ctx context.Context, id uuid.UUID) (*billing.Payment, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return view(l).Payment(ctx, id)
}

func (l *Ledger) Credit(ctx context.Context, id uuid.UUID) (*billing.Credit, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return view(l).Credit(ctx, id)
}

// view adapts the live maps to the tx read methods without cloning. Callers
// must hold at least the read lock.
func view(l *Ledger) *ledgerTx {
	return &ledgerTx{contracts: l.contracts, payments: l.payments, credits: l.credits}
}

type ledgerTx struct {
	contracts map[uuid.UUID]billing.Contract
	payments  map[uuid.UUID]billing.Payment
	credits   map[uuid.UUID]billing.Credit
}

func (t *ledgerTx) ActiveContract(_ context.Context, userID uuid.UUID) (*billing.Contract, error) {
	for _, c := range t.contracts {
		if c.UserID == userID && c.Status == billing.ContractActive {
			return &c, nil
		}
	}
	return nil, billing.ErrNoActiveContract
}

func (t *ledgerTx) ContractHistory(_ context.Context, userID uuid.UUID) ([]billing.Contract, error) {
	var out []billing.Contract
	for _, c := range t.contracts {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return out, nil
}

func (t *ledgerTx) Payments(_ context.Context, userID uuid.UUID) ([]billing.Payment, error) {
	var out []billing.Payment
	for _, p := range t.payments {
		if c, ok := t.contracts[p.ContractID]; ok && c.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

func (t *ledgerTx) UnexpiredUnusedCredits(_ context.Context, userID uuid.UUID, now time.Time) ([]billing.Credit, error) {
	var out []billing.Credit
	for _, c := range t.credits {
		if c.UserID == userID && c.Redeemable(now) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiresAt.Before(out[j].ExpiresAt) })
	return out, nil
}

func (t *ledgerTx) Payment(_ context.Context, id uuid.UUID) (*billing.Payment, error) {
	p, ok := t.payments[id]
	if !ok {
		return nil, billing.ErrPaymentNotFound
	}
	return &p, nil
}

func (t *ledgerTx) Credit(_ context.Context, id uuid.UUID) (*billing.Credit, error) {
	c, ok := t.credits[id]
	if !ok {
		return nil, billing.ErrCreditNotFound
	}
	return &c, nil
}

func (t *ledgerTx) CreateContract(ctx context.Context, c *billing.Contract) error {
	if c.Status == billing.ContractActive {
		if _, err := t.ActiveContract(ctx, c.UserID); err == nil {
			return billing.ErrActiveContractExists
		}
	}
	t.contracts[c.ID] = *c
	return nil
}

func (t *ledgerTx) CloseContract(_ context.Context, id uuid.UUID, endedAt time.Time) error {
	c, ok := t.contracts[id]
	if !ok || c.Status != billing.ContractActive {
		return billing.ErrContractNotFound
	}
	c.Status = billing.ContractInactive
	c.EndedAt = &endedAt
	t.contracts[id] = c
	return nil
}

func (t *ledgerTx) CreatePayment(_ context.Context, p *billing.Payment) error {
	t.payments[p.ID] = *p
	return nil
}

func (t *ledgerTx) MarkPaymentPaid(_ context.Context, id uuid.UUID, paidAt time.Time, pixCode string) error {
	p, ok := t.payments[id]
	if !ok {
		return billing.ErrPaymentNotFound
	}
	if p.Status != billing.PaymentPending {
		return billing.ErrPaymentNotPending
	}
	p.Status = billing.PaymentPaid
	p.PaidAt = &paidAt
	p.PixCode = pixCode
	t.payments[id] = p
	return nil
}

func (t *ledgerTx) CreditPendingPayments(_ context.Context, contractID uuid.UUID) (int64, error) {
	var n int64
	for id, p := range t.payments {
		if p.ContractID == contractID && p.Status == billing.PaymentPending {
			p.Status = billing.PaymentCredited
			t.payments[id] = p
			n++
		}
	}
	return n, nil
}

func (t *ledgerTx) CreateCredit(_ context.Context, c *billing.Credit) error {
	t.credits[c.ID] = *c
	return nil
}

func (t *ledgerTx) MarkCreditUsed(_ context.Context, id uuid.UUID) error {
	c, ok := t.credits[id]
	if !ok {
		return billing.ErrCreditNotFound
	}
	if c.IsUsed {
		return billing.ErrCreditConsumed
	}
	c.IsUsed = true
	t.credits[id] = c
	return nil
}
