package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contractly/contractly/internal/billing"
	"github.com/contractly/contractly/internal/storage/memory"
)

func day(d int) time.Time {
	return time.Date(2025, time.June, d, 0, 0, 0, 0, time.UTC)
}

func contract(userID uuid.UUID, status billing.ContractStatus, startedAt time.Time) *billing.Contract {
	return &billing.Contract{
		ID:            uuid.New(),
		UserID:        userID,
		PlanID:        uuid.New(),
		MonthlyAmount: decimal.NewFromInt(100),
		Status:        status,
		StartedAt:     startedAt,
		NextBillingAt: startedAt.AddDate(0, 1, 0),
		AppliedCredit: decimal.Zero,
	}
}

func TestLedgerRejectsSecondActiveContract(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	ledger := memory.NewLedger()
	userID := uuid.New()

	err := ledger.UpdateUser(ctx, userID, func(tx billing.LedgerTx) error {
		return tx.CreateContract(ctx, contract(userID, billing.ContractActive, day(1)))
	})
	require.NoError(t, err)

	err = ledger.UpdateUser(ctx, userID, func(tx billing.LedgerTx) error {
		return tx.CreateContract(ctx, contract(userID, billing.ContractActive, day(2)))
	})
	assert.ErrorIs(t, err, billing.ErrActiveContractExists)

	// Inactive ones can pile up freely.
	err = ledger.UpdateUser(ctx, userID, func(tx billing.LedgerTx) error {
		return tx.CreateContract(ctx, contract(userID, billing.ContractInactive, day(3)))
	})
	require.NoError(t, err)
}

func TestLedgerOrdering(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	ledger := memory.NewLedger()
	userID := uuid.New()

	var contractID uuid.UUID
	err := ledger.UpdateUser(ctx, userID, func(tx billing.LedgerTx) error {
		c := contract(userID, billing.ContractActive, day(10))
		contractID = c.ID
		if err := tx.CreateContract(ctx, c); err != nil {
			return err
		}
		old := contract(userID, billing.ContractInactive, day(1))
		if err := tx.CreateContract(ctx, old); err != nil {
			return err
		}

		for _, due := range []time.Time{day(20), day(5), day(12)} {
			p := &billing.Payment{
				ID:         uuid.New(),
				ContractID: c.ID,
				Amount:     decimal.NewFromInt(10),
				DueDate:    due,
				Status:     billing.PaymentPending,
			}
			if err := tx.CreatePayment(ctx, p); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	history, err := ledger.ContractHistory(ctx, userID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, contractID, history[0].ID) // newest first

	payments, err := ledger.Payments(ctx, userID)
	require.NoError(t, err)
	require.Len(t, payments, 3)
	assert.Equal(t, day(5), payments[0].DueDate)
	assert.Equal(t, day(12), payments[1].DueDate)
	assert.Equal(t, day(20), payments[2].DueDate)
}

func TestLedgerCreditPendingPayments(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	ledger := memory.NewLedger()
	userID := uuid.New()
	c := contract(userID, billing.ContractActive, day(1))

	err := ledger.UpdateUser(ctx, userID, func(tx billing.LedgerTx) error {
		if err := tx.CreateContract(ctx, c); err != nil {
			return err
		}
		pending := &billing.Payment{
			ID: uuid.New(), ContractID: c.ID,
			Amount: decimal.NewFromInt(10), DueDate: day(20),
			Status: billing.PaymentPending,
		}
		paid := &billing.Payment{
			ID: uuid.New(), ContractID: c.ID,
			Amount: decimal.NewFromInt(10), DueDate: day(5),
			Status: billing.PaymentPaid,
		}
		if err := tx.CreatePayment(ctx, pending); err != nil {
			return err
		}
		return tx.CreatePayment(ctx, paid)
	})
	require.NoError(t, err)

	err = ledger.UpdateUser(ctx, userID, func(tx billing.LedgerTx) error {
		n, err := tx.CreditPendingPayments(ctx, c.ID)
		assert.Equal(t, int64(1), n)
		return err
	})
	require.NoError(t, err)

	payments, err := ledger.Payments(ctx, userID)
	require.NoError(t, err)
	for _, p := range payments {
		assert.NotEqual(t, billing.PaymentPending, p.Status)
	}
}
