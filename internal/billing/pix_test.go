package billing_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contractly/contractly/internal/billing"
)

func TestServicePixCharge(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFixture(t, day(2025, time.June, 1))
	_, err := f.svc.Subscribe(ctx, f.user.ID, f.planA.ID)
	require.NoError(t, err)

	payments, err := f.svc.Payments(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)

	charge, err := f.svc.PixCharge(ctx, payments[0].ID)
	require.NoError(t, err)

	assert.Equal(t, payments[0].ID, charge.PaymentID)
	assert.True(t, strings.HasPrefix(charge.Code, "PIX"))
	assert.Contains(t, charge.Code, "100.00")
	assert.True(t, strings.HasPrefix(charge.QR, "data:image/png;base64,"))

	// Same payment, same code: users may have copied it already.
	again, err := f.svc.PixCharge(ctx, payments[0].ID)
	require.NoError(t, err)
	assert.Equal(t, charge.Code, again.Code)

	// Nothing left to collect once settled.
	require.NoError(t, f.svc.SettlePayment(ctx, payments[0].ID, charge.Code))
	_, err = f.svc.PixCharge(ctx, payments[0].ID)
	assert.ErrorIs(t, err, billing.ErrPaymentNotPending)
}
