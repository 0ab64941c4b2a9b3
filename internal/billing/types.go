package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ContractStatus represents the lifecycle state of a contract.
type ContractStatus string

const (
	ContractActive   ContractStatus = "active"
	ContractInactive ContractStatus = "inactive"
)

// PaymentStatus represents the settlement state of a payment.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	// PaymentCredited marks a pending payment absorbed by a plan change
	// instead of being collected. Terminal, like paid.
	PaymentCredited PaymentStatus = "credited"
)

// Contract binds a user to a plan at a snapshotted monthly price.
// Contracts are never deleted; superseded ones stay as history with
// status inactive.
type Contract struct {
	ID             uuid.UUID       `json:"id"`
	UserID         uuid.UUID       `json:"user_id"`
	PlanID         uuid.UUID       `json:"plan_id"`
	MonthlyAmount  decimal.Decimal `json:"monthly_amount"` // plan price at creation, immune to later catalog changes
	Status         ContractStatus  `json:"status"`
	StartedAt      time.Time       `json:"started_at"`
	EndedAt        *time.Time      `json:"ended_at,omitempty"`
	NextBillingAt  time.Time       `json:"next_billing_date"`
	AppliedCredit  decimal.Decimal `json:"applied_credit"`
	PreviousPlanID *uuid.UUID      `json:"previous_plan_id,omitempty"` // audit trail for plan changes
}

// IsActive reports whether the contract is the user's current one.
func (c *Contract) IsActive() bool {
	return c.Status == ContractActive
}

// BillingAnchorDay returns the day-of-month the contract's recurring charge
// is anchored to. Preserved across plan changes.
func (c *Contract) BillingAnchorDay() int {
	return c.StartedAt.Day()
}

// Payment is a single charge (or, with a negative amount, a credit issuance)
// owned by a contract. Contracts do not hold payment lists; the ledger
// provides the reverse lookup.
type Payment struct {
	ID          uuid.UUID       `json:"id"`
	ContractID  uuid.UUID       `json:"contract_id"`
	Amount      decimal.Decimal `json:"amount"`
	DueDate     time.Time       `json:"due_date"`
	Status      PaymentStatus   `json:"status"`
	Description string          `json:"description"`
	PaidAt      *time.Time      `json:"paid_at,omitempty"`
	PixCode     string          `json:"pix_code,omitempty"` // settlement proof token
}

// IsPending reports whether the payment can still be settled or credited.
func (p *Payment) IsPending() bool {
	return p.Status == PaymentPending
}

// Credit is unused-time value owed to a user, redeemable once against a
// pending payment before it expires.
type Credit struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	ContractID  uuid.UUID       `json:"contract_id"` // contract whose unused time produced the credit
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	ExpiresAt   time.Time       `json:"expires_at"`
	IsUsed      bool            `json:"is_used"`
}

// Redeemable reports whether the credit can still be applied at the given time.
func (c *Credit) Redeemable(now time.Time) bool {
	return !c.IsUsed && now.Before(c.ExpiresAt)
}

// PlanChange is the result of a successful plan switch.
type PlanChange struct {
	Contract      *Contract       `json:"contract"`
	Payment       *Payment        `json:"payment"`
	AppliedCredit decimal.Decimal `json:"applied_credit"`
	// ExcessCredit is set when the prorated credit exceeded the new plan's
	// price and the remainder was banked as a Credit entity.
	ExcessCredit *Credit `json:"excess_credit,omitempty"`
}
