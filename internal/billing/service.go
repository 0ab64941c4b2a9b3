package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// excessCreditValidity is how long a banked excess credit stays redeemable.
const excessCreditValidity = 3 // months

// Service orchestrates contract transitions over the ledger.
type Service struct {
	ledger LedgerStore
	plans  PlanCatalog
	users  UserDirectory
	clock  func() time.Time
	log    *slog.Logger
}

// NewService wires the engine. Ledger, catalog and directory are required;
// panics on nil dependencies to fail fast at startup.
func NewService(ledger LedgerStore, plans PlanCatalog, users UserDirectory, opts ...ServiceOption) *Service {
	if ledger == nil {
		panic("billing: LedgerStore is required")
	}
	if plans == nil {
		panic("billing: PlanCatalog is required")
	}
	if users == nil {
		panic("billing: UserDirectory is required")
	}

	s := &Service{
		ledger: ledger,
		plans:  plans,
		users:  users,
		clock:  func() time.Time { return time.Now().UTC() },
		log:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe opens the user's first contract on the given plan and creates the
// initial pending payment, both in one transaction. Fails with
// ErrActiveContractExists if the user already has a contract (callers should
// use ChangePlan instead) and with ErrPlanInactive for retired plans.
func (s *Service) Subscribe(ctx context.Context, userID, planID uuid.UUID) (*Contract, error) {
	user, err := s.users.User(ctx, userID)
	if err != nil {
		return nil, err
	}

	plan, err := s.subscribablePlan(ctx, planID)
	if err != nil {
		return nil, err
	}

	now := s.clock()

	var contract *Contract
	err = s.ledger.UpdateUser(ctx, user.ID, func(tx LedgerTx) error {
		if _, err := tx.ActiveContract(ctx, user.ID); err == nil {
			return ErrActiveContractExists
		} else if !errors.Is(err, ErrNoActiveContract) {
			return err
		}

		contract = &Contract{
			ID:            uuid.New(),
			UserID:        user.ID,
			PlanID:        plan.ID,
			MonthlyAmount: plan.Price,
			Status:        ContractActive,
			StartedAt:     now,
			NextBillingAt: truncateToDay(now.AddDate(0, 1, 0)),
			AppliedCredit: decimal.Zero,
		}
		if err := tx.CreateContract(ctx, contract); err != nil {
			return err
		}

		return tx.CreatePayment(ctx, &Payment{
			ID:          uuid.New(),
			ContractID:  contract.ID,
			Amount:      plan.Price,
			DueDate:     contract.NextBillingAt,
			Status:      PaymentPending,
			Description: "initial payment",
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "contract created",
		slog.String("user_id", user.ID.String()),
		slog.String("contract_id", contract.ID.String()),
		slog.String("plan_id", plan.ID.String()),
	)
	return contract, nil
}

// ChangePlan closes the user's active contract, credits the unused days of
// its cycle, and opens a contract on the new plan with the billing anchor of
// the old one. The adjusted first payment is the new price minus the credit,
// floored at zero; any remainder is banked as a redeemable Credit. Pending
// payments of the closed contract are absorbed as credited. Everything runs
// in one transaction under the user's write lock.
func (s *Service) ChangePlan(ctx context.Context, userID, planID uuid.UUID) (*PlanChange, error) {
	user, err := s.users.User(ctx, userID)
	if err != nil {
		return nil, err
	}

	plan, err := s.subscribablePlan(ctx, planID)
	if err != nil {
		return nil, err
	}

	now := s.clock()

	var change *PlanChange
	err = s.ledger.UpdateUser(ctx, user.ID, func(tx LedgerTx) error {
		current, err := tx.ActiveContract(ctx, user.ID)
		if err != nil {
			return err
		}

		pro, err := prorate(current.MonthlyAmount, current.StartedAt, now)
		if err != nil {
			return err
		}

		if err := tx.CloseContract(ctx, current.ID, now); err != nil {
			return err
		}

		previousPlan := current.PlanID
		next := &Contract{
			ID:             uuid.New(),
			UserID:         user.ID,
			PlanID:         plan.ID,
			MonthlyAmount:  plan.Price,
			Status:         ContractActive,
			StartedAt:      now,
			NextBillingAt:  nextBillingAnchored(current.BillingAnchorDay(), now),
			AppliedCredit:  pro.Credit,
			PreviousPlanID: &previousPlan,
		}
		if err := tx.CreateContract(ctx, next); err != nil {
			return err
		}

		adjusted := plan.Price.Sub(pro.Credit)
		if adjusted.IsNegative() {
			adjusted = decimal.Zero
		}

		payment := &Payment{
			ID:          uuid.New(),
			ContractID:  next.ID,
			Amount:      adjusted,
			DueDate:     next.NextBillingAt,
			Status:      PaymentPending,
			Description: fmt.Sprintf("plan change, credit of %s applied", pro.Credit.StringFixed(2)),
		}
		if err := tx.CreatePayment(ctx, payment); err != nil {
			return err
		}

		absorbed, err := tx.CreditPendingPayments(ctx, current.ID)
		if err != nil {
			return err
		}

		change = &PlanChange{Contract: next, Payment: payment, AppliedCredit: pro.Credit}

		// Credit beyond the new plan's price is never discarded: it becomes
		// a standalone credit redeemable within the validity window.
		if excess := pro.Credit.Sub(plan.Price); excess.IsPositive() {
			change.ExcessCredit = &Credit{
				ID:          uuid.New(),
				UserID:      user.ID,
				ContractID:  current.ID,
				Amount:      excess,
				Description: "unused balance from plan change",
				ExpiresAt:   now.AddDate(0, excessCreditValidity, 0),
			}
			if err := tx.CreateCredit(ctx, change.ExcessCredit); err != nil {
				return err
			}
		}

		s.log.InfoContext(ctx, "plan changed",
			slog.String("user_id", user.ID.String()),
			slog.String("old_contract_id", current.ID.String()),
			slog.String("new_contract_id", next.ID.String()),
			slog.String("credit", pro.Credit.StringFixed(2)),
			slog.Int64("payments_absorbed", absorbed),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return change, nil
}

// RedeemCredit consumes a credit against a pending payment: the credit is
// marked used and the payment paid, atomically. The amounts are deliberately
// not matched against each other; redemption is a manual reconciliation
// action and always consumes the whole credit.
func (s *Service) RedeemCredit(ctx context.Context, creditID, paymentID uuid.UUID) error {
	now := s.clock()

	return s.ledger.Update(ctx, func(tx LedgerTx) error {
		credit, err := tx.Credit(ctx, creditID)
		if err != nil {
			return err
		}
		if credit.IsUsed {
			return ErrCreditConsumed
		}
		if !now.Before(credit.ExpiresAt) {
			return ErrCreditExpired
		}

		payment, err := tx.Payment(ctx, paymentID)
		if err != nil {
			return err
		}
		if !payment.IsPending() {
			return ErrPaymentNotPending
		}

		if err := tx.MarkCreditUsed(ctx, creditID); err != nil {
			return err
		}
		return tx.MarkPaymentPaid(ctx, paymentID, now, "credit:"+creditID.String())
	})
}

// SettlePayment records a manual settlement (simulated PIX) of a pending
// payment with the provided proof code.
func (s *Service) SettlePayment(ctx context.Context, paymentID uuid.UUID, pixCode string) error {
	now := s.clock()

	return s.ledger.Update(ctx, func(tx LedgerTx) error {
		payment, err := tx.Payment(ctx, paymentID)
		if err != nil {
			return err
		}
		if !payment.IsPending() {
			return ErrPaymentNotPending
		}
		return tx.MarkPaymentPaid(ctx, paymentID, now, pixCode)
	})
}

// ActiveContract returns the user's active contract, or ErrNoActiveContract.
func (s *Service) ActiveContract(ctx context.Context, userID uuid.UUID) (*Contract, error) {
	return s.ledger.ActiveContract(ctx, userID)
}

// ContractHistory returns the user's contracts, newest first.
func (s *Service) ContractHistory(ctx context.Context, userID uuid.UUID) ([]Contract, error) {
	return s.ledger.ContractHistory(ctx, userID)
}

// Payments returns the user's payments across all contracts, earliest due
// first.
func (s *Service) Payments(ctx context.Context, userID uuid.UUID) ([]Payment, error) {
	return s.ledger.Payments(ctx, userID)
}

// UnusedCredits returns the user's redeemable credits.
func (s *Service) UnusedCredits(ctx context.Context, userID uuid.UUID) ([]Credit, error) {
	return s.ledger.UnexpiredUnusedCredits(ctx, userID, s.clock())
}

// Payment returns a single payment by ID.
func (s *Service) Payment(ctx context.Context, id uuid.UUID) (*Payment, error) {
	return s.ledger.Payment(ctx, id)
}

func (s *Service) subscribablePlan(ctx context.Context, planID uuid.UUID) (*Plan, error) {
	plan, err := s.plans.Plan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if !plan.Active {
		return nil, ErrPlanInactive
	}
	if plan.Price.IsNegative() {
		return nil, ErrInvalidAmount
	}
	return plan, nil
}
