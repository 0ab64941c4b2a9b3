package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/contractly/contractly/internal/billing"
	"github.com/contractly/contractly/pkg/pg"
)

// querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx, letting
// the same query code serve both the store's read side and transactions.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type ledgerTx struct {
	q querier
}

const contractCols = `id, user_id, plan_id, monthly_amount::text, status, started_at, ended_at, next_billing_date, applied_credit::text, previous_plan_id`

func (t *ledgerTx) ActiveContract(ctx context.Context, userID uuid.UUID) (*billing.Contract, error) {
	row := t.q.QueryRow(ctx,
		`SELECT `+contractCols+` FROM contracts WHERE user_id = $1 AND status = 'active'`,
		userID)
	c, err := scanContract(row)
	if pg.IsNotFoundError(err) {
		return nil, billing.ErrNoActiveContract
	}
	return c, err
}

func (t *ledgerTx) ContractHistory(ctx context.Context, userID uuid.UUID) ([]billing.Contract, error) {
	rows, err := t.q.Query(ctx,
		`SELECT `+contractCols+` FROM contracts WHERE user_id = $1 ORDER BY started_at DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []billing.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

const paymentCols = `id, contract_id, amount::text, due_date, status, description, paid_at, COALESCE(pix_code, '')`

func (t *ledgerTx) Payments(ctx context.Context, userID uuid.UUID) ([]billing.Payment, error) {
	rows, err := t.q.Query(ctx,
		`SELECT p.id, p.contract_id, p.amount::text, p.due_date, p.status, p.description, p.paid_at, COALESCE(p.pix_code, '')
		 FROM payments p
		 JOIN contracts c ON c.id = p.contract_id
		 WHERE c.user_id = $1
		 ORDER BY p.due_date ASC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []billing.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

const creditCols = `id, user_id, contract_id, amount::text, description, expires_at, is_used`

func (t *ledgerTx) UnexpiredUnusedCredits(ctx context.Context, userID uuid.UUID, now time.Time) ([]billing.Credit, error) {
	rows, err := t.q.Query(ctx,
		`SELECT `+creditCols+` FROM credits
		 WHERE user_id = $1 AND NOT is_used AND expires_at > $2
		 ORDER BY expires_at ASC`,
		userID, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []billing.Credit
	for rows.Next() {
		c, err := scanCredit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (t *ledgerTx) Payment(ctx context.Context, id uuid.UUID) (*billing.Payment, error) {
	row := t.q.QueryRow(ctx, `SELECT `+paymentCols+` FROM payments WHERE id = $1`, id)
	p, err := scanPayment(row)
	if pg.IsNotFoundError(err) {
		return nil, billing.ErrPaymentNotFound
	}
	return p, err
}

func (t *ledgerTx) Credit(ctx context.Context, id uuid.UUID) (*billing.Credit, error) {
	row := t.q.QueryRow(ctx, `SELECT `+creditCols+` FROM credits WHERE id = $1`, id)
	c, err := scanCredit(row)
	if pg.IsNotFoundError(err) {
		return nil, billing.ErrCreditNotFound
	}
	return c, err
}

func (t *ledgerTx) CreateContract(ctx context.Context, c *billing.Contract) error {
	_, err := t.q.Exec(ctx,
		`INSERT INTO contracts (id, user_id, plan_id, monthly_amount, status, started_at, ended_at, next_billing_date, applied_credit, previous_plan_id)
		 VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8, $9::numeric, $10)`,
		c.ID, c.UserID, c.PlanID, c.MonthlyAmount.StringFixed(2), c.Status,
		c.StartedAt, c.EndedAt, c.NextBillingAt, c.AppliedCredit.StringFixed(2), c.PreviousPlanID)
	if pg.IsDuplicateKeyError(err) {
		// contracts_one_active_per_user partial unique index
		return billing.ErrActiveContractExists
	}
	return err
}

func (t *ledgerTx) CloseContract(ctx context.Context, id uuid.UUID, endedAt time.Time) error {
	tag, err := t.q.Exec(ctx,
		`UPDATE contracts SET status = 'inactive', ended_at = $2 WHERE id = $1 AND status = 'active'`,
		id, endedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return billing.ErrContractNotFound
	}
	return nil
}

func (t *ledgerTx) CreatePayment(ctx context.Context, p *billing.Payment) error {
	var pix *string
	if p.PixCode != "" {
		pix = &p.PixCode
	}
	_, err := t.q.Exec(ctx,
		`INSERT INTO payments (id, contract_id, amount, due_date, status, description, paid_at, pix_code)
		 VALUES ($1, $2, $3::numeric, $4, $5, $6, $7, $8)`,
		p.ID, p.ContractID, p.Amount.StringFixed(2), p.DueDate, p.Status, p.Description, p.PaidAt, pix)
	return err
}

func (t *ledgerTx) MarkPaymentPaid(ctx context.Context, id uuid.UUID, paidAt time.Time, pixCode string) error {
	tag, err := t.q.Exec(ctx,
		`UPDATE payments SET status = 'paid', paid_at = $2, pix_code = $3 WHERE id = $1 AND status = 'pending'`,
		id, paidAt, pixCode)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Distinguish a missing payment from one that lost the CAS race.
		if _, err := t.Payment(ctx, id); err != nil {
			return err
		}
		return billing.ErrPaymentNotPending
	}
	return nil
}

func (t *ledgerTx) CreditPendingPayments(ctx context.Context, contractID uuid.UUID) (int64, error) {
	tag, err := t.q.Exec(ctx,
		`UPDATE payments SET status = 'credited' WHERE contract_id = $1 AND status = 'pending'`,
		contractID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (t *ledgerTx) CreateCredit(ctx context.Context, c *billing.Credit) error {
	_, err := t.q.Exec(ctx,
		`INSERT INTO credits (id, user_id, contract_id, amount, description, expires_at, is_used)
		 VALUES ($1, $2, $3, $4::numeric, $5, $6, $7)`,
		c.ID, c.UserID, c.ContractID, c.Amount.StringFixed(2), c.Description, c.ExpiresAt, c.IsUsed)
	return err
}

func (t *ledgerTx) MarkCreditUsed(ctx context.Context, id uuid.UUID) error {
	tag, err := t.q.Exec(ctx,
		`UPDATE credits SET is_used = TRUE WHERE id = $1 AND NOT is_used`,
		id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, err := t.Credit(ctx, id); err != nil {
			return err
		}
		return billing.ErrCreditConsumed
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContract(row rowScanner) (*billing.Contract, error) {
	var (
		c                      billing.Contract
		monthly, appliedCredit string
		endedAt                *time.Time
		previousPlanID         *uuid.UUID
	)
	if err := row.Scan(&c.ID, &c.UserID, &c.PlanID, &monthly, &c.Status,
		&c.StartedAt, &endedAt, &c.NextBillingAt, &appliedCredit, &previousPlanID); err != nil {
		return nil, err
	}
	c.EndedAt = endedAt
	c.PreviousPlanID = previousPlanID

	var err error
	if c.MonthlyAmount, err = decimal.NewFromString(monthly); err != nil {
		return nil, errors.Join(billing.ErrIntegrity, err)
	}
	if c.AppliedCredit, err = decimal.NewFromString(appliedCredit); err != nil {
		return nil, errors.Join(billing.ErrIntegrity, err)
	}
	return &c, nil
}

func scanPayment(row rowScanner) (*billing.Payment, error) {
	var (
		p      billing.Payment
		amount string
		paidAt *time.Time
	)
	if err := row.Scan(&p.ID, &p.ContractID, &amount, &p.DueDate, &p.Status,
		&p.Description, &paidAt, &p.PixCode); err != nil {
		return nil, err
	}
	p.PaidAt = paidAt

	var err error
	if p.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, errors.Join(billing.ErrIntegrity, err)
	}
	return &p, nil
}

func scanCredit(row rowScanner) (*billing.Credit, error) {
	var (
		c      billing.Credit
		amount string
	)
	if err := row.Scan(&c.ID, &c.UserID, &c.ContractID, &amount,
		&c.Description, &c.ExpiresAt, &c.IsUsed); err != nil {
		return nil, err
	}

	var err error
	if c.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, errors.Join(billing.ErrIntegrity, err)
	}
	return &c, nil
}
