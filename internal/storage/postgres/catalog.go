package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/contractly/contractly/internal/billing"
	"github.com/contractly/contractly/pkg/pg"
)

// Catalog is the PostgreSQL billing.PlanCatalog. Read-only: plan management
// is out of scope for this service.
type Catalog struct {
	pool *pgxpool.Pool
}

func NewCatalog(pool *pgxpool.Pool) *Catalog {
	if pool == nil {
		panic("postgres: pgx pool is required")
	}
	return &Catalog{pool: pool}
}

const planCols = `id, name, description, price::text, storage_gb, client_limit, active`

func (c *Catalog) Plan(ctx context.Context, id uuid.UUID) (*billing.Plan, error) {
	row := c.pool.QueryRow(ctx, `SELECT `+planCols+` FROM plans WHERE id = $1`, id)
	p, err := scanPlan(row)
	if pg.IsNotFoundError(err) {
		return nil, billing.ErrPlanNotFound
	}
	return p, err
}

func (c *Catalog) ActivePlans(ctx context.Context) ([]billing.Plan, error) {
	rows, err := c.pool.Query(ctx,
		`SELECT `+planCols+` FROM plans WHERE active ORDER BY price ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []billing.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func scanPlan(row rowScanner) (*billing.Plan, error) {
	var (
		p     billing.Plan
		price string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &price,
		&p.StorageGB, &p.ClientLimit, &p.Active); err != nil {
		return nil, err
	}

	var err error
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return nil, errors.Join(billing.ErrIntegrity, err)
	}
	return &p, nil
}

// Directory is the PostgreSQL billing.UserDirectory.
type Directory struct {
	pool *pgxpool.Pool
}

func NewDirectory(pool *pgxpool.Pool) *Directory {
	if pool == nil {
		panic("postgres: pgx pool is required")
	}
	return &Directory{pool: pool}
}

func (d *Directory) User(ctx context.Context, id uuid.UUID) (*billing.User, error) {
	var u billing.User
	err := d.pool.QueryRow(ctx,
		`SELECT id, name, email FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Name, &u.Email)
	if pg.IsNotFoundError(err) {
		return nil, billing.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
