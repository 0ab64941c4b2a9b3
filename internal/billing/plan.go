package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Plan is a catalog entry. Plans referenced by contracts are effectively
// immutable: contracts snapshot the price, so catalog edits never change
// what an existing contract owes.
type Plan struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	StorageGB   int64           `json:"storage_gb"`
	ClientLimit int64           `json:"client_limit"`
	Active      bool            `json:"active"`
}

// User is a read-only identity record; authentication and profile management
// happen elsewhere.
type User struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// PlanCatalog is the read-only plan collaborator.
type PlanCatalog interface {
	// Plan returns the plan by ID.
	// Returns ErrPlanNotFound if no such plan exists.
	Plan(ctx context.Context, id uuid.UUID) (*Plan, error)

	// ActivePlans returns subscribable plans ordered by price ascending.
	ActivePlans(ctx context.Context) ([]Plan, error)
}

// UserDirectory is the read-only user collaborator.
type UserDirectory interface {
	// User returns the user by ID.
	// Returns ErrUserNotFound if no such user exists.
	User(ctx context.Context, id uuid.UUID) (*User, error)
}
