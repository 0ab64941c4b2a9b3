// Package catalog provides plan catalog and user directory sources that do
// not need a database: a static in-memory catalog for tests and a YAML file
// catalog for local development and seeding.
package catalog

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/contractly/contractly/internal/billing"
)

// Static is an in-memory billing.PlanCatalog with a fixed plan set.
type Static struct {
	mu    sync.RWMutex
	plans map[uuid.UUID]billing.Plan
}

// NewStatic returns a catalog over a copy of the given plans. Panics if no
// plans are provided so the service never starts with an empty catalog.
func NewStatic(plans ...billing.Plan) *Static {
	if len(plans) == 0 {
		panic("catalog: at least one plan is required")
	}
	byID := make(map[uuid.UUID]billing.Plan, len(plans))
	for _, p := range plans {
		byID[p.ID] = p
	}
	return &Static{plans: byID}
}

func (s *Static) Plan(_ context.Context, id uuid.UUID) (*billing.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.plans[id]
	if !ok {
		return nil, billing.ErrPlanNotFound
	}
	return &p, nil
}

func (s *Static) ActivePlans(_ context.Context) ([]billing.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []billing.Plan
	for _, p := range s.plans {
		if p.Active {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Price.LessThan(out[j].Price) })
	return out, nil
}

// StaticDirectory is an in-memory billing.UserDirectory.
type StaticDirectory struct {
	mu    sync.RWMutex
	users map[uuid.UUID]billing.User
}

func NewStaticDirectory(users ...billing.User) *StaticDirectory {
	byID := make(map[uuid.UUID]billing.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return &StaticDirectory{users: byID}
}

func (d *StaticDirectory) User(_ context.Context, id uuid.UUID) (*billing.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	u, ok := d.users[id]
	if !ok {
		return nil, billing.ErrUserNotFound
	}
	return &u, nil
}
