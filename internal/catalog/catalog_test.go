package catalog_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contractly/contractly/internal/billing"
	"github.com/contractly/contractly/internal/catalog"
)

func TestStaticCatalog(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	pro := billing.Plan{ID: uuid.New(), Name: "Pro", Price: decimal.NewFromInt(150), Active: true}
	starter := billing.Plan{ID: uuid.New(), Name: "Starter", Price: decimal.NewFromInt(50), Active: true}
	legacy := billing.Plan{ID: uuid.New(), Name: "Legacy", Price: decimal.NewFromInt(80)}

	c := catalog.NewStatic(pro, starter, legacy)

	got, err := c.Plan(ctx, starter.ID)
	require.NoError(t, err)
	assert.Equal(t, "Starter", got.Name)

	_, err = c.Plan(ctx, uuid.New())
	assert.ErrorIs(t, err, billing.ErrPlanNotFound)

	// Inactive plans are still resolvable by ID but excluded from the
	// subscribable listing, which is price-ordered.
	active, err := c.ActivePlans(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "Starter", active[0].Name)
	assert.Equal(t, "Pro", active[1].Name)

	assert.Panics(t, func() { catalog.NewStatic() })
}

func TestStaticDirectory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	u := billing.User{ID: uuid.New(), Name: "Ana", Email: "ana@example.com"}
	d := catalog.NewStaticDirectory(u)

	got, err := d.User(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", got.Email)

	_, err = d.User(ctx, uuid.New())
	assert.ErrorIs(t, err, billing.ErrUserNotFound)
}

func TestLoadFile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	c, err := catalog.LoadFile("testdata/plans.yml")
	require.NoError(t, err)

	active, err := c.ActivePlans(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "Starter", active[0].Name)
	assert.Equal(t, "49.90", active[0].Price.StringFixed(2))
	assert.Equal(t, int64(10), active[0].StorageGB)
	assert.Equal(t, int64(50), active[0].ClientLimit)

	legacy, err := c.Plan(ctx, uuid.MustParse("3d1c7a44-95c4-4f3f-857b-6a2f0c9f4c55"))
	require.NoError(t, err)
	assert.False(t, legacy.Active)
}

func TestLoadFileErrors(t *testing.T) {
	t.Parallel()

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := catalog.LoadFile("testdata/nope.yml")
		assert.ErrorIs(t, err, catalog.ErrFailedToLoadCatalog)
	})

	t.Run("bad price", func(t *testing.T) {
		t.Parallel()
		path := writeTemp(t, "plans:\n  - id: 8a6e0804-2bd0-4672-b79d-d97027f9071a\n    name: Broken\n    price: \"ten\"\n    active: true\n")
		_, err := catalog.LoadFile(path)
		assert.ErrorIs(t, err, catalog.ErrFailedToLoadCatalog)
	})

	t.Run("negative price", func(t *testing.T) {
		t.Parallel()
		path := writeTemp(t, "plans:\n  - id: 8a6e0804-2bd0-4672-b79d-d97027f9071a\n    name: Broken\n    price: \"-1.00\"\n    active: true\n")
		_, err := catalog.LoadFile(path)
		assert.ErrorIs(t, err, catalog.ErrFailedToLoadCatalog)
	})

	t.Run("empty catalog", func(t *testing.T) {
		t.Parallel()
		path := writeTemp(t, "plans: []\n")
		_, err := catalog.LoadFile(path)
		assert.ErrorIs(t, err, catalog.ErrFailedToLoadCatalog)
	})
}

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plans.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
