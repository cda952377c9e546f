package sqlite_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sundrop/budget-planner/engine"
	"github.com/sundrop/budget-planner/school"
	"github.com/sundrop/budget-planner/store/sqlite"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_LoadMissing(t *testing.T) {
	store := newStore(t)

	plan, err := store.Load(context.Background(), "nope")

	require.NoError(t, err)
	assert.Nil(t, plan)
}

func TestStore_SaveLoad(t *testing.T) {
	// GIVEN: An edited default plan
	ctx := context.Background()
	store := newStore(t)
	plan, err := school.DefaultPlan().Apply(
		engine.SetTierQty{Tier: engine.TierFullTime, Qty: decimal.NewFromInt(18)},
		engine.SetModifierPercent{Section: engine.SectionBudget, ID: "b_salaries", Value: decimal.RequireFromString("2.5")},
	)
	require.NoError(t, err)

	// WHEN: Saving and loading it
	require.NoError(t, store.Save(ctx, school.DefaultPlanID, plan))
	loaded, err := store.Load(ctx, school.DefaultPlanID)

	// THEN: The loaded plan calculates identically
	require.NoError(t, err)
	require.NotNil(t, loaded)
	want, got := engine.Calculate(plan), engine.Calculate(*loaded)
	assert.True(t, got.NetMargin.Equal(want.NetMargin), "%s vs %s", got.NetMargin, want.NetMargin)
	assert.True(t, loaded.Tiers[engine.TierFullTime].Qty.Equal(decimal.NewFromInt(18)))
}

func TestStore_RevisionAndLastWriterWins(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	first := school.DefaultPlan()
	second, err := first.Apply(engine.SetBaseFTPrice{Value: decimal.NewFromInt(8000)})
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, "fy27", first))
	require.NoError(t, store.Save(ctx, "fy27", second))

	rec, err := store.Get(ctx, "fy27")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 2, rec.Revision)
	assert.False(t, rec.UpdatedAt.Before(rec.CreatedAt))

	loaded, err := store.Load(ctx, "fy27")
	require.NoError(t, err)
	assert.True(t, loaded.BaseFTPrice.Equal(decimal.NewFromInt(8000)))
}

func TestStore_ListDeleteReset(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	require.NoError(t, store.Save(ctx, "a", school.DefaultPlan()))
	require.NoError(t, store.Save(ctx, "b", school.DefaultPlan()))

	recs, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	require.NoError(t, store.Delete(ctx, "a"))
	recs, err = store.List(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "b", recs[0].ID)

	require.NoError(t, store.Reset(ctx))
	recs, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, recs)
}
