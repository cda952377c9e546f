package store_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sundrop/budget-planner/engine"
	"github.com/sundrop/budget-planner/engine/store"
)

func samplePlan() engine.Plan {
	return engine.Plan{
		BaseFTPrice: decimal.NewFromInt(7520),
		Tiers: map[engine.TierID]engine.TuitionTier{
			engine.TierFullTime: {ID: engine.TierFullTime, Ratio: decimal.NewFromInt(100), Qty: decimal.NewFromInt(30)},
		},
		BudgetItems: []engine.LineItem{{ID: "b_rent", Label: "Rent", Baseline: decimal.NewFromInt(12000)}},
	}
}

func TestMemory_LoadMissing(t *testing.T) {
	m := store.NewMemory()

	p, err := m.Load(context.Background(), "nope")

	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestMemory_SaveLoadIsolated(t *testing.T) {
	// GIVEN: A saved plan
	// WHEN: The caller mutates both its copy and the loaded copy
	// THEN: The stored plan is unaffected
	ctx := context.Background()
	m := store.NewMemory()
	plan := samplePlan()
	require.NoError(t, m.Save(ctx, "fy27", plan))

	plan.Tiers[engine.TierFullTime] = engine.TuitionTier{ID: engine.TierFullTime}
	loaded, err := m.Load(ctx, "fy27")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	loaded.BudgetItems[0].Label = "changed"

	again, err := m.Load(ctx, "fy27")
	require.NoError(t, err)
	assert.True(t, again.Tiers[engine.TierFullTime].Qty.Equal(decimal.NewFromInt(30)))
	assert.Equal(t, "Rent", again.BudgetItems[0].Label)
	assert.Equal(t, 1, m.Revision("fy27"))
}

func TestMemory_LastWriterWins(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	first := samplePlan()
	second := samplePlan()
	second.BaseFTPrice = decimal.NewFromInt(8000)

	require.NoError(t, m.Save(ctx, "fy27", first))
	require.NoError(t, m.Save(ctx, "fy27", second))

	got, err := m.Load(ctx, "fy27")
	require.NoError(t, err)
	assert.True(t, got.BaseFTPrice.Equal(decimal.NewFromInt(8000)))
	assert.Equal(t, 2, m.Revision("fy27"))

	require.NoError(t, m.Delete(ctx, "fy27"))
	got, err = m.Load(ctx, "fy27")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemory_PublishSubscribe(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	var received []engine.Snapshot
	unsubscribe := m.Subscribe("fy27", func(s engine.Snapshot) { received = append(received, s) })
	m.Subscribe("other", func(engine.Snapshot) { t.Error("wrong plan id delivered") })

	require.NoError(t, m.Publish(ctx, "fy27", engine.Snapshot{Origin: "server-a", Plan: samplePlan()}))
	require.Len(t, received, 1)
	assert.Equal(t, "server-a", received[0].Origin)
	assert.True(t, received[0].Plan.BaseFTPrice.Equal(decimal.NewFromInt(7520)))

	unsubscribe()
	unsubscribe()
	require.NoError(t, m.Publish(ctx, "fy27", engine.Snapshot{Plan: samplePlan()}))
	assert.Len(t, received, 1)
}
