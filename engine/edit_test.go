package engine_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sundrop/budget-planner/engine"
)

func ids(items []engine.LineItem) []engine.ItemID {
	out := make([]engine.ItemID, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

// =============================================================================
// IMMUTABILITY AND ATOMICITY
// =============================================================================

func TestApply_DoesNotMutateReceiver(t *testing.T) {
	plan := scenarioPlan()

	next, err := plan.Apply(
		engine.SetTierQty{Tier: engine.TierFullTime, Qty: d("20")},
		engine.SetAllocation{Program: engine.ProgramStaff, Tier: engine.Tier4Day, Qty: d("1"), DiscountPercent: d("25")},
		engine.SetBaseline{Section: engine.SectionBudget, ID: "b_salaries", Value: d("200000")},
	)
	require.NoError(t, err)

	assert.Equal(t, scenarioPlan(), plan)
	assertDec(t, "20", next.Tiers[engine.TierFullTime].Qty)
	assertDec(t, "200000", next.BudgetItems[0].Baseline)
	assert.Len(t, next.Discounts[engine.ProgramStaff].Allocations, 2)
	assert.Len(t, plan.Discounts[engine.ProgramStaff].Allocations, 1)
}

func TestApply_BatchIsAtomic(t *testing.T) {
	// GIVEN: A batch whose second edit fails
	// WHEN: Applying it
	// THEN: The first edit does not take effect either

	plan := scenarioPlan()
	got, err := plan.Apply(
		engine.SetBaseFTPrice{Value: d("9000")},
		engine.DeleteLineItem{Section: engine.SectionBudget, ID: "b_missing"},
	)

	require.ErrorIs(t, err, engine.ErrLineItemNotFound)
	assertDec(t, "7520", got.BaseFTPrice)
	assert.Equal(t, plan, got)
}

// =============================================================================
// TUITION AND DISCOUNTS
// =============================================================================

func TestSetTierQty_MaterializesCanonicalTier(t *testing.T) {
	next, err := scenarioPlan().Apply(engine.SetTierQty{Tier: engine.TierHalfDay, Qty: d("4")})
	require.NoError(t, err)

	half := next.Tiers[engine.TierHalfDay]
	assertDec(t, "50", half.Ratio)
	assertDec(t, "4", half.Qty)
	assert.Equal(t, "Half-Day (5 Days)", half.Label)
}

func TestSetTierRatio_UnknownTier(t *testing.T) {
	_, err := scenarioPlan().Apply(engine.SetTierRatio{Tier: "tuitionWeekend", Ratio: d("30")})

	require.ErrorIs(t, err, engine.ErrUnknownTier)
	assert.True(t, engine.IsNotFound(err))

	var editErr *engine.EditError
	require.True(t, errors.As(err, &editErr))
	assert.Equal(t, "set_tier_ratio", editErr.Op)
	assert.Equal(t, "tuitionWeekend", editErr.Target)
}

func TestSetAllocation(t *testing.T) {
	t.Run("materializes known program", func(t *testing.T) {
		next, err := scenarioPlan().Apply(engine.SetAllocation{
			Program: engine.ProgramEarly, Tier: engine.TierFullTime, Qty: d("12"), DiscountPercent: d("5"),
		})
		require.NoError(t, err)

		early := next.Discounts[engine.ProgramEarly]
		assert.Equal(t, "Early Bird", early.Label)
		assertDec(t, "12", early.Allocations[engine.TierFullTime].Qty)

		// 7520 staff + 7520 * 0.05 * 12
		assertDec(t, "12032", engine.Calculate(next).TotalDiscounts)
	})

	t.Run("unknown program", func(t *testing.T) {
		_, err := scenarioPlan().Apply(engine.SetAllocation{Program: "alumni", Tier: engine.TierFullTime})
		assert.ErrorIs(t, err, engine.ErrUnknownProgram)
	})

	t.Run("unknown tier", func(t *testing.T) {
		_, err := scenarioPlan().Apply(engine.SetAllocation{Program: engine.ProgramStaff, Tier: "nope"})
		assert.ErrorIs(t, err, engine.ErrUnknownTier)
	})
}

// =============================================================================
// LINE ITEMS
// =============================================================================

func TestLinkedItems_RejectNumericEditsAndDelete(t *testing.T) {
	plan := scenarioPlan()
	plan.Afterschool = &engine.Afterschool{DollarPerHour: d("20")}

	edits := []engine.Edit{
		engine.SetBaseline{Section: engine.SectionRevenue, ID: engine.TuitionItemID, Value: d("1")},
		engine.SetModifierPercent{Section: engine.SectionRevenue, ID: engine.TuitionItemID, Value: d("1")},
		engine.SetModifierFixed{Section: engine.SectionRevenue, ID: engine.TuitionItemID, Value: d("1")},
		engine.SetFinalValue{Section: engine.SectionRevenue, ID: engine.TuitionItemID, Value: d("1")},
		engine.DeleteLineItem{Section: engine.SectionRevenue, ID: engine.TuitionItemID},
		engine.SetBaseline{Section: engine.SectionRevenue, ID: engine.AfterschoolItemID, Value: d("1")},
		engine.DeleteLineItem{Section: engine.SectionRevenue, ID: engine.AfterschoolItemID},
	}
	for _, e := range edits {
		t.Run(e.Op(), func(t *testing.T) {
			_, err := plan.Apply(e)
			assert.ErrorIs(t, err, engine.ErrLinkedItemProtected)
			assert.True(t, engine.IsConflict(err))
		})
	}
}

func TestLinkedItems_LabelEditable(t *testing.T) {
	next, err := scenarioPlan().Apply(engine.SetLabel{Section: engine.SectionRevenue, ID: engine.TuitionItemID, Label: "Net Tuition"})
	require.NoError(t, err)
	assert.Equal(t, "Net Tuition", next.RevenueItems[0].Label)
}

func TestAfterschoolItem_EditableWhileDisabled(t *testing.T) {
	next, err := scenarioPlan().Apply(
		engine.SetBaseline{Section: engine.SectionRevenue, ID: engine.AfterschoolItemID, Value: d("30000")},
	)
	require.NoError(t, err)
	assertDec(t, "199952", engine.Calculate(next).TotalRevenue)
}

func TestSetFinalValue(t *testing.T) {
	tests := []struct {
		name        string
		baseline    string
		fixed       string
		target      string
		wantPercent string
	}{
		{"raise", "1000", "0", "1100", "10"},
		{"cut clears fixed", "190000", "-5000", "171000", "-10"},
		{"zero baseline resets percent", "0", "300", "5000", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := scenarioPlan()
			plan.BudgetItems[0].Baseline = d(tt.baseline)
			plan.BudgetItems[0].ModifierFixed = d(tt.fixed)

			next, err := plan.Apply(engine.SetFinalValue{Section: engine.SectionBudget, ID: "b_salaries", Value: d(tt.target)})
			require.NoError(t, err)

			it := next.BudgetItems[0]
			assertDec(t, tt.wantPercent, it.ModifierPercent)
			assert.True(t, it.ModifierFixed.IsZero())
		})
	}
}

func TestAddLineItem(t *testing.T) {
	add := engine.NewAddLineItem(engine.SectionBudget, "")
	assert.True(t, strings.HasPrefix(string(add.ID), "b_"))
	assert.Equal(t, "New Expense", add.Label)

	next, err := scenarioPlan().Apply(add)
	require.NoError(t, err)
	require.Len(t, next.BudgetItems, 2)
	last := next.BudgetItems[1]
	assert.Equal(t, add.ID, last.ID)
	assert.True(t, last.Baseline.IsZero())

	_, err = next.Apply(add)
	assert.ErrorIs(t, err, engine.ErrDuplicateLineItem)
	assert.True(t, engine.IsClientError(err))

	rev := engine.NewAddLineItem(engine.SectionRevenue, "Field Trips")
	assert.True(t, strings.HasPrefix(string(rev.ID), "r_"))
	assert.Equal(t, "Field Trips", rev.Label)
}

func TestAddLineItem_InvalidSection(t *testing.T) {
	_, err := scenarioPlan().Apply(engine.AddLineItem{Section: "capital", ID: "x"})
	assert.ErrorIs(t, err, engine.ErrInvalidSection)
}

func TestDeleteLineItem(t *testing.T) {
	next, err := scenarioPlan().Apply(engine.DeleteLineItem{Section: engine.SectionRevenue, ID: engine.AfterschoolItemID})
	require.NoError(t, err)
	assert.Equal(t, []engine.ItemID{engine.TuitionItemID}, ids(next.RevenueItems))
}

func TestMoveLineItem(t *testing.T) {
	plan := scenarioPlan()
	plan.BudgetItems = []engine.LineItem{item("a", "1"), item("b", "1"), item("c", "1"), item("d", "1")}

	tests := []struct {
		name   string
		id     engine.ItemID
		offset int
		want   []engine.ItemID
	}{
		{"down one", "b", 1, []engine.ItemID{"a", "c", "b", "d"}},
		{"up one", "c", -1, []engine.ItemID{"a", "c", "b", "d"}},
		{"up from top stays", "a", -1, []engine.ItemID{"a", "b", "c", "d"}},
		{"down from bottom stays", "d", 1, []engine.ItemID{"a", "b", "c", "d"}},
		{"far jump clamps", "b", 10, []engine.ItemID{"a", "c", "d", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := plan.Apply(engine.MoveLineItem{Section: engine.SectionBudget, ID: tt.id, Offset: tt.offset})
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(next.BudgetItems))
			assert.Equal(t, []engine.ItemID{"a", "b", "c", "d"}, ids(plan.BudgetItems))
		})
	}
}

// =============================================================================
// AFTERSCHOOL
// =============================================================================

func TestAfterschoolEdits(t *testing.T) {
	// GIVEN: Afterschool disabled
	// WHEN: Editing hours
	// THEN: Rejected until enabled
	_, err := scenarioPlan().Apply(engine.SetAfterschoolHours{Tier: engine.TierFullTime, Day: 0, Hours: d("3")})
	require.ErrorIs(t, err, engine.ErrAfterschoolDisabled)

	next, err := scenarioPlan().Apply(
		engine.EnableAfterschool{DollarPerHour: d("15")},
		engine.SetAfterschoolHours{Tier: engine.TierFullTime, Day: 0, Hours: d("3")},
		engine.SetAfterschoolHours{Tier: engine.TierFullTime, Day: 4, Hours: d("1")},
		engine.SetAfterschoolRate{DollarPerHour: d("20")},
	)
	require.NoError(t, err)

	row := next.Afterschool.HoursByTier[engine.TierFullTime]
	assertDec(t, "3", row[0])
	assertDec(t, "0", row[2])
	assertDec(t, "1", row[4])

	// 4 hours * 36 weeks * $20
	r := engine.Calculate(next)
	assertDec(t, "2880", r.Afterschool.AnnualRevenue)
	assert.True(t, next.IsLinked(engine.SectionRevenue, engine.AfterschoolItemID))

	off, err := next.Apply(engine.DisableAfterschool{})
	require.NoError(t, err)
	assert.Nil(t, off.Afterschool)
	assert.False(t, off.IsLinked(engine.SectionRevenue, engine.AfterschoolItemID))
}

func TestSetAfterschoolHours_InvalidDay(t *testing.T) {
	plan, err := scenarioPlan().Apply(engine.EnableAfterschool{DollarPerHour: d("20")})
	require.NoError(t, err)

	for _, day := range []int{-1, engine.Weekdays} {
		_, err := plan.Apply(engine.SetAfterschoolHours{Tier: engine.TierFullTime, Day: day, Hours: decimal.NewFromInt(1)})
		assert.ErrorIs(t, err, engine.ErrInvalidWeekday)
	}
}
