/*
calculate.go - The financial calculation engine

PURPOSE:
  Calculate is a pure function from a Plan to a Result. It is re-run in
  full after every edit; nothing is cached between calls and nothing in
  the plan is mutated.

PIPELINE:
  1. Price tiers          gross per tier, headcount        (tuition.go)
  2. Apply discounts      per-tier allocation matrix       (discount.go)
  3. Net tuition          gross - discounts, not clamped
  4. Afterschool          weekly hours -> annual revenue   (afterschool.go)
  5. Revenue rollup       linked items substituted         (lineitem.go)
  6. Expense rollup       every item from its modifiers
  7. Margin               revenue - expenses, percent guarded for zero revenue

COMPLEXITY:
  O(tiers x programs + line items). Tens of entries in practice.

SEE ALSO:
  - warnings.go: Non-blocking checks over a Result
  - api/handlers.go: Re-runs Calculate after every edit
*/
package engine

import "github.com/shopspring/decimal"

// Result is everything derived from a plan.
type Result struct {
	Tiers        []PricedTier
	Discounts    []PricedProgram
	RevenueItems []ComputedItem
	BudgetItems  []ComputedItem
	Afterschool  *AfterschoolSummary

	TotalTuitionGross decimal.Decimal
	TotalHeadcount    decimal.Decimal
	TotalDiscounts    decimal.Decimal
	NetTuition        decimal.Decimal
	TotalRevenue      decimal.Decimal
	TotalExpenses     decimal.Decimal
	NetMargin         decimal.Decimal
	MarginPercent     decimal.Decimal
}

// Calculate runs the whole engine over a plan snapshot.
func Calculate(plan Plan) Result {
	tiers := PriceTiers(plan.BaseFTPrice, plan.Tiers)
	discounts := ApplyDiscounts(tiers, plan.Discounts)
	netTuition := NetTuition(tiers.TotalTuitionGross, discounts.TotalDiscounts)

	linked := map[ItemID]decimal.Decimal{TuitionItemID: netTuition}

	var afterschool *AfterschoolSummary
	if plan.Afterschool != nil {
		s := AfterschoolRevenue(*plan.Afterschool)
		afterschool = &s
		linked[AfterschoolItemID] = s.AnnualRevenue
	}

	revenue, totalRevenue := rollup(plan.RevenueItems, linked)
	budget, totalExpenses := rollup(plan.BudgetItems, nil)

	netMargin := totalRevenue.Sub(totalExpenses)

	return Result{
		Tiers:             tiers.Tiers,
		Discounts:         discounts.Programs,
		RevenueItems:      revenue,
		BudgetItems:       budget,
		Afterschool:       afterschool,
		TotalTuitionGross: tiers.TotalTuitionGross,
		TotalHeadcount:    tiers.TotalHeadcount,
		TotalDiscounts:    discounts.TotalDiscounts,
		NetTuition:        netTuition,
		TotalRevenue:      totalRevenue,
		TotalExpenses:     totalExpenses,
		NetMargin:         netMargin,
		MarginPercent:     MarginPercent(netMargin, totalRevenue),
	}
}

// NetTuition may be negative when discounts exceed gross. That is a state to
// surface, not to hide.
func NetTuition(gross, discounts decimal.Decimal) decimal.Decimal {
	return gross.Sub(discounts)
}

// MarginPercent returns netMargin/revenue*100, or exactly zero when revenue
// is not positive.
func MarginPercent(netMargin, revenue decimal.Decimal) decimal.Decimal {
	if !revenue.IsPositive() {
		return decimal.Zero
	}
	return netMargin.Div(revenue).Mul(hundred)
}

// Item returns the computed revenue or budget item by id.
func (r Result) Item(s Section, id ItemID) (ComputedItem, bool) {
	items := r.RevenueItems
	if s == SectionBudget {
		items = r.BudgetItems
	}
	for _, it := range items {
		if it.ID == id {
			return it, true
		}
	}
	return ComputedItem{}, false
}
