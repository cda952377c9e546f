/*
Package school holds the configuration of one small private school: its
default budget plan, chart-of-accounts line items, and the derived views
the dashboard shows next to the engine totals.

The engine knows the tier and program vocabulary; this package fills that
vocabulary with the numbers the school starts a fiscal year from.

USAGE:
  plan := school.DefaultPlan()
  result := engine.Calculate(plan)
  mix := school.RevenueMix(result)
*/
package school

import (
	"github.com/shopspring/decimal"

	"github.com/sundrop/budget-planner/engine"
)

// DefaultPlanID is the document id of the shared master plan.
const DefaultPlanID = "fy27_master_plan"

// DefaultBaseFTPrice is the annual full-time tuition rate.
var DefaultBaseFTPrice = decimal.NewFromInt(7520)

// defaultEnrollment is the starting headcount per tier.
var defaultEnrollment = map[engine.TierID]int64{
	engine.TierFullTime: 30,
	engine.Tier4Day:     4,
	engine.Tier3Day:     5,
	engine.Tier2Day:     0,
	engine.Tier1Day:     0,
	engine.TierHalfDay:  4,
}

// defaultAllocations places every program on the full-time tier.
var defaultAllocations = map[engine.ProgramID]struct{ qty, pct int64 }{
	engine.ProgramStaff:   {2, 50},
	engine.ProgramSibling: {8, 5},
	engine.ProgramEarly:   {12, 5},
}

// DefaultPlan returns a fresh copy of the school's starting plan. The
// afterschool sub-model is off; the afterschool line uses its baseline.
func DefaultPlan() engine.Plan {
	plan := engine.Plan{
		BaseFTPrice:  DefaultBaseFTPrice,
		Tiers:        DefaultTiers(),
		Discounts:    DefaultDiscounts(),
		RevenueItems: BaselineRevenue(),
		BudgetItems:  BaselineBudget(),
	}
	return plan
}

// DefaultTiers returns the six canonical tiers with starting enrollment.
func DefaultTiers() map[engine.TierID]engine.TuitionTier {
	tiers := make(map[engine.TierID]engine.TuitionTier, len(defaultEnrollment))
	for _, id := range engine.TierOrder() {
		t := engine.DefaultTier(id)
		t.Qty = decimal.NewFromInt(defaultEnrollment[id])
		tiers[id] = t
	}
	return tiers
}

// DefaultDiscounts returns the three programs with their starting matrix.
func DefaultDiscounts() map[engine.ProgramID]engine.DiscountProgram {
	programs := make(map[engine.ProgramID]engine.DiscountProgram)
	for _, id := range engine.ProgramOrder() {
		prog, _ := engine.DefaultProgram(id)
		prog.Allocations = DefaultAllocations(id)
		programs[id] = prog
	}
	return programs
}

// DefaultAllocations returns the starting allocation matrix for one program,
// or an empty matrix for a program the school does not run.
func DefaultAllocations(id engine.ProgramID) map[engine.TierID]engine.Allocation {
	allocs := make(map[engine.TierID]engine.Allocation)
	if a, ok := defaultAllocations[id]; ok {
		allocs[engine.TierFullTime] = engine.Allocation{
			Qty:             decimal.NewFromInt(a.qty),
			DiscountPercent: decimal.NewFromInt(a.pct),
		}
	}
	return allocs
}

// =============================================================================
// CHART OF ACCOUNTS
// =============================================================================

func line(id engine.ItemID, label string, baseline int64) engine.LineItem {
	return engine.LineItem{
		ID:              id,
		Label:           label,
		Baseline:        decimal.NewFromInt(baseline),
		ModifierPercent: decimal.Zero,
		ModifierFixed:   decimal.Zero,
	}
}

// BaselineRevenue returns the revenue accounts in ledger order.
func BaselineRevenue() []engine.LineItem {
	return []engine.LineItem{
		line(engine.TuitionItemID, "101-401 Tuition Income", 220000),
		line("r_sigma", "101-403 Tuition SIGMA", 0),
		line(engine.AfterschoolItemID, "101-405 Afterschool Program Revenue", 25000),
		line("r_fees", "101-407 Late Fee, Meal Fee & Other Fees", 100),
		line("r_donations", "101-420 Donations", 1500),
		line("r_oia", "101-539 OIA Revenue", 6000),
		line("r_state", "101-540 State Grants", 500),
		line("r_local", "101-560 Local Grants", 5000),
		line("r_arpa", "201-520 ARPA Grant Revenue", 0),
		line("r_refunds", "101-650 Refunds & reimbursements", 0),
		line("r_interest", "101-665 Interest Income", 1000),
		line("r_scholarship", "101-670 Scholarship Fund", 0),
		line("r_fundraising", "101-410 Fundraising Revenue", 5000),
	}
}

// BaselineBudget returns the expense accounts in ledger order.
func BaselineBudget() []engine.LineItem {
	return []engine.LineItem{
		line("b_salaries", "101-702 Salaries & Wages", 190000),
		line("b_payroll_tax", "101-703 Payroll Tax Expense", 15000),
		line("b_health_ins", "101-704 Health Insurance", 14000),
		line("b_scholarships", "101-710 Scholarships", 0),
		line("b_field_trips", "101-725 Field Trips", 500),
		line("b_food", "101-726 Food & Meals", 7000),
		line("b_materials", "101-727 Course Materials", 14000),
		line("b_office_supplies", "101-728 Office Supplies", 2000),
		line("b_software", "101-729 Software & Apps", 1500),
		line("b_memberships", "101-730 Memberships & Subs", 500),
		line("b_shipping", "101-731 Shipping & Postage", 100),
		line("b_fund_exp", "101-735 Fundraising Expense", 1500),
		line("b_bank_fees", "101-740 Bank Fees", 250),
		line("b_equipment", "101-750 Equipment Expense", 0),
		line("b_licenses", "101-760 Licenses", 100),
		line("b_insurance", "101-801 Insurance", 2000),
		line("b_legal", "101-802 Legal & Professional Fees", 300),
		line("b_contracted", "101-803 Contracted Services", 5000),
		line("b_subs", "101-804 Substitute Teachers", 0),
		line("b_travel", "101-860 Travel & Training", 500),
		line("b_marketing", "101-900 Advertising & Marketing", 200),
		line("b_repairs", "101-930 Repairs & Maintenance", 500),
		line("b_rent", "101-904 Rent", 13200),
		line("b_capital", "101-971 Capital Outlay", 25000),
		line("b_misc", "101-998 Miscellaneous Expense", 0),
	}
}
