package engine

import "fmt"

type WarningCode string

const (
	WarnAllocationExceedsEnrollment WarningCode = "allocation_exceeds_enrollment"
	WarnDiscountsExceedGross        WarningCode = "discounts_exceed_gross"
	WarnNegativeMargin              WarningCode = "negative_margin"
	WarnNegativeLineItem            WarningCode = "negative_line_item"
)

// Warning flags an unusual but accepted state. Warnings never block an
// edit or change any number.
type Warning struct {
	Code    WarningCode
	Message string
	Tier    TierID
	Program ProgramID
	ItemID  ItemID
}

// Check inspects a result for states a person should look at.
func Check(r Result) []Warning {
	var warnings []Warning

	for _, prog := range r.Discounts {
		for _, line := range prog.Lines {
			tier, ok := TierSummary{Tiers: r.Tiers}.Lookup(line.TierID)
			if !ok || !line.Qty.GreaterThan(tier.Qty) {
				continue
			}
			warnings = append(warnings, Warning{
				Code:    WarnAllocationExceedsEnrollment,
				Message: fmt.Sprintf("%s allocates %s students to %s, which enrolls %s", prog.Label, line.Qty, tier.Label, tier.Qty),
				Tier:    line.TierID,
				Program: prog.ID,
			})
		}
	}

	if r.TotalDiscounts.GreaterThan(r.TotalTuitionGross) {
		warnings = append(warnings, Warning{
			Code:    WarnDiscountsExceedGross,
			Message: fmt.Sprintf("discounts %s exceed gross tuition %s; net tuition is %s", r.TotalDiscounts, r.TotalTuitionGross, r.NetTuition),
		})
	}

	if r.NetMargin.IsNegative() {
		warnings = append(warnings, Warning{
			Code:    WarnNegativeMargin,
			Message: fmt.Sprintf("expenses exceed revenue by %s", r.NetMargin.Neg()),
		})
	}

	for _, items := range [][]ComputedItem{r.RevenueItems, r.BudgetItems} {
		for _, it := range items {
			if it.Linked || !it.FinalValue.IsNegative() {
				continue
			}
			warnings = append(warnings, Warning{
				Code:    WarnNegativeLineItem,
				Message: fmt.Sprintf("%s totals %s", it.Label, it.FinalValue),
				ItemID:  it.ID,
			})
		}
	}

	return warnings
}
