package engine

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PROGRAM VOCABULARY
// =============================================================================

const (
	ProgramStaff   ProgramID = "staff"
	ProgramSibling ProgramID = "sibling"
	ProgramEarly   ProgramID = "early"
)

var canonicalPrograms = []DiscountProgram{
	{ID: ProgramStaff, Label: "Staff Discount"},
	{ID: ProgramSibling, Label: "Sibling Discount"},
	{ID: ProgramEarly, Label: "Early Bird"},
}

// ProgramOrder returns the configured program ids in display order.
func ProgramOrder() []ProgramID {
	ids := make([]ProgramID, len(canonicalPrograms))
	for i, p := range canonicalPrograms {
		ids[i] = p.ID
	}
	return ids
}

// DefaultProgram returns an empty program for a known id.
func DefaultProgram(id ProgramID) (DiscountProgram, bool) {
	for _, p := range canonicalPrograms {
		if p.ID == id {
			p.Allocations = map[TierID]Allocation{}
			return p, true
		}
	}
	return DiscountProgram{}, false
}

// =============================================================================
// ALLOCATION ENGINE
// =============================================================================

// PricedAllocation is one cell of the matrix with its discount value.
type PricedAllocation struct {
	TierID TierID
	Allocation
	Value decimal.Decimal
}

type PricedProgram struct {
	DiscountProgram
	Lines              []PricedAllocation
	TotalDiscountValue decimal.Decimal
}

type DiscountSummary struct {
	Programs       []PricedProgram
	TotalDiscounts decimal.Decimal
}

// ApplyDiscounts values every allocation against its own tier's price:
//
//	value = tier.calculatedPrice * discountPercent/100 * qty
//
// Allocations on unknown tiers or with qty <= 0 contribute nothing. There is
// no blended average price anywhere in this calculation.
func ApplyDiscounts(tiers TierSummary, programs map[ProgramID]DiscountProgram) DiscountSummary {
	summary := DiscountSummary{TotalDiscounts: decimal.Zero}

	for _, id := range programIDs(programs) {
		prog := programs[id]
		prog.ID = id
		priced := PricedProgram{DiscountProgram: prog, TotalDiscountValue: decimal.Zero}

		for _, tier := range tiers.Tiers {
			alloc, ok := prog.Allocations[tier.ID]
			if !ok {
				continue
			}
			value := decimal.Zero
			if alloc.Qty.IsPositive() {
				value = tier.CalculatedPrice.Mul(alloc.DiscountPercent.Shift(-2)).Mul(alloc.Qty)
			}
			priced.Lines = append(priced.Lines, PricedAllocation{TierID: tier.ID, Allocation: alloc, Value: value})
			priced.TotalDiscountValue = priced.TotalDiscountValue.Add(value)
		}

		summary.Programs = append(summary.Programs, priced)
		summary.TotalDiscounts = summary.TotalDiscounts.Add(priced.TotalDiscountValue)
	}
	return summary
}

// programIDs returns configured programs present in the plan, then extras sorted.
func programIDs(programs map[ProgramID]DiscountProgram) []ProgramID {
	var ids, rest []ProgramID
	known := make(map[ProgramID]bool)
	for _, id := range ProgramOrder() {
		known[id] = true
		if _, ok := programs[id]; ok {
			ids = append(ids, id)
		}
	}
	for id := range programs {
		if !known[id] {
			rest = append(rest, id)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	return append(ids, rest...)
}
