/*
Package engine provides the school budget calculation engine.

PURPOSE:
  Turns a budget plan (tuition rates, tier enrollment, discount allocations,
  revenue and expense line items) into a consistent set of derived totals:
  tuition gross and net, discount totals, revenue and expense rollups, and
  net margin. Everything is recomputed from scratch on every call.

KEY CONCEPTS IN THIS FILE (types.go):
  - Plan: The aggregate root. Owned by the caller, replaced on every edit
  - LineItem: A revenue or expense row with baseline and modifiers
  - TuitionTier: An enrollment category priced as a ratio of the base rate
  - DiscountProgram: A discount broken down per tier (the allocation matrix)
  - Afterschool: Optional weekly child-hours table feeding one revenue line

DESIGN PRINCIPLES:
  1. Immutability: Plans are values. Edits return a new Plan (see edit.go)
  2. Precision: decimal.Decimal everywhere, never float64
  3. Totality: Calculate never fails on well-typed input
  4. Permissiveness: Odd numbers (negative qty, ratio > 100) flow through

USAGE:
  plan := school.DefaultPlan()
  result := engine.Calculate(plan)
  fmt.Println(result.NetMargin)

SEE ALSO:
  - calculate.go: The engine entry point
  - edit.go: Edit commands
  - store.go: Persistence and change feed interfaces
*/
package engine

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type TierID string
type ProgramID string
type ItemID string

// Section selects one of the two ordered line item lists on a plan.
type Section string

const (
	SectionRevenue Section = "revenue"
	SectionBudget  Section = "budget"
)

func (s Section) Valid() bool { return s == SectionRevenue || s == SectionBudget }

// Line items whose value is injected by the engine instead of computed from
// their own baseline and modifiers.
const (
	TuitionItemID     ItemID = "tuition"
	AfterschoolItemID ItemID = "r_afterschool"
)

var hundred = decimal.NewFromInt(100)

// =============================================================================
// MODEL
// =============================================================================

// LineItem is one revenue or expense row.
type LineItem struct {
	ID              ItemID
	Label           string
	Baseline        decimal.Decimal
	ModifierPercent decimal.Decimal
	ModifierFixed   decimal.Decimal
}

// TuitionTier is one enrollment category. Price is derived from the plan's
// BaseFTPrice, never stored per tier.
type TuitionTier struct {
	ID    TierID
	Label string
	Ratio decimal.Decimal // percent of the full-time rate
	Qty   decimal.Decimal // enrolled students
}

// Allocation assigns part of a discount program to one tier:
// Qty students in the tier receive DiscountPercent off the tier price.
type Allocation struct {
	Qty             decimal.Decimal
	DiscountPercent decimal.Decimal
}

type DiscountProgram struct {
	ID          ProgramID
	Label       string
	Allocations map[TierID]Allocation
}

// Afterschool holds estimated child-hours per tier and weekday (Mon..Fri).
type Afterschool struct {
	DollarPerHour decimal.Decimal
	HoursByTier   map[TierID][Weekdays]decimal.Decimal
}

// Plan is the aggregate root. Sub-entities have no identity outside it.
type Plan struct {
	BaseFTPrice  decimal.Decimal
	Tiers        map[TierID]TuitionTier
	Discounts    map[ProgramID]DiscountProgram
	RevenueItems []LineItem
	BudgetItems  []LineItem
	Afterschool  *Afterschool
}

// Clone returns a deep copy. Decimals are immutable and safe to share.
func (p Plan) Clone() Plan {
	out := Plan{
		BaseFTPrice:  p.BaseFTPrice,
		Tiers:        make(map[TierID]TuitionTier, len(p.Tiers)),
		Discounts:    make(map[ProgramID]DiscountProgram, len(p.Discounts)),
		RevenueItems: append([]LineItem(nil), p.RevenueItems...),
		BudgetItems:  append([]LineItem(nil), p.BudgetItems...),
	}
	for id, t := range p.Tiers {
		out.Tiers[id] = t
	}
	for id, d := range p.Discounts {
		allocs := make(map[TierID]Allocation, len(d.Allocations))
		for tier, a := range d.Allocations {
			allocs[tier] = a
		}
		d.Allocations = allocs
		out.Discounts[id] = d
	}
	if p.Afterschool != nil {
		as := Afterschool{
			DollarPerHour: p.Afterschool.DollarPerHour,
			HoursByTier:   make(map[TierID][Weekdays]decimal.Decimal, len(p.Afterschool.HoursByTier)),
		}
		for id, row := range p.Afterschool.HoursByTier {
			as.HoursByTier[id] = row
		}
		out.Afterschool = &as
	}
	return out
}

// Items returns the line item list for a section.
func (p Plan) Items(s Section) []LineItem {
	if s == SectionBudget {
		return p.BudgetItems
	}
	return p.RevenueItems
}

func (p *Plan) itemsRef(s Section) *[]LineItem {
	if s == SectionBudget {
		return &p.BudgetItems
	}
	return &p.RevenueItems
}

// IsLinked reports whether an item's value comes from another calculation.
// Only revenue items can be linked; the afterschool item is linked only
// while the afterschool sub-model is present.
func (p Plan) IsLinked(s Section, id ItemID) bool {
	if s != SectionRevenue {
		return false
	}
	switch id {
	case TuitionItemID:
		return true
	case AfterschoolItemID:
		return p.Afterschool != nil
	}
	return false
}

// tierIDs returns canonical tiers first, then any extra ids sorted.
func tierIDs(extra map[TierID]TuitionTier) []TierID {
	ids := TierOrder()
	var rest []TierID
	for id := range extra {
		if !IsCanonicalTier(id) {
			rest = append(rest, id)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	return append(ids, rest...)
}
