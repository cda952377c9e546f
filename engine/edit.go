/*
edit.go - Plan edit commands

PURPOSE:
  Every user edit is a typed command. Applying commands never mutates the
  receiver: Plan.Apply clones, applies in order, and returns the new plan.
  If any command fails, Apply returns the unchanged receiver with the error and
  none of the batch takes effect.

COMMANDS:
  Tuition:     SetBaseFTPrice, SetTierQty, SetTierRatio
  Discounts:   SetAllocation
  Line items:  SetLabel, SetBaseline, SetModifierPercent, SetModifierFixed,
               SetFinalValue, AddLineItem, DeleteLineItem, MoveLineItem
  Afterschool: EnableAfterschool, DisableAfterschool,
               SetAfterschoolRate, SetAfterschoolHours

LINKED ITEMS:
  The tuition item (and the afterschool item while the sub-model is on)
  keep their place in the revenue list but reject delete and any numeric
  edit. Their labels stay editable.

EXAMPLE:
  next, err := plan.Apply(
      engine.SetTierQty{Tier: engine.TierFullTime, Qty: decimal.NewFromInt(20)},
      engine.SetBaseline{Section: engine.SectionBudget, ID: "b_rent", Value: decimal.NewFromInt(14000)},
  )
*/
package engine

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Edit is a single plan mutation. The set is closed: only this package
// can implement it.
type Edit interface {
	Op() string
	apply(p *Plan) error
}

// Apply returns a new plan with all edits applied, or the receiver and the
// first error.
func (p Plan) Apply(edits ...Edit) (Plan, error) {
	next := p.Clone()
	for _, e := range edits {
		if err := e.apply(&next); err != nil {
			return p, err
		}
	}
	return next, nil
}

// =============================================================================
// TUITION
// =============================================================================

type SetBaseFTPrice struct {
	Value decimal.Decimal
}

func (SetBaseFTPrice) Op() string { return "set_base_ft_price" }

func (e SetBaseFTPrice) apply(p *Plan) error {
	p.BaseFTPrice = e.Value
	return nil
}

type SetTierQty struct {
	Tier TierID
	Qty  decimal.Decimal
}

func (SetTierQty) Op() string { return "set_tier_qty" }

func (e SetTierQty) apply(p *Plan) error {
	tier, err := p.tier(e.Tier)
	if err != nil {
		return editErr(e.Op(), e.Tier, err)
	}
	tier.Qty = e.Qty
	p.Tiers[e.Tier] = tier
	return nil
}

type SetTierRatio struct {
	Tier  TierID
	Ratio decimal.Decimal
}

func (SetTierRatio) Op() string { return "set_tier_ratio" }

func (e SetTierRatio) apply(p *Plan) error {
	tier, err := p.tier(e.Tier)
	if err != nil {
		return editErr(e.Op(), e.Tier, err)
	}
	tier.Ratio = e.Ratio
	p.Tiers[e.Tier] = tier
	return nil
}

// tier returns the plan's tier, materializing the default for a canonical
// tier the plan does not carry yet.
func (p *Plan) tier(id TierID) (TuitionTier, error) {
	if p.Tiers == nil {
		p.Tiers = make(map[TierID]TuitionTier)
	}
	if t, ok := p.Tiers[id]; ok {
		return t, nil
	}
	if !IsCanonicalTier(id) {
		return TuitionTier{}, ErrUnknownTier
	}
	return DefaultTier(id), nil
}

// =============================================================================
// DISCOUNTS
// =============================================================================

// SetAllocation sets one cell of a program's allocation matrix.
type SetAllocation struct {
	Program         ProgramID
	Tier            TierID
	Qty             decimal.Decimal
	DiscountPercent decimal.Decimal
}

func (SetAllocation) Op() string { return "set_allocation" }

func (e SetAllocation) apply(p *Plan) error {
	if _, ok := p.Tiers[e.Tier]; !ok && !IsCanonicalTier(e.Tier) {
		return editErr(e.Op(), e.Tier, ErrUnknownTier)
	}
	if p.Discounts == nil {
		p.Discounts = make(map[ProgramID]DiscountProgram)
	}
	prog, ok := p.Discounts[e.Program]
	if !ok {
		if prog, ok = DefaultProgram(e.Program); !ok {
			return editErr(e.Op(), e.Program, ErrUnknownProgram)
		}
	}
	if prog.Allocations == nil {
		prog.Allocations = make(map[TierID]Allocation)
	}
	prog.Allocations[e.Tier] = Allocation{Qty: e.Qty, DiscountPercent: e.DiscountPercent}
	p.Discounts[e.Program] = prog
	return nil
}

// =============================================================================
// LINE ITEMS
// =============================================================================

type SetLabel struct {
	Section Section
	ID      ItemID
	Label   string
}

func (SetLabel) Op() string { return "set_label" }

func (e SetLabel) apply(p *Plan) error {
	return p.updateItem(e.Op(), e.Section, e.ID, false, func(it *LineItem) {
		it.Label = e.Label
	})
}

type SetBaseline struct {
	Section Section
	ID      ItemID
	Value   decimal.Decimal
}

func (SetBaseline) Op() string { return "set_baseline" }

func (e SetBaseline) apply(p *Plan) error {
	return p.updateItem(e.Op(), e.Section, e.ID, true, func(it *LineItem) {
		it.Baseline = e.Value
	})
}

type SetModifierPercent struct {
	Section Section
	ID      ItemID
	Value   decimal.Decimal
}

func (SetModifierPercent) Op() string { return "set_modifier_percent" }

func (e SetModifierPercent) apply(p *Plan) error {
	return p.updateItem(e.Op(), e.Section, e.ID, true, func(it *LineItem) {
		it.ModifierPercent = e.Value
	})
}

type SetModifierFixed struct {
	Section Section
	ID      ItemID
	Value   decimal.Decimal
}

func (SetModifierFixed) Op() string { return "set_modifier_fixed" }

func (e SetModifierFixed) apply(p *Plan) error {
	return p.updateItem(e.Op(), e.Section, e.ID, true, func(it *LineItem) {
		it.ModifierFixed = e.Value
	})
}

// SetFinalValue targets a final amount by rewriting the percentage modifier
// relative to the baseline and clearing the fixed modifier. With a
// non-positive baseline the percentage resets to zero.
type SetFinalValue struct {
	Section Section
	ID      ItemID
	Value   decimal.Decimal
}

func (SetFinalValue) Op() string { return "set_final_value" }

func (e SetFinalValue) apply(p *Plan) error {
	return p.updateItem(e.Op(), e.Section, e.ID, true, func(it *LineItem) {
		pct := decimal.Zero
		if it.Baseline.IsPositive() {
			pct = e.Value.Sub(it.Baseline).Div(it.Baseline).Mul(hundred)
		}
		it.ModifierPercent = pct
		it.ModifierFixed = decimal.Zero
	})
}

// AddLineItem appends a new item with a zero baseline.
type AddLineItem struct {
	Section Section
	ID      ItemID
	Label   string
}

// NewAddLineItem builds an AddLineItem with a fresh id ("r_" or "b_" prefix).
func NewAddLineItem(s Section, label string) AddLineItem {
	prefix := "r_"
	if s == SectionBudget {
		prefix = "b_"
	}
	if label == "" {
		label = "New Revenue"
		if s == SectionBudget {
			label = "New Expense"
		}
	}
	return AddLineItem{Section: s, ID: ItemID(prefix + uuid.NewString()), Label: label}
}

func (AddLineItem) Op() string { return "add_line_item" }

func (e AddLineItem) apply(p *Plan) error {
	if !e.Section.Valid() {
		return editErr(e.Op(), e.Section, ErrInvalidSection)
	}
	items := p.itemsRef(e.Section)
	if indexOf(*items, e.ID) >= 0 {
		return editErr(e.Op(), e.ID, ErrDuplicateLineItem)
	}
	*items = append(*items, LineItem{
		ID:              e.ID,
		Label:           e.Label,
		Baseline:        decimal.Zero,
		ModifierPercent: decimal.Zero,
		ModifierFixed:   decimal.Zero,
	})
	return nil
}

type DeleteLineItem struct {
	Section Section
	ID      ItemID
}

func (DeleteLineItem) Op() string { return "delete_line_item" }

func (e DeleteLineItem) apply(p *Plan) error {
	if !e.Section.Valid() {
		return editErr(e.Op(), e.Section, ErrInvalidSection)
	}
	if p.IsLinked(e.Section, e.ID) {
		return editErr(e.Op(), e.ID, ErrLinkedItemProtected)
	}
	items := p.itemsRef(e.Section)
	i := indexOf(*items, e.ID)
	if i < 0 {
		return editErr(e.Op(), e.ID, ErrLineItemNotFound)
	}
	*items = append((*items)[:i:i], (*items)[i+1:]...)
	return nil
}

// MoveLineItem shifts an item by Offset positions (negative is up). Moves
// past either end stop at the end.
type MoveLineItem struct {
	Section Section
	ID      ItemID
	Offset  int
}

func (MoveLineItem) Op() string { return "move_line_item" }

func (e MoveLineItem) apply(p *Plan) error {
	if !e.Section.Valid() {
		return editErr(e.Op(), e.Section, ErrInvalidSection)
	}
	items := *p.itemsRef(e.Section)
	from := indexOf(items, e.ID)
	if from < 0 {
		return editErr(e.Op(), e.ID, ErrLineItemNotFound)
	}
	to := from + e.Offset
	if to < 0 {
		to = 0
	}
	if to > len(items)-1 {
		to = len(items) - 1
	}
	item := items[from]
	if from < to {
		copy(items[from:to], items[from+1:to+1])
	} else {
		copy(items[to+1:from+1], items[to:from])
	}
	items[to] = item
	return nil
}

func (p *Plan) updateItem(op string, s Section, id ItemID, numeric bool, fn func(*LineItem)) error {
	if !s.Valid() {
		return editErr(op, s, ErrInvalidSection)
	}
	if numeric && p.IsLinked(s, id) {
		return editErr(op, id, ErrLinkedItemProtected)
	}
	items := *p.itemsRef(s)
	i := indexOf(items, id)
	if i < 0 {
		return editErr(op, id, ErrLineItemNotFound)
	}
	fn(&items[i])
	return nil
}

func indexOf(items []LineItem, id ItemID) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// =============================================================================
// AFTERSCHOOL
// =============================================================================

// EnableAfterschool turns on the hours sub-model. The afterschool revenue
// item becomes linked from then on.
type EnableAfterschool struct {
	DollarPerHour decimal.Decimal
}

func (EnableAfterschool) Op() string { return "enable_afterschool" }

func (e EnableAfterschool) apply(p *Plan) error {
	if p.Afterschool != nil {
		p.Afterschool.DollarPerHour = e.DollarPerHour
		return nil
	}
	p.Afterschool = &Afterschool{
		DollarPerHour: e.DollarPerHour,
		HoursByTier:   make(map[TierID][Weekdays]decimal.Decimal),
	}
	return nil
}

type DisableAfterschool struct{}

func (DisableAfterschool) Op() string { return "disable_afterschool" }

func (DisableAfterschool) apply(p *Plan) error {
	p.Afterschool = nil
	return nil
}

type SetAfterschoolRate struct {
	DollarPerHour decimal.Decimal
}

func (SetAfterschoolRate) Op() string { return "set_afterschool_rate" }

func (e SetAfterschoolRate) apply(p *Plan) error {
	if p.Afterschool == nil {
		return editErr(e.Op(), "", ErrAfterschoolDisabled)
	}
	p.Afterschool.DollarPerHour = e.DollarPerHour
	return nil
}

// SetAfterschoolHours sets one cell. Day is 0 (Monday) through 4 (Friday).
type SetAfterschoolHours struct {
	Tier  TierID
	Day   int
	Hours decimal.Decimal
}

func (SetAfterschoolHours) Op() string { return "set_afterschool_hours" }

func (e SetAfterschoolHours) apply(p *Plan) error {
	if p.Afterschool == nil {
		return editErr(e.Op(), e.Tier, ErrAfterschoolDisabled)
	}
	if e.Day < 0 || e.Day >= Weekdays {
		return editErr(e.Op(), fmt.Sprintf("%s/%d", e.Tier, e.Day), ErrInvalidWeekday)
	}
	if _, ok := p.Tiers[e.Tier]; !ok && !IsCanonicalTier(e.Tier) {
		return editErr(e.Op(), e.Tier, ErrUnknownTier)
	}
	if p.Afterschool.HoursByTier == nil {
		p.Afterschool.HoursByTier = make(map[TierID][Weekdays]decimal.Decimal)
	}
	row := p.Afterschool.HoursByTier[e.Tier]
	row[e.Day] = e.Hours
	p.Afterschool.HoursByTier[e.Tier] = row
	return nil
}
