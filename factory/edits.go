package factory

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/sundrop/budget-planner/engine"
)

var (
	// ErrUnknownOp is returned for an edit whose op is not recognized.
	ErrUnknownOp = errors.New("unknown edit op")

	// ErrMissingField is returned when an edit lacks a required field.
	ErrMissingField = errors.New("missing edit field")
)

// EditJSON is the wire form of one edit command. Which fields are read
// depends on Op, whose values match engine.Edit.Op().
//
//	{"op": "set_tier_qty", "tier": "tuitionFT", "qty": 20}
//	{"op": "set_final_value", "section": "budget", "id": "b_rent", "value": "14000"}
//	{"op": "move_line_item", "section": "revenue", "id": "r_fees", "offset": -1}
type EditJSON struct {
	Op              string           `json:"op"`
	Section         string           `json:"section,omitempty"`
	ID              string           `json:"id,omitempty"`
	Label           *string          `json:"label,omitempty"`
	Value           *decimal.Decimal `json:"value,omitempty"`
	Tier            string           `json:"tier,omitempty"`
	Program         string           `json:"program,omitempty"`
	Qty             *decimal.Decimal `json:"qty,omitempty"`
	Ratio           *decimal.Decimal `json:"ratio,omitempty"`
	DiscountPercent *decimal.Decimal `json:"discountPercent,omitempty"`
	Offset          int              `json:"offset,omitempty"`
	Day             *int             `json:"day,omitempty"`
	Hours           *decimal.Decimal `json:"hours,omitempty"`
	DollarPerHour   *decimal.Decimal `json:"dollarPerHour,omitempty"`
}

// ParseEdits decodes a JSON array of edits.
func ParseEdits(data []byte) ([]engine.Edit, error) {
	var raw []EditJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse edits JSON: %w", err)
	}
	edits := make([]engine.Edit, 0, len(raw))
	for i, ej := range raw {
		e, err := ej.ToEdit()
		if err != nil {
			return nil, fmt.Errorf("edit %d: %w", i, err)
		}
		edits = append(edits, e)
	}
	return edits, nil
}

// ToEdit converts the wire form into a typed command.
func (ej EditJSON) ToEdit() (engine.Edit, error) {
	section := engine.Section(ej.Section)
	id := engine.ItemID(ej.ID)
	tier := engine.TierID(ej.Tier)

	switch ej.Op {
	case engine.SetBaseFTPrice{}.Op():
		v, err := need("value", ej.Value)
		return engine.SetBaseFTPrice{Value: v}, err

	case engine.SetTierQty{}.Op():
		v, err := need("qty", ej.Qty)
		return engine.SetTierQty{Tier: tier, Qty: v}, err

	case engine.SetTierRatio{}.Op():
		v, err := need("ratio", ej.Ratio)
		return engine.SetTierRatio{Tier: tier, Ratio: v}, err

	case engine.SetAllocation{}.Op():
		qty, err := need("qty", ej.Qty)
		if err != nil {
			return nil, err
		}
		pct, err := need("discountPercent", ej.DiscountPercent)
		return engine.SetAllocation{Program: engine.ProgramID(ej.Program), Tier: tier, Qty: qty, DiscountPercent: pct}, err

	case engine.SetLabel{}.Op():
		if ej.Label == nil {
			return nil, fmt.Errorf("%w: label", ErrMissingField)
		}
		return engine.SetLabel{Section: section, ID: id, Label: *ej.Label}, nil

	case engine.SetBaseline{}.Op():
		v, err := need("value", ej.Value)
		return engine.SetBaseline{Section: section, ID: id, Value: v}, err

	case engine.SetModifierPercent{}.Op():
		v, err := need("value", ej.Value)
		return engine.SetModifierPercent{Section: section, ID: id, Value: v}, err

	case engine.SetModifierFixed{}.Op():
		v, err := need("value", ej.Value)
		return engine.SetModifierFixed{Section: section, ID: id, Value: v}, err

	case engine.SetFinalValue{}.Op():
		v, err := need("value", ej.Value)
		return engine.SetFinalValue{Section: section, ID: id, Value: v}, err

	case engine.AddLineItem{}.Op():
		label := ""
		if ej.Label != nil {
			label = *ej.Label
		}
		add := engine.NewAddLineItem(section, label)
		if ej.ID != "" {
			add.ID = id
		}
		return add, nil

	case engine.DeleteLineItem{}.Op():
		return engine.DeleteLineItem{Section: section, ID: id}, nil

	case engine.MoveLineItem{}.Op():
		return engine.MoveLineItem{Section: section, ID: id, Offset: ej.Offset}, nil

	case engine.EnableAfterschool{}.Op():
		v, err := need("dollarPerHour", ej.DollarPerHour)
		return engine.EnableAfterschool{DollarPerHour: v}, err

	case engine.DisableAfterschool{}.Op():
		return engine.DisableAfterschool{}, nil

	case engine.SetAfterschoolRate{}.Op():
		v, err := need("dollarPerHour", ej.DollarPerHour)
		return engine.SetAfterschoolRate{DollarPerHour: v}, err

	case engine.SetAfterschoolHours{}.Op():
		if ej.Day == nil {
			return nil, fmt.Errorf("%w: day", ErrMissingField)
		}
		h, err := need("hours", ej.Hours)
		return engine.SetAfterschoolHours{Tier: tier, Day: *ej.Day, Hours: h}, err

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOp, ej.Op)
	}
}

func need(field string, v *decimal.Decimal) (decimal.Decimal, error) {
	if v == nil {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrMissingField, field)
	}
	return *v, nil
}
