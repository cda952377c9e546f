/*
Package factory provides JSON to Go plan conversion.

PURPOSE:
  Converts stored or posted JSON plan documents into engine.Plan values,
  and JSON edit commands into engine.Edit values. Every document is merged
  against school.DefaultPlan() on the way in, so older or partial
  documents always produce a complete plan.

JSON SCHEMA (version 2):
  {
    "schema_version": 2,
    "tuition": {
      "baseFTPrice": 7520,
      "tiers": {"tuitionFT": {"id": "tuitionFT", "label": "Full-Time (5 Days)", "ratio": 100, "qty": 30}}
    },
    "discounts": {
      "staff": {"id": "staff", "label": "Staff Discount",
                "allocations": {"tuitionFT": {"qty": 2, "discountPercent": 50}}}
    },
    "revenueItems": [{"id": "tuition", "label": "...", "baseline": 220000,
                      "modifierPercent": 0, "modifierFixed": 0}],
    "budgetItems": [...],
    "afterschool": {"dollarPerHour": 20, "hoursByTier": {"tuitionFT": [2, 2, 2, 2, 2]}}
  }

  Numbers may be JSON numbers or decimal strings. Encoding writes strings.

MERGE RULES:
  - Missing base price, tiers or tier fields come from the default plan
  - Missing programs come from the default plan
  - A program without "allocations" but with the flat qty/discountPercent
    of schema version 1 becomes a single full-time allocation; a missing
    field reads as zero
  - A program with neither gets the default allocation matrix for its id
  - Missing revenueItems/budgetItems lists come from the default plan;
    a present but empty list stays empty
  - A missing afterschool block leaves the sub-model off

USAGE:
  plan, err := factory.DecodePlan(data)
  data, err := factory.EncodePlan(plan)
  edits, err := factory.ParseEdits(body)

SEE ALSO:
  - school/plan.go: The default plan documents merge against
  - edits.go: JSON edit commands
*/
package factory

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/sundrop/budget-planner/engine"
	"github.com/sundrop/budget-planner/school"
)

// CurrentSchemaVersion is written by EncodePlan.
const CurrentSchemaVersion = 2

var (
	// ErrInvalidDocument is returned for documents that cannot be decoded.
	ErrInvalidDocument = errors.New("invalid plan document")

	// ErrUnsupportedSchema is returned for documents newer than this build.
	ErrUnsupportedSchema = errors.New("unsupported plan schema version")
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// PlanDocument is the JSON representation of a plan.
type PlanDocument struct {
	SchemaVersion int                     `json:"schema_version,omitempty"`
	Tuition       *TuitionJSON            `json:"tuition,omitempty"`
	Discounts     map[string]DiscountJSON `json:"discounts,omitempty"`
	RevenueItems  []LineItemJSON          `json:"revenueItems"`
	BudgetItems   []LineItemJSON          `json:"budgetItems"`
	Afterschool   *AfterschoolJSON        `json:"afterschool,omitempty"`
}

type TuitionJSON struct {
	BaseFTPrice *decimal.Decimal    `json:"baseFTPrice,omitempty"`
	Tiers       map[string]TierJSON `json:"tiers,omitempty"`
}

// TierJSON fields are pointers so absent fields can fall back to defaults.
type TierJSON struct {
	ID    string           `json:"id,omitempty"`
	Label *string          `json:"label,omitempty"`
	Ratio *decimal.Decimal `json:"ratio,omitempty"`
	Qty   *decimal.Decimal `json:"qty,omitempty"`
}

// DiscountJSON carries either an allocation matrix (v2) or the flat
// qty/discountPercent pair of v1 documents.
type DiscountJSON struct {
	ID              string                    `json:"id,omitempty"`
	Label           *string                   `json:"label,omitempty"`
	Allocations     map[string]AllocationJSON `json:"allocations"`
	Qty             *decimal.Decimal          `json:"qty,omitempty"`
	DiscountPercent *decimal.Decimal          `json:"discountPercent,omitempty"`
}

type AllocationJSON struct {
	Qty             decimal.Decimal `json:"qty"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
}

type LineItemJSON struct {
	ID              string          `json:"id"`
	Label           string          `json:"label"`
	Baseline        decimal.Decimal `json:"baseline"`
	ModifierPercent decimal.Decimal `json:"modifierPercent"`
	ModifierFixed   decimal.Decimal `json:"modifierFixed"`
}

type AfterschoolJSON struct {
	DollarPerHour decimal.Decimal              `json:"dollarPerHour"`
	HoursByTier   map[string][]decimal.Decimal `json:"hoursByTier"`
}

// =============================================================================
// DECODE
// =============================================================================

// DecodePlan parses a JSON document and merges it against the default plan.
func DecodePlan(data []byte) (engine.Plan, error) {
	var doc PlanDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return engine.Plan{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return doc.ToPlan()
}

// ToPlan converts the document to a complete plan.
func (doc PlanDocument) ToPlan() (engine.Plan, error) {
	if doc.SchemaVersion > CurrentSchemaVersion {
		return engine.Plan{}, fmt.Errorf("%w: %d", ErrUnsupportedSchema, doc.SchemaVersion)
	}

	plan := school.DefaultPlan()

	if doc.Tuition != nil {
		if doc.Tuition.BaseFTPrice != nil {
			plan.BaseFTPrice = *doc.Tuition.BaseFTPrice
		}
		for key, tj := range doc.Tuition.Tiers {
			id := engine.TierID(key)
			tier, ok := plan.Tiers[id]
			if !ok {
				tier = engine.DefaultTier(id)
			}
			mergeTier(&tier, tj)
			plan.Tiers[id] = tier
		}
	}

	for key, dj := range doc.Discounts {
		id := engine.ProgramID(key)
		prog, ok := plan.Discounts[id]
		if !ok {
			prog = engine.DiscountProgram{ID: id, Label: key}
		}
		if dj.Label != nil {
			prog.Label = *dj.Label
		}
		if dj.Allocations != nil {
			prog.Allocations = make(map[engine.TierID]engine.Allocation, len(dj.Allocations))
			for tier, a := range dj.Allocations {
				prog.Allocations[engine.TierID(tier)] = engine.Allocation{Qty: a.Qty, DiscountPercent: a.DiscountPercent}
			}
		} else if dj.Qty != nil || dj.DiscountPercent != nil {
			prog.Allocations = map[engine.TierID]engine.Allocation{
				engine.TierFullTime: {Qty: orZero(dj.Qty), DiscountPercent: orZero(dj.DiscountPercent)},
			}
		} else {
			prog.Allocations = school.DefaultAllocations(id)
		}
		plan.Discounts[id] = prog
	}

	if doc.RevenueItems != nil {
		plan.RevenueItems = toLineItems(doc.RevenueItems)
	}
	if doc.BudgetItems != nil {
		plan.BudgetItems = toLineItems(doc.BudgetItems)
	}

	if doc.Afterschool != nil {
		as := &engine.Afterschool{
			DollarPerHour: doc.Afterschool.DollarPerHour,
			HoursByTier:   make(map[engine.TierID][engine.Weekdays]decimal.Decimal, len(doc.Afterschool.HoursByTier)),
		}
		for tier, hours := range doc.Afterschool.HoursByTier {
			if len(hours) > engine.Weekdays {
				return engine.Plan{}, fmt.Errorf("%w: afterschool %s has %d days", ErrInvalidDocument, tier, len(hours))
			}
			var row [engine.Weekdays]decimal.Decimal
			copy(row[:], hours)
			as.HoursByTier[engine.TierID(tier)] = row
		}
		plan.Afterschool = as
	}

	return plan, nil
}

func orZero(v *decimal.Decimal) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return *v
}

func mergeTier(t *engine.TuitionTier, tj TierJSON) {
	if tj.Label != nil {
		t.Label = *tj.Label
	}
	if tj.Ratio != nil {
		t.Ratio = *tj.Ratio
	}
	if tj.Qty != nil {
		t.Qty = *tj.Qty
	}
}

func toLineItems(items []LineItemJSON) []engine.LineItem {
	out := make([]engine.LineItem, len(items))
	for i, it := range items {
		out[i] = engine.LineItem{
			ID:              engine.ItemID(it.ID),
			Label:           it.Label,
			Baseline:        it.Baseline,
			ModifierPercent: it.ModifierPercent,
			ModifierFixed:   it.ModifierFixed,
		}
	}
	return out
}

// =============================================================================
// ENCODE
// =============================================================================

// EncodePlan writes a plan as a current-version document.
func EncodePlan(plan engine.Plan) ([]byte, error) {
	return json.Marshal(FromPlan(plan))
}

// FromPlan converts a plan to its document form.
func FromPlan(plan engine.Plan) PlanDocument {
	base := plan.BaseFTPrice
	doc := PlanDocument{
		SchemaVersion: CurrentSchemaVersion,
		Tuition:       &TuitionJSON{BaseFTPrice: &base, Tiers: make(map[string]TierJSON, len(plan.Tiers))},
		Discounts:     make(map[string]DiscountJSON, len(plan.Discounts)),
		RevenueItems:  fromLineItems(plan.RevenueItems),
		BudgetItems:   fromLineItems(plan.BudgetItems),
	}

	for id, t := range plan.Tiers {
		label, ratio, qty := t.Label, t.Ratio, t.Qty
		doc.Tuition.Tiers[string(id)] = TierJSON{ID: string(id), Label: &label, Ratio: &ratio, Qty: &qty}
	}

	for id, p := range plan.Discounts {
		label := p.Label
		allocs := make(map[string]AllocationJSON, len(p.Allocations))
		for tier, a := range p.Allocations {
			allocs[string(tier)] = AllocationJSON{Qty: a.Qty, DiscountPercent: a.DiscountPercent}
		}
		doc.Discounts[string(id)] = DiscountJSON{ID: string(id), Label: &label, Allocations: allocs}
	}

	if plan.Afterschool != nil {
		as := &AfterschoolJSON{
			DollarPerHour: plan.Afterschool.DollarPerHour,
			HoursByTier:   make(map[string][]decimal.Decimal, len(plan.Afterschool.HoursByTier)),
		}
		for tier, row := range plan.Afterschool.HoursByTier {
			as.HoursByTier[string(tier)] = append([]decimal.Decimal(nil), row[:]...)
		}
		doc.Afterschool = as
	}

	return doc
}

func fromLineItems(items []engine.LineItem) []LineItemJSON {
	out := make([]LineItemJSON, len(items))
	for i, it := range items {
		out[i] = LineItemJSON{
			ID:              string(it.ID),
			Label:           it.Label,
			Baseline:        it.Baseline,
			ModifierPercent: it.ModifierPercent,
			ModifierFixed:   it.ModifierFixed,
		}
	}
	return out
}
