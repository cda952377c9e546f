/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Plans travel as
  factory.PlanDocument; everything derived by the engine travels as a
  SummaryDTO. Amounts are decimal strings so no precision is lost on the
  way to the browser.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Summary:   SummaryDTO, TierDTO, ProgramDTO, AllocationDTO, ItemDTO,
             AfterschoolDTO, TotalsDTO, MixSliceDTO, WarningDTO
  Live:      LiveMessage
  Scenarios: ScenarioDTO, LoadScenarioRequest

SEE ALSO:
  - handlers.go: Uses these types
  - factory/document.go: PlanDocument
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/sundrop/budget-planner/engine"
	"github.com/sundrop/budget-planner/school"
)

// =============================================================================
// SUMMARY
// =============================================================================

// SummaryDTO is everything the dashboard shows for one plan.
type SummaryDTO struct {
	PlanID        string          `json:"plan_id,omitempty"`
	Totals        TotalsDTO       `json:"totals"`
	MonthlyApprox decimal.Decimal `json:"monthly_approx"`
	Tiers         []TierDTO       `json:"tiers"`
	Discounts     []ProgramDTO    `json:"discounts"`
	RevenueItems  []ItemDTO       `json:"revenue_items"`
	BudgetItems   []ItemDTO       `json:"budget_items"`
	Afterschool   *AfterschoolDTO `json:"afterschool,omitempty"`
	RevenueMix    []MixSliceDTO   `json:"revenue_mix"`
	Warnings      []WarningDTO    `json:"warnings"`
}

type TotalsDTO struct {
	TotalTuitionGross decimal.Decimal `json:"total_tuition_gross"`
	TotalHeadcount    decimal.Decimal `json:"total_headcount"`
	TotalDiscounts    decimal.Decimal `json:"total_discounts"`
	NetTuition        decimal.Decimal `json:"net_tuition"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	TotalExpenses     decimal.Decimal `json:"total_expenses"`
	NetMargin         decimal.Decimal `json:"net_margin"`
	MarginPercent     decimal.Decimal `json:"margin_percent"`
}

type TierDTO struct {
	ID              string          `json:"id"`
	Label           string          `json:"label"`
	Ratio           decimal.Decimal `json:"ratio"`
	Qty             decimal.Decimal `json:"qty"`
	CalculatedPrice decimal.Decimal `json:"calculated_price"`
	Gross           decimal.Decimal `json:"gross"`
}

type ProgramDTO struct {
	ID                 string          `json:"id"`
	Label              string          `json:"label"`
	Allocations        []AllocationDTO `json:"allocations"`
	TotalDiscountValue decimal.Decimal `json:"total_discount_value"`
}

type AllocationDTO struct {
	Tier            string          `json:"tier"`
	Qty             decimal.Decimal `json:"qty"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Value           decimal.Decimal `json:"value"`
}

// ItemDTO is a line item with its computed value. Linked items are
// read-only in the UI except for their label.
type ItemDTO struct {
	ID              string          `json:"id"`
	Label           string          `json:"label"`
	Baseline        decimal.Decimal `json:"baseline"`
	ModifierPercent decimal.Decimal `json:"modifier_percent"`
	ModifierFixed   decimal.Decimal `json:"modifier_fixed"`
	FinalValue      decimal.Decimal `json:"final_value"`
	Linked          bool            `json:"linked"`
}

type AfterschoolDTO struct {
	DollarPerHour    decimal.Decimal `json:"dollar_per_hour"`
	Rows             []HoursRowDTO   `json:"rows"`
	WeeklyChildHours decimal.Decimal `json:"weekly_child_hours"`
	AnnualRevenue    decimal.Decimal `json:"annual_revenue"`
}

type HoursRowDTO struct {
	Tier   string            `json:"tier"`
	Hours  []decimal.Decimal `json:"hours"`
	Weekly decimal.Decimal   `json:"weekly"`
}

type MixSliceDTO struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

type WarningDTO struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Tier    string `json:"tier,omitempty"`
	Program string `json:"program,omitempty"`
	ItemID  string `json:"item_id,omitempty"`
}

// LiveMessage is pushed over the live websocket for every snapshot.
type LiveMessage struct {
	Type    string     `json:"type"` // "snapshot"
	Summary SummaryDTO `json:"summary"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO represents a sample plan.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest replaces a plan with a sample. PlanID defaults to the
// server's master plan.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
	PlanID     string `json:"plan_id,omitempty"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION
// =============================================================================

// toSummaryDTO runs the engine over plan and flattens the result.
func toSummaryDTO(planID string, plan engine.Plan) SummaryDTO {
	r := engine.Calculate(plan)

	dto := SummaryDTO{
		PlanID: planID,
		Totals: TotalsDTO{
			TotalTuitionGross: r.TotalTuitionGross,
			TotalHeadcount:    r.TotalHeadcount,
			TotalDiscounts:    r.TotalDiscounts,
			NetTuition:        r.NetTuition,
			TotalRevenue:      r.TotalRevenue,
			TotalExpenses:     r.TotalExpenses,
			NetMargin:         r.NetMargin,
			MarginPercent:     r.MarginPercent,
		},
		MonthlyApprox: school.MonthlyApprox(plan.BaseFTPrice),
		Tiers:         make([]TierDTO, 0, len(r.Tiers)),
		Discounts:     make([]ProgramDTO, 0, len(r.Discounts)),
		RevenueItems:  toItemDTOs(r.RevenueItems),
		BudgetItems:   toItemDTOs(r.BudgetItems),
		RevenueMix:    []MixSliceDTO{},
		Warnings:      []WarningDTO{},
	}

	for _, t := range r.Tiers {
		dto.Tiers = append(dto.Tiers, TierDTO{
			ID:              string(t.ID),
			Label:           t.Label,
			Ratio:           t.Ratio,
			Qty:             t.Qty,
			CalculatedPrice: t.CalculatedPrice,
			Gross:           t.Gross,
		})
	}

	for _, p := range r.Discounts {
		pd := ProgramDTO{ID: string(p.ID), Label: p.Label, TotalDiscountValue: p.TotalDiscountValue, Allocations: []AllocationDTO{}}
		for _, line := range p.Lines {
			pd.Allocations = append(pd.Allocations, AllocationDTO{
				Tier:            string(line.TierID),
				Qty:             line.Qty,
				DiscountPercent: line.DiscountPercent,
				Value:           line.Value,
			})
		}
		dto.Discounts = append(dto.Discounts, pd)
	}

	if r.Afterschool != nil {
		as := &AfterschoolDTO{
			DollarPerHour:    r.Afterschool.DollarPerHour,
			WeeklyChildHours: r.Afterschool.WeeklyChildHours,
			AnnualRevenue:    r.Afterschool.AnnualRevenue,
			Rows:             []HoursRowDTO{},
		}
		for _, row := range r.Afterschool.Rows {
			hours := row.Hours
			as.Rows = append(as.Rows, HoursRowDTO{Tier: string(row.TierID), Hours: hours[:], Weekly: row.Weekly})
		}
		dto.Afterschool = as
	}

	for _, s := range school.RevenueMix(r) {
		dto.RevenueMix = append(dto.RevenueMix, MixSliceDTO{Name: s.Name, Value: s.Value})
	}

	for _, w := range engine.Check(r) {
		dto.Warnings = append(dto.Warnings, WarningDTO{
			Code:    string(w.Code),
			Message: w.Message,
			Tier:    string(w.Tier),
			Program: string(w.Program),
			ItemID:  string(w.ItemID),
		})
	}

	return dto
}

func toItemDTOs(items []engine.ComputedItem) []ItemDTO {
	out := make([]ItemDTO, len(items))
	for i, it := range items {
		out[i] = ItemDTO{
			ID:              string(it.ID),
			Label:           it.Label,
			Baseline:        it.Baseline,
			ModifierPercent: it.ModifierPercent,
			ModifierFixed:   it.ModifierFixed,
			FinalValue:      it.FinalValue,
			Linked:          it.Linked,
		}
	}
	return out
}
