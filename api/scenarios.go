/*
scenarios.go - Sample plans for demos and testing

PURPOSE:
  Provides ready-made plans that show the engine in a particular state:
  the school's default budget, an enrollment shortfall that runs a deficit,
  the afterschool hours model switched on, and a price increase.

AVAILABLE SCENARIOS:
  fy27-default:     The school's starting plan
  lean-enrollment:  Eight fewer full-time students; expenses exceed revenue
  afterschool:      Afterschool revenue driven by the weekly hours table
  price-increase:   Base price up to 7,900 with a smaller staff discount

HOW SCENARIOS WORK:
  Each scenario starts from school.DefaultPlan() and applies a list of
  ordinary engine edits, so a scenario can never reach a state the UI
  could not.

USAGE VIA API:
  POST /api/scenarios/load
  {"scenario_id": "lean-enrollment", "plan_id": "fy27_master_plan"}

NOTE:
  Loading a scenario replaces the named plan. Only use in
  development/demo environments.

SEE ALSO:
  - handlers.go: Plan endpoints
  - school/plan.go: Default plan
*/
package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/sundrop/budget-planner/engine"
	"github.com/sundrop/budget-planner/school"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

type scenario struct {
	ScenarioDTO
	edits func() []engine.Edit
}

var scenarios = []scenario{
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "fy27-default",
			Name:        "FY27 Default",
			Description: "The school's starting enrollment, discounts and ledger",
		},
		edits: func() []engine.Edit { return nil },
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "lean-enrollment",
			Name:        "Lean Enrollment",
			Description: "22 full-time students instead of 30; the plan runs a deficit",
		},
		edits: func() []engine.Edit {
			return []engine.Edit{
				engine.SetTierQty{Tier: engine.TierFullTime, Qty: decimal.NewFromInt(22)},
			}
		},
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "afterschool",
			Name:        "Afterschool Program",
			Description: "Afterschool revenue computed from weekly child-hours at $20/hr",
		},
		edits: func() []engine.Edit {
			edits := []engine.Edit{engine.EnableAfterschool{DollarPerHour: decimal.NewFromInt(20)}}
			for day := 0; day < engine.Weekdays; day++ {
				edits = append(edits, engine.SetAfterschoolHours{Tier: engine.TierFullTime, Day: day, Hours: decimal.NewFromInt(8)})
			}
			for day := 0; day < 4; day++ {
				edits = append(edits, engine.SetAfterschoolHours{Tier: engine.Tier4Day, Day: day, Hours: decimal.NewFromInt(4)})
			}
			return edits
		},
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "price-increase",
			Name:        "Price Increase",
			Description: "Base full-time price of $7,900 and a 40% staff discount",
		},
		edits: func() []engine.Edit {
			return []engine.Edit{
				engine.SetBaseFTPrice{Value: decimal.NewFromInt(7900)},
				engine.SetAllocation{
					Program:         engine.ProgramStaff,
					Tier:            engine.TierFullTime,
					Qty:             decimal.NewFromInt(2),
					DiscountPercent: decimal.NewFromInt(40),
				},
			}
		},
	},
}

// ScenarioPlan builds the plan for a scenario id.
func ScenarioPlan(id string) (engine.Plan, error) {
	for _, s := range scenarios {
		if s.ID == id {
			return school.DefaultPlan().Apply(s.edits()...)
		}
	}
	return engine.Plan{}, fmt.Errorf("unknown scenario: %s", id)
}

// Scenarios lists the available sample plans.
func Scenarios() []ScenarioDTO {
	out := make([]ScenarioDTO, len(scenarios))
	for i, s := range scenarios {
		out[i] = s.ScenarioDTO
	}
	return out
}

// ListScenarios returns available scenarios.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Scenarios())
}

// GetCurrentScenario returns the last loaded scenario, if any.
// GET /api/scenarios/current
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s.ScenarioDTO)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario replaces a plan with a sample plan.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.PlanID == "" {
		req.PlanID = h.DefaultPlanID
	}

	plan, err := ScenarioPlan(req.ScenarioID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Unknown scenario", err)
		return
	}

	next, err := h.replace(r.Context(), req.PlanID, plan)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	h.mu.Lock()
	h.currentScenario = req.ScenarioID
	h.mu.Unlock()

	log.Printf("[API] Loaded scenario %s into %s", req.ScenarioID, req.PlanID)
	writeJSON(w, http.StatusOK, toSummaryDTO(req.PlanID, next))
}
