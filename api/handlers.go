/*
handlers.go - HTTP API handlers for the budget planner

PURPOSE:
  Exposes the calculation engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to the engine.
  Every response that shows numbers re-runs engine.Calculate over the
  current plan snapshot.

ENDPOINTS:
  Plans:
    GET    /api/plans/{id}             Plan document (inputs only)
    PUT    /api/plans/{id}             Replace plan from a document
    GET    /api/plans/{id}/summary     Computed summary
    POST   /api/plans/{id}/edits       Apply a batch of edits atomically
    POST   /api/plans/{id}/reset       Restore the default plan
    GET    /api/plans/{id}/export.xlsx Workbook export
    GET    /api/plans/{id}/live        Websocket of summaries (live.go)

  Stateless:
    POST   /api/calculate              Summary for a posted document

  Scenarios:
    GET    /api/scenarios              List sample plans
    GET    /api/scenarios/current      Last loaded sample
    POST   /api/scenarios/load         Replace a plan with a sample

ARCHITECTURE:
  Handler keeps a working copy of each plan it has touched. Edits replace
  the working copy at once; persistence goes through the Autosaver when
  one is configured, otherwise straight to Store and Feed. The handler
  subscribes to the Feed for every plan it loads. Snapshots from other
  writers replace the working copy; echoes of its own saves are skipped
  by origin (see external).

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Malformed JSON, bad edit arguments, invalid document
  - 404: Unknown line item, tier or program
  - 409: Numeric edit or delete of a linked line item
  - 500: Store failures

SECURITY NOTE:
  No authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - autosave.go: Debounced persistence
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sundrop/budget-planner/engine"
	"github.com/sundrop/budget-planner/factory"
	"github.com/sundrop/budget-planner/report"
	"github.com/sundrop/budget-planner/school"
)

const maxBodyBytes = 1 << 20

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    engine.PlanStore
	Feed     engine.Feed
	Autosave *Autosaver

	// Origin tags snapshots this process publishes.
	Origin string

	// DefaultPlanID is used when a scenario request names no plan.
	DefaultPlanID string

	mu      sync.Mutex
	plans   map[string]engine.Plan
	watches map[string]func()

	// Track currently loaded scenario
	currentScenario string

	done      chan struct{}
	closeOnce sync.Once
}

// NewHandler creates a new handler. feed and autosave may be nil. When an
// autosaver is given the handler shares its origin.
func NewHandler(store engine.PlanStore, feed engine.Feed, autosave *Autosaver) *Handler {
	origin := "server-" + uuid.NewString()
	if autosave != nil {
		origin = autosave.Origin
	}
	return &Handler{
		Store:         store,
		Feed:          feed,
		Autosave:      autosave,
		Origin:        origin,
		DefaultPlanID: school.DefaultPlanID,
		plans:         make(map[string]engine.Plan),
		watches:       make(map[string]func()),
		done:          make(chan struct{}),
	}
}

// Close ends every feed subscription and disconnects live clients. It is
// safe to call more than once.
func (h *Handler) Close() {
	h.closeOnce.Do(func() {
		close(h.done)

		h.mu.Lock()
		watches := h.watches
		h.watches = make(map[string]func())
		h.mu.Unlock()

		for _, unsubscribe := range watches {
			unsubscribe()
		}
	})
}

// Watch keeps the working copy of planID in step with snapshots published
// by other writers. Every plan the handler touches is watched; calling it
// up front only subscribes earlier.
func (h *Handler) Watch(planID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.watch(planID)
}

// watch subscribes once per plan. Caller holds h.mu.
func (h *Handler) watch(planID string) {
	if h.Feed == nil {
		return
	}
	if _, ok := h.watches[planID]; ok {
		return
	}
	select {
	case <-h.done:
		return
	default:
	}
	h.watches[planID] = h.Feed.Subscribe(planID, func(s engine.Snapshot) {
		h.external(planID, s)
	})
}

// external applies a snapshot published by another writer. Echoes of our
// own saves are skipped: the working copy is already at least as new. A
// foreign snapshot wins over local edits that were not saved yet.
func (h *Handler) external(planID string, s engine.Snapshot) {
	if s.Origin == h.Origin {
		return
	}
	h.mu.Lock()
	h.plans[planID] = s.Plan
	if h.Autosave != nil {
		h.Autosave.Discard(planID)
	}
	h.mu.Unlock()

	log.Printf("[Feed] Plan %s replaced by snapshot from %s", planID, s.Origin)
}

// current returns the working copy of planID, loading it from the store or
// falling back to the default plan. Caller holds h.mu.
func (h *Handler) current(ctx context.Context, planID string) (engine.Plan, error) {
	if p, ok := h.plans[planID]; ok {
		return p, nil
	}
	h.watch(planID)

	stored, err := h.Store.Load(ctx, planID)
	if err != nil {
		return engine.Plan{}, err
	}
	p := school.DefaultPlan()
	if stored != nil {
		p = *stored
	}
	h.plans[planID] = p
	return p, nil
}

// Plan returns the working copy of planID.
func (h *Handler) Plan(ctx context.Context, planID string) (engine.Plan, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, err := h.current(ctx, planID)
	if err != nil {
		return engine.Plan{}, err
	}
	return p.Clone(), nil
}

// update applies fn to the working copy and commits the result. The commit
// happens under the lock so an external snapshot lands either before the
// edit or after its save, never between them. Feed callbacks for our own
// origin return before taking the lock.
func (h *Handler) update(ctx context.Context, planID string, fn func(engine.Plan) (engine.Plan, error)) (engine.Plan, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	cur, err := h.current(ctx, planID)
	if err != nil {
		return engine.Plan{}, err
	}
	next, err := fn(cur)
	if err != nil {
		return engine.Plan{}, err
	}
	h.plans[planID] = next

	if h.Autosave != nil {
		h.Autosave.Schedule(planID, next)
		return next, nil
	}
	if err := persist(ctx, h.Store, h.Feed, h.Origin, planID, next); err != nil {
		return engine.Plan{}, fmt.Errorf("%w: %v", errStore, err)
	}
	return next, nil
}

// replace swaps the whole plan.
func (h *Handler) replace(ctx context.Context, planID string, plan engine.Plan) (engine.Plan, error) {
	return h.update(ctx, planID, func(engine.Plan) (engine.Plan, error) { return plan, nil })
}

var errStore = errors.New("store failure")

// =============================================================================
// PLAN HANDLERS
// =============================================================================

// GetPlan returns the plan document.
// GET /api/plans/{id}
func (h *Handler) GetPlan(w http.ResponseWriter, r *http.Request) {
	planID := chi.URLParam(r, "id")
	plan, err := h.Plan(r.Context(), planID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load plan", err)
		return
	}
	writeJSON(w, http.StatusOK, factory.FromPlan(plan))
}

// PutPlan replaces the plan with the posted document.
// PUT /api/plans/{id}
func (h *Handler) PutPlan(w http.ResponseWriter, r *http.Request) {
	planID := chi.URLParam(r, "id")

	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read body", err)
		return
	}
	plan, err := factory.DecodePlan(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid plan document", err)
		return
	}

	next, err := h.replace(r.Context(), planID, plan)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryDTO(planID, next))
}

// GetSummary returns the computed summary.
// GET /api/plans/{id}/summary
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	planID := chi.URLParam(r, "id")
	plan, err := h.Plan(r.Context(), planID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load plan", err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryDTO(planID, plan))
}

// ApplyEdits applies a JSON array of edits. Either all of them land or none.
// POST /api/plans/{id}/edits
func (h *Handler) ApplyEdits(w http.ResponseWriter, r *http.Request) {
	planID := chi.URLParam(r, "id")

	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read body", err)
		return
	}
	edits, err := factory.ParseEdits(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid edits", err)
		return
	}

	next, err := h.update(r.Context(), planID, func(cur engine.Plan) (engine.Plan, error) {
		return cur.Apply(edits...)
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryDTO(planID, next))
}

// ResetPlan restores the default plan.
// POST /api/plans/{id}/reset
func (h *Handler) ResetPlan(w http.ResponseWriter, r *http.Request) {
	planID := chi.URLParam(r, "id")
	next, err := h.replace(r.Context(), planID, school.DefaultPlan())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	log.Printf("[API] Reset plan %s", planID)
	writeJSON(w, http.StatusOK, toSummaryDTO(planID, next))
}

// ExportWorkbook streams the plan as an xlsx workbook.
// GET /api/plans/{id}/export.xlsx
func (h *Handler) ExportWorkbook(w http.ResponseWriter, r *http.Request) {
	planID := chi.URLParam(r, "id")
	plan, err := h.Plan(r.Context(), planID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load plan", err)
		return
	}

	f, err := report.BuildWorkbook(engine.Calculate(plan))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build workbook", err)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", planID+".xlsx"))
	w.WriteHeader(http.StatusOK)
	if err := f.Write(w); err != nil {
		log.Printf("[API] Export %s failed: %v", planID, err)
	}
}

// Calculate returns the summary of a posted document without storing it.
// POST /api/calculate
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read body", err)
		return
	}
	plan, err := factory.DecodePlan(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid plan document", err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryDTO("", plan))
}

// =============================================================================
// HELPERS
// =============================================================================

func readBody(r *http.Request) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeEngineError maps edit and store errors to a status and code.
func writeEngineError(w http.ResponseWriter, err error) {
	resp := ErrorResponse{Error: err.Error()}
	status := http.StatusBadRequest

	var editErr *engine.EditError
	if errors.As(err, &editErr) {
		resp.Details = map[string]string{"op": editErr.Op, "target": editErr.Target}
	}

	switch {
	case engine.IsConflict(err):
		status, resp.Code = http.StatusConflict, "linked_item"
	case engine.IsNotFound(err):
		status, resp.Code = http.StatusNotFound, "not_found"
	case engine.IsClientError(err):
		resp.Code = "invalid_edit"
	case errors.Is(err, errStore):
		status, resp.Code = http.StatusInternalServerError, "store_error"
	default:
		status, resp.Code = http.StatusInternalServerError, "internal"
	}
	writeJSON(w, status, resp)
}
