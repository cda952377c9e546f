/*
errors.go - Error types for plan edits and stores

PURPOSE:
  The calculation itself never fails. Errors exist only where a caller
  asks for something the plan cannot do: editing a line item that does not
  exist, touching a linked item's numbers, or a store failing underneath.

ERROR CATEGORIES:
  1. Not found  - unknown line item, tier, program or plan
  2. Conflict   - edits to protected (linked) line items
  3. Invalid    - malformed edit arguments (bad weekday, bad section)

USAGE:
  next, err := plan.Apply(engine.SetBaseline{...})
  if errors.Is(err, engine.ErrLinkedItemProtected) {
      // surface as 409
  }

SEE ALSO:
  - edit.go: Produces these errors
  - api/handlers.go: Maps them to HTTP status codes
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrLineItemNotFound is returned when an edit names an id not in the section.
	ErrLineItemNotFound = errors.New("line item not found")

	// ErrDuplicateLineItem is returned when adding an id that already exists.
	ErrDuplicateLineItem = errors.New("line item already exists")

	// ErrLinkedItemProtected is returned for delete or numeric edits of a
	// line item whose value is injected by the engine.
	ErrLinkedItemProtected = errors.New("line item is linked and cannot be edited")

	// ErrUnknownTier is returned when an edit names a tier outside the vocabulary.
	ErrUnknownTier = errors.New("unknown tuition tier")

	// ErrUnknownProgram is returned when an edit names an unknown discount program.
	ErrUnknownProgram = errors.New("unknown discount program")

	// ErrInvalidWeekday is returned for afterschool hours outside Mon..Fri.
	ErrInvalidWeekday = errors.New("invalid weekday")

	// ErrInvalidSection is returned when a section is neither revenue nor budget.
	ErrInvalidSection = errors.New("invalid section")

	// ErrAfterschoolDisabled is returned when editing afterschool data on a
	// plan without the afterschool sub-model.
	ErrAfterschoolDisabled = errors.New("afterschool model is not enabled")

	// ErrPlanNotFound is returned by callers that require an existing plan.
	ErrPlanNotFound = errors.New("plan not found")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// EditError says which edit failed and on what.
type EditError struct {
	Op     string
	Target string
	Err    error
}

func (e *EditError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Target, e.Err)
}

func (e *EditError) Unwrap() error { return e.Err }

func editErr(op string, target any, err error) error {
	return &EditError{Op: op, Target: fmt.Sprint(target), Err: err}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidWeekday) ||
		errors.Is(err, ErrInvalidSection) ||
		errors.Is(err, ErrDuplicateLineItem) ||
		errors.Is(err, ErrAfterschoolDisabled)
}

// IsNotFound returns true if the error indicates a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrLineItemNotFound) ||
		errors.Is(err, ErrUnknownTier) ||
		errors.Is(err, ErrUnknownProgram) ||
		errors.Is(err, ErrPlanNotFound)
}

// IsConflict returns true if the edit targets a protected item.
func IsConflict(err error) bool {
	return errors.Is(err, ErrLinkedItemProtected)
}
