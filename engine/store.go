/*
store.go - Persistence and change feed interfaces

PURPOSE:
  The engine never calls a store. These interfaces describe what the
  surrounding application needs from one: load and save a whole plan
  snapshot, and hear about snapshots saved by someone else.

CONFLICT POLICY:
  Last writer wins. Save unconditionally replaces the stored plan; there is
  no merge and no optimistic locking. Subscribers receive full snapshots
  and re-run Calculate against them.

ORIGIN:
  Every snapshot names the writer that published it. A writer that keeps
  its own working copy ignores snapshots carrying its own origin; they are
  echoes of saves it already holds a newer state for.

SCHEMA EVOLUTION:
  Stores that persist documents decode them through factory.DecodePlan,
  which merges against the default plan. Nothing partial reaches here.

IMPLEMENTATIONS:
  - engine/store/memory.go: In-memory store and feed (tests, working copy)
  - store/sqlite/sqlite.go: SQLite store
  - store/redisbus/bus.go:  Redis pub/sub feed
*/
package engine

import "context"

// PlanStore persists whole plan snapshots by id.
type PlanStore interface {
	// Load returns the stored plan, or nil and no error if none exists.
	Load(ctx context.Context, planID string) (*Plan, error)

	// Save replaces the stored plan.
	Save(ctx context.Context, planID string, plan Plan) error
}

// Snapshot is a published plan and the writer it came from.
type Snapshot struct {
	Origin string
	Plan   Plan
}

// Feed broadcasts plan snapshots to interested parties.
type Feed interface {
	Publish(ctx context.Context, planID string, s Snapshot) error

	// Subscribe registers fn for snapshots of planID. Call the returned
	// function to stop receiving them.
	Subscribe(planID string, fn func(Snapshot)) (unsubscribe func())
}
