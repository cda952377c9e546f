/*
autosave.go - Debounced persistence of working plans

PURPOSE:
  Edits land in the handler's working copy immediately. The autosaver
  coalesces them and writes the latest snapshot of each plan once it has
  been quiet for Delay, then publishes it on the feed so other sessions
  pick it up.

DESIGN:
  - Schedule records the newest snapshot and pushes its deadline out
  - A background goroutine wakes on a ticker and saves what is due
  - Stop flushes everything still pending before returning
  - A failed save stays pending and is retried on the next tick
  - Published snapshots carry Origin so the handler can skip its own echoes
  - Discard drops a pending save that a newer external snapshot replaced

USAGE:
  saver := NewAutosaver(store, feed, 2*time.Second)
  saver.Start()
  defer saver.Stop()
  saver.Schedule("fy27_master_plan", plan)

SEE ALSO:
  - handlers.go: Calls Schedule after every accepted edit
  - engine/store.go: PlanStore and Feed
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sundrop/budget-planner/engine"
)

type pendingSave struct {
	plan engine.Plan
	due  time.Time
}

// Autosaver persists working plans after a quiet period.
type Autosaver struct {
	Store  engine.PlanStore
	Feed   engine.Feed
	Delay  time.Duration
	Origin string

	pending map[string]pendingSave
	ticker  *time.Ticker
	stop    chan bool
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// NewAutosaver creates a new autosaver. feed may be nil.
func NewAutosaver(store engine.PlanStore, feed engine.Feed, delay time.Duration) *Autosaver {
	return &Autosaver{
		Store:   store,
		Feed:    feed,
		Delay:   delay,
		Origin:  "server-" + uuid.NewString(),
		pending: make(map[string]pendingSave),
		stop:    make(chan bool),
	}
}

// Schedule queues plan for saving once planID has been quiet for Delay.
func (a *Autosaver) Schedule(planID string, plan engine.Plan) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pending[planID] = pendingSave{plan: plan.Clone(), due: time.Now().Add(a.Delay)}
}

// Discard drops the pending save for planID, if any.
func (a *Autosaver) Discard(planID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.pending, planID)
}

// Pending reports how many plans are waiting to be saved.
func (a *Autosaver) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.pending)
}

// Start begins the background loop.
func (a *Autosaver) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.running {
		return
	}
	interval := a.Delay / 4
	if interval < 10*time.Millisecond {
		interval = 10 * time.Millisecond
	}
	a.ticker = time.NewTicker(interval)
	a.running = true
	a.wg.Add(1)

	go a.run()

	log.Printf("[Autosave] Started with delay: %v", a.Delay)
}

// Stop ends the background loop and flushes whatever is still pending.
func (a *Autosaver) Stop() {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return
	}
	a.running = false
	a.ticker.Stop()
	close(a.stop)
	a.mu.Unlock()

	a.wg.Wait()
	if err := a.Flush(context.Background()); err != nil {
		log.Printf("[Autosave] Final flush failed: %v", err)
	}
	log.Println("[Autosave] Stopped")
}

func (a *Autosaver) run() {
	defer a.wg.Done()

	for {
		select {
		case <-a.ticker.C:
			a.saveDue(context.Background(), time.Now())
		case <-a.stop:
			return
		}
	}
}

// Flush saves every pending plan now, regardless of its deadline. It
// returns the first error; failed plans stay pending.
func (a *Autosaver) Flush(ctx context.Context) error {
	return a.saveDue(ctx, time.Time{})
}

// saveDue saves plans whose deadline is at or before now. A zero now means
// everything.
func (a *Autosaver) saveDue(ctx context.Context, now time.Time) error {
	a.mu.Lock()
	due := make(map[string]pendingSave)
	for id, p := range a.pending {
		if now.IsZero() || !p.due.After(now) {
			due[id] = p
			delete(a.pending, id)
		}
	}
	a.mu.Unlock()

	var firstErr error
	for id, p := range due {
		if err := a.save(ctx, id, p.plan); err != nil {
			log.Printf("[Autosave] Error saving %s: %v", id, err)
			a.requeue(id, p)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		log.Printf("[Autosave] Saved %s", id)
	}
	return firstErr
}

func (a *Autosaver) save(ctx context.Context, planID string, plan engine.Plan) error {
	return persist(ctx, a.Store, a.Feed, a.Origin, planID, plan)
}

// requeue puts a failed save back unless a newer snapshot arrived meanwhile.
func (a *Autosaver) requeue(planID string, p pendingSave) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, newer := a.pending[planID]; !newer {
		a.pending[planID] = p
	}
}

// persist saves a snapshot and then announces it under origin.
func persist(ctx context.Context, store engine.PlanStore, feed engine.Feed, origin, planID string, plan engine.Plan) error {
	if err := store.Save(ctx, planID, plan); err != nil {
		return err
	}
	if feed == nil {
		return nil
	}
	if err := feed.Publish(ctx, planID, engine.Snapshot{Origin: origin, Plan: plan}); err != nil {
		log.Printf("[Feed] Publish %s failed: %v", planID, err)
	}
	return nil
}
