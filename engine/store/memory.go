// Package store provides in-memory engine.PlanStore and engine.Feed
// implementations.
package store

import (
	"context"
	"sync"

	"github.com/sundrop/budget-planner/engine"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory keeps plans and subscriptions in process. Plans are cloned on the
// way in and on the way out so callers never share maps with the store.
type Memory struct {
	mu        sync.RWMutex
	plans     map[string]engine.Plan
	revisions map[string]int
	subs      map[string]map[int]func(engine.Snapshot)
	nextSub   int
}

func NewMemory() *Memory {
	return &Memory{
		plans:     make(map[string]engine.Plan),
		revisions: make(map[string]int),
		subs:      make(map[string]map[int]func(engine.Snapshot)),
	}
}

func (m *Memory) Load(_ context.Context, planID string) (*engine.Plan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.plans[planID]
	if !ok {
		return nil, nil
	}
	out := p.Clone()
	return &out, nil
}

// Save replaces the plan. Last writer wins.
func (m *Memory) Save(_ context.Context, planID string, plan engine.Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.plans[planID] = plan.Clone()
	m.revisions[planID]++
	return nil
}

// Revision returns how many times planID has been saved.
func (m *Memory) Revision(planID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.revisions[planID]
}

// Delete removes a plan. Subscriptions are kept.
func (m *Memory) Delete(_ context.Context, planID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.plans, planID)
	delete(m.revisions, planID)
	return nil
}

// =============================================================================
// FEED
// =============================================================================

// Publish delivers a snapshot to every subscriber of planID. Callbacks run
// synchronously, outside the lock, each with its own copy.
func (m *Memory) Publish(_ context.Context, planID string, s engine.Snapshot) error {
	m.mu.RLock()
	fns := make([]func(engine.Snapshot), 0, len(m.subs[planID]))
	for _, fn := range m.subs[planID] {
		fns = append(fns, fn)
	}
	m.mu.RUnlock()

	for _, fn := range fns {
		fn(engine.Snapshot{Origin: s.Origin, Plan: s.Plan.Clone()})
	}
	return nil
}

func (m *Memory) Subscribe(planID string, fn func(engine.Snapshot)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSub
	m.nextSub++
	if m.subs[planID] == nil {
		m.subs[planID] = make(map[int]func(engine.Snapshot))
	}
	m.subs[planID][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			delete(m.subs[planID], id)
		})
	}
}

// Compile-time checks
var (
	_ engine.PlanStore = (*Memory)(nil)
	_ engine.Feed      = (*Memory)(nil)
)
