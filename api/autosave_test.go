package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sundrop/budget-planner/engine"
	memstore "github.com/sundrop/budget-planner/engine/store"
	"github.com/sundrop/budget-planner/school"
)

// blockingStore holds the first Save until release is closed.
type blockingStore struct {
	*memstore.Memory
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingStore) Save(ctx context.Context, planID string, plan engine.Plan) error {
	b.once.Do(func() {
		close(b.started)
		<-b.release
	})
	return b.Memory.Save(ctx, planID, plan)
}

type failingStore struct{}

func (failingStore) Load(context.Context, string) (*engine.Plan, error) { return nil, nil }
func (failingStore) Save(context.Context, string, engine.Plan) error {
	return errors.New("disk full")
}

func priced(base int64) engine.Plan {
	p := school.DefaultPlan()
	p.BaseFTPrice = decimal.NewFromInt(base)
	return p
}

func TestAutosaver_FlushSavesAndPublishes(t *testing.T) {
	// GIVEN: A scheduled snapshot with a long delay
	// WHEN: Flushing
	// THEN: It is saved and published at once

	mem := memstore.NewMemory()
	a := NewAutosaver(mem, mem, time.Hour)

	var published int
	defer mem.Subscribe("p", func(s engine.Snapshot) {
		assert.Equal(t, a.Origin, s.Origin)
		published++
	})()

	a.Schedule("p", priced(8000))
	stored, err := mem.Load(context.Background(), "p")
	require.NoError(t, err)
	assert.Nil(t, stored)
	assert.Equal(t, 1, a.Pending())

	require.NoError(t, a.Flush(context.Background()))

	stored, err = mem.Load(context.Background(), "p")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assertDec(t, "8000", stored.BaseFTPrice)
	assert.Equal(t, 1, published)
	assert.Zero(t, a.Pending())
}

func TestAutosaver_DebouncesToLatest(t *testing.T) {
	// GIVEN: Two snapshots scheduled back to back
	// WHEN: The quiet period passes
	// THEN: Only the latest is saved, once

	mem := memstore.NewMemory()
	a := NewAutosaver(mem, mem, 50*time.Millisecond)
	a.Start()
	defer a.Stop()

	a.Schedule("p", priced(8000))
	a.Schedule("p", priced(8100))

	require.Eventually(t, func() bool { return mem.Revision("p") > 0 }, 2*time.Second, 10*time.Millisecond)

	stored, err := mem.Load(context.Background(), "p")
	require.NoError(t, err)
	assertDec(t, "8100", stored.BaseFTPrice)
	assert.Equal(t, 1, mem.Revision("p"))
}

func TestAutosaver_StopFlushes(t *testing.T) {
	mem := memstore.NewMemory()
	a := NewAutosaver(mem, nil, time.Hour)
	a.Start()

	a.Schedule("p", priced(8000))
	a.Stop()

	assert.Equal(t, 1, mem.Revision("p"))
}

func TestAutosaver_FailedSaveStaysPending(t *testing.T) {
	a := NewAutosaver(failingStore{}, nil, time.Hour)

	a.Schedule("p", priced(8000))
	err := a.Flush(context.Background())

	require.Error(t, err)
	assert.Equal(t, 1, a.Pending())
}

func TestHandler_EditsGoThroughAutosaver(t *testing.T) {
	// GIVEN: A handler with an autosaver
	// WHEN: An edit is applied
	// THEN: The working copy changes at once; the store only after a flush

	mem := memstore.NewMemory()
	a := NewAutosaver(mem, mem, time.Hour)
	h := NewHandler(mem, mem, a)
	router := NewRouter(h, nil)

	s := decodeSummary(t, do(t, router, http.MethodPost, "/api/plans/"+testPlanID+"/edits",
		`[{"op": "set_base_ft_price", "value": 8000}]`))
	assertDec(t, "8000", s.Tiers[0].CalculatedPrice)
	assert.Zero(t, mem.Revision(testPlanID))

	require.NoError(t, a.Flush(context.Background()))
	assert.Equal(t, 1, mem.Revision(testPlanID))
}

func TestAutosaver_OwnEchoKeepsNewerEdits(t *testing.T) {
	// GIVEN: Edit A being saved while edit B lands
	// WHEN: A's save publishes and edit C follows
	// THEN: The working copy keeps B; the echo of A does not roll it back

	mem := memstore.NewMemory()
	store := &blockingStore{Memory: mem, started: make(chan struct{}), release: make(chan struct{})}
	a := NewAutosaver(store, mem, time.Hour)
	h := NewHandler(store, mem, a)
	defer h.Close()
	router := NewRouter(h, nil)

	editURL := "/api/plans/" + testPlanID + "/edits"
	decodeSummary(t, do(t, router, http.MethodPost, editURL, `[{"op": "set_base_ft_price", "value": 8000}]`))

	flushed := make(chan error, 1)
	go func() { flushed <- a.Flush(context.Background()) }()
	<-store.started

	decodeSummary(t, do(t, router, http.MethodPost, editURL, `[{"op": "set_tier_qty", "tier": "tuitionFT", "qty": 99}]`))

	close(store.release)
	require.NoError(t, <-flushed)

	decodeSummary(t, do(t, router, http.MethodPost, editURL, `[{"op": "set_tier_qty", "tier": "tuition4Day", "qty": 6}]`))

	plan, err := h.Plan(context.Background(), testPlanID)
	require.NoError(t, err)
	assertDec(t, "8000", plan.BaseFTPrice)
	assertDec(t, "99", plan.Tiers[engine.TierFullTime].Qty)
	assertDec(t, "6", plan.Tiers[engine.Tier4Day].Qty)

	require.NoError(t, a.Flush(context.Background()))
	stored, err := mem.Load(context.Background(), testPlanID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assertDec(t, "99", stored.Tiers[engine.TierFullTime].Qty)
}

func TestHandler_ExternalSnapshotDiscardsPendingSave(t *testing.T) {
	// GIVEN: A local edit waiting for autosave
	// WHEN: Another writer publishes the plan
	// THEN: The external snapshot wins and the stale local save is dropped

	mem := memstore.NewMemory()
	a := NewAutosaver(mem, mem, time.Hour)
	h := NewHandler(mem, mem, a)
	defer h.Close()
	router := NewRouter(h, nil)

	decodeSummary(t, do(t, router, http.MethodPost, "/api/plans/"+testPlanID+"/edits",
		`[{"op": "set_base_ft_price", "value": 8000}]`))
	require.Equal(t, 1, a.Pending())

	require.NoError(t, mem.Publish(context.Background(), testPlanID, engine.Snapshot{Origin: "planctl", Plan: priced(9000)}))

	assert.Zero(t, a.Pending())
	plan, err := h.Plan(context.Background(), testPlanID)
	require.NoError(t, err)
	assertDec(t, "9000", plan.BaseFTPrice)
}
