package redisbus_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sundrop/budget-planner/engine"
	"github.com/sundrop/budget-planner/school"
	"github.com/sundrop/budget-planner/store/redisbus"
)

func TestChannel(t *testing.T) {
	assert.Equal(t, "budget:plan:fy27_master_plan", redisbus.Channel(school.DefaultPlanID))
}

func TestBus_PublishSubscribe(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	// GIVEN: A subscriber on a fresh plan id
	ctx := context.Background()
	bus, err := redisbus.New(ctx, addr)
	require.NoError(t, err)

	planID := "test-" + uuid.NewString()
	received := make(chan engine.Snapshot, 1)
	unsubscribe := bus.Subscribe(planID, func(p engine.Snapshot) {
		select {
		case received <- p:
		default:
		}
	})

	// WHEN: A snapshot is published
	plan, err := school.DefaultPlan().Apply(engine.SetBaseFTPrice{Value: decimal.NewFromInt(9100)})
	require.NoError(t, err)

	// go-redis subscribes asynchronously; publish until the subscriber is live
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()

	var got engine.Snapshot
loop:
	for {
		select {
		case got = <-received:
			break loop
		case <-tick.C:
			require.NoError(t, bus.Publish(ctx, planID, engine.Snapshot{Origin: "test", Plan: plan}))
		case <-deadline:
			t.Fatal("no snapshot received")
		}
	}

	// THEN: The subscriber sees the same plan
	assert.Equal(t, "test", got.Origin)
	assert.True(t, got.Plan.BaseFTPrice.Equal(decimal.NewFromInt(9100)))

	unsubscribe()
	require.NoError(t, bus.Close())
}

func TestBus_CloseEndsOpenSubscriptions(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	// GIVEN: A subscription nobody unsubscribed
	bus, err := redisbus.New(context.Background(), addr)
	require.NoError(t, err)
	unsubscribe := bus.Subscribe("test-"+uuid.NewString(), func(engine.Snapshot) {})

	// WHEN: Closing the bus
	closed := make(chan error, 1)
	go func() { closed <- bus.Close() }()

	// THEN: Close returns instead of waiting on the subscriber forever
	select {
	case err := <-closed:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Close blocked on an open subscription")
	}
	unsubscribe()
}

func TestDecodeSnapshot(t *testing.T) {
	payload := []byte(`{"origin": "planctl", "plan": {"tuition": {"baseFTPrice": 8000}}}`)

	s, err := redisbus.DecodeSnapshot(payload)

	require.NoError(t, err)
	assert.Equal(t, "planctl", s.Origin)
	assert.True(t, s.Plan.BaseFTPrice.Equal(decimal.NewFromInt(8000)))
}
