/*
Package redisbus provides an engine.Feed over Redis pub/sub.

PURPOSE:
  Lets several server processes share one plan. Every saved snapshot is
  published as a full plan document on a per-plan channel; subscribers in
  any process decode it and re-run the engine. There is no merge: the last
  snapshot published wins.

CHANNELS:
  budget:plan:<planID>  payload is {"origin": "...", "plan": <plan document>}

USAGE:
  bus, err := redisbus.New(ctx, "localhost:6379")
  if err != nil {
      log.Fatal(err)
  }
  defer bus.Close()

  unsubscribe := bus.Subscribe(planID, func(s engine.Snapshot) { ... })
*/
package redisbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/sundrop/budget-planner/engine"
	"github.com/sundrop/budget-planner/factory"
)

const channelPrefix = "budget:plan:"

// Bus implements engine.Feed using Redis pub/sub.
type Bus struct {
	client *redis.Client
	wg     sync.WaitGroup

	mu     sync.Mutex
	subs   map[int]*redis.PubSub
	nextID int
}

// envelope is the wire form of one snapshot.
type envelope struct {
	Origin string          `json:"origin"`
	Plan   json.RawMessage `json:"plan"`
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, addr string) (*Bus, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return &Bus{client: client, subs: make(map[int]*redis.PubSub)}, nil
}

// Close ends every remaining subscription, waits for their goroutines and
// closes the client.
func (b *Bus) Close() error {
	b.mu.Lock()
	for id, sub := range b.subs {
		sub.Close()
		delete(b.subs, id)
	}
	b.mu.Unlock()

	b.wg.Wait()
	return b.client.Close()
}

// Channel returns the pub/sub channel for a plan.
func Channel(planID string) string {
	return channelPrefix + planID
}

// Publish sends a full snapshot of the plan.
func (b *Bus) Publish(ctx context.Context, planID string, s engine.Snapshot) error {
	doc, err := factory.EncodePlan(s.Plan)
	if err != nil {
		return fmt.Errorf("failed to encode plan %s: %w", planID, err)
	}
	payload, err := json.Marshal(envelope{Origin: s.Origin, Plan: doc})
	if err != nil {
		return fmt.Errorf("failed to encode plan %s: %w", planID, err)
	}
	if err := b.client.Publish(ctx, Channel(planID), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish plan %s: %w", planID, err)
	}
	return nil
}

// Subscribe starts delivering snapshots of planID to fn on a background
// goroutine. Undecodable payloads are logged and skipped.
func (b *Bus) Subscribe(planID string, fn func(engine.Snapshot)) func() {
	ctx := context.Background()
	sub := b.client.Subscribe(ctx, Channel(planID))
	msgs := sub.Channel()

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = sub
	b.mu.Unlock()

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for msg := range msgs {
			s, err := DecodeSnapshot([]byte(msg.Payload))
			if err != nil {
				log.Printf("[Feed] Dropping snapshot for %s: %v", planID, err)
				continue
			}
			fn(s)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			_, open := b.subs[id]
			delete(b.subs, id)
			b.mu.Unlock()
			if !open {
				return
			}
			if err := sub.Close(); err != nil {
				log.Printf("[Feed] Unsubscribe %s: %v", planID, err)
			}
		})
	}
}

// DecodeSnapshot parses one channel payload.
func DecodeSnapshot(payload []byte) (engine.Snapshot, error) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return engine.Snapshot{}, err
	}
	plan, err := factory.DecodePlan(env.Plan)
	if err != nil {
		return engine.Snapshot{}, err
	}
	return engine.Snapshot{Origin: env.Origin, Plan: plan}, nil
}

var _ engine.Feed = (*Bus)(nil)
