package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type collected struct {
	mu     sync.Mutex
	events []Event
}

func (c *collected) add(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func (c *collected) snapshot() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Event(nil), c.events...)
}

func subscriberCount(b *MemoryBus, stream string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[stream])
}

func TestMemoryBus_DeliversToStreamSubscribers(t *testing.T) {
	bus := NewMemoryBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := &collected{}
	require.NoError(t, bus.Subscribe(ctx, StreamOwnerCover, got.add))
	require.NoError(t, bus.Subscribe(ctx, "other", func(e Event) { t.Error("unexpected delivery on other stream") }))

	require.NoError(t, bus.Publish(ctx, StreamOwnerCover, Event{Type: EventActionCreated, TenantID: "a"}))

	require.Eventually(t, func() bool { return len(got.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	events := got.snapshot()
	assert.Equal(t, EventActionCreated, events[0].Type)
	assert.Equal(t, "a", events[0].TenantID)
}

func TestMemoryBus_SlowSubscriberDoesNotBlockPublish(t *testing.T) {
	bus := NewMemoryBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	release := make(chan struct{})
	defer close(release)
	require.NoError(t, bus.Subscribe(ctx, StreamOwnerCover, func(Event) { <-release }))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range subscriberBuffer * 2 {
			_ = bus.Publish(ctx, StreamOwnerCover, Event{Type: EventAuditLogged})
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a stalled subscriber")
	}
}

func TestMemoryBus_UnsubscribesOnCancel(t *testing.T) {
	bus := NewMemoryBus()
	ctx, cancel := context.WithCancel(context.Background())

	got := &collected{}
	require.NoError(t, bus.Subscribe(ctx, StreamOwnerCover, got.add))
	cancel()

	assert.Eventually(t, func() bool { return subscriberCount(bus, StreamOwnerCover) == 0 }, time.Second, 5*time.Millisecond)

	require.NoError(t, bus.Publish(context.Background(), StreamOwnerCover, Event{Type: EventAuditLogged}))
	assert.Empty(t, got.snapshot())
}
