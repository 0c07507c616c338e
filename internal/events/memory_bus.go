package events

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// subscriberBuffer is how many events a slow subscriber may fall behind
// before further events are dropped for it.
const subscriberBuffer = 64

// MemoryBus delivers events in-process. It is used when Redis is not
// configured; events do not cross process boundaries. Each subscriber runs
// on its own goroutine, so Publish never waits on a handler.
type MemoryBus struct {
	mu   sync.RWMutex
	subs map[string]map[uuid.UUID]chan Event
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: map[string]map[uuid.UUID]chan Event{}}
}

func (b *MemoryBus) Publish(_ context.Context, stream string, event Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs[stream] {
		select {
		case ch <- event:
		default:
			// Subscriber is behind; like Redis pub/sub, the event is lost for it.
		}
	}
	return nil
}

// Subscribe registers handler until ctx is cancelled.
func (b *MemoryBus) Subscribe(ctx context.Context, stream string, handler func(Event)) error {
	id := uuid.New()
	ch := make(chan Event, subscriberBuffer)

	b.mu.Lock()
	if b.subs[stream] == nil {
		b.subs[stream] = map[uuid.UUID]chan Event{}
	}
	b.subs[stream][id] = ch
	b.mu.Unlock()

	go func() {
		defer func() {
			b.mu.Lock()
			delete(b.subs[stream], id)
			b.mu.Unlock()
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case event := <-ch:
				handler(event)
			}
		}
	}()
	return nil
}
