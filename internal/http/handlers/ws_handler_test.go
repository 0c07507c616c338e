package handlers

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/konman95/mainst.ai/internal/events"
)

func TestWSHubBroadcastIsTenantScopedAndNonBlocking(t *testing.T) {
	hub := NewWSHub(events.NewMemoryBus(), zap.NewNop())
	mine := &wsClient{send: make(chan []byte, 1)}
	other := &wsClient{send: make(chan []byte, 1)}
	hub.register("tenant-a", mine)
	hub.register("tenant-b", other)
	assert.Equal(t, 1, hub.ConnectionCount("tenant-a"))

	done := make(chan struct{})
	go func() {
		defer close(done)
		// The queue holds one event; the rest are dropped rather than blocking.
		for range 5 {
			hub.broadcast(events.Event{Type: events.EventActionCreated, TenantID: "tenant-a"})
		}
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a full client queue")
	}

	require.Len(t, mine.send, 1)
	var got events.Event
	require.NoError(t, json.Unmarshal(<-mine.send, &got))
	assert.Equal(t, "tenant-a", got.TenantID)
	assert.Empty(t, other.send)

	hub.unregister("tenant-a", mine)
	assert.Zero(t, hub.ConnectionCount("tenant-a"))
	_, open := <-mine.send
	assert.False(t, open, "unregister closes the queue")
}
