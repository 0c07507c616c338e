package handlers

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/konman95/mainst.ai/internal/events"
	"github.com/konman95/mainst.ai/internal/middleware"
)

const (
	wsSendBuffer   = 32
	wsWriteTimeout = 10 * time.Second
)

// wsClient owns one socket. Only its writer goroutine writes to conn.
type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// WSHub fans owner cover events out to the tenant's open sockets.
type WSHub struct {
	subscriber  events.Subscriber
	log         *zap.Logger
	mu          sync.Mutex
	connections map[string][]*wsClient
}

func NewWSHub(subscriber events.Subscriber, log *zap.Logger) *WSHub {
	return &WSHub{
		subscriber:  subscriber,
		log:         log,
		connections: make(map[string][]*wsClient),
	}
}

func (h *WSHub) Start(ctx context.Context) error {
	return h.subscriber.Subscribe(ctx, events.StreamOwnerCover, h.broadcast)
}

// broadcast queues the event for each of the tenant's sockets. A socket
// whose queue is full misses the event.
func (h *WSHub) broadcast(event events.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.connections[event.TenantID] {
		select {
		case client.send <- data:
		default:
			h.log.Debug("ws client behind, dropping event", zap.String("uid", event.TenantID), zap.String("type", event.Type))
		}
	}
}

func (h *WSHub) ConnectionCount(tenantID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.connections[tenantID])
}

// WSUpgradeMiddleware checks for websocket upgrade
func WSUpgradeMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

func (h *WSHub) register(tenantID string, client *wsClient) {
	h.mu.Lock()
	h.connections[tenantID] = append(h.connections[tenantID], client)
	h.mu.Unlock()
}

// unregister removes the client and closes its queue, which stops its writer.
func (h *WSHub) unregister(tenantID string, client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.connections[tenantID]
	for i, c := range clients {
		if c == client {
			h.connections[tenantID] = append(clients[:i], clients[i+1:]...)
			close(client.send)
			break
		}
	}
	if len(h.connections[tenantID]) == 0 {
		delete(h.connections, tenantID)
	}
}

func (h *WSHub) writeLoop(tenantID string, client *wsClient) {
	for data := range client.send {
		_ = client.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := client.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.log.Debug("ws write failed", zap.String("uid", tenantID), zap.Error(err))
			_ = client.conn.Close()
			// Drain so broadcast never sees a full queue for a dead socket.
			for range client.send {
			}
			return
		}
	}
}

func (h *WSHub) HandleWS(conn *websocket.Conn) {
	tenantID, _ := conn.Locals(middleware.CtxTenantID).(string)
	if tenantID == "" {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"unauthorized"}`))
		conn.Close()
		return
	}

	client := &wsClient{conn: conn, send: make(chan []byte, wsSendBuffer)}
	h.register(tenantID, client)

	written := make(chan struct{})
	go func() {
		defer close(written)
		h.writeLoop(tenantID, client)
	}()

	defer func() {
		h.unregister(tenantID, client)
		<-written
		conn.Close()
	}()

	// Read loop (keep alive / pings)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
