package events

import "context"

// StreamOwnerCover carries action queue and audit updates for the realtime feed.
const StreamOwnerCover = "events:ownercover"

// Event types
const (
	EventActionCreated = "action_created"
	EventActionUpdated = "action_updated"
	EventAuditLogged   = "audit_logged"
)

type Event struct {
	Type     string         `json:"type"`
	TenantID string         `json:"uid"`
	Payload  map[string]any `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, stream string, handler func(Event)) error
}

// Bus is both ends of a stream.
type Bus interface {
	Publisher
	Subscriber
}
