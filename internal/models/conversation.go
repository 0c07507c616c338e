package models

import "time"

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

const ChannelWeb = "web"

type Conversation struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"uid"`
	Channel   string    `json:"channel"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// DefaultConversationID is used when a caller does not name a conversation.
func DefaultConversationID(tenantID string) string {
	return tenantID + "-default"
}
