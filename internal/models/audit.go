package models

import (
	"time"

	"github.com/google/uuid"
)

// Audit event types
const (
	AuditTypeOwnerCover = "owner-cover"
	AuditTypeChat       = "chat"
	AuditTypeSettings   = "settings"
	AuditTypeAction     = "action"
	AuditTypeFollowUp   = "follow-up"
)

// AuditEvent is append-only.
type AuditEvent struct {
	ID         uuid.UUID      `json:"id"`
	TenantID   string         `json:"uid"`
	Type       string         `json:"type"`
	Message    string         `json:"message"`
	Response   string         `json:"response"`
	Decision   string         `json:"decision,omitempty"`
	Confidence *float64       `json:"confidence,omitempty"`
	Meta       map[string]any `json:"meta,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}
