package models

import (
	"time"

	"github.com/google/uuid"
)

// Action statuses
const (
	ActionStatusQueued   = "queued"
	ActionStatusSent     = "sent"
	ActionStatusApproved = "approved"
	ActionStatusDenied   = "denied"
)

// Action kinds: a reply drafted for an inbound message, or a follow-up nudge
// created by the sweep.
const (
	ActionKindReply    = "reply"
	ActionKindFollowUp = "follow-up"
)

// Valid state transitions: from -> []to
var ValidActionTransitions = map[string][]string{
	ActionStatusQueued:   {ActionStatusApproved, ActionStatusDenied},
	ActionStatusSent:     {},
	ActionStatusApproved: {},
	ActionStatusDenied:   {},
}

func IsValidActionTransition(from, to string) bool {
	allowed, ok := ValidActionTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// Action is an action-queue entry. It is never deleted.
type Action struct {
	ID             uuid.UUID  `json:"id"`
	TenantID       string     `json:"uid"`
	Kind           string     `json:"kind"`
	Status         string     `json:"status"`
	Action         string     `json:"action"`
	Confidence     float64    `json:"confidence"`
	Restricted     bool       `json:"restricted"`
	Response       string     `json:"response"`
	Reason         string     `json:"reason"`
	Message        string     `json:"message"`
	ContactID      *uuid.UUID `json:"contactId,omitempty"`
	ConversationID *string    `json:"conversationId,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	ResolvedAt     *time.Time `json:"resolvedAt,omitempty"`
}
