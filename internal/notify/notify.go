// Package notify turns queue events into owner alerts and delivers them to
// the configured channels.
package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/konman95/mainst.ai/internal/events"
	"github.com/konman95/mainst.ai/internal/models"
)

// Severities
const (
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

type Alert struct {
	TenantID string   `json:"uid"`
	Title    string   `json:"title"`
	Detail   string   `json:"detail"`
	Severity string   `json:"severity"`
	ActionID string   `json:"action_id,omitempty"`
	Link     string   `json:"link,omitempty"`
	Tags     []string `json:"tags"`
}

// FromEvent returns an alert for actions that are waiting on the owner.
// Other events produce none.
func FromEvent(e events.Event) (Alert, bool) {
	if e.Type != events.EventActionCreated {
		return Alert{}, false
	}
	if status, _ := e.Payload["status"].(string); status != models.ActionStatusQueued {
		return Alert{}, false
	}

	id, _ := e.Payload["id"].(string)
	message, _ := e.Payload["message"].(string)
	reason, _ := e.Payload["reason"].(string)
	restricted, _ := e.Payload["restricted"].(bool)

	alert := Alert{
		TenantID: e.TenantID,
		Title:    "Approval needed",
		Detail:   reason,
		Severity: SeverityMedium,
		ActionID: id,
		Link:     "/action-queue?action=" + id,
		Tags:     []string{"queue"},
	}
	if message != "" {
		alert.Detail = fmt.Sprintf("%s %q", reason, truncate(message, 140))
	}
	if restricted {
		alert.Severity = SeverityHigh
		alert.Tags = append(alert.Tags, "escalation")
	}
	return alert, true
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}

// Sender delivers an alert to one channel.
type Sender interface {
	Name() string
	Send(ctx context.Context, alert Alert) error
}

// Dispatcher fans alerts out to every sender. A failing sender does not
// stop the others.
type Dispatcher struct {
	senders []Sender
	log     *zap.Logger
}

func NewDispatcher(log *zap.Logger, senders ...Sender) *Dispatcher {
	return &Dispatcher{senders: senders, log: log}
}

func (d *Dispatcher) Len() int {
	return len(d.senders)
}

// Handle is an events subscriber callback.
func (d *Dispatcher) Handle(ctx context.Context) func(events.Event) {
	return func(e events.Event) {
		alert, ok := FromEvent(e)
		if !ok {
			return
		}
		for _, s := range d.senders {
			if err := s.Send(ctx, alert); err != nil {
				d.log.Warn("failed to deliver alert",
					zap.String("sender", s.Name()),
					zap.String("uid", alert.TenantID),
					zap.String("action_id", alert.ActionID),
					zap.Error(err),
				)
				continue
			}
			d.log.Info("alert delivered",
				zap.String("sender", s.Name()),
				zap.String("uid", alert.TenantID),
				zap.String("action_id", alert.ActionID),
			)
		}
	}
}
