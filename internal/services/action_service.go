package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/konman95/mainst.ai/internal/events"
	"github.com/konman95/mainst.ai/internal/models"
	"github.com/konman95/mainst.ai/internal/repositories"
)

type ActionService struct {
	actionRepo  repositories.ActionRepository
	contactRepo repositories.ContactRepository
	transcripts *TranscriptService
	audit       *AuditService
	publisher   events.Publisher
	log         *zap.Logger
	now         func() time.Time
}

func NewActionService(
	actionRepo repositories.ActionRepository,
	contactRepo repositories.ContactRepository,
	transcripts *TranscriptService,
	audit *AuditService,
	publisher events.Publisher,
	log *zap.Logger,
) *ActionService {
	return &ActionService{
		actionRepo:  actionRepo,
		contactRepo: contactRepo,
		transcripts: transcripts,
		audit:       audit,
		publisher:   publisher,
		log:         log,
		now:         time.Now,
	}
}

func (s *ActionService) List(ctx context.Context, tenantID string, status *string, limit, offset int) ([]models.Action, error) {
	return s.actionRepo.List(ctx, repositories.ActionFilter{
		TenantID: tenantID,
		Status:   status,
		Limit:    limit,
		Offset:   offset,
	})
}

// Resolve approves or denies a queued action.
func (s *ActionService) Resolve(ctx context.Context, tenantID string, id uuid.UUID, status string) (*models.Action, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status == "" {
		return nil, validationError("status is required")
	}
	if status != models.ActionStatusApproved && status != models.ActionStatusDenied {
		return nil, validationError("status must be approved or denied")
	}

	action, err := s.actionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ensureOwner(action.TenantID, tenantID); err != nil {
		return nil, err
	}
	if !models.IsValidActionTransition(action.Status, status) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, action.Status, status)
	}

	from := action.Status
	now := s.now().UTC()
	if err := s.actionRepo.UpdateStatus(ctx, id, from, status, now); err != nil {
		if errors.Is(err, repositories.ErrStaleStatus) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
		}
		return nil, err
	}
	action.Status = status
	action.ResolvedAt = &now

	if status == models.ActionStatusApproved {
		s.deliver(ctx, action, now)
	}

	s.audit.Record(ctx, &models.AuditEvent{
		TenantID: tenantID,
		Type:     models.AuditTypeAction,
		Message:  action.Message,
		Response: action.Response,
		Decision: status,
		Meta: map[string]any{
			"actionId": action.ID.String(),
			"from":     from,
			"to":       status,
		},
	})

	publish(ctx, s.publisher, s.log, events.EventActionUpdated, tenantID, actionPayload(action))
	return action, nil
}

// deliver records an approved draft as sent on its conversation and contact.
func (s *ActionService) deliver(ctx context.Context, a *models.Action, at time.Time) {
	if a.ConversationID != nil {
		if err := s.transcripts.Append(ctx, a.TenantID, *a.ConversationID, models.RoleAssistant, a.Response, at); err != nil {
			s.log.Warn("failed to record approved reply", zap.String("action_id", a.ID.String()), zap.Error(err))
		}
	}
	if a.ContactID != nil {
		if err := s.contactRepo.TouchOutbound(ctx, *a.ContactID, at); err != nil && !errors.Is(err, repositories.ErrNotFound) {
			s.log.Warn("failed to stamp contact outbound", zap.String("action_id", a.ID.String()), zap.Error(err))
		}
	}
}
