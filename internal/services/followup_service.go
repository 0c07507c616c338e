package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/konman95/mainst.ai/internal/config"
	"github.com/konman95/mainst.ai/internal/events"
	"github.com/konman95/mainst.ai/internal/models"
	"github.com/konman95/mainst.ai/internal/ownercover"
	"github.com/konman95/mainst.ai/internal/repositories"
)

// MaxFollowUpsPerSweep bounds how many contacts one sweep touches.
const MaxFollowUpsPerSweep = 50

type SweepResult struct {
	Enabled bool `json:"enabled"`
	Sent    int  `json:"sent"`
	Queued  int  `json:"queued"`
	Skipped int  `json:"skipped"`
}

// FollowUpService nudges contacts whose last message went unanswered.
type FollowUpService struct {
	contactRepo  repositories.ContactRepository
	actionRepo   repositories.ActionRepository
	settingsRepo repositories.SettingsRepository
	transcripts  *TranscriptService
	audit        *AuditService
	evaluator    *ownercover.Evaluator
	publisher    events.Publisher
	cfg          *config.Config
	log          *zap.Logger
	now          func() time.Time
}

func NewFollowUpService(
	contactRepo repositories.ContactRepository,
	actionRepo repositories.ActionRepository,
	settingsRepo repositories.SettingsRepository,
	transcripts *TranscriptService,
	audit *AuditService,
	evaluator *ownercover.Evaluator,
	publisher events.Publisher,
	cfg *config.Config,
	log *zap.Logger,
) *FollowUpService {
	return &FollowUpService{
		contactRepo:  contactRepo,
		actionRepo:   actionRepo,
		settingsRepo: settingsRepo,
		transcripts:  transcripts,
		audit:        audit,
		evaluator:    evaluator,
		publisher:    publisher,
		cfg:          cfg,
		log:          log,
		now:          time.Now,
	}
}

// ContactConversationID is the conversation follow-ups for a contact go to.
func ContactConversationID(contactID uuid.UUID) string {
	return "contact-" + contactID.String()
}

// Sweep processes follow-up candidates. A nil tenantID sweeps every tenant.
// Candidates are paged oldest first until MaxFollowUpsPerSweep of them have
// been sent or queued; skipped contacts do not count toward the limit.
func (s *FollowUpService) Sweep(ctx context.Context, tenantID *string) (*SweepResult, error) {
	result := &SweepResult{Enabled: s.cfg.FollowUpEnabled}
	if !s.cfg.FollowUpEnabled {
		return result, nil
	}

	now := s.now().In(s.cfg.Location())
	filter := repositories.FollowUpFilter{
		TenantID: tenantID,
		Cutoff:   now.Add(-s.cfg.FollowUpAfter()),
		Limit:    MaxFollowUpsPerSweep,
	}
	settingsCache := map[string]models.OwnerCoverSettings{}
	scanned := 0

sweep:
	for {
		candidates, err := s.contactRepo.ListFollowUpCandidates(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("list follow-up candidates: %w", err)
		}
		scanned += len(candidates)

		for i := range candidates {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			c := &candidates[i]

			settings, ok := settingsCache[c.TenantID]
			if !ok {
				settings, err = s.settingsFor(ctx, c.TenantID)
				if err != nil {
					return result, err
				}
				settingsCache[c.TenantID] = settings
			}

			outcome, err := s.followUp(ctx, c, settings, now)
			if err != nil {
				s.log.Error("follow-up failed",
					zap.String("tenant_id", c.TenantID),
					zap.String("contact_id", c.ID.String()),
					zap.Error(err),
				)
				continue
			}
			switch outcome {
			case models.ActionStatusSent:
				result.Sent++
			case models.ActionStatusQueued:
				result.Queued++
			default:
				result.Skipped++
			}
			if result.Sent+result.Queued >= MaxFollowUpsPerSweep {
				break sweep
			}
		}

		if len(candidates) < filter.Limit {
			break
		}
		last := candidates[len(candidates)-1]
		filter.After = &repositories.FollowUpCursor{LastInboundAt: *last.LastInboundAt, ID: last.ID}
	}

	s.log.Info("follow-up sweep finished",
		zap.Int("scanned", scanned),
		zap.Int("sent", result.Sent),
		zap.Int("queued", result.Queued),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

func (s *FollowUpService) settingsFor(ctx context.Context, tenantID string) (models.OwnerCoverSettings, error) {
	stored, err := s.settingsRepo.Get(ctx, tenantID)
	if err == nil {
		return *stored, nil
	}
	if isNotFound(err) {
		return models.DefaultOwnerCoverSettings(), nil
	}
	return models.OwnerCoverSettings{}, err
}

// followUp handles one contact and returns the resulting action status, or
// "" when the contact is skipped.
func (s *FollowUpService) followUp(ctx context.Context, c *models.Contact, settings models.OwnerCoverSettings, now time.Time) (string, error) {
	template := s.cfg.FollowUpTemplate
	decision := s.evaluator.Evaluate(settings, template, now)
	if decision.Action == models.DecisionMonitor {
		return "", nil
	}

	handled, err := s.alreadyHandled(ctx, c)
	if err != nil || handled {
		return "", err
	}

	convID := ContactConversationID(c.ID)
	status := models.ActionStatusQueued
	var resolvedAt *time.Time
	if decision.Action == models.DecisionAutoSend {
		status = models.ActionStatusSent
		resolvedAt = &now
	}

	action := &models.Action{
		TenantID:       c.TenantID,
		Kind:           models.ActionKindFollowUp,
		Status:         status,
		Action:         decision.Action,
		Confidence:     decision.Confidence,
		Restricted:     decision.Restricted,
		Response:       template,
		Reason:         ownercover.Reason(settings, decision),
		Message:        "Follow-up for " + orDefault(c.Name, "contact"),
		ContactID:      &c.ID,
		ConversationID: &convID,
		CreatedAt:      now.UTC(),
		ResolvedAt:     resolvedAt,
	}
	if err := s.actionRepo.Create(ctx, action); err != nil {
		return "", err
	}

	if status == models.ActionStatusSent {
		if err := s.transcripts.Append(ctx, c.TenantID, convID, models.RoleAssistant, template, now); err != nil {
			s.log.Warn("failed to record follow-up message", zap.Error(err))
		}
		if err := s.contactRepo.TouchOutbound(ctx, c.ID, now); err != nil {
			return "", err
		}
	}

	confidence := decision.Confidence
	s.audit.Record(ctx, &models.AuditEvent{
		TenantID:   c.TenantID,
		Type:       models.AuditTypeFollowUp,
		Message:    action.Message,
		Response:   template,
		Decision:   decision.Action,
		Confidence: &confidence,
		Meta:       map[string]any{"actionId": action.ID.String(), "contactId": c.ID.String()},
	})
	publish(ctx, s.publisher, s.log, events.EventActionCreated, c.TenantID, actionPayload(action))
	return status, nil
}

// alreadyHandled reports whether a draft for the contact awaits approval or
// a follow-up, in any status, was created since the contact last wrote.
func (s *FollowUpService) alreadyHandled(ctx context.Context, c *models.Contact) (bool, error) {
	queued := models.ActionStatusQueued
	pending, err := s.actionRepo.List(ctx, repositories.ActionFilter{
		TenantID:  c.TenantID,
		Status:    &queued,
		ContactID: &c.ID,
		Limit:     1,
	})
	if err != nil {
		return false, err
	}
	if len(pending) > 0 {
		return true, nil
	}

	kind := models.ActionKindFollowUp
	earlier, err := s.actionRepo.List(ctx, repositories.ActionFilter{
		TenantID:  c.TenantID,
		ContactID: &c.ID,
		Kind:      &kind,
		Since:     c.LastInboundAt,
		Limit:     1,
	})
	if err != nil {
		return false, err
	}
	return len(earlier) > 0, nil
}
