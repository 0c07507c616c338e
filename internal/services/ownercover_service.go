package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/konman95/mainst.ai/internal/config"
	"github.com/konman95/mainst.ai/internal/events"
	"github.com/konman95/mainst.ai/internal/models"
	"github.com/konman95/mainst.ai/internal/ownercover"
	"github.com/konman95/mainst.ai/internal/repositories"
)

const (
	DraftResponse  = "Draft response created by Owner Cover."
	InboundSummary = "Inbound handled by Owner Cover."
)

type InboundRequest struct {
	Text           string
	ContactID      *uuid.UUID
	ConversationID *string
}

type InboundResult struct {
	models.Decision
	ActionID uuid.UUID
	Summary  string
}

type OwnerCoverService struct {
	settingsRepo repositories.SettingsRepository
	actionRepo   repositories.ActionRepository
	contactRepo  repositories.ContactRepository
	transcripts  *TranscriptService
	audit        *AuditService
	evaluator    *ownercover.Evaluator
	publisher    events.Publisher
	cfg          *config.Config
	log          *zap.Logger
	now          func() time.Time
}

func NewOwnerCoverService(
	settingsRepo repositories.SettingsRepository,
	actionRepo repositories.ActionRepository,
	contactRepo repositories.ContactRepository,
	transcripts *TranscriptService,
	audit *AuditService,
	evaluator *ownercover.Evaluator,
	publisher events.Publisher,
	cfg *config.Config,
	log *zap.Logger,
) *OwnerCoverService {
	return &OwnerCoverService{
		settingsRepo: settingsRepo,
		actionRepo:   actionRepo,
		contactRepo:  contactRepo,
		transcripts:  transcripts,
		audit:        audit,
		evaluator:    evaluator,
		publisher:    publisher,
		cfg:          cfg,
		log:          log,
		now:          time.Now,
	}
}

// load returns the tenant's settings, or the defaults when none are stored.
func (s *OwnerCoverService) load(ctx context.Context, tenantID string) (models.OwnerCoverSettings, bool, error) {
	stored, err := s.settingsRepo.Get(ctx, tenantID)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.DefaultOwnerCoverSettings(), false, nil
	}
	if err != nil {
		return models.OwnerCoverSettings{}, false, fmt.Errorf("load owner cover settings: %w", err)
	}
	return *stored, true, nil
}

// GetSettings returns the tenant's settings, persisting the defaults on
// first read.
func (s *OwnerCoverService) GetSettings(ctx context.Context, tenantID string) (models.OwnerCoverSettings, error) {
	settings, found, err := s.load(ctx, tenantID)
	if err != nil || found {
		return settings, err
	}
	if err := s.settingsRepo.Save(ctx, tenantID, settings); err != nil {
		return settings, fmt.Errorf("save default settings: %w", err)
	}
	return settings, nil
}

// ReplaceSettings applies patch onto the defaults and stores the result.
func (s *OwnerCoverService) ReplaceSettings(ctx context.Context, tenantID string, patch models.OwnerCoverSettingsPatch) (models.OwnerCoverSettings, error) {
	return s.store(ctx, tenantID, patch.ApplyTo(models.DefaultOwnerCoverSettings()), "replace")
}

// PatchSettings applies patch onto the stored settings.
func (s *OwnerCoverService) PatchSettings(ctx context.Context, tenantID string, patch models.OwnerCoverSettingsPatch) (models.OwnerCoverSettings, error) {
	current, _, err := s.load(ctx, tenantID)
	if err != nil {
		return models.OwnerCoverSettings{}, err
	}
	return s.store(ctx, tenantID, patch.ApplyTo(current), "patch")
}

func (s *OwnerCoverService) store(ctx context.Context, tenantID string, next models.OwnerCoverSettings, op string) (models.OwnerCoverSettings, error) {
	next.Mode = strings.ToLower(strings.TrimSpace(next.Mode))
	next.QuietHoursStart = strings.TrimSpace(next.QuietHoursStart)
	next.QuietHoursEnd = strings.TrimSpace(next.QuietHoursEnd)
	next.RestrictedTopics = NormalizeTopics(next.RestrictedTopics)
	if err := ValidateSettings(next); err != nil {
		return models.OwnerCoverSettings{}, err
	}

	if err := s.settingsRepo.Save(ctx, tenantID, next); err != nil {
		return models.OwnerCoverSettings{}, fmt.Errorf("save owner cover settings: %w", err)
	}

	s.audit.Record(ctx, &models.AuditEvent{
		TenantID: tenantID,
		Type:     models.AuditTypeSettings,
		Message:  "Owner Cover settings updated",
		Decision: next.Mode,
		Meta: map[string]any{
			"op":                  op,
			"mode":                next.Mode,
			"confidenceThreshold": next.ConfidenceThreshold,
			"restrictedTopics":    next.RestrictedTopics,
			"quietHoursEnabled":   next.QuietHoursEnabled,
		},
	})
	return next, nil
}

// NormalizeTopics trims, lower-cases and de-duplicates topics, dropping
// empty entries. Order of first occurrence is kept.
func NormalizeTopics(topics []string) []string {
	out := make([]string, 0, len(topics))
	for _, t := range topics {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func ValidateSettings(s models.OwnerCoverSettings) error {
	if !models.IsValidMode(s.Mode) {
		return validationError("mode must be one of off, monitor, auto")
	}
	if math.IsNaN(s.ConfidenceThreshold) || s.ConfidenceThreshold < 0 || s.ConfidenceThreshold > 1 {
		return validationError("confidenceThreshold must be between 0 and 1")
	}
	if _, ok := ownercover.ParseClock(s.QuietHoursStart); !ok {
		return validationError("quietHoursStart must be HH:MM")
	}
	if _, ok := ownercover.ParseClock(s.QuietHoursEnd); !ok {
		return validationError("quietHoursEnd must be HH:MM")
	}
	return nil
}

// HandleInbound evaluates an inbound message, queues or sends the draft,
// and records the decision.
func (s *OwnerCoverService) HandleInbound(ctx context.Context, tenantID string, req InboundRequest) (*InboundResult, error) {
	var contact *models.Contact
	if req.ContactID != nil {
		c, err := s.contactRepo.GetByID(ctx, *req.ContactID)
		if err != nil {
			return nil, err
		}
		if err := ensureOwner(c.TenantID, tenantID); err != nil {
			return nil, err
		}
		contact = c
	}

	settings, _, err := s.load(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	now := s.now().In(s.cfg.Location())
	decision := s.evaluator.Evaluate(settings, req.Text, now)
	autoSend := decision.Action == models.DecisionAutoSend

	if req.ConversationID != nil {
		convID := ResolveID(tenantID, req.ConversationID)
		req.ConversationID = &convID
		if err := s.transcripts.Append(ctx, tenantID, convID, models.RoleUser, req.Text, now); err != nil {
			return nil, fmt.Errorf("record inbound message: %w", err)
		}
	}

	status := models.ActionStatusQueued
	var resolvedAt *time.Time
	if autoSend {
		status = models.ActionStatusSent
		resolvedAt = &now
	}
	action := &models.Action{
		TenantID:       tenantID,
		Status:         status,
		Action:         decision.Action,
		Confidence:     decision.Confidence,
		Restricted:     decision.Restricted,
		Response:       DraftResponse,
		Reason:         ownercover.Reason(settings, decision),
		Message:        req.Text,
		ContactID:      req.ContactID,
		ConversationID: req.ConversationID,
		CreatedAt:      now.UTC(),
		ResolvedAt:     resolvedAt,
	}
	if err := s.actionRepo.Create(ctx, action); err != nil {
		return nil, fmt.Errorf("create action: %w", err)
	}

	confidence := decision.Confidence
	s.audit.Record(ctx, &models.AuditEvent{
		TenantID:   tenantID,
		Type:       models.AuditTypeOwnerCover,
		Message:    req.Text,
		Response:   DraftResponse,
		Decision:   decision.Action,
		Confidence: &confidence,
		Meta: map[string]any{
			"actionId":   action.ID.String(),
			"restricted": decision.Restricted,
			"quietHours": decision.QuietHours,
		},
	})

	if contact != nil {
		if err := s.contactRepo.TouchInbound(ctx, contact.ID, now); err != nil {
			s.log.Warn("failed to stamp contact inbound", zap.String("contact_id", contact.ID.String()), zap.Error(err))
		}
		if autoSend {
			if err := s.contactRepo.TouchOutbound(ctx, contact.ID, now); err != nil {
				s.log.Warn("failed to stamp contact outbound", zap.String("contact_id", contact.ID.String()), zap.Error(err))
			}
		}
	}

	if autoSend && req.ConversationID != nil {
		if err := s.transcripts.Append(ctx, tenantID, *req.ConversationID, models.RoleAssistant, DraftResponse, now); err != nil {
			s.log.Warn("failed to record auto-sent reply", zap.Error(err))
		}
	}

	publish(ctx, s.publisher, s.log, events.EventActionCreated, tenantID, actionPayload(action))

	s.log.Info("inbound evaluated",
		zap.String("tenant_id", tenantID),
		zap.String("action", decision.Action),
		zap.Float64("confidence", decision.Confidence),
		zap.Bool("restricted", decision.Restricted),
		zap.Bool("quiet_hours", decision.QuietHours),
	)

	return &InboundResult{Decision: decision, ActionID: action.ID, Summary: InboundSummary}, nil
}

func actionPayload(a *models.Action) map[string]any {
	payload := map[string]any{
		"id":         a.ID.String(),
		"kind":       a.Kind,
		"status":     a.Status,
		"action":     a.Action,
		"confidence": a.Confidence,
		"restricted": a.Restricted,
		"reason":     a.Reason,
		"message":    a.Message,
		"createdAt":  a.CreatedAt,
	}
	if a.ResolvedAt != nil {
		payload["resolvedAt"] = *a.ResolvedAt
	}
	return payload
}
