package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/konman95/mainst.ai/internal/events"
	"github.com/konman95/mainst.ai/internal/models"
	"github.com/konman95/mainst.ai/internal/repositories"
)

type AuditService struct {
	repo      repositories.AuditRepository
	publisher events.Publisher
	log       *zap.Logger
}

func NewAuditService(repo repositories.AuditRepository, publisher events.Publisher, log *zap.Logger) *AuditService {
	return &AuditService{repo: repo, publisher: publisher, log: log}
}

// Record appends e to the audit trail. A failed write is logged and never
// fails the caller's request.
func (s *AuditService) Record(ctx context.Context, e *models.AuditEvent) {
	if err := s.repo.Log(ctx, e); err != nil {
		s.log.Error("audit write failed",
			zap.String("tenant_id", e.TenantID),
			zap.String("type", e.Type),
			zap.Error(err),
		)
		return
	}

	publish(ctx, s.publisher, s.log, events.EventAuditLogged, e.TenantID, map[string]any{
		"id":        e.ID.String(),
		"type":      e.Type,
		"message":   e.Message,
		"response":  e.Response,
		"decision":  e.Decision,
		"createdAt": e.CreatedAt,
	})
}

func (s *AuditService) List(ctx context.Context, tenantID string, eventType *string, limit, offset int) ([]models.AuditEvent, error) {
	return s.repo.List(ctx, repositories.AuditFilter{
		TenantID: tenantID,
		Type:     eventType,
		Limit:    limit,
		Offset:   offset,
	})
}
