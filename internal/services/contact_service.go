package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/konman95/mainst.ai/internal/models"
	"github.com/konman95/mainst.ai/internal/repositories"
)

type ContactService struct {
	repo repositories.ContactRepository
	log  *zap.Logger
}

func NewContactService(repo repositories.ContactRepository, log *zap.Logger) *ContactService {
	return &ContactService{repo: repo, log: log}
}

func (s *ContactService) List(ctx context.Context, tenantID string, limit, offset int) ([]models.Contact, error) {
	return s.repo.List(ctx, tenantID, limit, offset)
}

func (s *ContactService) Create(ctx context.Context, tenantID string, input models.ContactPatch) (*models.Contact, error) {
	c := &models.Contact{TenantID: tenantID, Tags: []string{}}
	input.ApplyTo(c)
	if c.Status == "" {
		c.Status = models.ContactStatusNew
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}
	return c, nil
}

func (s *ContactService) get(ctx context.Context, tenantID string, id uuid.UUID) (*models.Contact, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ensureOwner(c.TenantID, tenantID); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ContactService) Update(ctx context.Context, tenantID string, id uuid.UUID, patch models.ContactPatch) (*models.Contact, error) {
	c, err := s.get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	patch.ApplyTo(c)
	if c.Status == "" {
		c.Status = models.ContactStatusNew
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("update contact: %w", err)
	}
	return c, nil
}

func (s *ContactService) Delete(ctx context.Context, tenantID string, id uuid.UUID) error {
	if _, err := s.get(ctx, tenantID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("contact deleted", zap.String("tenant_id", tenantID), zap.String("contact_id", id.String()))
	return nil
}
