package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/konman95/mainst.ai/internal/models"
	"github.com/konman95/mainst.ai/internal/repositories"
	"github.com/konman95/mainst.ai/internal/siteparser"
)

// SiteFetcher scrapes a business website.
type SiteFetcher interface {
	FetchAndParse(ctx context.Context, rawURL string) (*siteparser.SiteProfile, error)
}

type ProfileService struct {
	repo    repositories.ProfileRepository
	fetcher SiteFetcher
}

// NewProfileService builds the service. A nil fetcher disables Import.
func NewProfileService(repo repositories.ProfileRepository, fetcher SiteFetcher) *ProfileService {
	return &ProfileService{repo: repo, fetcher: fetcher}
}

// Get returns the tenant's business profile, persisting the defaults on
// first read.
func (s *ProfileService) Get(ctx context.Context, tenantID string) (models.BusinessProfile, error) {
	p, err := s.repo.Get(ctx, tenantID)
	if err == nil {
		return *p, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return models.BusinessProfile{}, err
	}

	def := models.DefaultBusinessProfile()
	def.UpdatedAt = time.Now().UTC()
	if err := s.repo.Save(ctx, tenantID, def); err != nil {
		return models.BusinessProfile{}, fmt.Errorf("save default profile: %w", err)
	}
	return def, nil
}

// Replace applies patch onto the defaults and stores the result.
func (s *ProfileService) Replace(ctx context.Context, tenantID string, patch models.BusinessProfilePatch) (models.BusinessProfile, error) {
	next := patch.ApplyTo(models.DefaultBusinessProfile())
	next.UpdatedAt = time.Now().UTC()
	if err := s.repo.Save(ctx, tenantID, next); err != nil {
		return models.BusinessProfile{}, fmt.Errorf("save profile: %w", err)
	}
	return next, nil
}

// Import scrapes rawURL and copies what it finds into the stored profile.
// Fields the owner already filled in are kept unless overwrite is set.
func (s *ProfileService) Import(ctx context.Context, tenantID, rawURL string, overwrite bool) (models.BusinessProfile, *siteparser.SiteProfile, error) {
	if s.fetcher == nil {
		return models.BusinessProfile{}, nil, validationError("site import is disabled")
	}
	if _, err := siteparser.ValidateURL(rawURL); err != nil {
		return models.BusinessProfile{}, nil, validationError("%v", err)
	}

	current, err := s.Get(ctx, tenantID)
	if err != nil {
		return models.BusinessProfile{}, nil, err
	}

	site, err := s.fetcher.FetchAndParse(ctx, rawURL)
	if err != nil {
		return models.BusinessProfile{}, nil, fmt.Errorf("%w: fetch %s: %v", ErrUpstream, rawURL, err)
	}

	fill := func(dst *string, v string) {
		if v != "" && (overwrite || *dst == "") {
			*dst = v
		}
	}
	fill(&current.Name, site.Name)
	fill(&current.Services, site.Description)
	fill(&current.Hours, site.Hours)
	fill(&current.ServiceArea, site.ServiceArea)

	current.UpdatedAt = time.Now().UTC()
	if err := s.repo.Save(ctx, tenantID, current); err != nil {
		return models.BusinessProfile{}, nil, fmt.Errorf("save profile: %w", err)
	}
	return current, site, nil
}
