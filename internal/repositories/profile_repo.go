package repositories

import (
	"context"

	"github.com/konman95/mainst.ai/internal/db"
	"github.com/konman95/mainst.ai/internal/models"
)

type ProfileRepo struct {
	pool db.Querier
}

func NewProfileRepo(pool db.Querier) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

func (r *ProfileRepo) Get(ctx context.Context, tenantID string) (*models.BusinessProfile, error) {
	var p models.BusinessProfile
	err := r.pool.QueryRow(ctx, `
		SELECT name, services, hours, service_area, pricing_notes, policies, tone, updated_at
		FROM business_profiles WHERE tenant_id = $1
	`, tenantID).Scan(&p.Name, &p.Services, &p.Hours, &p.ServiceArea, &p.PricingNotes, &p.Policies, &p.Tone, &p.UpdatedAt)
	if err != nil {
		return nil, notFound(err, "business profile", tenantID)
	}
	return &p, nil
}

func (r *ProfileRepo) Save(ctx context.Context, tenantID string, p models.BusinessProfile) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO business_profiles (tenant_id, name, services, hours, service_area, pricing_notes, policies, tone, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (tenant_id) DO UPDATE SET
			name = EXCLUDED.name,
			services = EXCLUDED.services,
			hours = EXCLUDED.hours,
			service_area = EXCLUDED.service_area,
			pricing_notes = EXCLUDED.pricing_notes,
			policies = EXCLUDED.policies,
			tone = EXCLUDED.tone,
			updated_at = EXCLUDED.updated_at
	`, tenantID, p.Name, p.Services, p.Hours, p.ServiceArea, p.PricingNotes, p.Policies, p.Tone, p.UpdatedAt)
	return err
}
