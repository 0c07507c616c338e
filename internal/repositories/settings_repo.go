package repositories

import (
	"context"

	"github.com/konman95/mainst.ai/internal/db"
	"github.com/konman95/mainst.ai/internal/models"
)

type SettingsRepo struct {
	pool db.Querier
}

func NewSettingsRepo(pool db.Querier) *SettingsRepo {
	return &SettingsRepo{pool: pool}
}

func (r *SettingsRepo) Get(ctx context.Context, tenantID string) (*models.OwnerCoverSettings, error) {
	var s models.OwnerCoverSettings
	err := r.pool.QueryRow(ctx, `
		SELECT mode, confidence_threshold, restricted_topics, quiet_hours_start, quiet_hours_end, quiet_hours_enabled
		FROM owner_cover_settings WHERE tenant_id = $1
	`, tenantID).Scan(&s.Mode, &s.ConfidenceThreshold, &s.RestrictedTopics,
		&s.QuietHoursStart, &s.QuietHoursEnd, &s.QuietHoursEnabled)
	if err != nil {
		return nil, notFound(err, "owner cover settings", tenantID)
	}
	return &s, nil
}

func (r *SettingsRepo) Save(ctx context.Context, tenantID string, s models.OwnerCoverSettings) error {
	topics := s.RestrictedTopics
	if topics == nil {
		topics = []string{}
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO owner_cover_settings
			(tenant_id, mode, confidence_threshold, restricted_topics, quiet_hours_start, quiet_hours_end, quiet_hours_enabled, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (tenant_id) DO UPDATE SET
			mode = EXCLUDED.mode,
			confidence_threshold = EXCLUDED.confidence_threshold,
			restricted_topics = EXCLUDED.restricted_topics,
			quiet_hours_start = EXCLUDED.quiet_hours_start,
			quiet_hours_end = EXCLUDED.quiet_hours_end,
			quiet_hours_enabled = EXCLUDED.quiet_hours_enabled,
			updated_at = now()
	`, tenantID, s.Mode, s.ConfidenceThreshold, topics, s.QuietHoursStart, s.QuietHoursEnd, s.QuietHoursEnabled)
	return err
}
