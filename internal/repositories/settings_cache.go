package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/konman95/mainst.ai/internal/models"
)

// SettingsCache is the subset of the Redis client the settings cache uses.
// *redis.Client satisfies it.
type SettingsCache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// CachedSettingsRepo fronts a SettingsRepository with a Redis read-through
// cache. Cache failures fall back to the underlying repository.
type CachedSettingsRepo struct {
	next SettingsRepository
	rdb  SettingsCache
	ttl  time.Duration
	log  *zap.Logger
}

func NewCachedSettingsRepo(next SettingsRepository, rdb SettingsCache, ttl time.Duration, log *zap.Logger) *CachedSettingsRepo {
	return &CachedSettingsRepo{next: next, rdb: rdb, ttl: ttl, log: log}
}

func settingsKey(tenantID string) string {
	return "ownercover:settings:" + tenantID
}

func (r *CachedSettingsRepo) Get(ctx context.Context, tenantID string) (*models.OwnerCoverSettings, error) {
	raw, err := r.rdb.Get(ctx, settingsKey(tenantID)).Bytes()
	if err == nil {
		var s models.OwnerCoverSettings
		if err := json.Unmarshal(raw, &s); err == nil {
			return &s, nil
		}
		r.log.Warn("discarding corrupt cached settings", zap.String("tenant_id", tenantID))
	} else if !errors.Is(err, redis.Nil) {
		r.log.Warn("settings cache read failed", zap.Error(err))
	}

	s, err := r.next.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(s); err == nil {
		if err := r.rdb.Set(ctx, settingsKey(tenantID), data, r.ttl).Err(); err != nil {
			r.log.Warn("settings cache write failed", zap.Error(err))
		}
	}
	return s, nil
}

func (r *CachedSettingsRepo) Save(ctx context.Context, tenantID string, s models.OwnerCoverSettings) error {
	if err := r.next.Save(ctx, tenantID, s); err != nil {
		return err
	}
	if err := r.rdb.Del(ctx, settingsKey(tenantID)).Err(); err != nil {
		r.log.Warn("settings cache invalidation failed", zap.Error(err))
	}
	return nil
}
