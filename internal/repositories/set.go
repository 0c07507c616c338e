package repositories

import (
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/konman95/mainst.ai/internal/db"
)

// Set bundles one repository per entity for a single storage backend.
type Set struct {
	Settings      SettingsRepository
	Actions       ActionRepository
	Audit         AuditRepository
	Contacts      ContactRepository
	Conversations ConversationRepository
	Profiles      ProfileRepository
}

func NewPostgresSet(pool db.Querier) Set {
	return Set{
		Settings:      NewSettingsRepo(pool),
		Actions:       NewActionRepo(pool),
		Audit:         NewAuditRepo(pool),
		Contacts:      NewContactRepo(pool),
		Conversations: NewConversationRepo(pool),
		Profiles:      NewProfileRepo(pool),
	}
}

// WithSettingsCache fronts settings reads with redis. A nil client leaves
// the set unchanged.
func (s Set) WithSettingsCache(rdb *redis.Client, ttl time.Duration, log *zap.Logger) Set {
	if rdb == nil {
		return s
	}
	s.Settings = NewCachedSettingsRepo(s.Settings, rdb, ttl, log)
	return s
}
