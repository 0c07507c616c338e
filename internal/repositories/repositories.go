// Package repositories defines the storage contracts used by the services
// and implements them on PostgreSQL. The in-memory backend lives in the
// memory subpackage; the backend is chosen once at startup.
package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/konman95/mainst.ai/internal/models"
)

var ErrNotFound = errors.New("not found")

// ErrStaleStatus means a conditional status update found the row in a
// different status than expected.
var ErrStaleStatus = errors.New("status changed concurrently")

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type SettingsRepository interface {
	Get(ctx context.Context, tenantID string) (*models.OwnerCoverSettings, error)
	Save(ctx context.Context, tenantID string, s models.OwnerCoverSettings) error
}

type ActionRepository interface {
	Create(ctx context.Context, a *models.Action) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Action, error)
	List(ctx context.Context, f ActionFilter) ([]models.Action, error)
	// UpdateStatus moves the action from -> to only if it is still in from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to string, resolvedAt time.Time) error
	CountByStatus(ctx context.Context, tenantID string, since time.Time) (map[string]int, error)
}

// AuditRepository is append-only: there is no update or delete.
type AuditRepository interface {
	Log(ctx context.Context, e *models.AuditEvent) error
	List(ctx context.Context, f AuditFilter) ([]models.AuditEvent, error)
	Count(ctx context.Context, tenantID string, since time.Time) (int, error)
}

type ContactRepository interface {
	Create(ctx context.Context, c *models.Contact) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Contact, error)
	List(ctx context.Context, tenantID string, limit, offset int) ([]models.Contact, error)
	Update(ctx context.Context, c *models.Contact) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, tenantID string) (int, error)
	TouchInbound(ctx context.Context, id uuid.UUID, at time.Time) error
	TouchOutbound(ctx context.Context, id uuid.UUID, at time.Time) error
	ListFollowUpCandidates(ctx context.Context, f FollowUpFilter) ([]models.Contact, error)
}

// ConversationRepository keys conversations by (tenant, id): two tenants
// using the same conversation id never share a transcript.
type ConversationRepository interface {
	Get(ctx context.Context, tenantID, id string) (*models.Conversation, error)
	// Touch creates the conversation or bumps its updated_at.
	Touch(ctx context.Context, c models.Conversation) error
	AppendMessage(ctx context.Context, tenantID, conversationID string, m models.Message) error
	// ListMessages returns messages oldest first. limit > 0 keeps only the
	// most recent limit messages.
	ListMessages(ctx context.Context, tenantID, conversationID string, limit int) ([]models.Message, error)
}

type ProfileRepository interface {
	Get(ctx context.Context, tenantID string) (*models.BusinessProfile, error)
	Save(ctx context.Context, tenantID string, p models.BusinessProfile) error
}

type ActionFilter struct {
	TenantID  string
	Status    *string
	ContactID *uuid.UUID
	Kind      *string
	// Since keeps actions created at or after the given time.
	Since  *time.Time
	Limit  int
	Offset int
}

type AuditFilter struct {
	TenantID string
	Type     *string
	Limit    int
	Offset   int
}

// FollowUpFilter selects contacts whose last inbound message is older than
// Cutoff and unanswered, ordered by (last inbound, id). A nil TenantID spans
// all tenants. After resumes the listing past a previously seen contact.
type FollowUpFilter struct {
	TenantID *string
	Cutoff   time.Time
	After    *FollowUpCursor
	Limit    int
}

// FollowUpCursor is the position of the last contact of a page.
type FollowUpCursor struct {
	LastInboundAt time.Time
	ID            uuid.UUID
}

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// ClampLimit applies the default and maximum page size.
func ClampLimit(limit int) int {
	if limit <= 0 || limit > MaxListLimit {
		return DefaultListLimit
	}
	return limit
}

type scanner interface {
	Scan(dest ...any) error
}

func notFound(err error, entity string, id any) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %v: %w", entity, id, ErrNotFound)
	}
	return fmt.Errorf("%s %v: %w", entity, id, err)
}

var (
	_ SettingsRepository     = (*SettingsRepo)(nil)
	_ SettingsRepository     = (*CachedSettingsRepo)(nil)
	_ ProfileRepository      = (*ProfileRepo)(nil)
	_ ActionRepository       = (*ActionRepo)(nil)
	_ AuditRepository        = (*AuditRepo)(nil)
	_ ContactRepository      = (*ContactRepo)(nil)
	_ ConversationRepository = (*ConversationRepo)(nil)
)
