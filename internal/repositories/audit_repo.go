package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/konman95/mainst.ai/internal/db"
	"github.com/konman95/mainst.ai/internal/models"
)

type AuditRepo struct {
	pool db.Querier
}

func NewAuditRepo(pool db.Querier) *AuditRepo {
	return &AuditRepo{pool: pool}
}

func (r *AuditRepo) Log(ctx context.Context, e *models.AuditEvent) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	var meta []byte
	if len(e.Meta) > 0 {
		var err error
		if meta, err = json.Marshal(e.Meta); err != nil {
			return fmt.Errorf("audit marshal meta: %w", err)
		}
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO audit_events (id, tenant_id, type, message, response, decision, confidence, meta, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, e.ID, e.TenantID, e.Type, e.Message, e.Response, e.Decision, e.Confidence, meta, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (r *AuditRepo) List(ctx context.Context, f AuditFilter) ([]models.AuditEvent, error) {
	q := psql.Select("id", "tenant_id", "type", "message", "response", "decision", "confidence", "meta", "created_at").
		From("audit_events").
		Where(sq.Eq{"tenant_id": f.TenantID})
	if f.Type != nil {
		q = q.Where(sq.Eq{"type": *f.Type})
	}
	q = q.OrderBy("created_at DESC").
		Limit(uint64(ClampLimit(f.Limit))).
		Offset(uint64(max(f.Offset, 0)))

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []models.AuditEvent{}
	for rows.Next() {
		var e models.AuditEvent
		var meta []byte
		if err := rows.Scan(&e.ID, &e.TenantID, &e.Type, &e.Message, &e.Response, &e.Decision,
			&e.Confidence, &meta, &e.CreatedAt); err != nil {
			return nil, err
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &e.Meta); err != nil {
				return nil, fmt.Errorf("audit unmarshal meta: %w", err)
			}
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *AuditRepo) Count(ctx context.Context, tenantID string, since time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM audit_events WHERE tenant_id = $1 AND created_at >= $2
	`, tenantID, since).Scan(&n)
	return n, err
}
