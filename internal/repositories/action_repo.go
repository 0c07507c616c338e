package repositories

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/konman95/mainst.ai/internal/db"
	"github.com/konman95/mainst.ai/internal/models"
)

var actionColumns = []string{
	"id", "tenant_id", "status", "action", "confidence", "restricted",
	"response", "reason", "message", "contact_id", "conversation_id",
	"created_at", "resolved_at", "kind",
}

type ActionRepo struct {
	pool db.Querier
}

func NewActionRepo(pool db.Querier) *ActionRepo {
	return &ActionRepo{pool: pool}
}

func scanAction(row scanner) (models.Action, error) {
	var a models.Action
	err := row.Scan(&a.ID, &a.TenantID, &a.Status, &a.Action, &a.Confidence, &a.Restricted,
		&a.Response, &a.Reason, &a.Message, &a.ContactID, &a.ConversationID,
		&a.CreatedAt, &a.ResolvedAt, &a.Kind)
	return a, err
}

func (r *ActionRepo) Create(ctx context.Context, a *models.Action) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	if a.Kind == "" {
		a.Kind = models.ActionKindReply
	}

	query, args, err := psql.Insert("actions").
		Columns(actionColumns...).
		Values(a.ID, a.TenantID, a.Status, a.Action, a.Confidence, a.Restricted,
			a.Response, a.Reason, a.Message, a.ContactID, a.ConversationID,
			a.CreatedAt, a.ResolvedAt, a.Kind).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert action: %w", err)
	}
	return nil
}

func (r *ActionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Action, error) {
	query, args, err := psql.Select(actionColumns...).
		From("actions").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}

	a, err := scanAction(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, notFound(err, "action", id)
	}
	return &a, nil
}

func (r *ActionRepo) List(ctx context.Context, f ActionFilter) ([]models.Action, error) {
	q := psql.Select(actionColumns...).
		From("actions").
		Where(sq.Eq{"tenant_id": f.TenantID})
	if f.Status != nil {
		q = q.Where(sq.Eq{"status": *f.Status})
	}
	if f.ContactID != nil {
		q = q.Where(sq.Eq{"contact_id": *f.ContactID})
	}
	if f.Kind != nil {
		q = q.Where(sq.Eq{"kind": *f.Kind})
	}
	if f.Since != nil {
		q = q.Where(sq.GtOrEq{"created_at": *f.Since})
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

	actions := []models.Action{}
	for rows.Next() {
		a, err := scanAction(rows)
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

func (r *ActionRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to string, resolvedAt time.Time) error {
	query, args, err := psql.Update("actions").
		Set("status", to).
		Set("resolved_at", resolvedAt).
		Where(sq.Eq{"id": id, "status": from}).
		ToSql()
	if err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update action status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("action %s: %w", id, ErrStaleStatus)
	}
	return nil
}

func (r *ActionRepo) CountByStatus(ctx context.Context, tenantID string, since time.Time) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT status, count(*) FROM actions
		WHERE tenant_id = $1 AND created_at >= $2
		GROUP BY status
	`, tenantID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
