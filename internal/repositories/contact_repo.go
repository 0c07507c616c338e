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

var contactColumns = []string{
	"id", "tenant_id", "name", "email", "phone", "notes", "tags", "status",
	"last_contact", "last_inbound_at", "last_outbound_at", "created_at", "updated_at",
}

type ContactRepo struct {
	pool db.Querier
}

func NewContactRepo(pool db.Querier) *ContactRepo {
	return &ContactRepo{pool: pool}
}

func scanContact(row scanner) (models.Contact, error) {
	var c models.Contact
	err := row.Scan(&c.ID, &c.TenantID, &c.Name, &c.Email, &c.Phone, &c.Notes, &c.Tags, &c.Status,
		&c.LastContact, &c.LastInboundAt, &c.LastOutboundAt, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *ContactRepo) Create(ctx context.Context, c *models.Contact) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now

	query, args, err := psql.Insert("contacts").
		Columns(contactColumns...).
		Values(c.ID, c.TenantID, c.Name, c.Email, c.Phone, c.Notes, c.Tags, c.Status,
			c.LastContact, c.LastInboundAt, c.LastOutboundAt, c.CreatedAt, c.UpdatedAt).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert contact: %w", err)
	}
	return nil
}

func (r *ContactRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Contact, error) {
	query, args, err := psql.Select(contactColumns...).From("contacts").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	c, err := scanContact(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, notFound(err, "contact", id)
	}
	return &c, nil
}

func (r *ContactRepo) List(ctx context.Context, tenantID string, limit, offset int) ([]models.Contact, error) {
	query, args, err := psql.Select(contactColumns...).
		From("contacts").
		Where(sq.Eq{"tenant_id": tenantID}).
		OrderBy("created_at DESC").
		Limit(uint64(ClampLimit(limit))).
		Offset(uint64(max(offset, 0))).
		ToSql()
	if err != nil {
		return nil, err
	}
	return r.query(ctx, query, args...)
}

func (r *ContactRepo) Update(ctx context.Context, c *models.Contact) error {
	if c.Tags == nil {
		c.Tags = []string{}
	}
	c.UpdatedAt = time.Now().UTC()

	query, args, err := psql.Update("contacts").
		SetMap(map[string]any{
			"name":       c.Name,
			"email":      c.Email,
			"phone":      c.Phone,
			"notes":      c.Notes,
			"tags":       c.Tags,
			"status":     c.Status,
			"updated_at": c.UpdatedAt,
		}).
		Where(sq.Eq{"id": c.ID}).
		ToSql()
	if err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update contact: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("contact %s: %w", c.ID, ErrNotFound)
	}
	return nil
}

func (r *ContactRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("contact %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *ContactRepo) Count(ctx context.Context, tenantID string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM contacts WHERE tenant_id = $1`, tenantID).Scan(&n)
	return n, err
}

func (r *ContactRepo) TouchInbound(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE contacts SET last_inbound_at = $1, last_contact = $1, updated_at = now() WHERE id = $2
	`, at, id)
	return err
}

func (r *ContactRepo) TouchOutbound(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE contacts SET last_outbound_at = $1, last_contact = $1, updated_at = now() WHERE id = $2
	`, at, id)
	return err
}

func (r *ContactRepo) ListFollowUpCandidates(ctx context.Context, f FollowUpFilter) ([]models.Contact, error) {
	q := psql.Select(contactColumns...).
		From("contacts").
		Where(sq.NotEq{"last_inbound_at": nil}).
		Where(sq.Lt{"last_inbound_at": f.Cutoff}).
		Where(sq.Or{
			sq.Eq{"last_outbound_at": nil},
			sq.Expr("last_outbound_at < last_inbound_at"),
		})
	if f.TenantID != nil {
		q = q.Where(sq.Eq{"tenant_id": *f.TenantID})
	}
	if f.After != nil {
		q = q.Where(sq.Expr("(last_inbound_at, id) > (?, ?)", f.After.LastInboundAt, f.After.ID))
	}

	query, args, err := q.OrderBy("last_inbound_at", "id").Limit(uint64(ClampLimit(f.Limit))).ToSql()
	if err != nil {
		return nil, err
	}
	return r.query(ctx, query, args...)
}

func (r *ContactRepo) query(ctx context.Context, query string, args ...any) ([]models.Contact, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := []models.Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}
