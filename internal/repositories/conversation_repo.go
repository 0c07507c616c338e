package repositories

import (
	"context"
	"fmt"

	"github.com/konman95/mainst.ai/internal/db"
	"github.com/konman95/mainst.ai/internal/models"
)

type ConversationRepo struct {
	pool db.Querier
}

func NewConversationRepo(pool db.Querier) *ConversationRepo {
	return &ConversationRepo{pool: pool}
}

func (r *ConversationRepo) Get(ctx context.Context, tenantID, id string) (*models.Conversation, error) {
	var c models.Conversation
	err := r.pool.QueryRow(ctx, `
		SELECT id, tenant_id, channel, updated_at FROM conversations WHERE tenant_id = $1 AND id = $2
	`, tenantID, id).Scan(&c.ID, &c.TenantID, &c.Channel, &c.UpdatedAt)
	if err != nil {
		return nil, notFound(err, "conversation", id)
	}
	return &c, nil
}

func (r *ConversationRepo) Touch(ctx context.Context, c models.Conversation) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO conversations (id, tenant_id, channel, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (tenant_id, id) DO UPDATE SET updated_at = EXCLUDED.updated_at
	`, c.ID, c.TenantID, c.Channel, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("touch conversation: %w", err)
	}
	return nil
}

func (r *ConversationRepo) AppendMessage(ctx context.Context, tenantID, conversationID string, m models.Message) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO messages (tenant_id, conversation_id, role, content, created_at) VALUES ($1, $2, $3, $4, $5)
	`, tenantID, conversationID, m.Role, m.Content, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

func (r *ConversationRepo) ListMessages(ctx context.Context, tenantID, conversationID string, limit int) ([]models.Message, error) {
	query := `SELECT role, content, created_at FROM messages WHERE tenant_id = $1 AND conversation_id = $2 ORDER BY created_at ASC, id ASC`
	args := []any{tenantID, conversationID}
	if limit > 0 {
		query = `
			SELECT role, content, created_at FROM (
				SELECT id, role, content, created_at FROM messages
				WHERE tenant_id = $1 AND conversation_id = $2 ORDER BY created_at DESC, id DESC LIMIT $3
			) recent ORDER BY created_at ASC, id ASC`
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
