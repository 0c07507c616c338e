package services

import (
	"context"
	"strings"
	"time"

	"github.com/konman95/mainst.ai/internal/models"
	"github.com/konman95/mainst.ai/internal/repositories"
)

// TranscriptService stores conversation messages on behalf of the chat,
// owner cover, action and follow-up flows.
type TranscriptService struct {
	repo repositories.ConversationRepository
}

func NewTranscriptService(repo repositories.ConversationRepository) *TranscriptService {
	return &TranscriptService{repo: repo}
}

// ResolveID returns the conversation id to use, defaulting to the tenant's
// default conversation.
func ResolveID(tenantID string, conversationID *string) string {
	if conversationID != nil {
		if id := strings.TrimSpace(*conversationID); id != "" {
			return id
		}
	}
	return models.DefaultConversationID(tenantID)
}

// Open creates the tenant's conversation if needed and bumps its activity
// time. Conversation ids are scoped to the tenant.
func (s *TranscriptService) Open(ctx context.Context, tenantID, conversationID string, at time.Time) error {
	return s.repo.Touch(ctx, models.Conversation{
		ID:        conversationID,
		TenantID:  tenantID,
		Channel:   models.ChannelWeb,
		UpdatedAt: at,
	})
}

// Append opens the conversation and adds one message to it.
func (s *TranscriptService) Append(ctx context.Context, tenantID, conversationID, role, content string, at time.Time) error {
	if err := s.Open(ctx, tenantID, conversationID, at); err != nil {
		return err
	}
	return s.repo.AppendMessage(ctx, tenantID, conversationID, models.Message{Role: role, Content: content, CreatedAt: at})
}

// History returns messages oldest first; limit > 0 keeps the most recent.
// An unknown conversation has an empty history.
func (s *TranscriptService) History(ctx context.Context, tenantID, conversationID string, limit int) ([]models.Message, error) {
	return s.repo.ListMessages(ctx, tenantID, conversationID, limit)
}
