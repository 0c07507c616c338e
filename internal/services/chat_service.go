package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/konman95/mainst.ai/internal/models"
)

const (
	FallbackReply = "Thanks for reaching out. How can I help you today?"
	MockModel     = "mock"
	historyWindow = 6
)

const notConfiguredWarning = "HF_TOKEN is not configured."

type ChatReply struct {
	Reply          string `json:"reply"`
	Model          string `json:"model"`
	ConversationID string `json:"conversationId"`
	Warning        string `json:"warning,omitempty"`
}

type ChatService struct {
	profiles    *ProfileService
	transcripts *TranscriptService
	audit       *AuditService
	inference   *InferenceClient
	log         *zap.Logger
	now         func() time.Time
}

func NewChatService(
	profiles *ProfileService,
	transcripts *TranscriptService,
	audit *AuditService,
	inference *InferenceClient,
	log *zap.Logger,
) *ChatService {
	return &ChatService{
		profiles:    profiles,
		transcripts: transcripts,
		audit:       audit,
		inference:   inference,
		log:         log,
		now:         time.Now,
	}
}

// Reply answers a customer message and stores both sides of the exchange.
func (s *ChatService) Reply(ctx context.Context, tenantID, message string, conversationID *string) (*ChatReply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, validationError("message is required")
	}
	convID := ResolveID(tenantID, conversationID)

	history, err := s.transcripts.History(ctx, tenantID, convID, historyWindow)
	if err != nil {
		return nil, err
	}

	reply := &ChatReply{Reply: FallbackReply, Model: MockModel, ConversationID: convID}
	if s.inference.Configured() {
		profile, err := s.profiles.Get(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		text, err := s.inference.Generate(ctx, BuildPrompt(message, profile, history))
		if err != nil {
			return nil, err
		}
		if text != "" {
			reply.Reply = text
		}
		reply.Model = s.inference.Model()
	} else {
		reply.Warning = notConfiguredWarning
	}

	now := s.now().UTC()
	if err := s.transcripts.Append(ctx, tenantID, convID, models.RoleUser, message, now); err != nil {
		return nil, fmt.Errorf("record chat message: %w", err)
	}
	if err := s.transcripts.Append(ctx, tenantID, convID, models.RoleAssistant, reply.Reply, now); err != nil {
		return nil, fmt.Errorf("record chat reply: %w", err)
	}

	s.audit.Record(ctx, &models.AuditEvent{
		TenantID: tenantID,
		Type:     models.AuditTypeChat,
		Message:  message,
		Response: reply.Reply,
		Decision: models.ActionStatusSent,
		Meta:     map[string]any{"conversationId": convID, "model": reply.Model},
	})
	return reply, nil
}

func (s *ChatService) History(ctx context.Context, tenantID string, conversationID *string) ([]models.Message, error) {
	return s.transcripts.History(ctx, tenantID, ResolveID(tenantID, conversationID), 0)
}

// ManualReply records a reply the owner wrote by hand.
func (s *ChatService) ManualReply(ctx context.Context, tenantID, response string, conversationID *string) error {
	response = strings.TrimSpace(response)
	if response == "" {
		return validationError("response is required")
	}
	convID := ResolveID(tenantID, conversationID)

	if err := s.transcripts.Append(ctx, tenantID, convID, models.RoleAssistant, response, s.now().UTC()); err != nil {
		return err
	}

	s.audit.Record(ctx, &models.AuditEvent{
		TenantID: tenantID,
		Type:     models.AuditTypeChat,
		Message:  "Manual reply sent",
		Response: response,
		Decision: "manual",
		Meta:     map[string]any{"conversationId": convID},
	})
	return nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// BuildPrompt renders the assistant prompt from the business profile and
// recent conversation history.
func BuildPrompt(message string, profile models.BusinessProfile, history []models.Message) string {
	const missing = "Not provided"
	lines := []string{
		"You are Main St AI, a calm, professional front-desk assistant for a small business.",
		"You respond clearly, avoid hype, and keep answers concise and helpful.",
		"If the user asks about pricing, ask a clarifying question instead of inventing numbers.",
		"Never claim actions you did not take.",
		"",
		"Business name: " + orDefault(profile.Name, "Main St AI client"),
		"Services: " + orDefault(profile.Services, missing),
		"Hours: " + orDefault(profile.Hours, missing),
		"Service area: " + orDefault(profile.ServiceArea, missing),
		"Pricing notes: " + orDefault(profile.PricingNotes, missing),
		"Policies: " + orDefault(profile.Policies, missing),
		"Tone guidance: " + orDefault(profile.Tone, models.DefaultTone),
	}

	if len(history) > 0 {
		lines = append(lines, "", "Conversation history:")
		for _, m := range history {
			lines = append(lines, strings.ToUpper(m.Role)+": "+m.Content)
		}
	}

	lines = append(lines, "", "Customer message: "+message, "Assistant response:")
	return strings.Join(lines, "\n")
}
