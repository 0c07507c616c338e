package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/konman95/mainst.ai/internal/http/dto"
	"github.com/konman95/mainst.ai/internal/middleware"
	"github.com/konman95/mainst.ai/internal/services"
)

type ChatHandler struct {
	chatService *services.ChatService
	log         *zap.Logger
}

func NewChatHandler(chatService *services.ChatService, log *zap.Logger) *ChatHandler {
	return &ChatHandler{chatService: chatService, log: log}
}

func (h *ChatHandler) Chat(c *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := decodeStrict(c, &req); err != nil {
		return badRequest(c, "invalid request body")
	}

	reply, err := h.chatService.Reply(c.UserContext(), middleware.GetTenantID(c), req.Message, req.ConversationID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(reply)
}

func (h *ChatHandler) History(c *fiber.Ctx) error {
	messages, err := h.chatService.History(c.UserContext(), middleware.GetTenantID(c), optionalQuery(c, "conversationId"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: messages})
}

func (h *ChatHandler) ManualReply(c *fiber.Ctx) error {
	var req dto.ManualReplyRequest
	if err := decodeStrict(c, &req); err != nil {
		return badRequest(c, "invalid request body")
	}

	if err := h.chatService.ManualReply(c.UserContext(), middleware.GetTenantID(c), req.Response, req.ConversationID); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}
