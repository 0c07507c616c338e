package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/konman95/mainst.ai/internal/http/dto"
	"github.com/konman95/mainst.ai/internal/middleware"
	"github.com/konman95/mainst.ai/internal/services"
)

type ActionHandler struct {
	actionService *services.ActionService
	log           *zap.Logger
}

func NewActionHandler(actionService *services.ActionService, log *zap.Logger) *ActionHandler {
	return &ActionHandler{actionService: actionService, log: log}
}

func (h *ActionHandler) ListActions(c *fiber.Ctx) error {
	p := pageParams(c)
	actions, err := h.actionService.List(c.UserContext(), middleware.GetTenantID(c), optionalQuery(c, "status"), p.limit, p.offset)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: actions})
}

func (h *ActionHandler) ResolveAction(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid action id")
	}

	var req dto.ResolveActionRequest
	if err := decodeStrict(c, &req); err != nil {
		return badRequest(c, "invalid request body")
	}

	action, err := h.actionService.Resolve(c.UserContext(), middleware.GetTenantID(c), id, req.Status)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: action})
}
