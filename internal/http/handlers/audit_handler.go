package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/konman95/mainst.ai/internal/http/dto"
	"github.com/konman95/mainst.ai/internal/middleware"
	"github.com/konman95/mainst.ai/internal/services"
)

type AuditHandler struct {
	auditService *services.AuditService
	log          *zap.Logger
}

func NewAuditHandler(auditService *services.AuditService, log *zap.Logger) *AuditHandler {
	return &AuditHandler{auditService: auditService, log: log}
}

func (h *AuditHandler) ListEvents(c *fiber.Ctx) error {
	p := pageParams(c)
	evts, err := h.auditService.List(c.UserContext(), middleware.GetTenantID(c), optionalQuery(c, "type"), p.limit, p.offset)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: evts})
}
