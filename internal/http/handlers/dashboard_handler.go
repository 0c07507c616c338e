package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/konman95/mainst.ai/internal/http/dto"
	"github.com/konman95/mainst.ai/internal/middleware"
	"github.com/konman95/mainst.ai/internal/services"
)

type DashboardHandler struct {
	dashboardService *services.DashboardService
	log              *zap.Logger
}

func NewDashboardHandler(dashboardService *services.DashboardService, log *zap.Logger) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService, log: log}
}

func (h *DashboardHandler) Summary(c *fiber.Ctx) error {
	summary, err := h.dashboardService.Summary(c.UserContext(), middleware.GetTenantID(c), c.Query("range", services.RangeDay))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: summary})
}
