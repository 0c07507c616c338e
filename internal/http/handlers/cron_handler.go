package handlers

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/konman95/mainst.ai/internal/http/dto"
	"github.com/konman95/mainst.ai/internal/middleware"
	"github.com/konman95/mainst.ai/internal/services"
)

const cronSecretHeader = "X-Cron-Secret"

type CronHandler struct {
	followUpService *services.FollowUpService
	secret          string
	log             *zap.Logger
}

func NewCronHandler(followUpService *services.FollowUpService, secret string, log *zap.Logger) *CronHandler {
	return &CronHandler{followUpService: followUpService, secret: secret, log: log}
}

// Run sweeps follow-ups for the calling tenant only.
func (h *CronHandler) Run(c *fiber.Ctx) error {
	got := c.Get(cronSecretHeader)
	if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) != 1 {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Error: "invalid cron secret", RequestID: requestID(c)})
	}

	tenantID := middleware.GetTenantID(c)
	res, err := h.followUpService.Sweep(c.UserContext(), &tenantID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: res})
}
