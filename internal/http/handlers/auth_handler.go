package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/konman95/mainst.ai/internal/auth"
	"github.com/konman95/mainst.ai/internal/config"
	"github.com/konman95/mainst.ai/internal/http/dto"
	"github.com/konman95/mainst.ai/internal/rbac"
)

type AuthHandler struct {
	cfg *config.Config
	log *zap.Logger
}

func NewAuthHandler(cfg *config.Config, log *zap.Logger) *AuthHandler {
	return &AuthHandler{cfg: cfg, log: log}
}

// DevToken mints a signed token for any tenant. It only exists while dev
// tokens are allowed.
func (h *AuthHandler) DevToken(c *fiber.Ctx) error {
	if !h.cfg.AllowDevTokens {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "not found", RequestID: requestID(c)})
	}

	var req dto.DevTokenRequest
	if err := decodeStrict(c, &req); err != nil {
		return badRequest(c, "invalid request body")
	}

	req.TenantID = strings.TrimSpace(req.TenantID)
	if req.TenantID == "" {
		return badRequest(c, "uid is required")
	}
	if req.Role == "" {
		req.Role = rbac.RoleOwner
	}
	if !rbac.IsKnownRole(req.Role) {
		return badRequest(c, "unknown role")
	}

	token, err := auth.GenerateJWT(h.cfg.JWTSecret, req.TenantID, req.Role, h.cfg.JWTExpiration)
	if err != nil {
		h.log.Error("failed to generate jwt", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal server error", RequestID: requestID(c)})
	}

	return c.JSON(dto.AuthResponse{
		Token:    token,
		TenantID: req.TenantID,
		Role:     req.Role,
	})
}
