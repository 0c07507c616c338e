package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/konman95/mainst.ai/internal/http/dto"
	"github.com/konman95/mainst.ai/internal/middleware"
	"github.com/konman95/mainst.ai/internal/models"
	"github.com/konman95/mainst.ai/internal/services"
)

type ProfileHandler struct {
	profileService *services.ProfileService
	log            *zap.Logger
}

func NewProfileHandler(profileService *services.ProfileService, log *zap.Logger) *ProfileHandler {
	return &ProfileHandler{profileService: profileService, log: log}
}

func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	profile, err := h.profileService.Get(c.UserContext(), middleware.GetTenantID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: profile})
}

func (h *ProfileHandler) SaveProfile(c *fiber.Ctx) error {
	var req models.BusinessProfilePatch
	if err := decodeStrict(c, &req); err != nil {
		return badRequest(c, "invalid profile: "+err.Error())
	}

	profile, err := h.profileService.Replace(c.UserContext(), middleware.GetTenantID(c), req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: profile})
}

// ImportProfile prefills the profile from the business website.
func (h *ProfileHandler) ImportProfile(c *fiber.Ctx) error {
	var req dto.ProfileImportRequest
	if err := decodeStrict(c, &req); err != nil {
		return badRequest(c, "invalid request body")
	}

	profile, site, err := h.profileService.Import(c.UserContext(), middleware.GetTenantID(c), req.URL, req.Overwrite)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: fiber.Map{
		"profile": profile,
		"site":    site,
	}})
}
