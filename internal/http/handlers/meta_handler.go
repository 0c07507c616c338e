package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/konman95/mainst.ai/internal/http/dto"
	"github.com/konman95/mainst.ai/internal/middleware"
	"github.com/konman95/mainst.ai/internal/models"
	"github.com/konman95/mainst.ai/internal/rbac"
)

type MetaHandler struct{}

func NewMetaHandler() *MetaHandler {
	return &MetaHandler{}
}

type MetaOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

var ownerCoverModes = []MetaOption{
	{ID: models.ModeOff, Label: "Off"},
	{ID: models.ModeMonitor, Label: "Monitor only"},
	{ID: models.ModeAuto, Label: "Automatic"},
}

var actionStatuses = []MetaOption{
	{ID: models.ActionStatusQueued, Label: "Waiting for approval"},
	{ID: models.ActionStatusSent, Label: "Sent automatically"},
	{ID: models.ActionStatusApproved, Label: "Approved"},
	{ID: models.ActionStatusDenied, Label: "Denied"},
}

var auditTypes = []MetaOption{
	{ID: models.AuditTypeOwnerCover, Label: "Owner Cover"},
	{ID: models.AuditTypeAction, Label: "Approval queue"},
	{ID: models.AuditTypeSettings, Label: "Settings"},
	{ID: models.AuditTypeChat, Label: "Chat"},
	{ID: models.AuditTypeFollowUp, Label: "Follow-up"},
}

func (h *MetaHandler) GetOwnerCover(c *fiber.Ctx) error {
	return c.JSON(dto.SuccessResponse{OK: true, Data: fiber.Map{
		"modes":    ownerCoverModes,
		"statuses": actionStatuses,
		"defaults": models.DefaultOwnerCoverSettings(),
	}})
}

func (h *MetaHandler) GetAuditTypes(c *fiber.Ctx) error {
	return c.JSON(dto.SuccessResponse{OK: true, Data: auditTypes})
}

// GetPermissions lists what the caller's role may do.
func (h *MetaHandler) GetPermissions(c *fiber.Ctx) error {
	role := middleware.GetRole(c)
	return c.JSON(dto.SuccessResponse{OK: true, Data: fiber.Map{
		"uid":         middleware.GetTenantID(c),
		"role":        role,
		"permissions": rbac.RolePermissions[role],
	}})
}
