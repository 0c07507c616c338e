package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/konman95/mainst.ai/internal/http/dto"
	"github.com/konman95/mainst.ai/internal/middleware"
	"github.com/konman95/mainst.ai/internal/models"
	"github.com/konman95/mainst.ai/internal/services"
)

type ContactHandler struct {
	contactService *services.ContactService
	log            *zap.Logger
}

func NewContactHandler(contactService *services.ContactService, log *zap.Logger) *ContactHandler {
	return &ContactHandler{contactService: contactService, log: log}
}

func (h *ContactHandler) ListContacts(c *fiber.Ctx) error {
	p := pageParams(c)
	contacts, err := h.contactService.List(c.UserContext(), middleware.GetTenantID(c), p.limit, p.offset)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: contacts})
}

func (h *ContactHandler) CreateContact(c *fiber.Ctx) error {
	var req models.ContactPatch
	if err := decodeStrict(c, &req); err != nil {
		return badRequest(c, "invalid contact: "+err.Error())
	}

	contact, err := h.contactService.Create(c.UserContext(), middleware.GetTenantID(c), req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: contact})
}

func (h *ContactHandler) UpdateContact(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid contact id")
	}

	var req models.ContactPatch
	if err := decodeStrict(c, &req); err != nil {
		return badRequest(c, "invalid contact: "+err.Error())
	}

	contact, err := h.contactService.Update(c.UserContext(), middleware.GetTenantID(c), id, req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: contact})
}

func (h *ContactHandler) DeleteContact(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid contact id")
	}

	if err := h.contactService.Delete(c.UserContext(), middleware.GetTenantID(c), id); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}
