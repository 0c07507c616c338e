package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/konman95/mainst.ai/internal/http/dto"
	"github.com/konman95/mainst.ai/internal/middleware"
	"github.com/konman95/mainst.ai/internal/models"
	"github.com/konman95/mainst.ai/internal/services"
)

type OwnerCoverHandler struct {
	ownerCoverService *services.OwnerCoverService
	log               *zap.Logger
}

func NewOwnerCoverHandler(ownerCoverService *services.OwnerCoverService, log *zap.Logger) *OwnerCoverHandler {
	return &OwnerCoverHandler{ownerCoverService: ownerCoverService, log: log}
}

func (h *OwnerCoverHandler) GetSettings(c *fiber.Ctx) error {
	settings, err := h.ownerCoverService.GetSettings(c.UserContext(), middleware.GetTenantID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(settings)
}

// ReplaceSettings applies the provided fields onto the defaults.
func (h *OwnerCoverHandler) ReplaceSettings(c *fiber.Ctx) error {
	var patch models.OwnerCoverSettingsPatch
	if err := decodeStrict(c, &patch); err != nil {
		return badRequest(c, "invalid settings: "+err.Error())
	}

	settings, err := h.ownerCoverService.ReplaceSettings(c.UserContext(), middleware.GetTenantID(c), patch)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(settings)
}

// PatchSettings applies the provided fields onto the stored settings.
func (h *OwnerCoverHandler) PatchSettings(c *fiber.Ctx) error {
	var patch models.OwnerCoverSettingsPatch
	if err := decodeStrict(c, &patch); err != nil {
		return badRequest(c, "invalid settings: "+err.Error())
	}

	settings, err := h.ownerCoverService.PatchSettings(c.UserContext(), middleware.GetTenantID(c), patch)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(settings)
}

// HandleInbound evaluates an inbound message. A body that is not a JSON
// object is evaluated as empty text; a present but unusable contactId or
// conversationId is rejected.
func (h *OwnerCoverHandler) HandleInbound(c *fiber.Ctx) error {
	req, incoming, err := parseInbound(c.Body())
	if err != nil {
		return badRequest(c, err.Error())
	}

	res, err := h.ownerCoverService.HandleInbound(c.UserContext(), middleware.GetTenantID(c), req)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(dto.InboundResponse{
		OK:         true,
		Action:     res.Action,
		Confidence: res.Confidence,
		Restricted: res.Restricted,
		QuietHours: res.QuietHours,
		Summary:    res.Summary,
		Incoming:   incoming,
		ActionID:   res.ActionID,
	})
}

// parseInbound reads each field on its own so a bad optional field never
// discards the text.
func parseInbound(body []byte) (services.InboundRequest, map[string]any, error) {
	incoming := map[string]any{}
	if err := json.Unmarshal(body, &incoming); err != nil || incoming == nil {
		return services.InboundRequest{}, map[string]any{}, nil
	}

	req := services.InboundRequest{Text: inboundText(incoming["text"])}

	switch v := incoming["contactId"].(type) {
	case nil:
	case string:
		if v = strings.TrimSpace(v); v != "" {
			id, err := uuid.Parse(v)
			if err != nil {
				return req, incoming, fmt.Errorf("invalid contactId %q", v)
			}
			req.ContactID = &id
		}
	default:
		return req, incoming, errors.New("contactId must be a string")
	}

	switch v := incoming["conversationId"].(type) {
	case nil:
	case string:
		req.ConversationID = &v
	default:
		return req, incoming, errors.New("conversationId must be a string")
	}

	return req, incoming, nil
}

// inboundText coerces the text field to a string. Falsy JSON values read as
// empty; objects and arrays keep their JSON form so topics inside them still
// match.
func inboundText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return ""
	case float64:
		if t == 0 {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		raw, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(raw)
	}
}
