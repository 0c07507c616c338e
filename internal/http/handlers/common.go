package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/konman95/mainst.ai/internal/http/dto"
	"github.com/konman95/mainst.ai/internal/middleware"
	"github.com/konman95/mainst.ai/internal/repositories"
	"github.com/konman95/mainst.ai/internal/services"
)

// decodeStrict decodes the request body into v, rejecting unknown fields.
// An empty body decodes to the zero value.
func decodeStrict(c *fiber.Ctx, v any) error {
	body := bytes.TrimSpace(c.Body())
	if len(body) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: msg, RequestID: requestID(c)})
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals(middleware.CtxRequestID).(string)
	return id
}

// respondError maps service and repository errors onto HTTP statuses.
func respondError(c *fiber.Ctx, log *zap.Logger, err error) error {
	status := fiber.StatusInternalServerError
	msg := "internal error"

	switch {
	case errors.Is(err, services.ErrValidation):
		status = fiber.StatusBadRequest
		msg = strings.TrimPrefix(err.Error(), services.ErrValidation.Error()+": ")
	case errors.Is(err, repositories.ErrNotFound):
		status, msg = fiber.StatusNotFound, "not found"
	case errors.Is(err, services.ErrForbidden):
		status, msg = fiber.StatusForbidden, "forbidden"
	case errors.Is(err, services.ErrInvalidTransition):
		status, msg = fiber.StatusConflict, err.Error()
	case errors.Is(err, services.ErrUpstream):
		status, msg = fiber.StatusBadGateway, err.Error()
	default:
		log.Error("request failed",
			zap.String("request_id", requestID(c)),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}

	return c.Status(status).JSON(dto.ErrorResponse{Error: msg, RequestID: requestID(c)})
}

type page struct {
	limit  int
	offset int
}

func pageParams(c *fiber.Ctx) page {
	var p page
	if n, err := strconv.Atoi(c.Query("limit")); err == nil {
		p.limit = n
	}
	if n, err := strconv.Atoi(c.Query("offset")); err == nil {
		p.offset = n
	}
	return p
}

func optionalQuery(c *fiber.Ctx, key string) *string {
	if v := strings.TrimSpace(c.Query(key)); v != "" {
		return &v
	}
	return nil
}
