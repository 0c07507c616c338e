package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/konman95/mainst.ai/internal/events"
	"github.com/konman95/mainst.ai/internal/repositories"
)

var (
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrValidation        = errors.New("validation failed")
	ErrUpstream          = errors.New("upstream service failed")
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func ensureOwner(owner, tenantID string) error {
	if owner != tenantID {
		return ErrForbidden
	}
	return nil
}

// publish sends an event on the owner cover stream. Delivery is best
// effort; failures are logged.
func publish(ctx context.Context, p events.Publisher, log *zap.Logger, eventType, tenantID string, payload map[string]any) {
	if p == nil {
		return
	}
	err := p.Publish(ctx, events.StreamOwnerCover, events.Event{
		Type:     eventType,
		TenantID: tenantID,
		Payload:  payload,
	})
	if err != nil {
		log.Warn("failed to publish event", zap.String("type", eventType), zap.Error(err))
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, repositories.ErrNotFound)
}
