package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/desivolt/muzdesk/internal/api/dto"
	"github.com/desivolt/muzdesk/internal/auth"
	"github.com/desivolt/muzdesk/internal/domain"
	"github.com/desivolt/muzdesk/internal/events"
	"github.com/desivolt/muzdesk/internal/observability"
	"github.com/desivolt/muzdesk/internal/service"
	apperrors "github.com/desivolt/muzdesk/pkg/util/errorutil"
)

// ElectricianHandler serves the assigned-ticket queue.
type ElectricianHandler struct {
	service *service.ElectricianService
	catalog *domain.Catalog
	feed    *events.Feed
	metrics *observability.Metrics
}

// NewElectricianHandler constructs handler.
func NewElectricianHandler(electricianService *service.ElectricianService, catalog *domain.Catalog, feed *events.Feed, metrics *observability.Metrics) *ElectricianHandler {
	return &ElectricianHandler{service: electricianService, catalog: catalog, feed: feed, metrics: metrics}
}

// Queue GET /electrician/tickets.
func (h *ElectricianHandler) Queue(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("electrician required")
	}
	tickets, err := h.service.Queue(c.UserContext(), principal.Session)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketList(tickets, h.catalog)})
}

// QueueStream GET /electrician/tickets/stream.
func (h *ElectricianHandler) QueueStream(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("electrician required")
	}
	sess := principal.Session
	return streamView(c, h.feed, h.metrics, func(ctx context.Context) (any, error) {
		tickets, err := h.service.Queue(ctx, sess)
		if err != nil {
			return nil, err
		}
		return dto.NewTicketList(tickets, h.catalog), nil
	})
}

// AdvanceStatus POST /electrician/tickets/:id/status.
func (h *ElectricianHandler) AdvanceStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("electrician required")
	}
	var req dto.StatusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.AdvanceStatus(c.UserContext(), principal.Session, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket, h.catalog)})
}
