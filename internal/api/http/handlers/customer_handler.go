package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/desivolt/muzdesk/internal/api/dto"
	"github.com/desivolt/muzdesk/internal/domain"
	"github.com/desivolt/muzdesk/internal/events"
	"github.com/desivolt/muzdesk/internal/observability"
	"github.com/desivolt/muzdesk/internal/service"
	apperrors "github.com/desivolt/muzdesk/pkg/util/errorutil"
)

// CustomerHandler serves the anonymous complaint and tracking endpoints.
type CustomerHandler struct {
	service *service.CustomerService
	feed    *events.Feed
	metrics *observability.Metrics
}

// NewCustomerHandler constructs handler.
func NewCustomerHandler(customerService *service.CustomerService, feed *events.Feed, metrics *observability.Metrics) *CustomerHandler {
	return &CustomerHandler{service: customerService, feed: feed, metrics: metrics}
}

// CreateTicket POST /tickets.
func (h *CustomerHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.CreateTicket(c.UserContext(), service.CreateTicketInput{
		Name:               req.Name,
		Phone:              req.Phone,
		Address:            req.Address,
		Landmark:           req.Landmark,
		Pincode:            req.Pincode,
		ApplianceType:      req.ApplianceType,
		ProblemDescription: req.ProblemDescription,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewReceiptResponse(ticket, h.service.Catalog())})
}

// TrackTicket GET /tickets/track/:number.
func (h *CustomerHandler) TrackTicket(c *fiber.Ctx) error {
	ticket, err := h.service.TrackTicket(c.UserContext(), c.Params("number"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTrackingResponse(ticket, h.service.Catalog())})
}

// TrackTicketStream GET /tickets/track/:number/stream.
func (h *CustomerHandler) TrackTicketStream(c *fiber.Ctx) error {
	// Params alias the request buffer, which is recycled before the stream runs.
	number := strings.Clone(domain.NormalizeTicketNumber(c.Params("number")))
	if number == "" {
		return apperrors.NewValidationError("ticket number is required", map[string]any{"ticket_number": "required"})
	}
	catalog := h.service.Catalog()
	return streamView(c, h.feed, h.metrics, func(ctx context.Context) (any, error) {
		ticket, err := h.service.TrackTicket(ctx, number)
		if err != nil {
			return nil, err
		}
		return dto.NewTrackingResponse(ticket, catalog), nil
	})
}

// Pricing GET /pricing.
func (h *CustomerHandler) Pricing(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.service.Catalog().Entries()})
}
