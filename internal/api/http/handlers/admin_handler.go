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

// AdminHandler serves the admin dashboard and ticket actions.
type AdminHandler struct {
	service *service.AdminService
	catalog *domain.Catalog
	feed    *events.Feed
	metrics *observability.Metrics
}

// NewAdminHandler constructs handler.
func NewAdminHandler(adminService *service.AdminService, catalog *domain.Catalog, feed *events.Feed, metrics *observability.Metrics) *AdminHandler {
	return &AdminHandler{service: adminService, catalog: catalog, feed: feed, metrics: metrics}
}

// Dashboard GET /admin/dashboard.
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	view, err := h.service.Dashboard(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDashboardResponse(view, h.catalog)})
}

// DashboardStream GET /admin/dashboard/stream.
func (h *AdminHandler) DashboardStream(c *fiber.Ctx) error {
	return streamView(c, h.feed, h.metrics, func(ctx context.Context) (any, error) {
		view, err := h.service.Dashboard(ctx)
		if err != nil {
			return nil, err
		}
		return dto.NewDashboardResponse(view, h.catalog), nil
	})
}

// Electricians GET /admin/electricians.
func (h *AdminHandler) Electricians(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": dto.NewElectricianList(h.service.Electricians())})
}

// Performance GET /admin/performance.
func (h *AdminHandler) Performance(c *fiber.Ctx) error {
	rows, err := h.service.Performance(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": rows})
}

// Assign POST /admin/tickets/:id/assign.
func (h *AdminHandler) Assign(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("admin required")
	}
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.Assign(c.UserContext(), principal.Session, c.Params("id"), req.ElectricianID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket, h.catalog)})
}

// Delete POST /admin/tickets/:id/delete.
func (h *AdminHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("admin required")
	}
	var req dto.DeleteTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.SoftDelete(c.UserContext(), principal.Session, c.Params("id"), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket, h.catalog)})
}
