package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/desivolt/muzdesk/internal/api/dto"
	"github.com/desivolt/muzdesk/internal/auth"
	"github.com/desivolt/muzdesk/internal/service"
	apperrors "github.com/desivolt/muzdesk/pkg/util/errorutil"
)

// AuthHandler manages sign-in endpoints.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{service: authService}
}

// Login POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	result, err := h.service.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		AccessToken: result.Token,
		TokenType:   "Bearer",
		ExpiresAt:   result.Session.ExpiresAt,
		Session:     h.service.View(result.Session),
	}})
}

// Logout POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("not signed in")
	}
	if err := h.service.Logout(c.UserContext(), principal.Session); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Me GET /auth/me. Anonymous callers are reported as customers.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return c.JSON(fiber.Map{"data": h.service.View(nil)})
	}
	return c.JSON(fiber.Map{"data": h.service.View(principal.Session)})
}
