package handler

import (
	"errors"

	"go-pos-ws/internal/service"
	"go-pos-ws/pkg/jwt"
	"go-pos-ws/pkg/validator"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type resetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6,nefield=OldPassword"`
}

type validateTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

// authStatus maps session failures; anything else goes through respondError.
func authStatus(err error) (int, bool) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrSessionTimeout),
		errors.Is(err, service.ErrSessionReplaced),
		errors.Is(err, jwt.ErrInvalidToken),
		errors.Is(err, jwt.ErrMissingToken):
		return fiber.StatusUnauthorized, true
	case errors.Is(err, service.ErrUserInactive):
		return fiber.StatusForbidden, true
	case errors.Is(err, service.ErrWrongPassword):
		return fiber.StatusBadRequest, true
	}
	return 0, false
}

func respondAuthError(c *fiber.Ctx, err error) error {
	if status, ok := authStatus(err); ok {
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}
	return respondError(c, err)
}

// bind parses the body into req and validates it.
func bind(c *fiber.Ctx, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		return &service.ValidationError{Message: "Invalid JSON"}
	}
	if msg := validator.FirstError(req); msg != "" {
		return &service.ValidationError{Message: msg}
	}
	return nil
}

// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}

	response, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondAuthError(c, err)
	}
	return c.JSON(response)
}

// Register creates a customer account and returns its first session.
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req service.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	response, err := h.authService.Register(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(response)
}

// ResetPassword changes the password of a user who knows the current one.
// Every open session of that user ends.
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}

	err := h.authService.ResetPassword(c.UserContext(), req.Email, req.OldPassword, req.NewPassword)
	if errors.Is(err, service.ErrUserNotFound) {
		// Same answer as a wrong password so emails cannot be probed.
		err = service.ErrWrongPassword
	}
	if err != nil {
		return respondAuthError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Password updated, please log in again"})
}

// Heartbeat keeps the session alive and announces presence on /ws.
func (h *AuthHandler) Heartbeat(c *fiber.Ctx) error {
	id, err := uuid.Parse(getUserID(c))
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}
	if err := h.authService.Heartbeat(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"status": "online"})
}

// POST /api/v1/auth/validate-token
func (h *AuthHandler) ValidateToken(c *fiber.Ctx) error {
	var req validateTokenRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}

	response, err := h.authService.ValidateToken(c.UserContext(), req.Token)
	if err != nil {
		return respondAuthError(c, err)
	}
	return c.JSON(response)
}
