package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"storefront/auth"
	"storefront/middleware"
	"storefront/models"
	"storefront/store"
	"storefront/utils"
)

// POST /auth/register
func (h *Handler) Register(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	resp, err := h.Auth.Register(c.UserContext(), req)
	middleware.RecordAuthOperation("register", err == nil)

	var ve *utils.ValidationError
	switch {
	case errors.As(err, &ve):
		return validationFailed(c, err)
	case errors.Is(err, store.ErrEmailTaken):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "email already registered"})
	case err != nil:
		return h.internalError(c, "registration failed", err)
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// POST /auth/login
func (h *Handler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	resp, err := h.Auth.Login(c.UserContext(), req)
	middleware.RecordAuthOperation("login", err == nil)

	var ve *utils.ValidationError
	switch {
	case errors.As(err, &ve):
		return validationFailed(c, err)
	case errors.Is(err, auth.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid email or password"})
	case err != nil:
		return h.internalError(c, "login failed", err)
	}

	return c.JSON(resp)
}

// GET /auth/me
func (h *Handler) Me(c *fiber.Ctx) error {
	user, ok, err := h.Auth.Me(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return h.internalError(c, "failed to load user", err)
	}
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
	}
	return c.JSON(user)
}
