package controllers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"storefront/auth"
	"storefront/catalog"
	"storefront/middleware"
	"storefront/utils"
)

// Handler holds the services the HTTP handlers delegate to.
type Handler struct {
	Catalog *catalog.Service
	Auth    *auth.Service
	// Ping checks backing services for /health. Nil means always healthy.
	Ping func(ctx context.Context) error
	Log  *slog.Logger
}

func NewHandler(cat *catalog.Service, authSvc *auth.Service, ping func(ctx context.Context) error, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{Catalog: cat, Auth: authSvc, Ping: ping, Log: log}
}

// ErrorHandler renders errors that handlers return instead of writing a
// response themselves.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	}
	return c.Status(code).JSON(fiber.Map{"error": msg})
}

func validationFailed(c *fiber.Ctx, err error) error {
	var ve *utils.ValidationError
	if errors.As(err, &ve) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "validation failed",
			"errors": ve.Fields,
		})
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
}

func (h *Handler) internalError(c *fiber.Ctx, msg string, err error) error {
	h.Log.ErrorContext(c.UserContext(), msg,
		"error", err,
		"path", c.Path(),
		"request_id", middleware.RequestID(c),
	)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": msg})
}

// GET /health
func (h *Handler) Health(c *fiber.Ctx) error {
	if h.Ping != nil {
		if err := h.Ping(c.UserContext()); err != nil {
			h.Log.WarnContext(c.UserContext(), "health check failed", "error", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
