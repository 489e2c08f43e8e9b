package http

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
)

// session resolves the builder for the request's session cookie, issuing a
// fresh id when the cookie is missing or malformed.
func (h *Handler) session(c *fiber.Ctx) error {
	// The id outlives the request as a registry key and draft namespace, so
	// it must not alias fasthttp's pooled buffer.
	id := utils.CopyString(c.Cookies(h.cookie))
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     h.cookie,
			Value:    id,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}
	b, err := h.sessions.Get(id)
	if err != nil {
		h.logger.Error("open session", slog.String("session", id), slog.String("error", err.Error()))
		return fiber.NewError(fiber.StatusServiceUnavailable, "session unavailable")
	}
	c.Locals(localsBuilder, b)
	return c.Next()
}

// AccessLog logs one line per request.
func AccessLog(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		logger.Info("request",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", c.Response().StatusCode()),
			slog.Duration("duration", time.Since(start)),
		)
		return err
	}
}
