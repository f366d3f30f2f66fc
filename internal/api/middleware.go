package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/insightdelivered/fiscal-fox/internal/logger"
)

// HeaderRequestID carries the request id in both directions.
const HeaderRequestID = "X-Request-ID"

const requestIDKey = "requestID"

// RequestID reuses the caller's X-Request-ID or assigns a new one, echoes it
// on the response and attaches a request-scoped logger to the user context.
func RequestID(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(HeaderRequestID, id)
		c.Locals(requestIDKey, id)

		reqLog := log.With().Str("request_id", id).Logger()
		c.SetUserContext(logger.WithContext(c.UserContext(), reqLog))
		return c.Next()
	}
}

// AccessLog logs every request once it has been answered. Errors are
// rendered through the app's error handler first so the logged status is
// the one the client sees.
func AccessLog(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		if err := c.Next(); err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		id, _ := c.Locals(requestIDKey).(string)
		log.Info().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("duration", time.Since(start)).
			Str("request_id", id).
			Str("remote_addr", c.IP()).
			Msg("HTTP request")
		return nil
	}
}

// RateLimit rejects requests beyond the limiter's token bucket with 429.
func RateLimit(limiter *rate.Limiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !limiter.Allow() {
			log := logger.FromContext(c.UserContext())
			log.Warn().
				Str("method", c.Method()).
				Str("path", c.Path()).
				Str("remote_addr", c.IP()).
				Msg("Rate limit exceeded")
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many requests, slow down.")
		}
		return c.Next()
	}
}
