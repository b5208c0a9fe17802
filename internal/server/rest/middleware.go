package rest

import (
	"time"

	"github.com/dmitrijs2005/conduit/internal/common"
	"github.com/dmitrijs2005/conduit/internal/server/metrics"
	"github.com/dmitrijs2005/conduit/internal/server/models"
	"github.com/gofiber/fiber/v3"
)

const userLocalKey = "user"

// observe logs and measures every request. Errors from the chain are
// rendered here so the final status is known.
func (s *Server) observe(c fiber.Ctx) error {
	start := time.Now()

	if err := c.Next(); err != nil {
		if herr := s.handleError(c, err); herr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	elapsed := time.Since(start)
	status := c.Response().StatusCode()
	route := c.Route().Path

	metrics.RecordHTTPRequest(c.Method(), route, status, elapsed)
	s.logger.Info(c.Context(), "request",
		"method", c.Method(),
		"path", c.Path(),
		"route", route,
		"status", status,
		"latency", elapsed,
		"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
	)

	return nil
}

// requireAuth rejects requests without a valid credential and stores the
// resolved user in the request locals.
func (s *Server) requireAuth(c fiber.Ctx) error {
	user, err := s.deps.Gate.Authenticate(c.Context(), c.Get(fiber.HeaderAuthorization))
	if err != nil {
		switch {
		case common.IsForbidden(err):
			metrics.RecordAuthAttempt("token", metrics.OutcomeForbidden)
		case common.IsUnauthorized(err):
			metrics.RecordAuthAttempt("token", metrics.OutcomeUnauthorized)
		default:
			metrics.RecordAuthAttempt("token", metrics.OutcomeError)
		}
		return err
	}

	metrics.RecordAuthAttempt("token", metrics.OutcomeSuccess)
	c.Locals(userLocalKey, user)
	return c.Next()
}

// optionalAuth lets anonymous requests through. A request that does send
// an Authorization header is held to the requireAuth rules.
func (s *Server) optionalAuth(c fiber.Ctx) error {
	if c.Get(fiber.HeaderAuthorization) == "" {
		return c.Next()
	}
	return s.requireAuth(c)
}

func currentUser(c fiber.Ctx) *models.User {
	user, _ := c.Locals(userLocalKey).(*models.User)
	return user
}
