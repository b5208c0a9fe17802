package rest

import "github.com/gofiber/fiber/v3"

func (s *Server) healthz(c fiber.Ctx) error {
	if err := s.deps.DB.PingContext(c.Context()); err != nil {
		s.logger.Warn(c.Context(), "health check failed", "error", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
}
