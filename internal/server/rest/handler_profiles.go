package rest

import (
	"github.com/gofiber/fiber/v3"
)

func (s *Server) profile(c fiber.Ctx) error {
	profile, err := s.deps.Social.Profile(c.Context(), currentUser(c), c.Params("username"))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(newProfileResponse(profile))
}

func (s *Server) follow(c fiber.Ctx) error {
	profile, err := s.deps.Social.Follow(c.Context(), currentUser(c), c.Params("username"))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(newProfileResponse(profile))
}

func (s *Server) unfollow(c fiber.Ctx) error {
	profile, err := s.deps.Social.Unfollow(c.Context(), currentUser(c), c.Params("username"))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(newProfileResponse(profile))
}
