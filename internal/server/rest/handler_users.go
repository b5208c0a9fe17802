package rest

import (
	"errors"

	"github.com/dmitrijs2005/conduit/internal/common"
	"github.com/dmitrijs2005/conduit/internal/server/models"
	"github.com/gofiber/fiber/v3"
)

func (s *Server) register(c fiber.Ctx) error {
	var req registerRequest
	if err := c.Bind().Body(&req); err != nil || req.User == nil {
		return unprocessable("Request body must be a user object")
	}

	user, token, err := s.deps.Users.Register(c.Context(), models.Registration{
		Username: req.User.Username,
		Email:    req.User.Email,
		Password: req.User.Password,
		Bio:      req.User.Bio,
		Image:    req.User.Image,
	})
	if err != nil {
		return err
	}

	s.logger.Info(c.Context(), "Registered", "username", user.Username)
	return c.Status(fiber.StatusOK).JSON(newUserResponse(user, token))
}

func (s *Server) login(c fiber.Ctx) error {
	var req loginRequest
	if err := c.Bind().Body(&req); err != nil || req.User == nil {
		return unprocessable("Request body must be a user object")
	}
	if req.User.Email == "" || req.User.Password == "" {
		return unprocessable("Email and password are required")
	}

	user, token, err := s.deps.Users.Login(c.Context(), req.User.Email, req.User.Password)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(newUserResponse(user, token))
}

func (s *Server) getCurrentUser(c fiber.Ctx) error {
	user := currentUser(c)

	token, err := s.deps.Users.IssueToken(user)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(newUserResponse(user, token))
}

func (s *Server) updateUser(c fiber.Ctx) error {
	var req updateRequest
	if err := c.Bind().Body(&req); err != nil || req.User == nil {
		return unprocessable("Request body must be a user object")
	}

	user, token, err := s.deps.Users.Update(c.Context(), currentUser(c), models.UserUpdate{
		Username: req.User.Username,
		Email:    req.User.Email,
		Password: req.User.Password,
		Bio:      req.User.Bio,
		Image:    req.User.Image,
	})
	switch {
	case errors.Is(err, common.ErrDuplicateUsername):
		return &apiError{status: fiber.StatusBadRequest, detail: "Username already in use."}
	case errors.Is(err, common.ErrDuplicateEmail):
		return &apiError{status: fiber.StatusBadRequest, detail: "Email already in use."}
	case err != nil:
		return err
	}

	return c.Status(fiber.StatusOK).JSON(newUserResponse(user, token))
}

func (s *Server) avatarUpload(c fiber.Ctx) error {
	upload, err := s.deps.Avatars.PresignUpload(c.Context(), currentUser(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(uploadResponse{Upload: uploadBody{
		Key:       upload.Key,
		UploadURL: upload.UploadURL,
		ImageURL:  upload.ImageURL,
		ExpiresAt: upload.ExpiresAt,
	}})
}
