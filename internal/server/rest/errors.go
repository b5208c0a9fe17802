package rest

import (
	"errors"
	"strings"

	"github.com/dmitrijs2005/conduit/internal/common"
	"github.com/dmitrijs2005/conduit/internal/server/auth"
	"github.com/gofiber/fiber/v3"
)

// apiError is an error with a fixed status and client-facing detail.
type apiError struct {
	status int
	detail string
}

func (e *apiError) Error() string { return e.detail }

func unprocessable(detail string) error {
	return &apiError{status: fiber.StatusUnprocessableEntity, detail: detail}
}

// statusFor maps an error to an HTTP status and the detail sent to the client.
func statusFor(err error) (int, string) {
	var ae *apiError
	var fe *fiber.Error

	switch {
	case errors.As(err, &ae):
		return ae.status, ae.detail
	case common.IsForbidden(err):
		return fiber.StatusForbidden, "Invalid authorization format"
	case common.IsUnauthorized(err):
		return fiber.StatusUnauthorized, "Could not validate credentials"
	case common.IsValidation(err):
		return fiber.StatusBadRequest, badRequestDetail(err)
	case common.IsNotFound(err):
		return fiber.StatusNotFound, "User not found"
	case errors.Is(err, common.ErrValidation):
		return fiber.StatusUnprocessableEntity, capitalize(strings.TrimPrefix(err.Error(), common.ErrValidation.Error()+": "))
	case errors.Is(err, common.ErrStorageDisabled):
		return fiber.StatusServiceUnavailable, "Avatar uploads are not available"
	case errors.As(err, &fe):
		return fe.Code, fe.Message
	default:
		return fiber.StatusInternalServerError, "Internal server error"
	}
}

func badRequestDetail(err error) string {
	switch {
	case errors.Is(err, common.ErrDuplicateEmail):
		return "Email already registered"
	case errors.Is(err, common.ErrDuplicateUsername):
		return "Username already in use"
	default:
		return "Incorrect email or password"
	}
}

func (s *Server) handleError(c fiber.Ctx, err error) error {
	status, detail := statusFor(err)

	switch {
	case status == fiber.StatusUnauthorized:
		c.Set(fiber.HeaderWWWAuthenticate, challenge(c.Get(fiber.HeaderAuthorization)))
	case status >= fiber.StatusInternalServerError:
		s.logger.Error(c.Context(), "request failed", "method", c.Method(), "path", c.Path(), "error", err)
	}

	return c.Status(status).JSON(errorResponse{Detail: detail})
}

// challenge echoes the scheme the client used, e.g. "Token" for
// "token abc", and falls back to Bearer.
func challenge(header string) string {
	scheme, _, err := auth.ParseAuthorization(header)
	if err != nil || scheme == "" {
		return "Bearer"
	}
	return capitalize(strings.ToLower(scheme))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
