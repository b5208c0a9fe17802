// Package rest exposes the server use cases over HTTP with fiber.
package rest

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/conduit/internal/logging"
	"github.com/dmitrijs2005/conduit/internal/server/models"
	"github.com/dmitrijs2005/conduit/internal/server/services"
	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
)

const shutdownTimeout = 10 * time.Second

// Authenticator resolves the user behind an Authorization header value.
type Authenticator interface {
	Authenticate(ctx context.Context, header string) (*models.User, error)
}

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps groups what the HTTP layer needs from the rest of the server.
type Deps struct {
	Users    *services.UserService
	Social   *services.SocialService
	Todos    *services.TodoService
	Avatars  *services.AvatarService
	Gate     Authenticator
	DB       Pinger
	Gatherer prometheus.Gatherer
}

type Server struct {
	address string
	app     *fiber.App
	logger  logging.Logger
	deps    Deps
}

func NewServer(address string, l logging.Logger, d Deps) *Server {
	s := &Server{
		address: address,
		logger:  l.With("module", "http_server"),
		deps:    d,
	}

	s.app = fiber.New(fiber.Config{
		AppName:       "conduit",
		ErrorHandler:  s.handleError,
		CaseSensitive: true,
		UnescapePath:  true,
	})

	s.app.Use(s.observe)
	s.app.Use(requestid.New())
	s.app.Use(recoverer.New())

	s.routes()

	return s
}

// Run serves until ctx is done, then shuts the server down gracefully.
func (s *Server) Run(ctx context.Context) error {

	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := s.app.ShutdownWithContext(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	return s.app.Listener(listen, fiber.ListenConfig{DisableStartupMessage: true})
}
