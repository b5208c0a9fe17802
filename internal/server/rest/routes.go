package rest

import (
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) routes() {
	api := s.app.Group("/api")

	api.Post("/users", s.register)
	api.Post("/users/login", s.login)
	api.Get("/user", s.requireAuth, s.getCurrentUser)
	api.Put("/users", s.requireAuth, s.updateUser)
	api.Post("/users/avatar", s.requireAuth, s.avatarUpload)

	api.Get("/profiles/:username", s.optionalAuth, s.profile)
	api.Post("/profiles/:username/follow", s.requireAuth, s.follow)
	api.Delete("/profiles/:username/follow", s.requireAuth, s.unfollow)

	s.app.Post("/todos", s.createTodo)
	s.app.Get("/todos", s.listTodos)

	s.app.Get("/healthz", s.healthz)
	if s.deps.Gatherer != nil {
		s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{})))
	}
}
