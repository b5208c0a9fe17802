package rest

import (
	"strconv"

	"github.com/dmitrijs2005/conduit/internal/server/services"
	"github.com/gofiber/fiber/v3"
)

func (s *Server) createTodo(c fiber.Ctx) error {
	var req todoRequest
	if err := c.Bind().Body(&req); err != nil {
		return unprocessable("Request body must be a todo object")
	}
	if req.Title == nil || req.Description == nil {
		return unprocessable("Title and description are required")
	}

	todo, err := s.deps.Todos.Create(c.Context(), *req.Title, *req.Description)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(newTodoBody(todo))
}

func (s *Server) listTodos(c fiber.Ctx) error {
	skip, err := queryInt(c, "skip", 0)
	if err != nil {
		return err
	}
	limit, err := queryInt(c, "limit", services.DefaultTodoLimit)
	if err != nil {
		return err
	}

	todos, err := s.deps.Todos.List(c.Context(), skip, limit)
	if err != nil {
		return err
	}

	out := make([]todoBody, 0, len(todos))
	for _, t := range todos {
		out = append(out, newTodoBody(t))
	}
	return c.Status(fiber.StatusOK).JSON(out)
}

func queryInt(c fiber.Ctx, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, unprocessable(key + " must be an integer")
	}
	return v, nil
}
