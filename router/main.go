package router

import (
	"github.com/biosecret/go-todo/config"
	"github.com/biosecret/go-todo/handlers"
	"github.com/gofiber/fiber/v2"
)

// BasePath prefixes every API route.
const BasePath = "/api/v1"

// Handlers bundles what SetupRoutes wires into the route table.
type Handlers struct {
	Gate    fiber.Handler
	Profile *handlers.ProfileHandler
	Todo    *handlers.TodoHandler
	Stream  *handlers.StreamHandler
}

func SetupRoutes(app *fiber.App, h Handlers) {
	app.Get("/health", handlers.HandleHealthCheck)

	api := app.Group(BasePath)

	api.Post("/CreateProfile", h.Profile.CreateProfile)
	api.Post("/UserLogin", h.Profile.UserLogin)
	api.Get("/SelectProfile", h.Gate, h.Profile.SelectProfile)
	api.Post("/UpdateProfile", h.Gate, h.Profile.UpdateProfile)

	api.Post("/CreateTodo", h.Gate, h.Todo.CreateTodo)
	api.Get("/SelectToDo", h.Gate, h.Todo.SelectToDo)
	api.Post("/UpdateToDo", h.Gate, h.Todo.UpdateToDo)
	api.Post("/UpdateToDoStatus", h.Gate, h.Todo.UpdateToDoStatus)
	api.Post("/RemoveToDo", h.Gate, h.Todo.RemoveToDo)
	api.Post("/FilterToDoByStatus", h.Gate, h.Todo.FilterToDoByStatus)
	api.Post("/FilterToDoByDate", h.Gate, h.Todo.FilterToDoByDate)
	api.Get("/TodoEvents", h.Gate, h.Stream.TodoEvents)

	config.AddSwaggerRoutes(app)

	app.Use(handlers.HandleNotFound)
}
