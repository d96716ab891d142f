package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/calendar-service/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health *handlers.HealthHandler
	Events *handlers.EventsHandler
	Users  *handlers.UsersHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	eventsGroup := app.Group("/events")
	eventsGroup.Get("/", cfg.Events.ListEvents)
	eventsGroup.Post("/", cfg.Events.CreateEvent)
	eventsGroup.Post("/mergeAll/:userId", cfg.Events.MergeAll)
	eventsGroup.Delete("/delete/:id", cfg.Events.DeleteEvent)
	eventsGroup.Get("/:id", cfg.Events.GetEvent)

	usersGroup := app.Group("/users")
	usersGroup.Get("/", cfg.Users.ListUsers)
	usersGroup.Post("/", cfg.Users.CreateUser)
	usersGroup.Get("/eventCount/:userId", cfg.Users.EventCount)
	usersGroup.Post("/mergeAndAssign/:userId", cfg.Users.MergeAndAssign)
	usersGroup.Delete("/delete/:id", cfg.Users.DeleteUser)
	usersGroup.Get("/:id", cfg.Users.GetUser)
	usersGroup.Patch("/:id", cfg.Users.UpdateUser)
}
