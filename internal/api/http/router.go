package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/board-service/internal/api/http/handlers"
	"github.com/spec-kit/board-service/internal/auth"
	"github.com/spec-kit/board-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Users   *handlers.UsersHandler
	Boards  *handlers.BoardsHandler
	Gate    *auth.Gate
	Metrics fiber.Handler
}

// RegisterRoutes installs the gate in front of every route and wires them.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Use(cfg.Gate.Handle)

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics)
	}

	users := app.Group("/user")
	users.Post("/signup", cfg.Users.SignUp)
	users.Post("/login", cfg.Users.Login)
	users.Post("/session-login", cfg.Users.SessionLogin)
	users.Post("/session-logout", cfg.Users.SessionLogout)
	users.Get("/", cfg.Users.GetUsers)

	app.Get("/", cfg.Boards.List)
	app.Post("/board/add", cfg.Boards.Create)
	app.Get("/board", cfg.Boards.Get)
	app.Patch("/board", cfg.Boards.Update)
	app.Delete("/board", cfg.Boards.Delete)

	admin := app.Group("/admin", auth.RequireRole(domain.RoleAdmin))
	admin.Get("/sessions", cfg.Users.ActiveSessions)
}
