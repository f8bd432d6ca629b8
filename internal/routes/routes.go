package routes

import (
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/diftofficial/systemAplikaciaGYM/internal/config"
	"github.com/diftofficial/systemAplikaciaGYM/internal/docstore"
	"github.com/diftofficial/systemAplikaciaGYM/internal/handlers"
	"github.com/diftofficial/systemAplikaciaGYM/internal/middleware"
	"github.com/diftofficial/systemAplikaciaGYM/internal/models"
	"github.com/diftofficial/systemAplikaciaGYM/internal/notify"
	"github.com/diftofficial/systemAplikaciaGYM/internal/services"
	pushws "github.com/diftofficial/systemAplikaciaGYM/internal/websocket"
)

// Dependencies are the long-lived components shared by every route.
type Dependencies struct {
	Store    docstore.Store
	Hub      *pushws.Hub
	Notifier notify.Notifier
	Log      zerolog.Logger
}

func RegisterRoutes(app *fiber.App, cfg *config.Config, deps Dependencies) {
	accountService := services.NewAccountService(deps.Store, deps.Log)
	sessionService := services.NewSessionService(deps.Store, deps.Notifier, deps.Log)
	joinCoordinator := services.NewJoinCoordinator(deps.Store, deps.Notifier, cfg.JoinMaxAttempts, deps.Log)
	pointsService := services.NewPointsService(deps.Store, deps.Notifier, cfg.JoinMaxAttempts, deps.Log)

	accountHandler := handlers.NewAccountHandler(accountService)
	sessionHandler := handlers.NewSessionHandler(sessionService, joinCoordinator)
	adminHandler := handlers.NewAdminHandler(pointsService)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})

	api := app.Group("/api")

	if deps.Hub != nil {
		pushHandler := handlers.NewPushHandler(deps.Hub, cfg.JWTSecret)
		api.Use("/v1/ws", pushHandler.WebSocketAuth)
		api.Get("/v1/ws", websocket.New(pushHandler.HandleWebSocket))
	}

	authProtected := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))

	accounts := authProtected.Group("/accounts")
	accounts.Post("", accountHandler.Register)
	accounts.Get("/me", accountHandler.Me)

	sessions := authProtected.Group("/sessions")
	sessions.Get("", sessionHandler.ListSessions)
	sessions.Post("", middleware.RequireRole(models.RoleTrainer, models.RoleAdmin), sessionHandler.CreateSession)
	sessions.Get("/:id/participants", sessionHandler.ListParticipants)
	sessions.Post("/:id/join", middleware.RequireRole(models.RoleUser), sessionHandler.JoinSession)

	admin := authProtected.Group("/admin", middleware.RequireRole(models.RoleAdmin))
	admin.Post("/points", adminHandler.GrantPoints)
}
