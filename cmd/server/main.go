package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/diftofficial/systemAplikaciaGYM/internal/cache"
	"github.com/diftofficial/systemAplikaciaGYM/internal/config"
	"github.com/diftofficial/systemAplikaciaGYM/internal/database"
	"github.com/diftofficial/systemAplikaciaGYM/internal/jobs"
	applog "github.com/diftofficial/systemAplikaciaGYM/internal/log"
	"github.com/diftofficial/systemAplikaciaGYM/internal/middleware"
	"github.com/diftofficial/systemAplikaciaGYM/internal/notify"
	"github.com/diftofficial/systemAplikaciaGYM/internal/routes"
	pushws "github.com/diftofficial/systemAplikaciaGYM/internal/websocket"
)

func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		fallback := applog.New("production", "")
		fallback.Fatal().Err(err).Msg("failed to load config")
	}
	logger := applog.New(cfg.AppEnv, cfg.LogLevel)

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server failed")
	}
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to the document store
	store, closeStore, err := database.OpenStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s document store: %w", cfg.StoreBackend, err)
	}
	defer closeStore()
	logger.Info().Str("backend", cfg.StoreBackend).Msg("document store ready")

	// 3. Notifications
	hub := pushws.NewHub(logger)
	go hub.Run(ctx)

	notifiers := []notify.Notifier{hub}
	if cfg.RedisEnabled() {
		redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer redisClient.Close()
		notifiers = append(notifiers, notify.NewRedisPublisher(redisClient, cfg.Redis.Channel, logger))
	}

	// 4. Background reconciliation
	if cfg.ReconcileEnabled {
		scheduler := jobs.NewScheduler(jobs.NewReconciler(store, logger), cfg.ReconcileSchedule, logger)
		if err := scheduler.Start(); err != nil {
			return fmt.Errorf("start scheduler %q: %w", cfg.ReconcileSchedule, err)
		}
		defer scheduler.Stop()
	}

	// 5. Setup Fiber
	app := fiber.New(fiber.Config{DisableStartupMessage: cfg.AppEnv == "production"})

	app.Use(cors.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(logger))
	app.Use(recover.New())

	routes.RegisterRoutes(app, cfg, routes.Dependencies{
		Store:    store,
		Hub:      hub,
		Notifier: notify.Multi(notifiers...),
		Log:      logger,
	})

	// 6. Start Server
	go func() {
		<-ctx.Done()
		logger.Info().Msg("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error().Err(err).Msg("graceful shutdown failed")
		}
	}()

	logger.Info().Str("port", cfg.Port).Msg("server starting")
	if err := app.Listen(":" + cfg.Port); err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}
