package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/diftofficial/systemAplikaciaGYM/internal/config"
	"github.com/diftofficial/systemAplikaciaGYM/internal/database"
	"github.com/diftofficial/systemAplikaciaGYM/internal/jobs"
	applog "github.com/diftofficial/systemAplikaciaGYM/internal/log"
)

// reconcile runs one audit pass and exits non-zero when drift is found.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fallback := applog.New("production", "")
		fallback.Fatal().Err(err).Msg("failed to load config")
	}
	logger := applog.New(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := database.OpenStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.StoreBackend).Msg("failed to open document store")
	}

	report, err := jobs.NewReconciler(store, logger).Run(ctx)
	closeStore()
	if err != nil {
		logger.Fatal().Err(err).Msg("reconciliation failed")
	}
	if !report.Healthy() {
		os.Exit(2)
	}
}
