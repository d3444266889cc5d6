package main

import (
	"context"
	"flag"
	"log"
	"log/slog"

	"github.com/courtside-club/courtside/app"
	"github.com/courtside-club/courtside/config"
)

func main() {
	configFile := flag.String("config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	ctx, cancel := app.SignalContext(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Observability.LogLevel).With(
		slog.String("service", "courtside"),
		slog.String("environment", cfg.Observability.Environment),
	)
	slog.SetDefault(logger)

	application, err := app.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer application.Close()

	if err := application.Run(ctx); err != nil {
		logger.Error("Application stopped with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Graceful shutdown complete")
}
