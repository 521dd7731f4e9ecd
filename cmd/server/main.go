package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/nfrund/espresso/internal/app"
	"github.com/nfrund/espresso/internal/config"
	"github.com/nfrund/espresso/internal/logging"
	"github.com/nfrund/espresso/internal/server"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		// slog is not configured yet.
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logging.New(cfg.GetLogFormat(), cfg.GetLogLevel())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	container, err := app.NewContainer(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize services", "error", err)
		os.Exit(1)
	}

	s := server.New(cfg, container, app.NewModules())
	if err := s.InitModules(ctx); err != nil {
		slog.Error("Failed to initialize modules", "error", err)
		_ = container.Close(ctx)
		os.Exit(1)
	}

	if err := s.Start(ctx); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}
