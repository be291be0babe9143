package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"journeygrid/adapters/source"
	"journeygrid/app"
	domain "journeygrid/domain/journey"
	"journeygrid/internal"
	"journeygrid/internal/config"
	"journeygrid/ui"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := internal.NewDefaultLogger()
	journeySource := source.New(appConfig.Source, logger)
	service := app.NewJourneyService(journeySource, domain.DefaultRegistry(), appConfig.Highlights, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A failed first load is not fatal; the table can be fixed and reloaded via POST /api/reload.
	if snap, err := service.Reload(ctx); err != nil {
		logger.Warn("initial load failed: %v", err)
	} else {
		logger.Info("loaded %d records from %s", len(snap.Result.Records), snap.Origin)
	}

	server := ui.NewServer(service, appConfig.Server.GinMode, logger)
	if err := server.Run(ctx, ":"+appConfig.Server.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
