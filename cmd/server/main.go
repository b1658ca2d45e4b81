package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/godilite/satisfaction-radar/internal/app"
	"github.com/godilite/satisfaction-radar/internal/config"
)

func main() {
	_ = godotenv.Load(".env")

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	application, err := app.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize application", zap.Error(err))
	}

	if err := application.Run(); err != nil {
		logger.Fatal("Application exited with error", zap.Error(err))
	}
}
