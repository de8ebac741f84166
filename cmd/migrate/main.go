package main

import (
	"context"
	"log"
	"time"

	"chat-realtime/internal/config"
	"chat-realtime/internal/server"
	"chat-realtime/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	appLogger := logger.New("chat-migrate", cfg.Log.Level, cfg.Log.Format)
	appLogger.Info("Starting message store migration...", "store", cfg.Store.Driver)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	// Opening the store creates mongo indexes or postgres tables
	store, err := server.OpenStore(ctx, cfg.Store, appLogger)
	if err != nil {
		log.Fatal("Failed to migrate message store: ", err)
	}
	defer store.Close(ctx)

	appLogger.Info("Message store migration completed successfully!")
}
