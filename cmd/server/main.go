package main

// @title           Chat Realtime API
// @version         1.0
// @description     Channel messaging over REST and WebSocket.
// @host            localhost:8080
// @BasePath        /api/v1
// @schemes         http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @securityDefinitions.apikey ServiceToken
// @in header
// @name X-Service-Token
// @description Shared credential for service-to-service calls.

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

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

	// Initialize logger
	appLogger := logger.New("chat-realtime", cfg.Log.Level, cfg.Log.Format)
	appLogger.Info("Starting chat server")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := server.NewApp(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Error("Failed to initialize application", "error", err)
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		appLogger.Error("Application error", "error", err)
		os.Exit(1)
	}
}
