package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"chat-realtime/internal/auth"
	"chat-realtime/internal/config"
	"chat-realtime/internal/models"
	"chat-realtime/internal/server"
	"chat-realtime/pkg/logger"
)

type sampleMessage struct {
	senderID   string
	senderName string
	content    string
}

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	appLogger := logger.New("chat-seed", cfg.Log.Level, cfg.Log.Format)
	appLogger.Info("Starting message seeding...", "store", cfg.Store.Driver)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	store, err := server.OpenStore(ctx, cfg.Store, appLogger)
	if err != nil {
		log.Fatal("Failed to open message store: ", err)
	}
	defer store.Close(ctx)

	// Written straight to the repository so nothing is broadcast
	channels := map[string][]sampleMessage{
		"general": {
			{"admin", "Admin", "Welcome to the general channel! 👋"},
			{"alice", "Alice", "Hi everyone! Excited to be here."},
			{"bob", "Bob", "Hello! Looking forward to working together."},
			{"admin", "Admin", "Great to have you all here! Let's build something amazing."},
		},
		"random": {
			{"charlie", "Charlie", "Anyone up for lunch?"},
		},
	}

	for channelID, msgs := range channels {
		for _, m := range msgs {
			msg := &models.Message{
				ChannelID:  channelID,
				SenderID:   m.senderID,
				SenderName: m.senderName,
				Content:    m.content,
				ReadBy:     []string{},
			}
			if err := store.Repository.Create(ctx, msg); err != nil {
				appLogger.Warn("Failed to create message", "channelID", channelID, "error", err)
				continue
			}
			appLogger.Info("Created message", "channelID", channelID, "messageID", msg.ID)
		}
	}

	// Development tokens for the seeded senders
	tokens := auth.NewTokenService(cfg.JWT.Secret, cfg.JWT.ExpirationTime)
	for _, user := range []string{"admin", "alice", "bob", "charlie"} {
		token, err := tokens.Issue(user)
		if err != nil {
			log.Fatal("Failed to issue token: ", err)
		}
		fmt.Printf("%s\t%s\n", user, token)
	}

	appLogger.Info("Message seeding completed successfully!")
}
