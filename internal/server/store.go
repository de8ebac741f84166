package server

import (
	"context"
	"fmt"
	"log/slog"

	"chat-realtime/internal/config"
	"chat-realtime/internal/database"
	"chat-realtime/internal/repositories/memory"
	"chat-realtime/internal/repositories/mongo"
	"chat-realtime/internal/repositories/postgres"
	"chat-realtime/internal/services"
)

// Store is an opened message repository and the function that releases it
type Store struct {
	Repository services.MessageRepository
	Close      func(ctx context.Context) error
}

// OpenStore connects the backend selected by STORE_DRIVER and prepares its
// schema: indexes for mongo, tables for postgres.
func OpenStore(ctx context.Context, cfg config.StoreConfig, log *slog.Logger) (*Store, error) {
	switch cfg.Driver {
	case config.StoreMongo:
		db, err := database.NewMongoConnection(cfg.MongoURI, cfg.MongoDB, log)
		if err != nil {
			return nil, err
		}
		repo := mongo.NewMessageRepository(db.DB)
		if err := repo.EnsureIndexes(ctx); err != nil {
			db.Close(ctx)
			return nil, fmt.Errorf("failed to create message indexes: %w", err)
		}
		return &Store{Repository: repo, Close: db.Close}, nil

	case config.StorePostgres:
		db, err := database.NewPostgresConnection(cfg.PostgresDSN, log)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		repo := postgres.NewMessageRepository(db)
		if err := repo.Migrate(); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("failed to migrate message tables: %w", err)
		}
		return &Store{Repository: repo, Close: func(context.Context) error { return sqlDB.Close() }}, nil

	case config.StoreMemory:
		log.Warn("Using in-memory message store, messages are lost on restart")
		return &Store{Repository: memory.NewMessageRepository(), Close: func(context.Context) error { return nil }}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
