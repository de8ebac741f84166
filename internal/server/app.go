// Package server composes the process: store, event bus, registry, broker,
// dispatcher, transport and HTTP surface, plus the optional Redis and
// Kafka integrations.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"chat-realtime/internal/adapters/kafka"
	"chat-realtime/internal/api/handlers"
	"chat-realtime/internal/api/middleware"
	"chat-realtime/internal/api/routes"
	"chat-realtime/internal/auth"
	"chat-realtime/internal/broker"
	"chat-realtime/internal/config"
	"chat-realtime/internal/database"
	"chat-realtime/internal/events"
	"chat-realtime/internal/metrics"
	"chat-realtime/internal/notify"
	"chat-realtime/internal/registry"
	"chat-realtime/internal/services"
	"chat-realtime/internal/websocket"

	"golang.org/x/time/rate"
)

const shutdownTimeout = 30 * time.Second

type App struct {
	cfg    *config.Config
	logger *slog.Logger

	server   *http.Server
	hub      *websocket.Hub
	store    *Store
	redis    *database.RedisClient
	mirror   *kafka.EventMirror
	consumer *kafka.NotificationConsumer

	// Exposed for tests and tooling
	Bus      *events.Bus
	Registry *registry.Registry
	Messages *services.MessageService
	Tokens   *auth.TokenService
}

// NewApp wires every component. Redis and Kafka are only connected when
// configured; the message store always is.
func NewApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	store, err := OpenStore(ctx, cfg.Store, log)
	if err != nil {
		return nil, err
	}
	return newApp(cfg, log, store)
}

func newApp(cfg *config.Config, log *slog.Logger, store *Store) (*App, error) {
	app := &App{cfg: cfg, logger: log, store: store}
	m := metrics.New()

	// Subscribers attach before anything can publish
	bus := events.NewBus(log.With("component", "bus"))
	reg := registry.New(log.With("component", "registry"), m)
	brk := broker.New(bus, log.With("component", "broker"), m)
	dispatcher := notify.NewDispatcher(reg, bus, log.With("component", "notify"), m)
	messages := services.NewMessageService(store.Repository, bus, log.With("component", "messages"), m)
	tokens := auth.NewTokenService(cfg.JWT.Secret, cfg.JWT.ExpirationTime)

	var presence *services.PresenceService
	if cfg.Redis.URL != "" {
		redisClient, err := database.NewRedisConnection(cfg.Redis, log)
		if err != nil {
			app.closeStore()
			return nil, err
		}
		app.redis = redisClient
		presence = services.NewPresenceService(redisClient, log.With("component", "presence"))
	}

	if cfg.Kafka.Enabled() {
		producer, err := kafka.InitKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.GroupID)
		if err != nil {
			app.closeAll()
			return nil, err
		}
		app.mirror = kafka.NewEventMirror(producer, cfg.Kafka.EventTopic, log.With("component", "kafka-mirror"))
		bus.AddMirror(app.mirror)

		reader := kafka.NewNotificationReader(cfg.Kafka.Brokers, cfg.Kafka.NotificationTopic, cfg.Kafka.GroupID)
		app.consumer = kafka.NewNotificationConsumer(reader, bus, log.With("component", "kafka-consumer"))
	}

	hubOpts := websocket.Options{
		RateLimit:      rate.Limit(cfg.WebSocket.RateLimit),
		RateBurst:      cfg.WebSocket.RateBurst,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Logger:         log.With("component", "websocket"),
		Metrics:        m,
	}
	deps := routes.Dependencies{
		Messages:       messages,
		Dispatcher:     dispatcher,
		Registry:       reg,
		Auth:           tokens,
		ServiceToken:   cfg.Server.ServiceToken,
		Metrics:        m,
		Logger:         log.With("component", "api"),
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		RateLimit:      cfg.Redis.RateLimit,
		RateWindow:     cfg.Redis.RateWindow,
	}
	// Typed nil pointers must not leak into the interfaces
	if presence != nil {
		hubOpts.Presence = presence
		deps.RateLimiter = presence
		deps.Presence = presence
	}

	app.hub = websocket.NewHub(reg, brk, messages, tokens, hubOpts)
	deps.Hub = app.hub

	router := routes.NewRouter(deps)
	router.SetupRoutes()

	app.server = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.GetEngine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	app.Bus = bus
	app.Registry = reg
	app.Messages = messages
	app.Tokens = tokens
	return app, nil
}

// Handler is the HTTP entry point, used by tests
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (a *App) Run(ctx context.Context) error {
	bgCtx, stopBackground := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	if a.mirror != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.mirror.Run(bgCtx)
		}()
	}
	if a.consumer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := a.consumer.Run(bgCtx); err != nil {
				a.logger.Error("Notification consumer failed", "error", err)
			}
		}()
	}

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("Server starting", "address", a.server.Addr, "store", a.cfg.Store.Driver)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("Server shutting down...")
	case runErr = <-serveErr:
		a.logger.Error("Server failed", "error", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("Server forced to shutdown", "error", err)
	}
	if err := a.hub.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("Timed out closing WebSocket connections", "error", err)
	}

	stopBackground()
	wg.Wait()
	a.closeAll()

	a.logger.Info("Server stopped")
	return runErr
}

func (a *App) closeStore() {
	if a.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.store.Close(ctx); err != nil {
		a.logger.Warn("Failed to close message store", "error", err)
	}
}

func (a *App) closeAll() {
	if a.consumer != nil {
		if err := a.consumer.Close(); err != nil {
			a.logger.Warn("Failed to close notification consumer", "error", err)
		}
	}
	if a.mirror != nil {
		if err := a.mirror.Close(); err != nil {
			a.logger.Warn("Failed to close event mirror", "error", err)
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("Failed to close Redis", "error", err)
		}
	}
	a.closeStore()
}

var _ middleware.RateLimiter = (*services.PresenceService)(nil)
var _ websocket.Presence = (*services.PresenceService)(nil)
var _ handlers.PresenceReader = (*services.PresenceService)(nil)
