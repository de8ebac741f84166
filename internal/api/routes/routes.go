package routes

import (
	"log/slog"
	"net/http"
	"time"

	_ "chat-realtime/docs"
	"chat-realtime/internal/api/handlers"
	"chat-realtime/internal/api/middleware"
	"chat-realtime/internal/metrics"
	"chat-realtime/internal/notify"
	"chat-realtime/internal/registry"
	"chat-realtime/internal/services"
	"chat-realtime/internal/websocket"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Dependencies are the collaborators the HTTP surface is built from.
// RateLimiter is optional; without it no route is rate limited. Presence
// is optional; without it presence is read from Registry.
type Dependencies struct {
	Messages    *services.MessageService
	Dispatcher  *notify.Dispatcher
	Hub         *websocket.Hub
	Registry    *registry.Registry
	Auth        middleware.RequestAuthenticator
	RateLimiter middleware.RateLimiter
	Presence    handlers.PresenceReader
	// Shared credential for service-to-service routes; empty disables them
	ServiceToken   string
	Metrics        *metrics.Metrics
	Logger         *slog.Logger
	AllowedOrigins []string
	RateLimit      int
	RateWindow     time.Duration
}

type Router struct {
	engine              *gin.Engine
	wsHandler           *handlers.WSHandler
	messageHandler      *handlers.MessageHandler
	notificationHandler *handlers.NotificationHandler
	presenceHandler     *handlers.PresenceHandler
	rateLimitMW         *middleware.RateLimitMiddleware
	authMW              *middleware.AuthMiddleware
	metrics             *metrics.Metrics
	logger              *slog.Logger
	serviceToken        string
	rateLimit           int
	rateWindow          time.Duration
}

func NewRouter(deps Dependencies) *Router {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.RateLimit <= 0 {
		deps.RateLimit = 120
	}
	if deps.RateWindow <= 0 {
		deps.RateWindow = time.Minute
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	// Add middlewares
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(deps.AllowedOrigins))
	engine.Use(middleware.LogApi(deps.Logger))

	r := &Router{
		engine:              engine,
		wsHandler:           handlers.NewWSHandler(deps.Hub),
		messageHandler:      handlers.NewMessageHandler(deps.Messages),
		notificationHandler: handlers.NewNotificationHandler(deps.Dispatcher),
		presenceHandler:     handlers.NewPresenceHandler(deps.Presence, deps.Registry),
		authMW:              middleware.NewAuthMiddleware(deps.Auth),
		metrics:             deps.Metrics,
		logger:              deps.Logger,
		serviceToken:        deps.ServiceToken,
		rateLimit:           deps.RateLimit,
		rateWindow:          deps.RateWindow,
	}
	if deps.RateLimiter != nil {
		r.rateLimitMW = middleware.NewRateLimitMiddleware(deps.RateLimiter, deps.Logger)
	}
	return r
}

func (r *Router) SetupRoutes() {
	r.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.engine.GET("/metrics", gin.WrapH(r.metrics.Handler()))
	r.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.engine.Group("/api/v1")

	// The upgrade authenticates on its own so a failed handshake never
	// reaches the registry
	api.GET("/ws", r.limitIP(), r.wsHandler.HandleWebSocket)

	// Notifications are pushed by other services, never by end users
	if r.serviceToken != "" {
		api.POST("/notifications", middleware.RequireServiceToken(r.serviceToken), r.notificationHandler.SendNotification)
	} else {
		r.logger.Warn("NOTIFY_SERVICE_TOKEN not set, notification route disabled")
	}

	auth := api.Group("/")
	auth.Use(r.authMW.RequireAuth(), r.limitUser())
	{
		channels := auth.Group("/channels/:id")
		{
			channels.GET("/messages", r.messageHandler.GetChannelMessages)
			channels.POST("/messages", r.messageHandler.SendMessage)
			channels.GET("/messages/last", r.messageHandler.GetLastMessage)
			channels.GET("/messages/search", r.messageHandler.SearchMessages)
			channels.GET("/unread", r.messageHandler.CountUnread)
			channels.POST("/read", r.messageHandler.MarkRead)
		}

		messages := auth.Group("/messages")
		{
			messages.PATCH("/:id", r.messageHandler.EditMessage)
			messages.DELETE("/:id", r.messageHandler.DeleteMessage)
		}

		auth.GET("/presence/online", r.presenceHandler.GetOnlineUsers)
		auth.GET("/users/:id/presence", r.presenceHandler.GetUserPresence)
	}
}

func (r *Router) limitUser() gin.HandlerFunc {
	if r.rateLimitMW == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return r.rateLimitMW.RateLimit(r.rateLimit, r.rateWindow)
}

func (r *Router) limitIP() gin.HandlerFunc {
	if r.rateLimitMW == nil {
		return func(c *gin.Context) { c.Next() }
	}
	// Upgrades are rarer than REST calls
	return r.rateLimitMW.RateLimitIP(max(r.rateLimit/4, 1), r.rateWindow)
}

func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
