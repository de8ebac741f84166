package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	JWT       JWTConfig
	WebSocket WebSocketConfig
	Log       LogConfig
	CORS      CORSConfig
}

var (
	ConfigInstance *Config
	configErr      error
	once           sync.Once
)

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	// Credential other services present on internal routes
	ServiceToken string
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

type StoreConfig struct {
	Driver      string
	MongoURI    string
	MongoDB     string
	PostgresDSN string
}

type RedisConfig struct {
	URL          string
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
	MinIdleConns int
	RateLimit    int
	RateWindow   time.Duration
}

type KafkaConfig struct {
	Brokers           []string
	NotificationTopic string
	EventTopic        string
	GroupID           string
}

// Enabled reports whether any broker is configured
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

type JWTConfig struct {
	Secret         string
	ExpirationTime time.Duration
}

type WebSocketConfig struct {
	RateLimit float64
	RateBurst int
}

type LogConfig struct {
	Level  string
	Format string
}

type CORSConfig struct {
	AllowedOrigins []string
}

// LoadConfig reads the process configuration once. A .env file in the
// working directory is applied first when present.
func LoadConfig() (*Config, error) {
	once.Do(func() {
		_ = godotenv.Load()
		ConfigInstance, configErr = load(viper.New())
	})
	return ConfigInstance, configErr
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Host:         v.GetString("NOTIFY_HOST"),
			Port:         v.GetString("NOTIFY_PORT"),
			ReadTimeout:  v.GetDuration("NOTIFY_READ_TIMEOUT"),
			WriteTimeout: v.GetDuration("NOTIFY_WRITE_TIMEOUT"),
			IdleTimeout:  v.GetDuration("NOTIFY_IDLE_TIMEOUT"),
			ServiceToken: v.GetString("NOTIFY_SERVICE_TOKEN"),
		},
		Store: StoreConfig{
			Driver:      strings.ToLower(strings.TrimSpace(v.GetString("STORE_DRIVER"))),
			MongoURI:    v.GetString("MONGO_URI"),
			MongoDB:     v.GetString("MONGO_DB"),
			PostgresDSN: v.GetString("DATABASE_URL"),
		},
		Redis: RedisConfig{
			URL:          v.GetString("REDIS_URL"),
			MaxRetries:   v.GetInt("REDIS_MAX_RETRIES"),
			DialTimeout:  v.GetDuration("REDIS_DIAL_TIMEOUT"),
			ReadTimeout:  v.GetDuration("REDIS_READ_TIMEOUT"),
			WriteTimeout: v.GetDuration("REDIS_WRITE_TIMEOUT"),
			PoolSize:     v.GetInt("REDIS_POOL_SIZE"),
			MinIdleConns: v.GetInt("REDIS_MIN_IDLE_CONNS"),
			RateLimit:    v.GetInt("API_RATE_LIMIT"),
			RateWindow:   v.GetDuration("API_RATE_WINDOW"),
		},
		Kafka: KafkaConfig{
			Brokers:           splitList(v.GetString("KAFKA_BROKERS")),
			NotificationTopic: v.GetString("KAFKA_NOTIFICATION_TOPIC"),
			EventTopic:        v.GetString("KAFKA_EVENT_TOPIC"),
			GroupID:           v.GetString("KAFKA_GROUP_ID"),
		},
		JWT: JWTConfig{
			Secret:         v.GetString("NOTIFY_JWT_SECRET"),
			ExpirationTime: v.GetDuration("NOTIFY_JWT_EXPIRE"),
		},
		WebSocket: WebSocketConfig{
			RateLimit: v.GetFloat64("WS_RATE_LIMIT"),
			RateBurst: v.GetInt("WS_RATE_BURST"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("ALLOWED_ORIGINS")),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("NOTIFY_PORT", "8080")
	v.SetDefault("NOTIFY_READ_TIMEOUT", 30*time.Second)
	v.SetDefault("NOTIFY_WRITE_TIMEOUT", 30*time.Second)
	v.SetDefault("NOTIFY_IDLE_TIMEOUT", 120*time.Second)
	v.SetDefault("NOTIFY_JWT_EXPIRE", "24h")
	v.SetDefault("STORE_DRIVER", StoreMongo)
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DB", "chat")
	v.SetDefault("REDIS_MAX_RETRIES", 3)
	v.SetDefault("REDIS_POOL_SIZE", 100)
	v.SetDefault("REDIS_MIN_IDLE_CONNS", 10)
	v.SetDefault("REDIS_DIAL_TIMEOUT", 5*time.Second)
	v.SetDefault("REDIS_READ_TIMEOUT", 3*time.Second)
	v.SetDefault("REDIS_WRITE_TIMEOUT", 3*time.Second)
	v.SetDefault("API_RATE_LIMIT", 120)
	v.SetDefault("API_RATE_WINDOW", time.Minute)
	v.SetDefault("KAFKA_NOTIFICATION_TOPIC", "chat.notifications")
	v.SetDefault("KAFKA_EVENT_TOPIC", "chat.events")
	v.SetDefault("KAFKA_GROUP_ID", "chat-realtime")
	v.SetDefault("WS_RATE_LIMIT", 20)
	v.SetDefault("WS_RATE_BURST", 40)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")
}

// Validate rejects configurations the server cannot start with
func (c *Config) Validate() error {
	var errs []error
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("NOTIFY_JWT_SECRET is required"))
	}
	if c.JWT.ExpirationTime <= 0 {
		errs = append(errs, errors.New("NOTIFY_JWT_EXPIRE must be positive"))
	}
	switch c.Store.Driver {
	case StoreMongo:
		if c.Store.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_URI is required for the mongo store"))
		}
	case StorePostgres:
		if c.Store.PostgresDSN == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres store"))
		}
	case StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver))
	}
	if c.WebSocket.RateLimit <= 0 || c.WebSocket.RateBurst <= 0 {
		errs = append(errs, errors.New("WS_RATE_LIMIT and WS_RATE_BURST must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
