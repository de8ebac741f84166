package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"chat-realtime/internal/database"

	"github.com/redis/go-redis/v9"
)

const onlineUsersKey = "online_users"

// PresenceService mirrors the connection registry into Redis so other
// processes can see who is online, and backs the REST rate limiter.
type PresenceService struct {
	client *database.RedisClient
	logger *slog.Logger
}

func NewPresenceService(client *database.RedisClient, logger *slog.Logger) *PresenceService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PresenceService{client: client, logger: logger}
}

func statusKey(userID string) string {
	return fmt.Sprintf("user:%s:status", userID)
}

// =============================================================================
// User Status Management
// =============================================================================

func (p *PresenceService) SetUserOnline(ctx context.Context, userID string) error {
	now := time.Now().Unix()
	pipe := p.client.GetClient().Pipeline()

	pipe.SAdd(ctx, onlineUsersKey, userID)
	pipe.HSet(ctx, statusKey(userID), map[string]interface{}{
		"status":     "online",
		"last_seen":  now,
		"updated_at": now,
	})
	pipe.Expire(ctx, statusKey(userID), 5*time.Minute)

	if _, err := pipe.Exec(ctx); err != nil {
		p.logger.Error("Failed to set user online", "userID", userID, "error", err)
		return err
	}

	p.logger.Debug("User set to online", "userID", userID)
	return nil
}

func (p *PresenceService) SetUserOffline(ctx context.Context, userID string) error {
	now := time.Now().Unix()
	pipe := p.client.GetClient().Pipeline()

	pipe.SRem(ctx, onlineUsersKey, userID)
	pipe.HSet(ctx, statusKey(userID), map[string]interface{}{
		"status":     "offline",
		"last_seen":  now,
		"updated_at": now,
	})
	// Offline status outlives online status
	pipe.Expire(ctx, statusKey(userID), 24*time.Hour)

	if _, err := pipe.Exec(ctx); err != nil {
		p.logger.Error("Failed to set user offline", "userID", userID, "error", err)
		return err
	}

	p.logger.Debug("User set to offline", "userID", userID)
	return nil
}

func (p *PresenceService) IsUserOnline(ctx context.Context, userID string) (bool, error) {
	return p.client.GetClient().SIsMember(ctx, onlineUsersKey, userID).Result()
}

func (p *PresenceService) GetOnlineUsers(ctx context.Context) ([]string, error) {
	return p.client.GetClient().SMembers(ctx, onlineUsersKey).Result()
}

// =============================================================================
// Rate Limiting
// =============================================================================

// CheckRateLimit records one hit against key and reports whether the number
// of hits inside the sliding window was still under limit.
func (p *PresenceService) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	windowStart := now.Add(-window).UnixMilli()

	pipe := p.client.GetClient().Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart, 10))
	count := pipe.ZCard(ctx, key)
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixMilli()), Member: now.UnixNano()})
	pipe.Expire(ctx, key, window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return count.Val() < int64(limit), nil
}
