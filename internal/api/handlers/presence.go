package handlers

import (
	"context"
	"fmt"
	"net/http"
	"slices"

	"chat-realtime/internal/models"
	"chat-realtime/internal/registry"
	"chat-realtime/pkg/response"

	"github.com/gin-gonic/gin"
)

// PresenceReader answers who is connected
type PresenceReader interface {
	IsUserOnline(ctx context.Context, userID string) (bool, error)
	GetOnlineUsers(ctx context.Context) ([]string, error)
}

// registryPresence reads this process's registry when no shared presence
// store is configured
type registryPresence struct {
	reg *registry.Registry
}

func (p registryPresence) IsUserOnline(_ context.Context, userID string) (bool, error) {
	return p.reg.IsOnline(userID), nil
}

func (p registryPresence) GetOnlineUsers(context.Context) ([]string, error) {
	return p.reg.OnlineUsers(), nil
}

type PresenceHandler struct {
	presence PresenceReader
}

// NewPresenceHandler reads from presence, or from reg when presence is nil
func NewPresenceHandler(presence PresenceReader, reg *registry.Registry) *PresenceHandler {
	if presence == nil {
		presence = registryPresence{reg: reg}
	}
	return &PresenceHandler{presence: presence}
}

// GetOnlineUsers godoc
// @Summary List online users
// @Description Users that currently hold a live connection, sorted by id
// @Tags presence
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.OnlineUsersResponse
// @Failure 401 {object} models.ErrorResponse "Unauthorized - invalid or missing token"
// @Failure 500 {object} models.ErrorResponse "Presence store unavailable"
// @Router /presence/online [get]
func (h *PresenceHandler) GetOnlineUsers(c *gin.Context) {
	users, err := h.presence.GetOnlineUsers(c.Request.Context())
	if err != nil {
		response.Error(c, fmt.Errorf("failed to list online users: %w", err))
		return
	}
	if users == nil {
		users = []string{}
	}
	slices.Sort(users)
	c.JSON(http.StatusOK, models.OnlineUsersResponse{Users: users})
}

// GetUserPresence godoc
// @Summary Get a user's presence
// @Tags presence
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} models.PresenceResponse
// @Failure 401 {object} models.ErrorResponse "Unauthorized - invalid or missing token"
// @Failure 500 {object} models.ErrorResponse "Presence store unavailable"
// @Router /users/{id}/presence [get]
func (h *PresenceHandler) GetUserPresence(c *gin.Context) {
	userID := c.Param("id")
	online, err := h.presence.IsUserOnline(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, fmt.Errorf("failed to read presence of %s: %w", userID, err))
		return
	}
	c.JSON(http.StatusOK, models.PresenceResponse{UserID: userID, Online: online})
}
