package handlers

import (
	"net/http"
	"strconv"

	"chat-realtime/internal/api/middleware"
	"chat-realtime/internal/models"
	"chat-realtime/internal/services"
	"chat-realtime/pkg/response"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	messageService *services.MessageService
}

func NewMessageHandler(messageService *services.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// GetChannelMessages godoc
// @Summary List channel messages
// @Description Get every message of a channel, oldest first
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param id path string true "Channel ID"
// @Success 200 {array} models.Message
// @Failure 401 {object} models.ErrorResponse "Unauthorized - invalid or missing token"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /channels/{id}/messages [get]
func (h *MessageHandler) GetChannelMessages(c *gin.Context) {
	msgs, err := h.messageService.GetMessages(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(msgs))
}

// SendMessage godoc
// @Summary Send a message
// @Description Persist a message as the authenticated user and broadcast it to the channel
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Channel ID"
// @Param request body models.SendMessageRequest true "Message content"
// @Success 201 {object} models.Message
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Failure 401 {object} models.ErrorResponse "Unauthorized - invalid or missing token"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /channels/{id}/messages [post]
func (h *MessageHandler) SendMessage(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	msg, err := h.messageService.SendMessage(c.Request.Context(), userID, c.Param("id"), req.Content, req.SenderName)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// GetLastMessage godoc
// @Summary Latest message
// @Description Get the newest message of a channel, 204 when the channel is empty
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param id path string true "Channel ID"
// @Success 200 {object} models.Message
// @Success 204 "Channel has no messages"
// @Failure 401 {object} models.ErrorResponse "Unauthorized - invalid or missing token"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /channels/{id}/messages/last [get]
func (h *MessageHandler) GetLastMessage(c *gin.Context) {
	msg, err := h.messageService.FindLast(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if msg == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, msg)
}

// CountUnread godoc
// @Summary Unread count
// @Description Count messages of a channel the authenticated user has not read
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param id path string true "Channel ID"
// @Success 200 {object} models.UnreadResponse
// @Failure 401 {object} models.ErrorResponse "Unauthorized - invalid or missing token"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /channels/{id}/unread [get]
func (h *MessageHandler) CountUnread(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	channelID := c.Param("id")
	n, err := h.messageService.CountUnread(c.Request.Context(), channelID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, models.UnreadResponse{ChannelID: channelID, Unread: n})
}

// MarkRead godoc
// @Summary Mark channel read
// @Description Mark every message of a channel read by the authenticated user
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param id path string true "Channel ID"
// @Success 200 {object} models.MarkReadResponse
// @Failure 401 {object} models.ErrorResponse "Unauthorized - invalid or missing token"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /channels/{id}/read [post]
func (h *MessageHandler) MarkRead(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	channelID := c.Param("id")
	n, err := h.messageService.MarkRead(c.Request.Context(), channelID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, models.MarkReadResponse{ChannelID: channelID, Marked: n})
}

// SearchMessages godoc
// @Summary Search messages
// @Description Case-insensitive substring search over a channel, newest first
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param id path string true "Channel ID"
// @Param q query string true "Text to look for"
// @Param limit query int false "Maximum results (1-100, default 20)"
// @Success 200 {array} models.Message
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Failure 401 {object} models.ErrorResponse "Unauthorized - invalid or missing token"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /channels/{id}/messages/search [get]
func (h *MessageHandler) SearchMessages(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		response.BadRequest(c, "query parameter q is required")
		return
	}

	limit := services.DefaultSearchLimit
	if l := c.Query("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil {
			response.BadRequest(c, "limit must be an integer")
			return
		}
		limit = parsed
	}

	msgs, err := h.messageService.QueryMessages(c.Request.Context(), c.Param("id"), query, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(msgs))
}

// EditMessage godoc
// @Summary Edit a message
// @Description Replace the content of a message sent by the authenticated user
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Message ID"
// @Param request body models.EditMessageRequest true "New content"
// @Success 200 {object} models.Message
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Failure 401 {object} models.ErrorResponse "Unauthorized - invalid or missing token"
// @Failure 403 {object} models.ErrorResponse "Not the sender"
// @Failure 404 {object} models.ErrorResponse "Message not found"
// @Router /messages/{id} [patch]
func (h *MessageHandler) EditMessage(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req models.EditMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	msg, err := h.messageService.EditMessage(c.Request.Context(), c.Param("id"), req.Content, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}

// DeleteMessage godoc
// @Summary Delete a message
// @Description Permanently remove a message sent by the authenticated user
// @Tags messages
// @Security BearerAuth
// @Param id path string true "Message ID"
// @Success 204 "Deleted"
// @Failure 401 {object} models.ErrorResponse "Unauthorized - invalid or missing token"
// @Failure 403 {object} models.ErrorResponse "Not the sender"
// @Failure 404 {object} models.ErrorResponse "Message not found"
// @Router /messages/{id} [delete]
func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.messageService.DeleteMessage(c.Request.Context(), c.Param("id"), userID); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func nonNil(msgs []*models.Message) []*models.Message {
	if msgs == nil {
		return []*models.Message{}
	}
	return msgs
}
