package handlers

import (
	"net/http"

	"chat-realtime/internal/models"
	"chat-realtime/internal/notify"
	"chat-realtime/pkg/response"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	dispatcher *notify.Dispatcher
}

func NewNotificationHandler(dispatcher *notify.Dispatcher) *NotificationHandler {
	return &NotificationHandler{dispatcher: dispatcher}
}

// SendNotification godoc
// @Summary Notify a user
// @Description Push a payload to one user's live connection. Offline users are skipped, nothing is queued. Service callers only.
// @Tags notifications
// @Accept json
// @Produce json
// @Security ServiceToken
// @Param request body models.NotificationRequest true "Target user and payload"
// @Success 202 {object} models.NotificationResponse
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Failure 401 {object} models.ErrorResponse "Unauthorized - invalid or missing service token"
// @Router /notifications [post]
func (h *NotificationHandler) SendNotification(c *gin.Context) {
	var req models.NotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	delivered := h.dispatcher.SendNotification(req.UserID, req.Payload)
	c.JSON(http.StatusAccepted, models.NotificationResponse{Delivered: delivered})
}
