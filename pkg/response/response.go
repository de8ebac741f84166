package response

import (
	"errors"
	"net/http"

	"chat-realtime/internal/models"

	"github.com/gin-gonic/gin"
)

// Code classifies err by the sentinel it wraps
func Code(err error) int {
	switch {
	case err == nil:
		return ErrCodeSuccess
	case errors.Is(err, models.ErrAuthentication):
		return ErrCodeUnauthorized
	case errors.Is(err, models.ErrValidation):
		return ErrCodeParamInvalid
	case errors.Is(err, models.ErrAuthorization):
		return ErrCodeForbidden
	case errors.Is(err, models.ErrNotFound):
		return ErrCodeNotFound
	case errors.Is(err, models.ErrStore):
		return ErrCodeStore
	default:
		return ErrCodeInternal
	}
}

// NewErrorResponse builds the HTTP status and body for err. Store and
// unclassified failures never leak their cause to the client.
func NewErrorResponse(err error) (int, models.ErrorResponse) {
	code := Code(err)
	body := models.ErrorResponse{Code: code, Message: Message(code)}
	if code != ErrCodeStore && code != ErrCodeInternal && err != nil {
		body.Details = err.Error()
	}
	return HTTPStatus(code), body
}

// Error aborts the gin request with the mapped error response
func Error(c *gin.Context, err error) {
	status, body := NewErrorResponse(err)
	c.AbortWithStatusJSON(status, body)
}

// BadRequest aborts with a validation error carrying details
func BadRequest(c *gin.Context, details string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{
		Code:    ErrCodeParamInvalid,
		Message: Message(ErrCodeParamInvalid),
		Details: details,
	})
}
