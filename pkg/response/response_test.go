package response

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"chat-realtime/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestNewErrorResponse(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    int
		details bool
	}{
		{"authentication", fmt.Errorf("token expired: %w", models.ErrAuthentication), http.StatusUnauthorized, ErrCodeUnauthorized, true},
		{"validation", fmt.Errorf("%w: content is required", models.ErrValidation), http.StatusBadRequest, ErrCodeParamInvalid, true},
		{"authorization", fmt.Errorf("not yours: %w", models.ErrAuthorization), http.StatusForbidden, ErrCodeForbidden, true},
		{"not found", fmt.Errorf("message x: %w", models.ErrNotFound), http.StatusNotFound, ErrCodeNotFound, true},
		{"store", fmt.Errorf("send: %w: dial tcp refused", models.ErrStore), http.StatusInternalServerError, ErrCodeStore, false},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, ErrCodeInternal, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			status, body := NewErrorResponse(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, body.Code)
			if tt.details {
				assert.Equal(t, tt.err.Error(), body.Details)
			} else {
				assert.Empty(t, body.Details)
			}
		})
	}
}

func TestErrorAbortsGinContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Error(c, models.ErrNotFound)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"code":4040,"message":"not found","details":"not found"}`, w.Body.String())
}
