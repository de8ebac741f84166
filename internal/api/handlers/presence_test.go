package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"chat-realtime/internal/models"
	"chat-realtime/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPresence struct {
	users []string
	err   error
}

func (p stubPresence) IsUserOnline(_ context.Context, userID string) (bool, error) {
	for _, u := range p.users {
		if u == userID {
			return true, p.err
		}
	}
	return false, p.err
}

func (p stubPresence) GetOnlineUsers(context.Context) ([]string, error) {
	return p.users, p.err
}

func presenceEngine(reader PresenceReader) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewPresenceHandler(reader, nil)
	r := gin.New()
	r.GET("/presence/online", h.GetOnlineUsers)
	r.GET("/users/:id/presence", h.GetUserPresence)
	return r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestPresenceSortsSharedStoreUsers(t *testing.T) {
	r := presenceEngine(stubPresence{users: []string{"zed", "amy"}})

	w := get(r, "/presence/online")
	require.Equal(t, http.StatusOK, w.Code)
	var body models.OnlineUsersResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []string{"amy", "zed"}, body.Users)
}

func TestPresenceStoreFailure(t *testing.T) {
	r := presenceEngine(stubPresence{err: errors.New("redis down")})

	for _, path := range []string{"/presence/online", "/users/amy/presence"} {
		w := get(r, path)
		assert.Equal(t, http.StatusInternalServerError, w.Code, path)
		var body models.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, response.ErrCodeInternal, body.Code)
	}
}
