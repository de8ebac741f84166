package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.SetConnections(3)
		m.HandshakeAccepted()
		m.HandshakeRejected()
		m.Broadcast("messageReceived", 2, 1)
		m.NotificationDelivered()
		m.NotificationDropped()
		m.InboundRateLimited()
		m.ObserveStore("send", time.Now())
	})
}

func TestHandlerExposesRecordedSeries(t *testing.T) {
	m := New()
	m.SetConnections(2)
	m.Broadcast("messageReceived", 3, 0)
	m.NotificationDropped()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "chat_registry_connections 2")
	assert.Contains(t, body, `chat_broadcasts_total{event="messageReceived"} 1`)
	assert.Contains(t, body, `chat_deliveries_total{result="ok"} 3`)
	assert.Contains(t, body, `chat_notifications_total{result="dropped"} 1`)
}
