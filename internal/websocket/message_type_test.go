package websocket

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrameChannelID(t *testing.T) {
	tests := []struct {
		data    string
		want    string
		wantErr bool
	}{
		{`"c1"`, "c1", false},
		{`" c1 "`, "c1", false},
		{`{"channelId":"c2"}`, "c2", false},
		{``, "", true},
		{`""`, "", true},
		{`{}`, "", true},
		{`42`, "", true},
	}

	for _, tt := range tests {
		f := Frame{Event: "joinChannel", Data: json.RawMessage(tt.data)}
		got, err := f.channelID()
		if tt.wantErr {
			assert.Error(t, err, "data %q", tt.data)
			continue
		}
		assert.NoError(t, err, "data %q", tt.data)
		assert.Equal(t, tt.want, got)
	}
}

func TestEncodeFrame(t *testing.T) {
	b, err := encodeFrame("error", ErrorData{Code: CodeUnknownEvent, Message: "unknown event: x"})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"event":"error","data":{"code":"UNKNOWN_EVENT","message":"unknown event: x"}}`, string(b))
}

func TestUpgraderOriginCheck(t *testing.T) {
	up := newUpgrader([]string{"https://chat.example.com"})

	for origin, want := range map[string]bool{
		"":                         true,
		"https://chat.example.com": true,
		"http://localhost:3000":    true,
		"https://evil.example.com": false,
	} {
		r := httptest.NewRequest("GET", "/ws", nil)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		assert.Equal(t, want, up.CheckOrigin(r), "origin %q", origin)
	}
}
