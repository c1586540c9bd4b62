package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/pong/internal/config"
)

func TestOriginAllowed(t *testing.T) {
	dev := &config.Config{Environment: "development"}
	prod := &config.Config{Environment: "production", FrontendURL: "https://replays.example.org"}

	tests := []struct {
		cfg    *config.Config
		origin string
		want   bool
	}{
		{dev, "http://localhost:3000", true},
		{dev, "http://127.0.0.1:5173", true},
		{dev, "https://evil.example", false},
		{prod, "https://pong.playmatatu.com", true},
		{prod, "https://replays.example.org", true},
		{prod, "http://localhost:5173", false},
	}
	for _, tt := range tests {
		if got := originAllowed(tt.cfg, tt.origin); got != tt.want {
			t.Errorf("originAllowed(%s, %q) = %v, want %v", tt.cfg.Environment, tt.origin, got, tt.want)
		}
	}
}

func TestWebSocketCORSCheck(t *testing.T) {
	r := gin.New()
	r.GET("/ws", WebSocketCORSCheck(&config.Config{Environment: "production"}), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	tests := []struct {
		name    string
		upgrade bool
		origin  string
		want    int
	}{
		{"plain request", false, "", http.StatusNoContent},
		{"allowed origin", true, "https://pong.playmatatu.com", http.StatusNoContent},
		{"missing origin", true, "", http.StatusBadRequest},
		{"foreign origin", true, "https://evil.example", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tt.upgrade {
				req.Header.Set("Connection", "Upgrade")
				req.Header.Set("Upgrade", "websocket")
			}
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}
