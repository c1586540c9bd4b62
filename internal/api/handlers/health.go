package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/pong/internal/game"
	"github.com/playmatatu/pong/internal/ws"
)

var startTime = time.Now()

const version = "1.0.0"

// HealthCheck reports liveness along with the simulation rate replays run at
// and how many spectators are connected.
func HealthCheck(hub *ws.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "ok",
			"service":    "pong-api",
			"version":    version,
			"uptime":     time.Since(startTime).String(),
			"tick_rate":  game.TickRate,
			"spectators": hub.Spectators(),
		})
	}
}
