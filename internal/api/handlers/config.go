package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/pong/internal/archive"
	"github.com/playmatatu/pong/internal/game"
)

// GetTuning returns the physics archived matches are played and replayed
// with, so clients can render and replay locally.
func GetTuning(svc *archive.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"tick_rate": game.TickRate,
			"tuning":    svc.Tuning(),
		})
	}
}
