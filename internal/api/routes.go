package api

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/pong/internal/api/handlers"
	"github.com/playmatatu/pong/internal/archive"
	"github.com/playmatatu/pong/internal/config"
	"github.com/playmatatu/pong/internal/middleware"
	"github.com/playmatatu/pong/internal/ws"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, svc *archive.Service, hub *ws.Hub, cfg *config.Config) {
	router.Use(middleware.CORSMiddleware(cfg))

	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
		log.Println("[DEV MODE] no-cache headers enabled for all routes")
	}

	router.GET("/health", handlers.HealthCheck(hub))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck(hub))
		v1.GET("/tuning", handlers.GetTuning(svc))

		matches := v1.Group("/matches")
		{
			matches.GET("", handlers.ListMatches(svc))
			matches.POST("", middleware.RequireBearer(cfg.JWTSecret), handlers.ImportMatch(svc))
			matches.POST("/simulate", handlers.SimulateMatch(svc))
			matches.GET("/:id", handlers.GetMatch(svc))
			matches.GET("/:id/export", handlers.ExportMatch(svc))
			matches.GET("/:id/verify", handlers.VerifyMatch(svc))
			matches.DELETE("/:id", middleware.RequireAdminToken(cfg.AdminTokenHash), handlers.DeleteMatch(svc))
			matches.GET("/:id/ws", middleware.WebSocketCORSCheck(cfg), ws.ServeReplay(svc, hub, cfg.StreamFPS))
		}
	}
}
