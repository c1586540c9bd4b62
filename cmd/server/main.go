package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/pong/internal/api"
	"github.com/playmatatu/pong/internal/archive"
	"github.com/playmatatu/pong/internal/config"
	"github.com/playmatatu/pong/internal/database"
	"github.com/playmatatu/pong/internal/migrations"
	"github.com/playmatatu/pong/internal/redis"
	"github.com/playmatatu/pong/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if cfg.MigrateOnStart {
		log.Println("[DB] Running migrations on startup...")
		if err := migrations.RunMigrations(cfg.DatabaseURL, cfg.MigrationsDir); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	// Initialize Redis
	rdb, err := redis.Connect(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer rdb.Close()

	cache := archive.NewRedisCache(rdb, time.Duration(cfg.VerifyCacheMinutes)*time.Minute)
	svc := archive.NewService(archive.NewPostgresStore(db), cache, cache, cfg.Tuning, cfg.HeadlessMaxTicks)
	svc.ScheduleVerification(cache, time.Duration(cfg.VerifyDelaySeconds)*time.Second)
	archive.StartVerifyWorker(ctx, svc, cache, time.Duration(cfg.VerifyPollSeconds)*time.Second)

	hub := ws.NewHub()
	go hub.Run(ctx)
	ws.StartNoticeSubscriber(ctx, rdb, hub)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	api.SetupRoutes(router, svc, hub, cfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}
	go func() {
		log.Printf("Starting pong server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
