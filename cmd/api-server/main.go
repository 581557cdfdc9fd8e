package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rajhackss/organ-donor-portal/database"
	"github.com/rajhackss/organ-donor-portal/internal/config"
	"github.com/rajhackss/organ-donor-portal/internal/http-api/handler"
	"github.com/rajhackss/organ-donor-portal/internal/http-api/middleware"
	"github.com/rajhackss/organ-donor-portal/internal/http-api/repository"
	"github.com/rajhackss/organ-donor-portal/internal/http-api/service"
	ws "github.com/rajhackss/organ-donor-portal/internal/websocket"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		log.Fatalf("could not connect to database: %v", err)
	}

	if err := database.SeedAdmin(db, logger, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("could not seed admin account: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The redis bridge is an optimization for multi-instance fan-out; a
	// single instance works fine without it, so a missing redis only
	// degrades, never blocks startup.
	var bridge ws.Bridge
	redisBridge, err := ws.NewRedisBridge(cfg.RedisURL, cfg.RedisPassword)
	if err != nil {
		logger.Warn("running without realtime bridge", "error", err)
	} else {
		bridge = redisBridge
		defer redisBridge.Close()
	}

	hub := ws.NewHub(bridge)
	if redisBridge != nil {
		go redisBridge.Run(ctx, hub)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)

	// Services
	authService := service.NewAuthService(userRepo, refreshTokenRepo, cfg)
	notificationService := service.NewNotificationService(notificationRepo, hub)
	chatService := service.NewChatService(messageRepo, userRepo, notificationService, hub)
	profileService := service.NewProfileService(userRepo, notificationService, hub)
	faqService := service.NewFAQService()
	topicDirectory := service.NewTopicDirectory(userRepo, chatService, notificationService)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	profileHandler := handler.NewProfileHandler(profileService)
	adminHandler := handler.NewAdminHandler(profileService)
	chatHandler := handler.NewChatHandler(chatService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	faqHandler := handler.NewFAQHandler(faqService)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware(cfg.CORSOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	authHandler.RegisterRoutes(api.Group("/auth"),
		middleware.LoginRateLimit(cfg.LoginRatePerSecond, cfg.LoginRateBurst))
	faqHandler.RegisterRoutes(api)

	requireVerified := middleware.RequireVerified(userRepo)

	authorized := api.Group("")
	authorized.Use(middleware.AuthMiddleware(authService))
	{
		profileHandler.RegisterRoutes(authorized, requireVerified)
		notificationHandler.RegisterRoutes(authorized.Group("/notifications"))

		chat := authorized.Group("")
		chat.Use(requireVerified)
		chatHandler.RegisterRoutes(chat)

		admin := authorized.Group("/admin")
		admin.Use(middleware.RequireAdmin())
		adminHandler.RegisterRoutes(admin)
	}

	// Realtime subscription surface
	r.GET("/ws", middleware.AuthMiddleware(authService), ws.WSHandler(hub, topicDirectory))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: r,
	}

	go func() {
		logger.Info("server running", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", "error", err)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelDebug
	switch cfg.LogLevel {
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if allowed[origin] || allowed["*"] {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
