package main

import (
	"fmt"
	"os"
	"time"

	"github.com/todolistapi/backend/internal/api"
	"github.com/todolistapi/backend/internal/config"
	"github.com/todolistapi/backend/internal/database"
	"github.com/todolistapi/backend/internal/database/repository"
	"github.com/todolistapi/backend/internal/database/service"
	"github.com/todolistapi/backend/internal/handler"
	"github.com/todolistapi/backend/internal/logger"
	"github.com/todolistapi/backend/internal/middleware"
	"github.com/todolistapi/backend/internal/security"
)

func main() {
	// 1. Config
	cfg := config.LoadConfig()

	// 2. Logger
	appLogger := logger.New(cfg)

	appLogger.Info("🚀 Starting To-Do List API...",
		"environment", cfg.AppEnv,
		"port", cfg.HTTPPort,
	)

	// 3. Connect to Database
	if err := database.ConnectDatabase(cfg, appLogger); err != nil {
		appLogger.Error("❌ Failed to connect to database", "error", err)
		os.Exit(1)
	}

	db := database.GetDatabase()

	// 4. Initialize Repositories
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	itemRepo := repository.NewToDoItemRepository(db)

	// 5. Initialize Security Components
	hasher := security.NewPasswordHasher()
	issuer := security.NewTokenIssuer(cfg)

	// 6. Initialize Services
	authService := service.NewAuthService(userRepo, refreshTokenRepo, hasher, issuer, cfg, appLogger)
	itemService := service.NewToDoItemService(itemRepo, appLogger)

	// 7. Initialize Handlers & Middleware
	authHandler := handler.NewAuthHandler(authService, appLogger)
	itemHandler := handler.NewToDoItemHandler(itemService, appLogger)
	authMiddleware := middleware.NewAuthMiddleware(issuer, appLogger)

	// 8. Initialize Rate Limiter
	rateLimiter, err := middleware.NewRedisRateLimiter(cfg, appLogger)
	if err != nil {
		appLogger.Warn("⚠️ Failed to connect to Redis, using in-memory rate limiter", "error", err)
		rateLimiter = middleware.NewMemoryRateLimiter(
			cfg.RateLimitRequests,
			time.Duration(cfg.RateLimitWindowSecs)*time.Second,
			nil,
		)
	}
	defer rateLimiter.Close()

	rateLimitMiddleware := middleware.NewRateLimitMiddleware(rateLimiter, appLogger)

	// 9. Setup Router & Start HTTP Server
	r := api.SetupRouter(authHandler, itemHandler, authMiddleware, rateLimitMiddleware)

	addr := fmt.Sprintf(":%s", cfg.HTTPPort)
	appLogger.Info("🌍 HTTP Server running...", "addr", addr)
	if err := r.Run(addr); err != nil {
		appLogger.Error("❌ HTTP Server failed to start", "error", err)
		os.Exit(1)
	}
}
