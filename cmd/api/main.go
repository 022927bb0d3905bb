package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/connectfood/core/internal/adapter/handler"
	"github.com/connectfood/core/internal/adapter/repository/postgres"
	"github.com/connectfood/core/internal/infrastructure/auth"
	"github.com/connectfood/core/internal/infrastructure/cache"
	"github.com/connectfood/core/internal/infrastructure/config"
	"github.com/connectfood/core/internal/infrastructure/database"
	"github.com/connectfood/core/internal/infrastructure/middleware"
	"github.com/connectfood/core/internal/infrastructure/observability"
	"github.com/connectfood/core/internal/infrastructure/server"
	"github.com/connectfood/core/internal/usecase/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Log, cfg.Server.Environment)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(ctx, pool); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Repositories
	userRepo := postgres.NewUserRepo(pool)

	// Infrastructure services
	jwtSvc := auth.NewJWTService(cfg.JWT.SecretKey, cfg.JWT.AccessTokenTTL, cfg.JWT.Issuer)
	passwordHasher := auth.NewPasswordHasher(cfg.Password.BcryptCost)
	resolver := auth.NewIdentityResolver(userRepo)

	// Use cases
	userSvc := user.NewService(userRepo, passwordHasher)

	// Handlers
	userHandler := handler.NewUserHandler(userSvc)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtSvc, resolver, logger)

	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer redisClient.Close()
		rateLimiter = middleware.NewRateLimiter(redisClient, cfg.RateLimit, logger)
	}

	// Router
	router := server.NewRouter(server.RouterConfig{
		UserHandler:    userHandler,
		AuthMiddleware: authMiddleware,
		RateLimiter:    rateLimiter,
		Ready:          pool.Ping,
		Logger:         logger,
		Environment:    cfg.Server.Environment,
	})

	// Server
	srv := server.NewServer(server.ServerConfig{
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Handler:         router.Engine(),
		Logger:          logger,
	})

	// Blocks until SIGINT/SIGTERM, then drains.
	if err := srv.Run(ctx); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		return
	}

	logger.Info("server stopped")
}
