package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/connectfood/core/internal/adapter/handler"
	"github.com/connectfood/core/internal/domain/entity"
	"github.com/connectfood/core/internal/infrastructure/middleware"
)

type Router struct {
	engine         *gin.Engine
	userHandler    *handler.UserHandler
	authMiddleware *middleware.AuthMiddleware
	rateLimiter    *middleware.RateLimiter
	ready          func(context.Context) error
	logger         *zap.Logger
}

// RouterConfig wires the HTTP surface. RateLimiter and Ready are optional:
// a nil RateLimiter disables limiting and a nil Ready always reports healthy.
type RouterConfig struct {
	UserHandler    *handler.UserHandler
	AuthMiddleware *middleware.AuthMiddleware
	RateLimiter    *middleware.RateLimiter
	Ready          func(context.Context) error
	Logger         *zap.Logger
	Environment    string
}

func NewRouter(cfg RouterConfig) *Router {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	r := &Router{
		engine:         engine,
		userHandler:    cfg.UserHandler,
		authMiddleware: cfg.AuthMiddleware,
		rateLimiter:    cfg.RateLimiter,
		ready:          cfg.Ready,
		logger:         cfg.Logger,
	}

	r.setupMiddleware()
	r.setupRoutes()

	return r
}

func (r *Router) setupMiddleware() {
	r.engine.Use(middleware.Recovery(r.logger))
	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.Metrics())
	r.engine.Use(middleware.CORS())
	// Authentication runs on every route; it only establishes identity.
	r.engine.Use(r.authMiddleware.Authenticate())
	r.engine.Use(middleware.Logger(r.logger))
	if r.rateLimiter != nil {
		r.engine.Use(r.rateLimiter.Limit())
	}
}

func (r *Router) setupRoutes() {
	r.engine.GET("/health", r.health)
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.engine.Group("/api/v1")
	{
		users := api.Group("/users")
		{
			users.POST("", r.userHandler.Create)
			users.GET("", r.authMiddleware.RequireAuthority(entity.AuthorityAdmin), r.userHandler.List)

			authed := users.Group("")
			authed.Use(r.authMiddleware.RequireAuth())
			{
				authed.GET("/me", r.userHandler.Me)
				authed.GET("/:uuid", r.userHandler.Get)
				authed.PUT("/:uuid", r.userHandler.Update)
				authed.DELETE("/:uuid", r.userHandler.Delete)
				authed.PATCH("/:uuid/password", r.userHandler.ChangePassword)
			}
		}
	}
}

func (r *Router) health(c *gin.Context) {
	if r.ready != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := r.ready(ctx); err != nil {
			r.logger.Warn("readiness check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
