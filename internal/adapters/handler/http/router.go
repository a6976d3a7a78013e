package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/adapters/metrics"
)

type RouterDependencies struct {
	ItemHandler      *ItemHandler
	PeriodHandler    *PeriodHandler
	ObjectiveHandler *ObjectiveHandler
	Tokens           middleware.TokenValidator
	Metrics          *metrics.Metrics
	Log              logrus.FieldLogger
	// DB and Redis are optional; nil skips their health check and, for
	// Redis, rate limiting.
	DB              *sqlx.DB
	Redis           *redis.Client
	RateLimit       int
	RateLimitWindow time.Duration
	StartTime       time.Time
}

func NewRouter(deps RouterDependencies) (*gin.Engine, error) {
	if err := RegisterValidators(); err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(deps.Log))
	if deps.Metrics != nil {
		router.Use(deps.Metrics.Middleware())
	}

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, X-Request-ID")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	router.GET("/health", healthHandler(deps))
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	protected := router.Group("/api/v1")
	protected.Use(middleware.AuthMiddleware(deps.Tokens))
	if deps.Redis != nil {
		protected.Use(middleware.RateLimiterMiddleware(deps.Redis, deps.RateLimit, deps.RateLimitWindow, deps.Log))
	}
	{
		deps.ItemHandler.RegisterRoutes(protected)
		deps.PeriodHandler.RegisterRoutes(protected)
		deps.ObjectiveHandler.RegisterRoutes(protected)
	}

	return router, nil
}

func healthHandler(deps RouterDependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		body := gin.H{
			"status": "ok",
			"uptime": time.Since(deps.StartTime).String(),
		}

		if deps.DB != nil {
			body["database"] = "connected"
			if err := deps.DB.PingContext(ctx); err != nil {
				body["database"] = "unreachable"
				status = http.StatusServiceUnavailable
			}
		}
		if deps.Redis != nil {
			body["redis"] = "connected"
			if err := deps.Redis.Ping(ctx).Err(); err != nil {
				body["redis"] = "unreachable"
				status = http.StatusServiceUnavailable
			}
		}

		if status != http.StatusOK {
			body["status"] = "degraded"
		}
		c.JSON(status, body)
	}
}
