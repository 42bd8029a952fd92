package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"github.com/davidnguyen27/sep490-PVSM-sub003/internal/handler"
	"github.com/davidnguyen27/sep490-PVSM-sub003/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	QuoteHandler   *handler.QuoteHandler
	PaymentHandler *handler.PaymentHandler
	RedisClient    *redis.Client
	NewRelicApp    *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Quote routes.
		quotes := v1.Group("/quotes")
		{
			quotes.POST("", deps.QuoteHandler.CreateQuote)
		}

		// Payment routes.
		payments := v1.Group("/payments")
		{
			payments.POST("", deps.PaymentHandler.CreatePayment)
			payments.POST("/retry", deps.PaymentHandler.RetryPayment)
			payments.GET("/current", deps.PaymentHandler.GetCurrentPayment)
			payments.GET("/return", deps.PaymentHandler.PaymentReturn)
			payments.GET("/:id", deps.PaymentHandler.GetPayment)
			payments.POST("/:id/confirm", deps.PaymentHandler.ConfirmPayment)
			payments.POST("/:id/cancel", deps.PaymentHandler.CancelPayment)
		}
	}

	return router
}
