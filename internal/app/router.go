package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"chainride/internal/handler"
	"chainride/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	RideHandler       *handler.RideHandler
	UserHandler       *handler.UserHandler
	SettlementHandler *handler.SettlementHandler
	RedisClient       *redis.Client
	NewRelicApp       *newrelic.Application
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
		// User routes.
		users := v1.Group("/users")
		{
			users.POST("/register", deps.UserHandler.Register)
			users.POST("/login", deps.UserHandler.Login)
			users.GET("/:id", deps.UserHandler.GetByID)
		}

		// Ride routes.
		rides := v1.Group("/rides")
		{
			rides.POST("", deps.RideHandler.RequestRide)
			rides.GET("/requested", deps.RideHandler.ListRequested)
			rides.GET("/:id", deps.RideHandler.GetRide)
			rides.POST("/:id/accept", deps.RideHandler.Accept)
			rides.PUT("/:id/status", deps.RideHandler.UpdateStatus)
			rides.GET("/history/rider/:id", deps.RideHandler.HistoryByRider)
			rides.GET("/history/driver/:id", deps.RideHandler.HistoryByDriver)
		}

		// Settlement routes.
		settlements := v1.Group("/settlements")
		{
			settlements.GET("/:rideId", deps.SettlementHandler.GetOutcome)
			settlements.POST("/:rideId/cancel", deps.SettlementHandler.CancelCompletion)
		}
	}

	return router
}
