package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"stockdash/internal/api/handlers"
)

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Services  Services  `json:"services"`
}

type Services struct {
	Cache string `json:"cache"`
}

// SetupRoutes registers all HTTP routes. redisClient may be nil when caching
// is disabled.
func SetupRoutes(router *gin.Engine, charts *handlers.ChartsHandler, tickers *handlers.TickersHandler, redisClient *redis.Client, version string) {
	// Health check endpoint
	router.GET("/health", healthCheck(redisClient, version))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Ticker listing routes
		v1.GET("/tickers/most-active", tickers.GetMostActive)

		// Chart routes
		chartGroup := v1.Group("/charts")
		{
			chartGroup.GET("/price", charts.GetPriceChart)
			chartGroup.GET("/returns", charts.GetReturnsChart)
			chartGroup.GET("/forecast", charts.GetForecastChart)
		}
	}
}

func healthCheck(redisClient *redis.Client, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := HealthResponse{
			Status:    "ok",
			Timestamp: time.Now().UTC(),
			Version:   version,
			Services: Services{
				Cache: "ok",
			},
		}

		// The cache is optional; a missing or unreachable Redis never takes
		// the service down.
		switch {
		case redisClient == nil:
			response.Services.Cache = "disabled"
		default:
			if err := redisClient.Ping(c.Request.Context()).Err(); err != nil {
				response.Services.Cache = "error"
				response.Status = "degraded"
			}
		}

		c.JSON(http.StatusOK, response)
	}
}
