// Package api wires the HTTP handlers and middleware into a gin engine.
package api

import (
	"net/http"

	"portfolio-doctor/internal/api/handlers"
	"portfolio-doctor/internal/api/middleware"
	"portfolio-doctor/internal/data"
	"portfolio-doctor/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the services the router hands to its handlers. Store, Metrics
// and Gatherer are optional.
type Deps struct {
	Datasets       handlers.Datasets
	DefaultDataset string
	Store          data.RunStore
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	CORSOrigins    []string
	// Simulation requests per second per client; 0 disables limiting.
	RateLimitRPS float64
}

func NewRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(middleware.CORS(d.CORSOrigins))
	router.Use(middleware.Logger(d.Metrics))
	router.Use(middleware.ErrorHandler())

	simulationHandler := handlers.NewSimulationHandler(d.Datasets, d.DefaultDataset, d.Store, d.Metrics)
	marketHandler := handlers.NewMarketHandler(d.Datasets, d.DefaultDataset)
	limiter := middleware.NewRateLimiter(d.RateLimitRPS, int(d.RateLimitRPS)+1)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if d.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	api := router.Group("/api/v1")
	{
		sims := api.Group("/simulations")
		sims.POST("", middleware.RateLimit(limiter), simulationHandler.RunSimulation)
		sims.GET("/quick", middleware.RateLimit(limiter), simulationHandler.QuickSimulation)
		sims.GET("/:id/cycles", simulationHandler.GetCycles)
		sims.GET("/:id/rank", simulationHandler.RankCycles)

		api.GET("/market", marketHandler.GetMarket)
		api.GET("/datasets", marketHandler.ListDatasets)
		api.GET("/withdrawal-methods", handlers.ListWithdrawalMethods)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "NOT_FOUND", "message": "Not found"}})
	})
	return router
}
