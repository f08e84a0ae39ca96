package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/sift/api/handler"
	"github.com/use-agent/sift/api/middleware"
	"github.com/use-agent/sift/config"
	"github.com/use-agent/sift/webhook"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled)
//
// The health endpoint sits outside auth so monitoring probes always work.
func NewRouter(p *handler.Pipeline, cfg *config.Config, notifier *webhook.Notifier, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	// Health, no auth required.
	v1.GET("/health", handler.Health(p, startTime))

	// Protected group.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}

	// Scrape
	protected.POST("/scrape", handler.Scrape(p))

	// Batch
	protected.POST("/batch/scrape", handler.ScrapeBatch(p, cfg.Batch, notifier))

	// Export
	protected.POST("/export", handler.Export(p))

	return r
}
