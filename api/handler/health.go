package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/sift/models"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// Health returns a handler for GET /api/v1/health.
//
// The pipeline holds no pooled resources, so health is a liveness signal
// plus the analyzer state monitoring cares about.
func Health(p *Pipeline, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.HealthResponse{
			Status:   "healthy",
			Uptime:   time.Since(startTime).Round(time.Second).String(),
			Analyzer: p.Analyzer.Name(),
			Version:  Version,
		})
	}
}
