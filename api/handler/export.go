package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/sift/export"
	"github.com/use-agent/sift/models"
)

// Export returns a handler for POST /api/v1/export.
//
// The URL is scraped through the same pipeline as /scrape; the assembled
// result is then rendered as a downloadable document in the requested
// format. Errors map exactly like scrape errors.
func Export(p *Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		var req models.ExportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}
		req.Defaults()

		result, err := runScrape(c.Request.Context(), p, req.URL, p.Robots)
		if err != nil {
			respondError(c, err)
			return
		}
		result.Timing.TotalMs = time.Since(totalStart).Milliseconds()

		data, contentType, err := export.Render(result, req.Format)
		if err != nil {
			respondError(c, err)
			return
		}

		c.Header("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", export.Filename(req.URL, req.Format)))
		c.Data(http.StatusOK, contentType, data)
	}
}
