package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/sift/config"
	"github.com/use-agent/sift/models"
	"github.com/use-agent/sift/robots"
	"github.com/use-agent/sift/webhook"
)

// ScrapeBatch returns a handler for POST /api/v1/batch/scrape.
//
// URLs are processed concurrently under a bounded worker pool. The call
// blocks until every URL finished and returns per-URL outcomes in request
// order. When webhook_url is present, the finished summary is additionally
// delivered asynchronously, HMAC-signed.
func ScrapeBatch(p *Pipeline, cfg config.BatchConfig, notifier *webhook.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		var req models.BatchScrapeRequest
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

		if len(req.URLs) > cfg.MaxURLs {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: fmt.Sprintf("A batch may contain at most %d URLs.", cfg.MaxURLs),
				},
			})
			return
		}

		// Webhook targets are screened like page targets, so a batch cannot
		// be used to poke internal services through its callback.
		if req.WebhookURL != "" {
			if _, err := p.Guard.ValidateURL(c.Request.Context(), req.WebhookURL); err != nil {
				respondError(c, err)
				return
			}
		}

		// Batches often hit many paths on one origin; a request-scoped
		// cache keeps it to a single robots.txt fetch per origin.
		policy := robots.NewCache(p.Robots)

		ctx := c.Request.Context()
		entries := make([]models.BatchEntry, len(req.URLs))
		sem := make(chan struct{}, cfg.Concurrency)

		var wg sync.WaitGroup
		var succeeded, failed atomic.Int32

		for i, rawURL := range req.URLs {
			wg.Add(1)
			go func(idx int, target string) {
				defer wg.Done()
				sem <- struct{}{}
				defer func() { <-sem }()

				result, err := runScrape(ctx, p, target, policy)
				if err != nil {
					var scrapeErr *models.ScrapeError
					if !errors.As(err, &scrapeErr) {
						scrapeErr = models.NewScrapeError(models.ErrCodeInternal, "Internal error.", err)
					}
					entries[idx] = models.BatchEntry{
						URL:   target,
						Error: scrapeErr.ToDetail(),
					}
					failed.Add(1)
					return
				}
				entries[idx] = models.BatchEntry{
					URL:     target,
					Success: true,
					Result:  result,
				}
				succeeded.Add(1)
			}(i, rawURL)
		}
		wg.Wait()

		resp := models.BatchResponse{
			Status:    batchStatus(int(succeeded.Load()), int(failed.Load())),
			Total:     len(req.URLs),
			Succeeded: int(succeeded.Load()),
			Failed:    int(failed.Load()),
			Results:   entries,
			Timing: models.TimingInfo{
				TotalMs: time.Since(totalStart).Milliseconds(),
			},
		}

		slog.Info("batch finished",
			"status", resp.Status,
			"succeeded", resp.Succeeded,
			"failed", resp.Failed,
			"total", resp.Total,
		)

		if req.WebhookURL != "" {
			notifier.DeliverAsync(req.WebhookURL, &webhook.Event{
				Type:      "batch.completed",
				Timestamp: time.Now().Unix(),
				Data:      resp,
			})
		}

		c.JSON(http.StatusOK, resp)
	}
}

func batchStatus(succeeded, failed int) string {
	switch {
	case failed == 0:
		return "completed"
	case succeeded == 0:
		return "failed"
	default:
		return "partial"
	}
}
