package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/sift/analyzer"
	"github.com/use-agent/sift/extractor"
	"github.com/use-agent/sift/fetcher"
	"github.com/use-agent/sift/models"
	"github.com/use-agent/sift/netguard"
	"github.com/use-agent/sift/robots"
)

// Pipeline bundles the collaborators a scrape request flows through.
// All members are safe for concurrent use; one Pipeline serves the process.
type Pipeline struct {
	Guard      *netguard.Guard
	Robots     *robots.Checker
	Fetcher    *fetcher.Fetcher
	LoginGuard *extractor.LoginGuard
	Extractor  *extractor.Extractor
	Analyzer   analyzer.Analyzer
}

// robotsPolicy lets batch jobs substitute a per-request robots cache for
// the plain checker.
type robotsPolicy interface {
	Check(ctx context.Context, pageURL *url.URL) (allowed bool, warning string)
}

// Scrape returns a handler for POST /api/v1/scrape.
//
// Orchestration flow:
//  1. Parse & validate request body.
//  2. Guard screens scheme and network target.
//  3. Robots policy is evaluated before any page bytes move.
//  4. Guarded fetch                       (records fetch_ms)
//  5. Single parse + login guard.
//  6. Structural extraction               (records extract_ms)
//  7. Optional analysis, never a failure  (records analysis_ms)
func Scrape(p *Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		var req models.ScrapeRequest
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

		result, err := runScrape(c.Request.Context(), p, req.URL, p.Robots)
		if err != nil {
			respondError(c, err)
			return
		}

		result.Timing.TotalMs = time.Since(totalStart).Milliseconds()
		c.JSON(http.StatusOK, result)
	}
}

// runScrape walks one URL through the whole pipeline and assembles the
// result record. The scrape, batch and export handlers all share it.
func runScrape(ctx context.Context, p *Pipeline, rawURL string, policy robotsPolicy) (*models.ScrapeResult, error) {
	var timing models.TimingInfo
	var warnings []string

	// ── 1. Validate target ──────────────────────────────────────
	u, err := p.Guard.ValidateURL(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	// ── 2. Robots policy, before any page fetch ─────────────────
	allowed, warning := policy.Check(ctx, u)
	if !allowed {
		return nil, models.NewScrapeError(models.ErrCodeRobotsDisallowed, models.MsgRobotsDisallowed, nil)
	}
	if warning != "" {
		warnings = append(warnings, warning)
	}

	// ── 3. Guarded fetch ────────────────────────────────────────
	fetchStart := time.Now()
	outcome, err := p.Fetcher.Fetch(ctx, u)
	timing.FetchMs = time.Since(fetchStart).Milliseconds()
	if err != nil {
		return nil, err
	}

	// ── 4. Parse once; extractors share the tree ────────────────
	page, err := extractor.ParsePage(outcome)
	if err != nil {
		return nil, err
	}

	// ── 5. Login guard, before anything is exposed ──────────────
	if err := p.LoginGuard.Check(page); err != nil {
		return nil, err
	}

	// ── 6. Structural extraction ────────────────────────────────
	extractStart := time.Now()
	record := p.Extractor.Extract(page)
	timing.ExtractMs = time.Since(extractStart).Milliseconds()

	record.URL = rawURL
	record.FetchedURL = outcome.FinalURL
	record.ContentType = outcome.ContentType
	if record.Title == "" {
		record.Title = models.TitleFallback
	}
	record.Warnings = append(record.Warnings, warnings...)

	result := &models.ScrapeResult{
		Success:       true,
		ExtractedPage: *record,
		Timing:        timing,
	}

	// ── 7. Analysis is an enhancement, never a failure ──────────
	analysisStart := time.Now()
	analysis, err := p.Analyzer.Analyze(ctx, record)
	result.Timing.AnalysisMs = time.Since(analysisStart).Milliseconds()
	switch {
	case err == nil:
		result.Analysis = analysis
	case errors.Is(err, analyzer.ErrUnavailable):
		// analyzer not configured, nothing to report
	default:
		slog.Warn("analysis failed",
			"url", rawURL,
			"analyzer", p.Analyzer.Name(),
			"error", err,
		)
	}

	return result, nil
}

// respondError maps a ScrapeError to the correct HTTP status code and
// writes a structured JSON error response.
func respondError(c *gin.Context, err error) {
	var scrapeErr *models.ScrapeError
	if !errors.As(err, &scrapeErr) {
		scrapeErr = models.NewScrapeError(models.ErrCodeInternal, "Internal error.", err)
	}

	status := mapErrorToStatus(scrapeErr)
	if status >= 500 {
		slog.Error("scrape failed", "code", scrapeErr.Code, "error", scrapeErr.Err)
	}

	c.JSON(status, models.ErrorResponse{
		Success: false,
		Error:   scrapeErr.ToDetail(),
	})
}

// mapErrorToStatus translates error codes to HTTP status codes.
// Refusals keep their specific kind; transport errors stay generic.
func mapErrorToStatus(e *models.ScrapeError) int {
	switch e.Code {
	case models.ErrCodeInvalidURL, models.ErrCodeLoginPageBlocked, models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	case models.ErrCodeRobotsDisallowed, models.ErrCodeForbiddenTarget:
		return http.StatusForbidden // 403
	case models.ErrCodePayloadTooLarge:
		return http.StatusRequestEntityTooLarge // 413
	case models.ErrCodeUnsupportedContent:
		return http.StatusUnsupportedMediaType // 415
	case models.ErrCodeFetchFailed:
		return http.StatusBadGateway // 502
	default:
		return http.StatusInternalServerError // 500
	}
}
