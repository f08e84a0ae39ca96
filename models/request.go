package models

// ScrapeRequest is the payload for POST /api/v1/scrape.
type ScrapeRequest struct {
	// URL is the target page to scrape. Required. Scheme and reachability
	// are validated by the pipeline, not by binding, so rejections carry
	// the proper guardrail code instead of a generic binding error.
	URL string `json:"url" binding:"required"`
}

// BatchScrapeRequest is the payload for POST /api/v1/batch/scrape.
type BatchScrapeRequest struct {
	// URLs are the target pages. The configured batch maximum is enforced
	// by the handler so the limit can be tuned without recompiling.
	URLs []string `json:"urls" binding:"required,min=1"`

	// WebhookURL, when set, receives a signed batch.completed event once
	// every URL has been processed.
	WebhookURL string `json:"webhook_url,omitempty" binding:"omitempty,url"`
}

// ExportRequest is the payload for POST /api/v1/export.
type ExportRequest struct {
	URL string `json:"url" binding:"required"`

	// Format selects the download encoding. Default: "json".
	Format string `json:"format,omitempty" binding:"omitempty,oneof=json csv txt"`
}

// Defaults applies default values to unset fields.
func (r *ExportRequest) Defaults() {
	if r.Format == "" {
		r.Format = "json"
	}
}
