package models

// ScrapeResult is the success response for POST /api/v1/scrape. Page fields
// sit at the top level so callers read result.title, not result.page.title.
type ScrapeResult struct {
	// Success is always true here; failures use ErrorResponse instead.
	Success bool `json:"success"`

	ExtractedPage

	// Analysis is present only when an analyzer is configured and the
	// call succeeded. Its absence never fails a scrape.
	Analysis *AnalysisResult `json:"analysis,omitempty"`

	// Timing provides duration breakdowns for the operation.
	Timing TimingInfo `json:"timing"`
}

// ErrorResponse is the failure envelope shared by all endpoints.
type ErrorResponse struct {
	Success bool         `json:"success"`
	Error   *ErrorDetail `json:"error"`
}

// TimingInfo breaks down the time spent in each phase.
type TimingInfo struct {
	// TotalMs is the end-to-end duration in milliseconds.
	TotalMs int64 `json:"total_ms"`

	// FetchMs is the time spent on the guarded HTTP fetch.
	FetchMs int64 `json:"fetch_ms"`

	// ExtractMs is the time spent parsing and extracting structure.
	ExtractMs int64 `json:"extract_ms"`

	// AnalysisMs is the time spent on AI analysis, 0 when disabled.
	AnalysisMs int64 `json:"analysis_ms"`
}

// BatchEntry is the per-URL outcome inside a batch response. Exactly one of
// Result and Error is set.
type BatchEntry struct {
	URL     string        `json:"url"`
	Success bool          `json:"success"`
	Result  *ScrapeResult `json:"result,omitempty"`
	Error   *ErrorDetail  `json:"error,omitempty"`
}

// BatchResponse is the response for POST /api/v1/batch/scrape. The batch
// runs synchronously; results arrive in request order.
type BatchResponse struct {
	// Status summarizes the batch: "completed" (all succeeded),
	// "partial" (mixed), or "failed" (none succeeded).
	Status    string       `json:"status"`
	Total     int          `json:"total"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	Results   []BatchEntry `json:"results"`
	Timing    TimingInfo   `json:"timing"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status   string `json:"status"` // "healthy"
	Uptime   string `json:"uptime"`
	Analyzer string `json:"analyzer"` // name of the configured analyzer
	Version  string `json:"version"`
}
