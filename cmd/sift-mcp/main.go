package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// scrapeResult mirrors the sift API scrape response, limited to the fields
// the tool output renders.
type scrapeResult struct {
	Success         bool     `json:"success"`
	URL             string   `json:"url"`
	FetchedURL      string   `json:"fetched_url"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Language        string   `json:"language"`
	WordCount       int      `json:"word_count"`
	TextExcerpt     string   `json:"text_excerpt"`
	ContentMarkdown string   `json:"content_markdown"`
	Warnings        []string `json:"warnings"`
	Analysis        *struct {
		Summary   string   `json:"summary"`
		KeyPoints []string `json:"key_points"`
		Category  string   `json:"category"`
		Sentiment string   `json:"sentiment"`
	} `json:"analysis"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// batchResult mirrors the sift API batch response.
type batchResult struct {
	Status    string `json:"status"`
	Total     int    `json:"total"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
	Results   []struct {
		URL     string          `json:"url"`
		Success bool            `json:"success"`
		Result  json.RawMessage `json:"result"`
		Error   *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	} `json:"results"`
}

func main() {
	apiURL := os.Getenv("SIFT_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	// Optional: only needed when the API runs with auth enabled.
	apiKey := os.Getenv("SIFT_API_KEY")

	s := server.NewMCPServer(
		"sift",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	scrapePageTool := mcp.NewTool("scrape_page",
		mcp.WithDescription("Scrape a single web page and return its structured content: title, text, headings, links and optional AI analysis. Respects robots.txt and refuses login walls and private network targets."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the web page to scrape"),
		),
	)
	s.AddTool(scrapePageTool, handleScrapePage(apiURL, apiKey))

	batchScrapeTool := mcp.NewTool("batch_scrape",
		mcp.WithDescription("Scrape up to 20 URLs in parallel and return the structured content of each. Useful for gathering content from many pages at once."),
		mcp.WithArray("urls",
			mcp.Required(),
			mcp.Description("List of URLs to scrape"),
		),
	)
	s.AddTool(batchScrapeTool, handleBatchScrape(apiURL, apiKey))

	exportPageTool := mcp.NewTool("export_page",
		mcp.WithDescription("Scrape a web page and return the result as a document in the requested format: 'json' (full record), 'csv' (flattened field/value rows) or 'txt' (labeled plain-text report)."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the web page to scrape"),
		),
		mcp.WithString("format",
			mcp.Description("Export format: 'json' (default), 'csv' or 'txt'"),
			mcp.Enum("json", "csv", "txt"),
		),
	)
	s.AddTool(exportPageTool, handleExportPage(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// apiPost sends a POST request to the sift API and returns the response body.
func apiPost(ctx context.Context, client *http.Client, apiURL, apiKey, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

func handleScrapePage(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 120 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/scrape", map[string]string{"url": url})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("scrape request failed: %v", err)), nil
		}

		var res scrapeResult
		if err := json.Unmarshal(respBody, &res); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		if !res.Success {
			errMsg := "scrape failed"
			if res.Error != nil {
				errMsg = fmt.Sprintf("[%s] %s", res.Error.Code, res.Error.Message)
			}
			return mcp.NewToolResultError(errMsg), nil
		}

		return mcp.NewToolResultText(formatScrape(&res)), nil
	}
}

func handleBatchScrape(apiURL, apiKey string) server.ToolHandlerFunc {
	// Batches run synchronously on the server; allow them time to finish.
	client := &http.Client{Timeout: 600 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		urls, err := request.RequireStringSlice("urls")
		if err != nil {
			return mcp.NewToolResultError("urls is required and must be an array of strings"), nil
		}

		respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/batch/scrape", map[string]any{"urls": urls})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("batch request failed: %v", err)), nil
		}

		var batch batchResult
		if err := json.Unmarshal(respBody, &batch); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse batch response: %v", err)), nil
		}
		if batch.Status == "" {
			// Error envelope instead of a batch summary.
			var res scrapeResult
			if json.Unmarshal(respBody, &res) == nil && res.Error != nil {
				return mcp.NewToolResultError(fmt.Sprintf("[%s] %s", res.Error.Code, res.Error.Message)), nil
			}
			return mcp.NewToolResultError("batch request failed"), nil
		}

		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("Batch %s: %d succeeded, %d failed of %d\n\n",
			batch.Status, batch.Succeeded, batch.Failed, batch.Total))

		for i, entry := range batch.Results {
			if !entry.Success {
				errMsg := "unknown error"
				if entry.Error != nil {
					errMsg = fmt.Sprintf("[%s] %s", entry.Error.Code, entry.Error.Message)
				}
				sb.WriteString(fmt.Sprintf("--- [%d] %s FAILED: %s ---\n\n", i+1, entry.URL, errMsg))
				continue
			}
			var res scrapeResult
			if err := json.Unmarshal(entry.Result, &res); err != nil {
				sb.WriteString(fmt.Sprintf("--- [%d] %s: parse error ---\n\n", i+1, entry.URL))
				continue
			}
			sb.WriteString(fmt.Sprintf("--- [%d] %s ---\n%s\n\n", i+1, res.Title, formatScrape(&res)))
		}

		return mcp.NewToolResultText(sb.String()), nil
	}
}

func handleExportPage(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 120 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}
		format := request.GetString("format", "json")

		respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/export", map[string]string{
			"url":    url,
			"format": format,
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("export request failed: %v", err)), nil
		}

		// Failures come back as the JSON error envelope; exports come back
		// as the raw document.
		var res scrapeResult
		if json.Unmarshal(respBody, &res) == nil && res.Error != nil {
			return mcp.NewToolResultError(fmt.Sprintf("[%s] %s", res.Error.Code, res.Error.Message)), nil
		}

		return mcp.NewToolResultText(string(respBody)), nil
	}
}

// formatScrape renders a scrape result as readable text: metadata header,
// main content, then analysis and warnings when present.
func formatScrape(res *scrapeResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Title: %s\nSource: %s\nLanguage: %s | Words: %d\n\n",
		res.Title, res.FetchedURL, res.Language, res.WordCount)

	if res.ContentMarkdown != "" {
		sb.WriteString(res.ContentMarkdown)
	} else {
		sb.WriteString(res.TextExcerpt)
	}

	if a := res.Analysis; a != nil {
		sb.WriteString("\n\n---\nAnalysis: " + a.Summary)
		if len(a.KeyPoints) > 0 {
			sb.WriteString("\nKey points:")
			for _, kp := range a.KeyPoints {
				sb.WriteString("\n- " + kp)
			}
		}
		fmt.Fprintf(&sb, "\nCategory: %s | Sentiment: %s", a.Category, a.Sentiment)
	}

	if len(res.Warnings) > 0 {
		sb.WriteString("\n\nWarnings:")
		for _, w := range res.Warnings {
			sb.WriteString("\n- " + w)
		}
	}

	return sb.String()
}
