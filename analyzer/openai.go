package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/use-agent/sift/config"
	"github.com/use-agent/sift/models"
)

const systemPrompt = "You are a helpful assistant that analyzes web content and provides concise summaries and insights."

// OpenAI analyzes pages through an OpenAI-compatible chat completions API.
// It uses net/http directly; the request surface is small enough that an
// SDK would only add weight.
type OpenAI struct {
	httpClient *http.Client
	cfg        config.AnalysisConfig
}

// NewOpenAI creates an analyzer from configuration.
func NewOpenAI(cfg config.AnalysisConfig) *OpenAI {
	return &OpenAI{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
	}
}

func (o *OpenAI) Name() string { return "openai" }

// chatRequest is the chat completion request body.
type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

// chatResponse is the minimal chat completion response we need.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// chatErrorResponse captures an API error from the provider.
type chatErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// analysisPayload is the JSON shape requested from the model.
// structured_data is decoded loosely because models occasionally return
// numbers despite instructions.
type analysisPayload struct {
	Summary        string         `json:"summary"`
	KeyPoints      []string       `json:"key_points"`
	Category       string         `json:"category"`
	Sentiment      string         `json:"sentiment"`
	Entities       []string       `json:"entities"`
	Topics         []string       `json:"topics"`
	Keywords       []string       `json:"keywords"`
	StructuredData map[string]any `json:"structured_data"`
	Insights       []string       `json:"insights"`
}

// Analyze sends the page text to the model and parses the structured reply.
func (o *OpenAI) Analyze(ctx context.Context, page *models.ExtractedPage) (*models.AnalysisResult, error) {
	prompt := buildPrompt(page, o.cfg.MaxChars)

	reqBody := chatRequest{
		Model: o.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature:    o.cfg.Temperature,
		MaxTokens:      o.cfg.MaxTokens,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal analysis request: %w", err)
	}

	endpoint := strings.TrimRight(o.cfg.BaseURL, "/") + "/chat/completions"
	slog.Debug("analysis request",
		"model", o.cfg.Model,
		"estimated_tokens", estimateTokens(prompt),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("create analysis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.cfg.APIKey)

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("analysis request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read analysis response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp.StatusCode, respBody)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return nil, fmt.Errorf("parse analysis response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("analysis returned no choices")
	}

	var payload analysisPayload
	raw := extractJSON(chatResp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("parse analysis payload: %w", err)
	}

	return normalize(&payload), nil
}

// buildPrompt assembles the user message: instructions, the allowed label
// vocabularies, then the page text truncated to maxChars runes.
func buildPrompt(page *models.ExtractedPage, maxChars int) string {
	var b strings.Builder
	b.WriteString("Analyze the following web page and respond with a single JSON object containing exactly these fields:\n")
	b.WriteString(`- "summary": 2-3 sentence summary of the page` + "\n")
	b.WriteString(`- "key_points": array of the main points as short strings` + "\n")
	b.WriteString(`- "category": one of ` + strings.Join(models.AnalysisCategories, ", ") + "\n")
	b.WriteString(`- "sentiment": one of ` + strings.Join(models.AnalysisSentiments, ", ") + "\n")
	b.WriteString(`- "entities": array of notable people, organizations and places` + "\n")
	b.WriteString(`- "topics": array of topics covered` + "\n")
	b.WriteString(`- "keywords": array of search keywords for this page` + "\n")
	b.WriteString(`- "structured_data": object of notable facts as string key/value pairs` + "\n")
	b.WriteString(`- "insights": array of non-obvious observations about the content` + "\n\n")

	if page.Title != "" {
		b.WriteString("Title: " + page.Title + "\n")
	}
	if page.FetchedURL != "" {
		b.WriteString("URL: " + page.FetchedURL + "\n")
	}
	b.WriteString("\nContent:\n")
	b.WriteString(truncatePrompt(page.FullText, maxChars))
	return b.String()
}

// truncatePrompt cuts text to max runes on a rune boundary.
func truncatePrompt(text string, max int) string {
	if max <= 0 {
		return text
	}
	count := 0
	for i := range text {
		if count == max {
			return text[:i]
		}
		count++
	}
	return text
}

// extractJSON returns the JSON object embedded in s, tolerating markdown
// fences and stray prose around the object.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if i := strings.Index(s, "\n"); i >= 0 {
			s = s[i+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	if i := strings.Index(s, "{"); i >= 0 {
		if j := strings.LastIndex(s, "}"); j > i {
			return s[i : j+1]
		}
	}
	return s
}

// normalize converts the model's payload into the API shape: labels are
// validated against the accepted vocabularies and nil slices become empty
// so the JSON output keeps its full shape.
func normalize(p *analysisPayload) *models.AnalysisResult {
	out := &models.AnalysisResult{
		Summary:        strings.TrimSpace(p.Summary),
		KeyPoints:      emptyIfNil(p.KeyPoints),
		Category:       strings.ToLower(strings.TrimSpace(p.Category)),
		Sentiment:      strings.ToLower(strings.TrimSpace(p.Sentiment)),
		Entities:       emptyIfNil(p.Entities),
		Topics:         emptyIfNil(p.Topics),
		Keywords:       emptyIfNil(p.Keywords),
		StructuredData: stringifyMap(p.StructuredData),
		Insights:       emptyIfNil(p.Insights),
	}
	if !models.ValidCategory(out.Category) {
		out.Category = "other"
	}
	if !models.ValidSentiment(out.Sentiment) {
		out.Sentiment = "neutral"
	}
	return out
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func stringifyMap(m map[string]any) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		switch t := v.(type) {
		case string:
			out[k] = t
		default:
			out[k] = fmt.Sprint(v)
		}
	}
	return out
}

// apiError folds a provider error body into a single readable error.
func apiError(statusCode int, body []byte) error {
	var errResp chatErrorResponse
	msg := "analysis API error"
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		msg = errResp.Error.Message
	}
	return fmt.Errorf("analysis API returned %d: %s", statusCode, msg)
}
