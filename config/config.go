package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	Guard    GuardConfig
	Robots   RobotsConfig
	Fetch    FetchConfig
	Extract  ExtractConfig
	Analysis AnalysisConfig
	Batch    BatchConfig
	Webhook  WebhookConfig
	Log      LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: false

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// GuardConfig controls the network guard that screens scrape targets.
type GuardConfig struct {
	// AllowPrivateHosts disables loopback/private address screening.
	// Never enable outside local development and tests.
	AllowPrivateHosts bool // default: false

	// ConnectTimeout bounds each TCP connection attempt.
	ConnectTimeout time.Duration // default: 5s
}

// RobotsConfig controls robots.txt retrieval and evaluation.
type RobotsConfig struct {
	// Agent is the product token matched against robots.txt groups.
	Agent string // default: "sift"

	// Timeout is the deadline for downloading robots.txt.
	Timeout time.Duration // default: 5s

	// MaxBytes caps the robots.txt download size.
	MaxBytes int64 // default: 512 KiB
}

// FetchConfig controls the guarded page fetcher.
type FetchConfig struct {
	// UserAgent is sent on every outbound request, including robots.txt.
	UserAgent string

	// Timeout is the deadline for the whole fetch, redirects included.
	Timeout time.Duration // default: 15s

	// MaxBodyBytes caps the page download; larger pages are rejected.
	MaxBodyBytes int64 // default: 1_000_000

	// MaxRedirects bounds the redirect chain.
	MaxRedirects int // default: 5
}

// ExtractConfig controls structural extraction.
type ExtractConfig struct {
	// MaxLinks caps the extracted hyperlink list.
	MaxLinks int // default: 100

	// MaxImages caps the extracted image list.
	MaxImages int // default: 50

	// ExcerptChars is the text excerpt length in characters.
	ExcerptChars int // default: 1200

	// CodeBlockChars is the per-code-block truncation length.
	CodeBlockChars int // default: 2000

	// LoginKeywords are matched against form text and actions when
	// deciding whether a page is a login wall.
	LoginKeywords []string
}

// AnalysisConfig controls the optional AI analyzer.
type AnalysisConfig struct {
	// APIKey enables the analyzer when non-empty.
	APIKey string

	// BaseURL is the OpenAI-compatible API root.
	BaseURL string // default: "https://api.openai.com/v1"

	// Model is the chat model used for analysis.
	Model string // default: "gpt-4o-mini"

	// Timeout is the deadline for one analysis call.
	Timeout time.Duration // default: 30s

	// MaxChars caps the page text sent to the model.
	MaxChars int // default: 8000

	// MaxTokens caps the model's reply.
	MaxTokens int // default: 800

	// Temperature is the sampling temperature.
	Temperature float64 // default: 0.7
}

// BatchConfig controls batch scraping.
type BatchConfig struct {
	// MaxURLs is the maximum batch size per request.
	MaxURLs int // default: 20

	// Concurrency is the number of URLs scraped in parallel.
	Concurrency int // default: 5
}

// WebhookConfig controls batch completion notifications.
type WebhookConfig struct {
	// Secret signs webhook payloads when non-empty.
	Secret string

	// Timeout is the deadline for one delivery attempt.
	Timeout time.Duration // default: 10s
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// DefaultLoginKeywords are the phrases that mark a form as a login form
// when paired with a credential field.
var DefaultLoginKeywords = []string{
	"login", "log in", "log-in", "signin", "sign in", "sign-in", "authenticate",
}

// DefaultUserAgent identifies the service to scraped sites. The contact URL
// lets operators reach us; the browser suffix keeps naive UA sniffers from
// serving stripped-down pages.
const DefaultUserAgent = "sift/1.0 (+https://github.com/use-agent/sift) Mozilla/5.0 (Windows NT 10.0; Win64; x64)"

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("SIFT_HOST", "0.0.0.0"),
			Port: envIntOr("SIFT_PORT", 8080),
			Mode: envOr("SIFT_MODE", "release"),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("SIFT_AUTH_ENABLED", false),
			APIKeys: envSliceOr("SIFT_API_KEYS", nil),
		},
		Guard: GuardConfig{
			AllowPrivateHosts: envBoolOr("SIFT_ALLOW_PRIVATE_HOSTS", false),
			ConnectTimeout:    envDurationOr("SIFT_CONNECT_TIMEOUT", 5*time.Second),
		},
		Robots: RobotsConfig{
			Agent:    envOr("SIFT_ROBOTS_AGENT", "sift"),
			Timeout:  envDurationOr("SIFT_ROBOTS_TIMEOUT", 5*time.Second),
			MaxBytes: envInt64Or("SIFT_ROBOTS_MAX_BYTES", 512*1024),
		},
		Fetch: FetchConfig{
			UserAgent:    envOr("SIFT_USER_AGENT", DefaultUserAgent),
			Timeout:      envDurationOr("SIFT_FETCH_TIMEOUT", 15*time.Second),
			MaxBodyBytes: envInt64Or("SIFT_MAX_BODY_BYTES", 1_000_000),
			MaxRedirects: envIntOr("SIFT_MAX_REDIRECTS", 5),
		},
		Extract: ExtractConfig{
			MaxLinks:       envIntOr("SIFT_MAX_LINKS", 100),
			MaxImages:      envIntOr("SIFT_MAX_IMAGES", 50),
			ExcerptChars:   envIntOr("SIFT_EXCERPT_CHARS", 1200),
			CodeBlockChars: envIntOr("SIFT_CODE_BLOCK_CHARS", 2000),
			LoginKeywords:  envSliceOr("SIFT_LOGIN_KEYWORDS", DefaultLoginKeywords),
		},
		Analysis: AnalysisConfig{
			APIKey:      envOr("SIFT_ANALYSIS_API_KEY", os.Getenv("OPENAI_API_KEY")),
			BaseURL:     envOr("SIFT_ANALYSIS_BASE_URL", "https://api.openai.com/v1"),
			Model:       envOr("SIFT_ANALYSIS_MODEL", "gpt-4o-mini"),
			Timeout:     envDurationOr("SIFT_ANALYSIS_TIMEOUT", 30*time.Second),
			MaxChars:    envIntOr("SIFT_ANALYSIS_MAX_CHARS", 8000),
			MaxTokens:   envIntOr("SIFT_ANALYSIS_MAX_TOKENS", 800),
			Temperature: envFloatOr("SIFT_ANALYSIS_TEMPERATURE", 0.7),
		},
		Batch: BatchConfig{
			MaxURLs:     envIntOr("SIFT_BATCH_MAX_URLS", 20),
			Concurrency: envIntOr("SIFT_BATCH_CONCURRENCY", 5),
		},
		Webhook: WebhookConfig{
			Secret:  os.Getenv("SIFT_WEBHOOK_SECRET"),
			Timeout: envDurationOr("SIFT_WEBHOOK_TIMEOUT", 10*time.Second),
		},
		Log: LogConfig{
			Level:  envOr("SIFT_LOG_LEVEL", "info"),
			Format: envOr("SIFT_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envInt64Or(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
