package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/use-agent/sift/analyzer"
	"github.com/use-agent/sift/api"
	"github.com/use-agent/sift/api/handler"
	"github.com/use-agent/sift/config"
	"github.com/use-agent/sift/extractor"
	"github.com/use-agent/sift/fetcher"
	"github.com/use-agent/sift/netguard"
	"github.com/use-agent/sift/robots"
	"github.com/use-agent/sift/webhook"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("sift starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
	)
	if cfg.Guard.AllowPrivateHosts {
		slog.Warn("private host screening is DISABLED; never run this way in production")
	}

	// ── 3. Network guard, shared by every outbound connection ───────
	guard := netguard.New(cfg.Guard)

	// ── 4. Pipeline collaborators ────────────────────────────────────
	limits := extractor.DefaultLimits()
	limits.MaxLinks = cfg.Extract.MaxLinks
	limits.MaxImages = cfg.Extract.MaxImages
	limits.MaxExcerptChars = cfg.Extract.ExcerptChars
	limits.MaxCodeBlockChars = cfg.Extract.CodeBlockChars

	pipeline := &handler.Pipeline{
		Guard:      guard,
		Robots:     robots.New(cfg.Robots, cfg.Fetch.UserAgent, guard),
		Fetcher:    fetcher.New(cfg.Fetch, guard),
		LoginGuard: extractor.NewLoginGuard(cfg.Extract.LoginKeywords),
		Extractor:  extractor.New(limits),
		Analyzer:   newAnalyzer(cfg.Analysis),
	}
	slog.Info("pipeline ready", "analyzer", pipeline.Analyzer.Name())

	// ── 5. Webhook notifier for batch callbacks ──────────────────────
	notifier := webhook.NewNotifier(cfg.Webhook, guard)

	// ── 6. Setup router ──────────────────────────────────────────────
	startTime := time.Now()
	router := api.NewRouter(pipeline, cfg, notifier, startTime)

	// ── 7. Start HTTP server ─────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 8. Graceful shutdown ─────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// Give in-flight requests 5 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	slog.Info("sift stopped")
}

// newAnalyzer picks the analyzer implementation from configuration. Without
// an API key the disabled analyzer serves every request, so the pipeline
// never branches on configuration.
func newAnalyzer(cfg config.AnalysisConfig) analyzer.Analyzer {
	if cfg.APIKey == "" {
		return analyzer.Disabled{}
	}
	return analyzer.NewOpenAI(cfg)
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
