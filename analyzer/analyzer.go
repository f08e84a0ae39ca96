// Package analyzer optionally enriches extracted pages with an AI-generated
// summary, topics and sentiment. The capability is advisory by contract:
// whatever an Analyzer returns or fails to return, the scrape itself has
// already succeeded.
package analyzer

import (
	"context"
	"errors"

	"github.com/use-agent/sift/models"
)

// ErrUnavailable is returned by analyzers that are configured off. Callers
// treat it as "no analysis", not as a failure worth warning about.
var ErrUnavailable = errors.New("analysis unavailable")

// Analyzer produces an optional analysis of an extracted page.
type Analyzer interface {
	// Analyze inspects the page and returns its analysis. Implementations
	// must honor ctx; errors leave the scrape result untouched.
	Analyze(ctx context.Context, page *models.ExtractedPage) (*models.AnalysisResult, error)

	// Name identifies the implementation in health output.
	Name() string
}

// Disabled is the no-op Analyzer used when no API key is configured.
type Disabled struct{}

func (Disabled) Analyze(ctx context.Context, page *models.ExtractedPage) (*models.AnalysisResult, error) {
	return nil, ErrUnavailable
}

func (Disabled) Name() string { return "disabled" }
