// Package robots decides whether a page may be scraped under its site's
// robots.txt. A missing or unreachable robots.txt allows the scrape; a
// readable one is enforced with longest-match-wins semantics before any
// page bytes are fetched.
package robots

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/temoto/robotstxt"

	"github.com/use-agent/sift/config"
	"github.com/use-agent/sift/netguard"
)

// unreachableWarning is attached to results when robots.txt could not be
// downloaded and the scrape proceeded on the assumption it is allowed.
const unreachableWarning = "robots.txt could not be downloaded; assuming allow."

// Checker downloads and evaluates robots.txt policies.
type Checker struct {
	client    *http.Client
	agent     string
	userAgent string
	maxBytes  int64
}

// New creates a Checker. Downloads go through the guard's dialer so a
// robots.txt fetch can never reach private address space either.
func New(cfg config.RobotsConfig, userAgent string, guard *netguard.Guard) *Checker {
	return &Checker{
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: &http.Transport{DialContext: guard.DialContext},
		},
		agent:     cfg.Agent,
		userAgent: userAgent,
		maxBytes:  cfg.MaxBytes,
	}
}

// Check reports whether pageURL may be scraped. The warning, when non-empty,
// must be surfaced to the caller; it explains that the policy could not be
// read and the scrape proceeded anyway.
func (c *Checker) Check(ctx context.Context, pageURL *url.URL) (allowed bool, warning string) {
	data, warning := c.fetch(ctx, pageURL)
	if data == nil {
		return true, warning
	}
	return data.TestAgent(pathWithQuery(pageURL), c.agent), warning
}

// fetch downloads and parses robots.txt for pageURL's origin. A nil result
// means no usable policy and the caller must allow.
func (c *Checker) fetch(ctx context.Context, pageURL *url.URL) (*robotstxt.RobotsData, string) {
	robotsURL := pageURL.Scheme + "://" + pageURL.Host + "/robots.txt"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, unreachableWarning
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		slog.Debug("robots.txt unreachable", "url", robotsURL, "error", err)
		return nil, unreachableWarning
	}
	defer resp.Body.Close()

	// Any non-2xx answer means the site publishes no readable policy.
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, ""
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes))
	if err != nil {
		slog.Debug("robots.txt read failed", "url", robotsURL, "error", err)
		return nil, unreachableWarning
	}

	data, err := robotstxt.FromBytes(body)
	if err != nil {
		slog.Debug("robots.txt unparsable", "url", robotsURL, "error", err)
		return nil, ""
	}
	return data, ""
}

func pathWithQuery(u *url.URL) string {
	path := u.Path
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return path
}
