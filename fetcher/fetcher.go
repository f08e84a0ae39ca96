// Package fetcher downloads target pages under the service's safety rails.
// Every connection goes through the netguard dialer, every redirect hop is
// re-screened before it is followed, and bodies are read through a hard
// size cap so an attacker-controlled page cannot exhaust memory.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/use-agent/sift/config"
	"github.com/use-agent/sift/models"
	"github.com/use-agent/sift/netguard"
)

// Media types the parser understands. Everything else is rejected before
// the body is read.
var scrapableTypes = map[string]struct{}{
	"text/html":             {},
	"application/xhtml+xml": {},
}

// Fetcher performs guarded GET requests.
type Fetcher struct {
	client *http.Client
	cfg    config.FetchConfig
}

// New creates a Fetcher whose transport dials through guard and whose
// redirect handling re-validates every hop.
func New(cfg config.FetchConfig, guard *netguard.Guard) *Fetcher {
	transport := &http.Transport{
		DialContext:         guard.DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   cfg.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= cfg.MaxRedirects {
				return models.NewScrapeError(models.ErrCodeFetchFailed, models.MsgFetchFailed,
					fmt.Errorf("stopped after %d redirects", cfg.MaxRedirects))
			}
			if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
				return models.NewScrapeError(models.ErrCodeInvalidURL, models.MsgInvalidURL,
					fmt.Errorf("redirect to %q", req.URL))
			}
			return guard.CheckHost(req.Context(), req.URL.Hostname())
		},
	}

	return &Fetcher{client: client, cfg: cfg}
}

// Fetch downloads u and returns the capped body with its transport facts.
// The URL must already have passed guard validation.
func (f *Fetcher) Fetch(ctx context.Context, u *url.URL) (*models.FetchOutcome, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeFetchFailed, models.MsgFetchFailed, err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.1")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		// Guard and redirect rejections carry their own code; everything
		// else is a transport failure reported generically.
		var se *models.ScrapeError
		if errors.As(err, &se) {
			return nil, se
		}
		return nil, models.NewScrapeError(models.ErrCodeFetchFailed, models.MsgFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, models.NewScrapeError(models.ErrCodeFetchFailed, models.MsgFetchFailed,
			fmt.Errorf("upstream status %d", resp.StatusCode))
	}

	mediaType := mediaTypeOf(resp.Header.Get("Content-Type"))
	if _, ok := scrapableTypes[mediaType]; !ok {
		return nil, models.NewScrapeError(models.ErrCodeUnsupportedContent, models.MsgUnsupportedContent,
			fmt.Errorf("content type %q", resp.Header.Get("Content-Type")))
	}

	// A declared length over the cap is refused without reading a byte.
	if resp.ContentLength > f.cfg.MaxBodyBytes {
		return nil, models.NewScrapeError(models.ErrCodePayloadTooLarge, models.MsgPayloadTooLarge,
			fmt.Errorf("declared length %d exceeds %d", resp.ContentLength, f.cfg.MaxBodyBytes))
	}

	// Read one byte past the cap so truncated-at-cap and over-cap are
	// distinguishable.
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.cfg.MaxBodyBytes+1))
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeFetchFailed, models.MsgFetchFailed, err)
	}
	if int64(len(body)) > f.cfg.MaxBodyBytes {
		return nil, models.NewScrapeError(models.ErrCodePayloadTooLarge, models.MsgPayloadTooLarge,
			fmt.Errorf("body exceeds %d bytes", f.cfg.MaxBodyBytes))
	}

	return &models.FetchOutcome{
		Body:        body,
		ContentType: mediaType,
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
	}, nil
}

// mediaTypeOf strips parameters like charset from a Content-Type header.
func mediaTypeOf(header string) string {
	mt := strings.SplitN(header, ";", 2)[0]
	return strings.ToLower(strings.TrimSpace(mt))
}
