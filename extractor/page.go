package extractor

import (
	"bytes"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/use-agent/sift/models"
)

// Page is the parsed form of a fetched document. The HTML is parsed exactly
// once; every extractor and guard walks the same tree read-only, so the
// order they run in cannot change what they see.
type Page struct {
	doc     *goquery.Document
	rawHTML string
	base    *url.URL
}

// ParsePage parses a fetch outcome into a Page. The final URL becomes the
// base for resolving relative references.
func ParsePage(outcome *models.FetchOutcome) (*Page, error) {
	root, err := html.Parse(bytes.NewReader(outcome.Body))
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeInternal, "Failed to parse page.", err)
	}
	base, err := url.Parse(outcome.FinalURL)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeInternal, "Failed to parse page.", err)
	}
	return &Page{
		doc:     goquery.NewDocumentFromNode(root),
		rawHTML: string(outcome.Body),
		base:    base,
	}, nil
}
