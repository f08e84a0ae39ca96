// Package extractor turns fetched HTML into the structured page snapshot
// served by the API. Parsing happens once per page; the field extractors
// fan out over the shared tree and apply their caps independently.
package extractor

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"

	"github.com/use-agent/sift/fingerprint"
	"github.com/use-agent/sift/models"
)

// Extractor holds the per-service extraction policy: collection caps and
// the shared markdown converter. One instance serves all requests.
type Extractor struct {
	limits Limits
	conv   *converter.Converter
}

// New creates an Extractor with the given limits.
func New(limits Limits) *Extractor {
	return &Extractor{limits: limits, conv: newMarkdownConverter()}
}

// Extract walks the parsed page and assembles the structured snapshot.
// Request-scoped fields (url, fetched_url, content_type, warnings) are the
// assembler's job; everything derived from the document is filled in here.
func (e *Extractor) Extract(p *Page) *models.ExtractedPage {
	out := &models.ExtractedPage{
		Headings:   make(map[string][]string),
		MetaTags:   make(map[string]string),
		SocialTags: make(map[string]string),
		Warnings:   []string{},
	}

	// ── 1. Identity: title, description, language ────────────────────
	out.Title = collapse(p.doc.Find("title").First().Text())
	out.Description = strings.TrimSpace(p.doc.Find(`meta[name="description"]`).First().AttrOr("content", ""))
	out.Language = strings.TrimSpace(p.doc.Find("html").First().AttrOr("lang", ""))

	// ── 2. Visible text ──────────────────────────────────────────────
	text := visibleText(p.doc)
	out.FullText = text
	out.WordCount = len(strings.Fields(text))
	out.TextExcerpt = truncateRunes(text, e.limits.MaxExcerptChars, "…")

	// ── 3. Resource URLs ─────────────────────────────────────────────
	out.Links = collectAttrURLs(p, "a[href]", "href", e.limits.MaxLinks)
	out.Images = collectAttrURLs(p, "img[src]", "src", e.limits.MaxImages)
	out.Videos = collectAttrURLs(p, "video[src], video > source[src]", "src", e.limits.MaxVideos)
	out.Scripts = collectAttrURLs(p, "script[src]", "src", e.limits.MaxScripts)
	out.Stylesheets = collectAttrURLs(p, `link[rel~="stylesheet"][href]`, "href", e.limits.MaxStylesheets)

	// ── 4. Document structure ────────────────────────────────────────
	out.Headings = extractHeadings(p, e.limits.MaxHeadings)
	out.Tables = extractTables(p, e.limits.MaxTables, e.limits.MaxTableRows)
	out.Forms = extractForms(p, e.limits.MaxForms, e.limits.MaxFormInputs)
	out.Buttons = extractButtons(p, e.limits.MaxButtons)
	out.Lists = extractLists(p, e.limits.MaxLists, e.limits.MaxListItems)
	out.Quotes = extractQuotes(p, e.limits.MaxQuotes)
	out.CodeBlocks = extractCodeBlocks(p, e.limits.MaxCodeBlocks, e.limits.MaxCodeBlockChars)

	// ── 5. Metadata ──────────────────────────────────────────────────
	out.MetaTags, out.SocialTags = extractMeta(p)

	// ── 6. Readable content as Markdown ─────────────────────────────
	out.ContentMarkdown = e.buildMarkdown(p)

	// ── 7. Change-detection fingerprints ─────────────────────────────
	out.Fingerprint = fingerprint.Hex(fingerprint.Text(text))
	out.DOMFingerprint = fingerprint.Hex(fingerprint.DOM(p.rawHTML))

	return out
}

// collapse trims a string and squeezes internal whitespace runs to single
// spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
