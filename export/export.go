// Package export renders a scrape result into downloadable documents.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/use-agent/sift/models"
)

// Supported output formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatTXT  = "txt"
)

var headingLevels = []string{"h1", "h2", "h3", "h4", "h5", "h6"}

// Render serializes res into the requested format and returns the bytes
// together with the matching Content-Type.
func Render(res *models.ScrapeResult, format string) ([]byte, string, error) {
	switch format {
	case FormatJSON, "":
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return nil, "", fmt.Errorf("marshal result: %w", err)
		}
		return data, "application/json; charset=utf-8", nil
	case FormatCSV:
		data, err := renderCSV(res)
		if err != nil {
			return nil, "", err
		}
		return data, "text/csv; charset=utf-8", nil
	case FormatTXT:
		return renderText(res), "text/plain; charset=utf-8", nil
	default:
		return nil, "", models.NewScrapeError(models.ErrCodeInvalidInput,
			fmt.Sprintf("Unknown export format %q.", format), nil)
	}
}

// Filename derives a download file name from the page URL and format.
func Filename(pageURL, format string) string {
	name := "page"
	if u, err := url.Parse(pageURL); err == nil && u.Hostname() != "" {
		name = u.Hostname()
	}
	if format == "" {
		format = FormatJSON
	}
	return name + "." + format
}

// renderCSV flattens the result into field,value rows. Scalar fields emit
// one row, list fields one row per item with the field name repeated, and
// map fields one row per key in sorted order.
func renderCSV(res *models.ScrapeResult) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	rows := [][]string{{"field", "value"}}
	add := func(field, value string) {
		rows = append(rows, []string{field, value})
	}
	addList := func(field string, values []string) {
		for _, v := range values {
			add(field, v)
		}
	}

	p := res.ExtractedPage
	add("url", p.URL)
	add("fetched_url", p.FetchedURL)
	add("content_type", p.ContentType)
	add("title", p.Title)
	add("description", p.Description)
	add("language", p.Language)
	add("word_count", strconv.Itoa(p.WordCount))
	add("fingerprint", p.Fingerprint)
	add("dom_fingerprint", p.DOMFingerprint)
	add("text_excerpt", p.TextExcerpt)

	for _, level := range headingLevels {
		addList("headings."+level, p.Headings[level])
	}
	addList("links", p.Links)
	addList("images", p.Images)
	addList("videos", p.Videos)
	addList("scripts", p.Scripts)
	addList("stylesheets", p.Stylesheets)

	for i, t := range p.Tables {
		if len(t.Headers) > 0 {
			add(fmt.Sprintf("tables[%d].headers", i), strings.Join(t.Headers, " | "))
		}
		for _, row := range t.Rows {
			add(fmt.Sprintf("tables[%d].rows", i), strings.Join(row, " | "))
		}
	}
	for i, f := range p.Forms {
		add(fmt.Sprintf("forms[%d].action", i), f.Action)
		add(fmt.Sprintf("forms[%d].method", i), f.Method)
		for _, in := range f.Inputs {
			add(fmt.Sprintf("forms[%d].inputs", i), formatInput(in))
		}
	}
	for _, b := range p.Buttons {
		add("buttons", formatButton(b))
	}
	for i, l := range p.Lists {
		add(fmt.Sprintf("lists[%d].%s", i, l.Type), strings.Join(l.Items, " | "))
	}
	addList("quotes", p.Quotes)
	addList("code_blocks", p.CodeBlocks)
	addSortedMap(add, "meta_tags.", p.MetaTags)
	addSortedMap(add, "social_tags.", p.SocialTags)
	addList("warnings", p.Warnings)

	if a := res.Analysis; a != nil {
		add("analysis.summary", a.Summary)
		add("analysis.category", a.Category)
		add("analysis.sentiment", a.Sentiment)
		addList("analysis.key_points", a.KeyPoints)
		addList("analysis.entities", a.Entities)
		addList("analysis.topics", a.Topics)
		addList("analysis.keywords", a.Keywords)
		addList("analysis.insights", a.Insights)
		addSortedMap(add, "analysis.structured_data.", a.StructuredData)
	}

	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

func addSortedMap(add func(field, value string), prefix string, m map[string]string) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		add(prefix+k, m[k])
	}
}

func formatInput(in models.FormInput) string {
	parts := []string{in.Type}
	if in.Name != "" {
		parts = append(parts, "name="+in.Name)
	}
	if in.Label != "" {
		parts = append(parts, "label="+in.Label)
	}
	return strings.Join(parts, " ")
}

func formatButton(b models.Button) string {
	if b.Text == "" {
		return "(" + b.Type + ")"
	}
	return b.Text + " (" + b.Type + ")"
}

// renderText lays the result out as labeled plain-text sections, skipping
// sections with nothing to show.
func renderText(res *models.ScrapeResult) []byte {
	var b strings.Builder
	p := res.ExtractedPage

	field := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&b, "%s: %s\n", label, value)
		}
	}
	section := func(label string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(&b, "\n%s\n", label)
		for _, it := range items {
			fmt.Fprintf(&b, "  - %s\n", it)
		}
	}

	field("URL", p.URL)
	field("FETCHED URL", p.FetchedURL)
	field("CONTENT TYPE", p.ContentType)
	field("TITLE", p.Title)
	field("DESCRIPTION", p.Description)
	field("LANGUAGE", p.Language)
	field("WORD COUNT", strconv.Itoa(p.WordCount))
	field("FINGERPRINT", p.Fingerprint)
	field("DOM FINGERPRINT", p.DOMFingerprint)

	if p.TextExcerpt != "" {
		fmt.Fprintf(&b, "\nEXCERPT\n%s\n", p.TextExcerpt)
	}

	var headings []string
	for _, level := range headingLevels {
		for _, h := range p.Headings[level] {
			headings = append(headings, "["+level+"] "+h)
		}
	}
	section("HEADINGS", headings)
	section("LINKS", p.Links)
	section("IMAGES", p.Images)
	section("VIDEOS", p.Videos)
	section("QUOTES", p.Quotes)
	section("WARNINGS", p.Warnings)

	if a := res.Analysis; a != nil {
		b.WriteString("\nANALYSIS\n")
		field("  SUMMARY", a.Summary)
		field("  CATEGORY", a.Category)
		field("  SENTIMENT", a.Sentiment)
		section("KEY POINTS", a.KeyPoints)
		section("TOPICS", a.Topics)
		section("INSIGHTS", a.Insights)
	}

	return []byte(b.String())
}
