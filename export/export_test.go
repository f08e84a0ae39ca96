package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/use-agent/sift/models"
)

func sampleResult() *models.ScrapeResult {
	return &models.ScrapeResult{
		Success: true,
		ExtractedPage: models.ExtractedPage{
			URL:         "https://example.com/article",
			FetchedURL:  "https://example.com/article",
			ContentType: "text/html",
			Title:       "Sample",
			Description: "A sample page",
			Language:    "en",
			FullText:    "Sample body text",
			TextExcerpt: "Sample body text",
			WordCount:   3,
			Links:       []string{"https://example.com/a", "https://example.com/b"},
			Images:      []string{},
			Videos:      []string{},
			Scripts:     []string{},
			Stylesheets: []string{},
			Headings: map[string][]string{
				"h1": {"Sample"}, "h2": {"Part one", "Part two"},
				"h3": {}, "h4": {}, "h5": {}, "h6": {},
			},
			Tables: []models.Table{
				{Headers: []string{"Name", "Age"}, Rows: [][]string{{"Ada", "36"}}},
			},
			Forms: []models.Form{
				{Action: "https://example.com/search", Method: "GET", Inputs: []models.FormInput{
					{Type: "text", Name: "q", Label: "Query"},
				}},
			},
			Buttons:    []models.Button{{Text: "Go", Type: "submit", Classes: []string{}}},
			Lists:      []models.List{{Type: "unordered", Items: []string{"one", "two"}}},
			Quotes:     []string{},
			CodeBlocks: []string{},
			MetaTags:   map[string]string{"viewport": "width=device-width", "author": "Ada"},
			SocialTags: map[string]string{"og:title": "Sample"},
			Warnings:   []string{},
		},
	}
}

func TestRender_JSON(t *testing.T) {
	data, contentType, err := Render(sampleResult(), FormatJSON)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if contentType != "application/json; charset=utf-8" {
		t.Errorf("content type = %q", contentType)
	}

	var back models.ScrapeResult
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if back.Title != "Sample" || !back.Success {
		t.Errorf("round trip lost fields: %+v", back)
	}
}

func TestRender_JSON_EmptyFormatDefaults(t *testing.T) {
	if _, contentType, err := Render(sampleResult(), ""); err != nil || !strings.HasPrefix(contentType, "application/json") {
		t.Errorf("empty format: type=%q err=%v", contentType, err)
	}
}

func TestRender_CSV(t *testing.T) {
	data, contentType, err := Render(sampleResult(), FormatCSV)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if contentType != "text/csv; charset=utf-8" {
		t.Errorf("content type = %q", contentType)
	}

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(rows) == 0 || rows[0][0] != "field" || rows[0][1] != "value" {
		t.Fatalf("missing header row, got %v", rows[:1])
	}

	byField := map[string][]string{}
	for _, row := range rows[1:] {
		byField[row[0]] = append(byField[row[0]], row[1])
	}

	if got := byField["title"]; len(got) != 1 || got[0] != "Sample" {
		t.Errorf("title rows = %v", got)
	}
	if got := byField["links"]; len(got) != 2 {
		t.Errorf("links rows = %v, want two", got)
	}
	if got := byField["headings.h2"]; len(got) != 2 {
		t.Errorf("headings.h2 rows = %v, want two", got)
	}
	if got := byField["tables[0].headers"]; len(got) != 1 || got[0] != "Name | Age" {
		t.Errorf("table header rows = %v", got)
	}
	if got := byField["tables[0].rows"]; len(got) != 1 || got[0] != "Ada | 36" {
		t.Errorf("table data rows = %v", got)
	}
	if got := byField["forms[0].inputs"]; len(got) != 1 || got[0] != "text name=q label=Query" {
		t.Errorf("form input rows = %v", got)
	}
	if got := byField["buttons"]; len(got) != 1 || got[0] != "Go (submit)" {
		t.Errorf("button rows = %v", got)
	}
	if got := byField["lists[0].unordered"]; len(got) != 1 || got[0] != "one | two" {
		t.Errorf("list rows = %v", got)
	}
	if got := byField["meta_tags.author"]; len(got) != 1 || got[0] != "Ada" {
		t.Errorf("meta rows = %v", got)
	}
}

func TestRender_CSV_MapKeysSorted(t *testing.T) {
	res := sampleResult()
	res.MetaTags = map[string]string{"zzz": "1", "aaa": "2", "mmm": "3"}

	data, _, err := Render(res, FormatCSV)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	text := string(data)
	za := strings.Index(text, "meta_tags.aaa")
	zm := strings.Index(text, "meta_tags.mmm")
	zz := strings.Index(text, "meta_tags.zzz")
	if za < 0 || zm < 0 || zz < 0 || !(za < zm && zm < zz) {
		t.Errorf("meta keys not sorted: aaa=%d mmm=%d zzz=%d", za, zm, zz)
	}
}

func TestRender_CSV_Analysis(t *testing.T) {
	res := sampleResult()
	res.Analysis = &models.AnalysisResult{
		Summary:        "short",
		Category:       "blog",
		Sentiment:      "neutral",
		KeyPoints:      []string{"p1", "p2"},
		StructuredData: map[string]string{"price": "10"},
	}

	data, _, err := Render(res, FormatCSV)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for _, want := range []string{"analysis.summary,short", "analysis.category,blog", "analysis.structured_data.price,10"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("csv missing %q", want)
		}
	}
}

func TestRender_TXT(t *testing.T) {
	res := sampleResult()
	res.Warnings = []string{"robots.txt could not be downloaded; assuming allow."}

	data, contentType, err := Render(res, FormatTXT)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if contentType != "text/plain; charset=utf-8" {
		t.Errorf("content type = %q", contentType)
	}

	text := string(data)
	for _, want := range []string{
		"URL: https://example.com/article",
		"TITLE: Sample",
		"WORD COUNT: 3",
		"EXCERPT\nSample body text",
		"[h2] Part one",
		"LINKS\n  - https://example.com/a",
		"WARNINGS\n  - robots.txt could not be downloaded",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("txt missing %q in:\n%s", want, text)
		}
	}
	if strings.Contains(text, "QUOTES") {
		t.Error("empty sections should be skipped")
	}
}

func TestRender_UnknownFormat(t *testing.T) {
	_, _, err := Render(sampleResult(), "xml")
	if err == nil {
		t.Fatal("expected error for unknown format")
	}
	var se *models.ScrapeError
	if !errors.As(err, &se) || se.Code != models.ErrCodeInvalidInput {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		url, format, want string
	}{
		{"https://example.com/a/b", "json", "example.com.json"},
		{"https://sub.example.org", "csv", "sub.example.org.csv"},
		{"not a url", "txt", "page.txt"},
		{"https://example.com", "", "example.com.json"},
	}
	for _, tt := range tests {
		if got := Filename(tt.url, tt.format); got != tt.want {
			t.Errorf("Filename(%q, %q) = %q, want %q", tt.url, tt.format, got, tt.want)
		}
	}
}
