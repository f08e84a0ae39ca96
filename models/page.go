package models

// TitleFallback is substituted when a page has no usable <title>.
const TitleFallback = "Untitled"

// ExtractedPage is the structured snapshot of a single scraped page.
// Every collection is initialized by the extractor, so JSON output always
// carries the full shape even when a category is empty.
type ExtractedPage struct {
	URL         string `json:"url"`         // URL as submitted by the caller
	FetchedURL  string `json:"fetched_url"` // final URL after redirects
	ContentType string `json:"content_type"`

	Title       string `json:"title"`
	Description string `json:"description"`
	Language    string `json:"language"`

	FullText    string `json:"full_text"`
	TextExcerpt string `json:"text_excerpt"`
	WordCount   int    `json:"word_count"`

	ContentMarkdown string `json:"content_markdown"`

	Links       []string `json:"links"`
	Images      []string `json:"images"`
	Videos      []string `json:"videos"`
	Scripts     []string `json:"scripts"`
	Stylesheets []string `json:"stylesheets"`

	Headings   map[string][]string `json:"headings"`
	Tables     []Table             `json:"tables"`
	Forms      []Form              `json:"forms"`
	Buttons    []Button            `json:"buttons"`
	Lists      []List              `json:"lists"`
	Quotes     []string            `json:"quotes"`
	CodeBlocks []string            `json:"code_blocks"`

	MetaTags   map[string]string `json:"meta_tags"`
	SocialTags map[string]string `json:"social_tags"`

	Fingerprint    string `json:"fingerprint"`
	DOMFingerprint string `json:"dom_fingerprint"`

	Warnings []string `json:"warnings"`
}

// Table holds one <table>: header cells (empty unless the first row uses
// <th>) plus the data rows.
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Form describes one <form> and its input-like children.
type Form struct {
	Action string      `json:"action"` // resolved to absolute, "" when missing
	Method string      `json:"method"`
	Inputs []FormInput `json:"inputs"`
}

// FormInput is a single input, select or textarea inside a form.
type FormInput struct {
	Type  string `json:"type"`
	Name  string `json:"name"`
	Label string `json:"label"` // "" when no label could be resolved
}

// Button captures clickable elements: <button> and button-typed <input>.
type Button struct {
	Text    string   `json:"text"`
	Type    string   `json:"type"`
	Classes []string `json:"classes"`
}

// List is an ordered or unordered list with its item texts.
type List struct {
	Type  string   `json:"type"` // "ordered" or "unordered"
	Items []string `json:"items"`
}
