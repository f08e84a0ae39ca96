package extractor

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/sift/models"
)

// resolveURL turns a raw attribute value into an absolute http(s) URL
// against base. Fragment-only references, javascript: pseudo-links, data:
// URIs and unparsable values are dropped.
func resolveURL(base *url.URL, raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "#") {
		return "", false
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", false
	}
	return resolved.String(), true
}

// collectAttrURLs gathers absolute URLs from attr across the elements
// matching selector, deduplicated in first-seen order and capped at limit.
func collectAttrURLs(p *Page, selector, attr string, limit int) []string {
	out := make([]string, 0)
	seen := make(map[string]struct{})
	p.doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		raw, ok := s.Attr(attr)
		if !ok {
			return true
		}
		resolved, ok := resolveURL(p.base, raw)
		if !ok {
			return true
		}
		if _, dup := seen[resolved]; dup {
			return true
		}
		seen[resolved] = struct{}{}
		out = append(out, resolved)
		return len(out) < limit
	})
	return out
}

// extractHeadings buckets h1-h6 texts by level, preserving document order,
// with one total cap across all levels. All six keys are always present.
func extractHeadings(p *Page, limit int) map[string][]string {
	headings := map[string][]string{
		"h1": {}, "h2": {}, "h3": {}, "h4": {}, "h5": {}, "h6": {},
	}
	total := 0
	p.doc.Find("h1, h2, h3, h4, h5, h6").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := collapse(s.Text())
		if text == "" {
			return true
		}
		level := goquery.NodeName(s)
		headings[level] = append(headings[level], text)
		total++
		return total < limit
	})
	return headings
}

// extractTables captures each <table>. The first row becomes the header
// only when it consists of <th> cells; otherwise all rows are data rows.
// A table without rows still yields an entry with empty headers and rows.
func extractTables(p *Page, maxTables, maxRows int) []models.Table {
	tables := make([]models.Table, 0)
	p.doc.Find("table").EachWithBreak(func(_ int, t *goquery.Selection) bool {
		table := models.Table{Headers: []string{}, Rows: [][]string{}}
		rows := t.Find("tr")

		start := 0
		if rows.Length() > 0 {
			first := rows.First()
			if first.ChildrenFiltered("th").Length() > 0 && first.ChildrenFiltered("td").Length() == 0 {
				first.ChildrenFiltered("th").Each(func(_ int, th *goquery.Selection) {
					table.Headers = append(table.Headers, collapse(th.Text()))
				})
				start = 1
			}
		}

		rows.EachWithBreak(func(i int, row *goquery.Selection) bool {
			if i < start {
				return true
			}
			cells := []string{}
			row.ChildrenFiltered("td, th").Each(func(_ int, c *goquery.Selection) {
				cells = append(cells, collapse(c.Text()))
			})
			if len(cells) > 0 {
				table.Rows = append(table.Rows, cells)
			}
			return len(table.Rows) < maxRows
		})

		tables = append(tables, table)
		return len(tables) < maxTables
	})
	return tables
}

// extractForms captures each <form> with its input-like children. Label
// resolution tries label[for], then a wrapping <label>, then aria-label
// and placeholder; when everything fails the label is simply empty.
func extractForms(p *Page, maxForms, maxInputs int) []models.Form {
	labelFor := labelIndex(p.doc)

	forms := make([]models.Form, 0)
	p.doc.Find("form").EachWithBreak(func(_ int, f *goquery.Selection) bool {
		form := models.Form{Inputs: []models.FormInput{}}
		if action, ok := f.Attr("action"); ok {
			if resolved, ok := resolveURL(p.base, action); ok {
				form.Action = resolved
			}
		}
		form.Method = strings.ToUpper(strings.TrimSpace(f.AttrOr("method", "")))
		if form.Method == "" {
			form.Method = "GET"
		}

		f.Find("input, select, textarea").EachWithBreak(func(_ int, in *goquery.Selection) bool {
			form.Inputs = append(form.Inputs, models.FormInput{
				Type:  inputType(in),
				Name:  in.AttrOr("name", ""),
				Label: resolveLabel(in, labelFor),
			})
			return len(form.Inputs) < maxInputs
		})

		forms = append(forms, form)
		return len(forms) < maxForms
	})
	return forms
}

func inputType(s *goquery.Selection) string {
	switch goquery.NodeName(s) {
	case "select":
		return "select"
	case "textarea":
		return "textarea"
	default:
		t := strings.ToLower(strings.TrimSpace(s.AttrOr("type", "")))
		if t == "" {
			return "text"
		}
		return t
	}
}

// labelIndex maps label[for] targets to label text in one pass. The first
// label for an id wins.
func labelIndex(doc *goquery.Document) map[string]string {
	idx := make(map[string]string)
	doc.Find("label[for]").Each(func(_ int, l *goquery.Selection) {
		id := l.AttrOr("for", "")
		if id == "" {
			return
		}
		if _, ok := idx[id]; ok {
			return
		}
		if text := collapse(l.Text()); text != "" {
			idx[id] = text
		}
	})
	return idx
}

func resolveLabel(in *goquery.Selection, labelFor map[string]string) string {
	if id := in.AttrOr("id", ""); id != "" {
		if text, ok := labelFor[id]; ok {
			return text
		}
	}
	if wrapped := in.ParentsFiltered("label").First(); wrapped.Length() > 0 {
		if text := collapse(wrapped.Text()); text != "" {
			return text
		}
	}
	if aria := strings.TrimSpace(in.AttrOr("aria-label", "")); aria != "" {
		return aria
	}
	return strings.TrimSpace(in.AttrOr("placeholder", ""))
}

// extractButtons captures <button> elements and button-typed inputs.
func extractButtons(p *Page, limit int) []models.Button {
	buttons := make([]models.Button, 0)
	selector := `button, input[type="submit"], input[type="button"], input[type="reset"]`
	p.doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		b := models.Button{Classes: []string{}}
		if goquery.NodeName(s) == "button" {
			b.Text = collapse(s.Text())
			b.Type = strings.ToLower(strings.TrimSpace(s.AttrOr("type", "submit")))
		} else {
			b.Text = strings.TrimSpace(s.AttrOr("value", ""))
			b.Type = strings.ToLower(s.AttrOr("type", ""))
		}
		if classes := strings.Fields(s.AttrOr("class", "")); len(classes) > 0 {
			b.Classes = classes
		}
		buttons = append(buttons, b)
		return len(buttons) < limit
	})
	return buttons
}

// extractLists captures <ul> and <ol> with their direct item texts.
func extractLists(p *Page, maxLists, maxItems int) []models.List {
	lists := make([]models.List, 0)
	p.doc.Find("ul, ol").EachWithBreak(func(_ int, l *goquery.Selection) bool {
		list := models.List{Type: "unordered", Items: []string{}}
		if goquery.NodeName(l) == "ol" {
			list.Type = "ordered"
		}
		l.ChildrenFiltered("li").EachWithBreak(func(_ int, li *goquery.Selection) bool {
			if text := collapse(li.Text()); text != "" {
				list.Items = append(list.Items, text)
			}
			return len(list.Items) < maxItems
		})
		lists = append(lists, list)
		return len(lists) < maxLists
	})
	return lists
}

func extractQuotes(p *Page, limit int) []string {
	quotes := make([]string, 0)
	p.doc.Find("blockquote").EachWithBreak(func(_ int, q *goquery.Selection) bool {
		if text := collapse(q.Text()); text != "" {
			quotes = append(quotes, text)
		}
		return len(quotes) < limit
	})
	return quotes
}

// extractCodeBlocks captures <pre> blocks, preferring the inner <code>
// when present. Inner whitespace is preserved; each block is truncated to
// maxChars runes without an ellipsis so snippets stay pasteable.
func extractCodeBlocks(p *Page, limit, maxChars int) []string {
	blocks := make([]string, 0)
	p.doc.Find("pre").EachWithBreak(func(_ int, pre *goquery.Selection) bool {
		text := pre.Text()
		if code := pre.Find("code"); code.Length() > 0 {
			text = code.First().Text()
		}
		text = strings.Trim(text, "\n")
		if strings.TrimSpace(text) == "" {
			return true
		}
		blocks = append(blocks, truncateRunes(text, maxChars, ""))
		return len(blocks) < limit
	})
	return blocks
}

// extractMeta collects the flat metadata map plus the social subset.
// Names are lowercased in meta_tags; social keys keep their og:/twitter:
// prefixes verbatim. Duplicate names resolve last-write-wins.
func extractMeta(p *Page) (map[string]string, map[string]string) {
	meta := make(map[string]string)
	social := make(map[string]string)
	p.doc.Find("meta").Each(func(_ int, m *goquery.Selection) {
		content, ok := m.Attr("content")
		if !ok || content == "" {
			return
		}
		name := m.AttrOr("name", "")
		if name == "" {
			name = m.AttrOr("property", "")
		}
		if name == "" {
			name = m.AttrOr("http-equiv", "")
		}
		if name == "" {
			return
		}
		meta[strings.ToLower(name)] = content

		if prop := m.AttrOr("property", ""); strings.HasPrefix(prop, "og:") {
			social[prop] = content
		}
		if n := m.AttrOr("name", ""); strings.HasPrefix(n, "twitter:") {
			social[n] = content
		}
	})
	return meta, social
}
