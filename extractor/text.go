package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Elements whose text is never rendered to a reader.
var invisibleContainers = map[string]struct{}{
	"script":   {},
	"style":    {},
	"noscript": {},
	"iframe":   {},
	"template": {},
}

// visibleText walks the tree and returns the page's rendered text: each
// text node whitespace-normalized to single-spaced words, nodes joined by
// newlines, invisible containers skipped entirely.
func visibleText(doc *goquery.Document) string {
	var lines []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if fields := strings.Fields(n.Data); len(fields) > 0 {
				lines = append(lines, strings.Join(fields, " "))
			}
			return
		case html.CommentNode:
			return
		case html.ElementNode:
			if _, skip := invisibleContainers[n.Data]; skip {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, root := range doc.Nodes {
		walk(root)
	}
	return strings.Join(lines, "\n")
}

// truncateRunes cuts s to max runes, appending suffix only when a cut was
// made. Counting runes keeps multi-byte text intact at the boundary.
func truncateRunes(s string, max int, suffix string) string {
	if max <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == max {
			return s[:i] + suffix
		}
		count++
	}
	return s
}
