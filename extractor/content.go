package extractor

import (
	"log/slog"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	readability "github.com/go-shiori/go-readability"
)

// minContentLength is the minimum readability text length (in bytes) for
// the algorithm's output to count as the page's main content. Below it we
// assume readability missed and convert the whole document instead.
const minContentLength = 50

// newMarkdownConverter creates the shared, goroutine-safe converter:
// base strips script/style/head noise, commonmark renders the standard
// constructs, and the table plugin keeps tabular data readable with
// minimal cell padding.
func newMarkdownConverter() *converter.Converter {
	return converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(
				table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
			),
		),
	)
}

// buildMarkdown renders the page's readable core as Markdown. Readability
// runs on the raw HTML (it rewrites the tree it is given, so it never sees
// the shared parse). Failures fall back to converting the full document;
// a conversion failure yields an empty string, never an error.
func (e *Extractor) buildMarkdown(p *Page) string {
	content := p.rawHTML
	article, err := readability.FromReader(strings.NewReader(p.rawHTML), p.base)
	switch {
	case err != nil:
		slog.Debug("readability failed, converting full document",
			"url", p.base.String(), "error", err)
	case len(strings.TrimSpace(article.TextContent)) < minContentLength:
		slog.Debug("readability output too short, converting full document",
			"url", p.base.String(), "length", len(article.TextContent))
	default:
		content = article.Content
	}

	domain := p.base.Scheme + "://" + p.base.Host
	md, err := e.conv.ConvertString(content, converter.WithDomain(domain))
	if err != nil {
		slog.Warn("markdown conversion failed", "url", p.base.String(), "error", err)
		return ""
	}
	return strings.TrimSpace(md)
}
