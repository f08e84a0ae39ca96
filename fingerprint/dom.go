package fingerprint

import (
	"strings"

	"golang.org/x/net/html"
)

// DOM computes a SimHash of a document's structure. Only the sequence of
// opened tag names matters: text, attributes and comments are ignored, so
// a template serving fresh content keeps a stable DOM fingerprint while a
// redesign moves it.
func DOM(htmlStr string) uint64 {
	tags := tagSequence(htmlStr)
	if len(tags) == 0 {
		return 0
	}

	// Shingling keeps local ordering significant; documents too short to
	// shingle hash the raw tag sequence.
	shingles := shingle(tags, 3)
	if len(shingles) == 0 {
		return simhash(tags)
	}
	return simhash(shingles)
}

// tagSequence tokenizes htmlStr and collects opened tag names in order.
func tagSequence(htmlStr string) []string {
	z := html.NewTokenizer(strings.NewReader(htmlStr))
	var tags []string
	for {
		switch z.Next() {
		case html.ErrorToken:
			return tags
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tags = append(tags, string(name))
		}
	}
}

// shingle builds overlapping n-grams out of tokens.
func shingle(tokens []string, n int) []string {
	if len(tokens) < n {
		return nil
	}
	out := make([]string, 0, len(tokens)-n+1)
	for i := 0; i <= len(tokens)-n; i++ {
		out = append(out, strings.Join(tokens[i:i+n], "_"))
	}
	return out
}
