// Package goquery implements scrapesense.Extractor with goquery and cascadia.
package goquery

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/fwojciec/scrapesense"
	"golang.org/x/net/html"
)

// Ensure Extractor implements scrapesense.Extractor at compile time.
var _ scrapesense.Extractor = (*Extractor)(nil)

// Extractor selects nodes with a CSS selector and returns their text.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the trimmed descendant text of all nodes matching selector.
//
// goquery's Find treats an unparsable selector as matching nothing, so the
// selector is compiled with cascadia first to report EINVALID distinctly.
func (e *Extractor) Extract(markup, selector string) (string, error) {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return "", scrapesense.Errorf(scrapesense.EINVALID, "selector required")
	}

	matcher, err := cascadia.Compile(selector)
	if err != nil {
		return "", scrapesense.Errorf(scrapesense.EINVALID, "invalid selector %q: %v", selector, err)
	}

	if strings.TrimSpace(markup) == "" {
		return "", scrapesense.Errorf(scrapesense.ENOTFOUND, "empty markup")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	text := strings.TrimSpace(descendantText(doc.FindMatcher(matcher)))
	if text == "" {
		return "", scrapesense.Errorf(scrapesense.ENOTFOUND, "selector %q matched no text", selector)
	}

	return text, nil
}

// descendantText concatenates the text of every matched node in document
// order. A match nested inside an earlier match is skipped so its text is
// not counted twice.
func descendantText(sel *goquery.Selection) string {
	var sb strings.Builder
	var last *html.Node
	for _, n := range sel.Nodes {
		if last != nil && contains(last, n) {
			continue
		}
		sb.WriteString(goquery.NewDocumentFromNode(n).Text())
		last = n
	}
	return sb.String()
}

// contains reports whether n is a descendant of root.
func contains(root, n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p == root {
			return true
		}
	}
	return false
}
