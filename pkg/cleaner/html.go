package cleaner

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// nonTextElements hold content that is never rendered as body text.
const nonTextElements = "script, style, template, noscript"

// tagRegex is the fallback used if the document cannot be parsed at all.
var tagRegex = regexp.MustCompile(`<[^>]*>`)

// HTMLText strips markup from question bodies, yielding plain text.
//
// Text nodes are joined with a single space so that adjacent block elements
// ("<p>foo</p><p>bar</p>") do not merge into one word. Entities are decoded.
// Malformed markup never produces an error; the HTML5 parsing algorithm
// recovers from any input.
type HTMLText struct{}

// NewHTMLText creates an HTML stripping cleaner.
func NewHTMLText() *HTMLText {
	return &HTMLText{}
}

// Name returns the cleaner type.
func (h *HTMLText) Name() string {
	return "html-text"
}

// Clean returns the plain text of raw. It never returns an error.
func (h *HTMLText) Clean(raw string) (string, error) {
	text, _ := StripHTML(raw)
	return text, nil
}

// StripHTML extracts the text of raw. ok is false when the document could
// not be parsed and a regex tag strip was used instead.
func StripHTML(raw string) (text string, ok bool) {
	if raw == "" {
		return "", true
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return tagRegex.ReplaceAllString(raw, " "), false
	}

	doc.Find(nonTextElements).Remove()

	var parts []string
	for _, n := range doc.Nodes {
		collectText(n, &parts)
	}
	return strings.Join(parts, " "), true
}

// collectText appends the text nodes under n in document order.
func collectText(n *html.Node, parts *[]string) {
	switch n.Type {
	case html.TextNode:
		if n.Data != "" {
			*parts = append(*parts, n.Data)
		}
		return
	case html.CommentNode, html.DoctypeNode:
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}
