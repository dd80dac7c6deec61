// Package trafilatura provides an alternative Extractor backed by
// go-trafilatura, useful for comparing the native pipeline against an
// established engine on the same documents.
package trafilatura

import (
	"bytes"
	"context"
	"net/url"
	"strings"

	dragparser "github.com/FirinKinuo/drag-parser"
	"github.com/FirinKinuo/drag-parser/render"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements dragparser.Extractor at compile time.
var _ dragparser.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura behind the engine's Extractor
// contract.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes the document with trafilatura and adapts the
// result to an ExtractedDocument.
func (e *Extractor) Extract(ctx context.Context, doc *dragparser.Document) (*dragparser.ExtractedDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(doc.Raw) == 0 {
		return nil, dragparser.Errorf(dragparser.ENOCONTENT, "empty document")
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	opts := trafilatura.Options{
		EnableFallback: true,
	}
	if doc.BaseURL != "" {
		if u, err := url.Parse(doc.BaseURL); err == nil {
			opts.OriginalURL = u
		}
	}

	result, err := trafilatura.Extract(bytes.NewReader(doc.Raw), opts)
	if err != nil {
		return nil, dragparser.Errorf(dragparser.ENOCONTENT, "trafilatura: %v", err)
	}

	var contentHTML string
	var links []string
	if result.ContentNode != nil {
		contentHTML, err = renderNode(result.ContentNode)
		if err != nil {
			return nil, dragparser.Errorf(dragparser.EINTERNAL, "render content: %v", err)
		}
		links = collectLinks(result.ContentNode)
	}

	text := result.ContentText
	if text == "" && result.ContentNode != nil {
		text = render.Flatten(result.ContentNode)
	}

	return &dragparser.ExtractedDocument{
		ID:          dragparser.Fingerprint(doc.BaseURL, result.Metadata.Title),
		SourceURL:   doc.BaseURL,
		Title:       result.Metadata.Title,
		Byline:      result.Metadata.Author,
		Description: result.Metadata.Description,
		ContentHTML: contentHTML,
		Text:        text,
		Language:    result.Metadata.Language,
		WordCount:   len(strings.Fields(text)),
		Links:       links,
	}, nil
}

// renderNode converts an html.Node to a string.
func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// collectLinks gathers absolute hrefs from the content tree in
// document order, deduplicated.
func collectLinks(root *html.Node) []string {
	seen := make(map[string]bool)
	links := []string{}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}
				if u, err := url.Parse(strings.TrimSpace(attr.Val)); err == nil && u.IsAbs() {
					if !seen[attr.Val] {
						seen[attr.Val] = true
						links = append(links, u.String())
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return links
}
