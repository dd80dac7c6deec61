// Package goquery extracts document-level metadata (title, byline,
// description) from the head and body of a parsed document using CSS
// selectors.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Meta holds the metadata harvested from a document.
type Meta struct {
	Title       string
	Byline      string
	Description string
}

// ExtractMeta harvests metadata from the full document tree, before
// region selection discards everything outside the content root.
//
// Title resolution order: og:title, the title element, the first h1.
// Byline: author meta tags, then rel=author links.
func ExtractMeta(root *html.Node) Meta {
	doc := goquery.NewDocumentFromNode(root)

	return Meta{
		Title:       extractTitle(doc),
		Byline:      extractByline(doc),
		Description: extractDescription(doc),
	}
}

func extractTitle(doc *goquery.Document) string {
	if v := metaContent(doc, `meta[property="og:title"]`); v != "" {
		return v
	}
	if v := strings.TrimSpace(doc.Find("title").First().Text()); v != "" {
		return v
	}
	return strings.TrimSpace(doc.Find("h1").First().Text())
}

func extractByline(doc *goquery.Document) string {
	for _, sel := range []string{
		`meta[name="author"]`,
		`meta[property="article:author"]`,
		`meta[name="byl"]`,
	} {
		if v := metaContent(doc, sel); v != "" {
			return v
		}
	}
	return strings.TrimSpace(doc.Find(`a[rel="author"]`).First().Text())
}

func extractDescription(doc *goquery.Document) string {
	if v := metaContent(doc, `meta[name="description"]`); v != "" {
		return v
	}
	return metaContent(doc, `meta[property="og:description"]`)
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}
