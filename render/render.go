// Package render serializes a clean content tree plus extracted
// metadata into the final immutable ExtractedDocument. It never
// mutates its inputs, and two runs over byte-identical input and
// configuration produce byte-identical output: attributes are written
// in sorted order and text is flattened to canonical whitespace.
package render

import (
	"sort"
	"strings"

	dragparser "github.com/FirinKinuo/drag-parser"
	"github.com/beevik/etree"
	"golang.org/x/net/html"
)

// Metadata carries the document-level fields extracted outside the
// content region.
type Metadata struct {
	SourceURL   string
	Title       string
	Byline      string
	Description string
	Language    string
}

// blockTags separate flattened text into lines.
var blockTags = map[string]bool{
	"article": true, "aside": true, "blockquote": true, "body": true,
	"br": true, "div": true, "dl": true, "dt": true, "dd": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true,
	"h6": true, "hr": true, "li": true, "ol": true, "p": true,
	"pre": true, "section": true, "table": true, "td": true,
	"th": true, "tr": true, "ul": true,
}

// Document produces the final extracted document from a clean content
// tree. The returned value shares no state with the tree.
func Document(contentRoot *html.Node, meta Metadata, links []string) (*dragparser.ExtractedDocument, error) {
	contentHTML, err := canonicalXHTML(contentRoot)
	if err != nil {
		return nil, dragparser.Errorf(dragparser.EINTERNAL, "serialize content: %v", err)
	}

	text := Flatten(contentRoot)

	if links == nil {
		links = []string{}
	}
	out := make([]string, len(links))
	copy(out, links)

	return &dragparser.ExtractedDocument{
		ID:          dragparser.Fingerprint(meta.SourceURL, meta.Title),
		SourceURL:   meta.SourceURL,
		Title:       meta.Title,
		Byline:      meta.Byline,
		Description: meta.Description,
		ContentHTML: contentHTML,
		Text:        text,
		Language:    meta.Language,
		WordCount:   len(strings.Fields(text)),
		Links:       out,
	}, nil
}

// canonicalXHTML renders the tree as an XHTML fragment with sorted
// attributes and canonical escaping.
func canonicalXHTML(root *html.Node) (string, error) {
	doc := etree.NewDocument()
	doc.WriteSettings = etree.WriteSettings{
		CanonicalEndTags: true,
		CanonicalText:    true,
		CanonicalAttrVal: true,
	}

	convert(&doc.Element, root)
	return doc.WriteToString()
}

// convert copies an html.Node subtree into an etree parent.
func convert(parent *etree.Element, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		parent.CreateText(n.Data)

	case html.ElementNode:
		e := parent.CreateElement(n.Data)
		attrs := make([]html.Attribute, len(n.Attr))
		copy(attrs, n.Attr)
		sort.Slice(attrs, func(i, j int) bool { return attrs[i].Key < attrs[j].Key })
		for _, attr := range attrs {
			e.CreateAttr(attr.Key, attr.Val)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			convert(e, c)
		}

	case html.DocumentNode:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			convert(parent, c)
		}
	}
}

// Flatten renders the subtree as plain text: one line per block
// element, canonical single-space separation within lines.
func Flatten(root *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			return
		}
		isBlock := n.Type == html.ElementNode && blockTags[n.Data]
		if isBlock {
			b.WriteString("\n")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if isBlock {
			b.WriteString("\n")
		}
	}
	walk(root)

	lines := make([]string, 0, 16)
	for _, line := range strings.Split(b.String(), "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
