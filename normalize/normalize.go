// Package normalize turns a selected content region into a canonical
// content tree: non-content elements are removed, whitespace runs are
// collapsed, presentation attributes are stripped, and relative
// references are resolved against the document base. Broken references
// are dropped from the link list, never surfaced as fatal errors.
package normalize

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Result is the normalized content tree plus its resolved links.
type Result struct {
	// Root is the cleaned content tree. The caller owns it; the nodes
	// are detached from the original document.
	Root *html.Node

	// Links lists resolved absolute outbound references in document
	// order, deduplicated.
	Links []string

	// DroppedRefs counts references that were malformed or
	// unresolvable and therefore omitted from Links.
	DroppedRefs int
}

// removeTags are stripped together with their subtrees.
var removeTags = map[string]bool{
	"applet": true, "audio": true, "button": true, "canvas": true,
	"embed": true, "form": true, "iframe": true, "input": true,
	"link": true, "map": true, "meta": true, "noscript": true,
	"object": true, "picture": true, "script": true, "select": true,
	"style": true, "svg": true, "template": true, "textarea": true,
	"video": true,
}

// blockTags render as separate blocks; whitespace-only text between
// them carries no meaning.
var blockTags = map[string]bool{
	"article": true, "aside": true, "blockquote": true, "body": true,
	"br": true, "div": true, "dl": true, "h1": true, "h2": true,
	"h3": true, "h4": true, "h5": true, "h6": true, "hr": true,
	"li": true, "ol": true, "p": true, "pre": true, "section": true,
	"table": true, "td": true, "th": true, "tr": true, "ul": true,
}

// keptAttrs maps tag → attribute keys that survive normalization.
// Everything else (class, id, style, event handlers, presentation
// attributes) is stripped.
var keptAttrs = map[string]map[string]bool{
	"a":  {"href": true, "title": true},
	"th": {"colspan": true, "rowspan": true},
	"td": {"colspan": true, "rowspan": true},
}

// Normalize cleans the content tree rooted at contentRoot in place and
// returns it detached from its original document. baseURL may be
// empty, in which case relative references are dropped.
func Normalize(contentRoot *html.Node, baseURL string) *Result {
	res := &Result{Root: contentRoot}

	var base *url.URL
	if baseURL != "" {
		if u, err := url.Parse(baseURL); err == nil {
			base = u
		}
	}

	detach(contentRoot)
	clean(contentRoot, base, res)
	collapseWhitespace(contentRoot, false)

	if res.Links == nil {
		res.Links = []string{}
	}
	return res
}

// detach unlinks the node from its parent and siblings so the caller
// fully owns the subtree.
func detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
	n.PrevSibling = nil
	n.NextSibling = nil
}

// clean removes non-content elements, strips attributes and resolves
// references in one pass.
func clean(n *html.Node, base *url.URL, res *Result) {
	seen := make(map[string]bool)
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		var next *html.Node
		for c := node.FirstChild; c != nil; c = next {
			next = c.NextSibling
			if c.Type == html.CommentNode {
				node.RemoveChild(c)
				continue
			}
			if c.Type == html.ElementNode && (removeTags[c.Data] || isHidden(c)) {
				node.RemoveChild(c)
				continue
			}
			walk(c)
		}

		if node.Type != html.ElementNode {
			return
		}

		kept := node.Attr[:0]
		for _, attr := range node.Attr {
			allowed := keptAttrs[node.Data]
			if allowed == nil || !allowed[attr.Key] {
				continue
			}
			if node.Data == "a" && attr.Key == "href" {
				resolved, ok := resolveRef(base, attr.Val)
				if !ok {
					res.DroppedRefs++
					continue
				}
				attr.Val = resolved
				if !seen[resolved] {
					seen[resolved] = true
					res.Links = append(res.Links, resolved)
				}
			}
			kept = append(kept, attr)
		}
		node.Attr = kept
	}
	walk(n)
}

// resolveRef resolves href against base. Reports ok=false for
// malformed, non-HTTP, or relative-without-base references.
func resolveRef(base *url.URL, href string) (string, bool) {
	trimmed := strings.TrimSpace(href)
	lower := strings.ToLower(trimmed)
	if trimmed == "" ||
		strings.HasPrefix(lower, "javascript:") ||
		strings.HasPrefix(lower, "mailto:") ||
		strings.HasPrefix(lower, "tel:") ||
		strings.HasPrefix(lower, "data:") {
		return "", false
	}

	ref, err := url.Parse(trimmed)
	if err != nil {
		return "", false
	}
	if ref.IsAbs() {
		return ref.String(), true
	}
	if base == nil {
		return "", false
	}
	resolved := base.ResolveReference(ref)
	if !resolved.IsAbs() {
		return "", false
	}
	return resolved.String(), true
}

// isHidden reports elements hidden via attributes or inline style.
func isHidden(n *html.Node) bool {
	for _, attr := range n.Attr {
		switch attr.Key {
		case "hidden":
			return true
		case "aria-hidden":
			if strings.EqualFold(attr.Val, "true") {
				return true
			}
		case "style":
			style := strings.ReplaceAll(strings.ToLower(attr.Val), " ", "")
			if strings.Contains(style, "display:none") ||
				strings.Contains(style, "visibility:hidden") {
				return true
			}
		}
	}
	return false
}

// collapseWhitespace rewrites text nodes so that runs of whitespace
// become single spaces. Whitespace-only text nodes adjacent to block
// elements are removed; preformatted blocks are left untouched.
func collapseWhitespace(n *html.Node, inPre bool) {
	if n.Type == html.ElementNode && n.Data == "pre" {
		inPre = true
	}

	var next *html.Node
	for c := n.FirstChild; c != nil; c = next {
		next = c.NextSibling
		if c.Type == html.TextNode && !inPre {
			if strings.TrimSpace(c.Data) == "" {
				if touchesBlock(c) {
					n.RemoveChild(c)
				} else {
					c.Data = " "
				}
				continue
			}
			c.Data = collapse(c)
			continue
		}
		collapseWhitespace(c, inPre)
	}
}

// collapse joins whitespace runs into single spaces, keeping one
// boundary space where it separates the node from inline siblings.
func collapse(c *html.Node) string {
	out := strings.Join(strings.Fields(c.Data), " ")
	if strings.TrimSpace(c.Data[:1]) == "" && hasInlineSibling(c.PrevSibling) {
		out = " " + out
	}
	if strings.TrimSpace(c.Data[len(c.Data)-1:]) == "" && hasInlineSibling(c.NextSibling) {
		out += " "
	}
	return out
}

func hasInlineSibling(sib *html.Node) bool {
	if sib == nil {
		return false
	}
	if sib.Type == html.ElementNode {
		return !blockTags[sib.Data]
	}
	return sib.Type == html.TextNode
}

// touchesBlock reports whether a text node borders a block element or
// the edge of its parent.
func touchesBlock(n *html.Node) bool {
	if n.PrevSibling == nil || n.NextSibling == nil {
		return true
	}
	for _, sib := range []*html.Node{n.PrevSibling, n.NextSibling} {
		if sib.Type == html.ElementNode && blockTags[sib.Data] {
			return true
		}
	}
	return false
}
