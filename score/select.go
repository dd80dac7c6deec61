package score

import (
	dragparser "github.com/FirinKinuo/drag-parser"
	"golang.org/x/net/html"
)

// Select picks the main content region: the node with the maximum
// score above the configured threshold. Ties prefer the node closest
// to the document root, so a legitimate content container is not
// fragmented into its best-scoring child. When no node clears the
// threshold, selection falls back to the largest aggregate text block
// before failing with ENOCONTENT.
func Select(root *html.Node, records map[*html.Node]*Record, cfg *dragparser.Config) (*html.Node, error) {
	var best *html.Node
	var bestRec *Record

	// Walk in document order so behavior never depends on map
	// iteration order.
	eachElement(root, func(n *html.Node) {
		rec, ok := records[n]
		if !ok || !rec.Candidate || rec.Total < cfg.MinScore {
			return
		}
		if bestRec == nil ||
			rec.Total > bestRec.Total ||
			(rec.Total == bestRec.Total && rec.Depth < bestRec.Depth) {
			best = n
			bestRec = rec
		}
	})
	if best != nil {
		return best, nil
	}

	if fallback := largestTextBlock(root, records); fallback != nil {
		return fallback, nil
	}

	return nil, dragparser.Errorf(dragparser.ENOCONTENT,
		"no region cleared the selection threshold")
}

// largestTextBlock is the whole-document fallback: the shallowest
// element holding the largest amount of text. Returns nil when the
// document has no text at all.
func largestTextBlock(root *html.Node, records map[*html.Node]*Record) *html.Node {
	var best *html.Node
	var bestRec *Record

	eachElement(root, func(n *html.Node) {
		rec, ok := records[n]
		if !ok || !rec.Candidate || rec.TextLen == 0 {
			return
		}
		if bestRec == nil ||
			rec.TextLen > bestRec.TextLen ||
			(rec.TextLen == bestRec.TextLen && rec.Depth < bestRec.Depth) {
			best = n
			bestRec = rec
		}
	})
	return best
}

// eachElement visits element nodes in document order.
func eachElement(n *html.Node, fn func(*html.Node)) {
	if n.Type == html.ElementNode {
		fn(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		eachElement(c, fn)
	}
}
