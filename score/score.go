// Package score assigns content-density scores to nodes of a parsed
// document tree and selects the main content region. Scoring is a pure
// function of the tree and the configured lexicons: identical input
// always yields identical scores.
package score

import (
	"strings"

	dragparser "github.com/FirinKinuo/drag-parser"
	"golang.org/x/net/html"
)

// Record holds the accumulated density score and cached aggregates for
// one node. Records are invalidated by any later tree mutation; the
// normalizer owns the tree after selection, so callers must not reuse
// a score map across pipeline stages.
type Record struct {
	// TextLen is the total text length of the subtree.
	TextLen int

	// LinkTextLen is the anchor-text length of the subtree.
	LinkTextLen int

	// Raw is the node's own score before propagation.
	Raw float64

	// Total is the propagated score used for selection.
	Total float64

	// Depth is the node's distance from the tree root.
	Depth int

	// Candidate marks container elements eligible for region
	// selection. Paragraph-like elements feed their scores to
	// ancestors but are never selected themselves, so a legitimate
	// content container is not fragmented into its best paragraph.
	Candidate bool
}

// LinkDensity returns the ratio of anchor text to total text in the
// subtree. High link density marks navigation and boilerplate.
func (r *Record) LinkDensity() float64 {
	if r.TextLen == 0 {
		return 0
	}
	return float64(r.LinkTextLen) / float64(r.TextLen)
}

// skipTags never participate in scoring or selection.
var skipTags = map[string]bool{
	"button": true, "form": true, "head": true, "input": true,
	"link": true, "meta": true, "noscript": true, "option": true,
	"script": true, "select": true, "style": true, "textarea": true,
	"title": true,
}

// boilerplateTags carry a structural penalty regardless of class/id.
var boilerplateTags = map[string]bool{
	"aside": true, "footer": true, "header": true, "nav": true,
}

// candidateTags are the container elements eligible for selection.
var candidateTags = map[string]bool{
	"article": true, "aside": true, "blockquote": true, "body": true,
	"div": true, "footer": true, "header": true, "main": true,
	"nav": true, "ol": true, "section": true, "table": true,
	"td": true, "ul": true,
}

// textPointsDivisor converts direct text length into score points.
const textPointsDivisor = 25.0

// Score traverses the tree bottom-up and returns a score record per
// element node. Each node's raw score combines its tag weight, direct
// text length and class/id lexicon signals; the total adds a fraction
// of every child's total (so clusters of moderate siblings outweigh a
// single outlier) and is damped by the subtree's link density.
func Score(root *html.Node, cfg *dragparser.Config) map[*html.Node]*Record {
	records := make(map[*html.Node]*Record)
	walk(root, 0, cfg, records)
	return records
}

// walk computes aggregates and scores in one post-order pass.
// It returns the subtree text length, anchor-text length and the sum
// of child totals for propagation to the caller.
func walk(n *html.Node, depth int, cfg *dragparser.Config, records map[*html.Node]*Record) (textLen, linkTextLen int, total float64) {
	switch n.Type {
	case html.TextNode:
		l := len(strings.TrimSpace(n.Data))
		return l, 0, 0

	case html.DocumentNode:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			t, lt, tot := walk(c, depth+1, cfg, records)
			textLen += t
			linkTextLen += lt
			total += tot
		}
		return textLen, linkTextLen, total

	case html.ElementNode:
		if skipTags[n.Data] {
			return 0, 0, 0
		}
		// The html element itself is never a selection candidate; body
		// already covers the whole document.
		if n.Data == "html" {
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				t, lt, tot := walk(c, depth+1, cfg, records)
				textLen += t
				linkTextLen += lt
				total += tot
			}
			return textLen, linkTextLen, total
		}

		directText := 0
		var childTotals float64
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			t, lt, tot := walk(c, depth+1, cfg, records)
			textLen += t
			linkTextLen += lt
			childTotals += tot
			if c.Type == html.TextNode {
				directText += t
			}
		}
		if n.Data == "a" {
			linkTextLen = textLen
		}

		rec := &Record{
			TextLen:     textLen,
			LinkTextLen: linkTextLen,
			Depth:       depth,
			Candidate:   candidateTags[n.Data],
		}

		raw := cfg.TagWeights[n.Data] + float64(directText)/textPointsDivisor
		raw += lexiconSignal(n, cfg)
		if boilerplateTags[n.Data] {
			raw -= cfg.NegativePenalty
		}
		rec.Raw = raw

		propagated := raw + cfg.ParentShare*childTotals
		propagated *= 1 - rec.LinkDensity()
		if propagated < 0 {
			propagated = 0
		}
		rec.Total = propagated
		records[n] = rec

		return textLen, linkTextLen, propagated
	}

	return 0, 0, 0
}

// lexiconSignal scores class and id attribute tokens against the
// positive and negative lexicons.
func lexiconSignal(n *html.Node, cfg *dragparser.Config) float64 {
	var signal float64
	for _, attr := range n.Attr {
		if attr.Key != "class" && attr.Key != "id" {
			continue
		}
		val := strings.ToLower(attr.Val)
		if matchesAny(val, cfg.Lexicon.Positive) {
			signal += cfg.PositiveBoost
		}
		if matchesAny(val, cfg.Lexicon.Negative) {
			signal -= cfg.NegativePenalty
		}
	}
	return signal
}

func matchesAny(value string, tokens []string) bool {
	for _, token := range tokens {
		if strings.Contains(value, token) {
			return true
		}
	}
	return false
}
