// Package transform applies declarative (selector, action) rule sets
// to a normalized content tree for target-specific output shaping.
// Rules run in declared order against a snapshot of the tree, so
// behavior is independent of mutation order; when several rules match
// the same node, the last matching rule wins.
package transform

import (
	dragparser "github.com/FirinKinuo/drag-parser"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Pipeline is a compiled rule set, immutable and safe for concurrent
// use across extractions.
type Pipeline struct {
	rules []compiledRule
}

type compiledRule struct {
	sel    cascadia.Selector
	action dragparser.Action
	to     string
}

// Compile validates and compiles a rule set. Unknown selector syntax
// fails loudly with EINVALIDRULE; misconfiguration must never be
// skipped silently.
func Compile(rs *dragparser.RuleSet) (*Pipeline, error) {
	if rs == nil {
		return &Pipeline{}, nil
	}
	if err := rs.Validate(); err != nil {
		return nil, err
	}

	compiled := make([]compiledRule, 0, len(rs.Rules))
	for i, r := range rs.Rules {
		sel, err := cascadia.Compile(r.Selector)
		if err != nil {
			return nil, dragparser.Errorf(dragparser.EINVALIDRULE,
				"rule %d: invalid selector %q: %v", i, r.Selector, err)
		}
		compiled = append(compiled, compiledRule{sel: sel, action: r.Action, to: r.To})
	}
	return &Pipeline{rules: compiled}, nil
}

// Apply runs the pipeline over the tree rooted at root, mutating it in
// place. An empty pipeline leaves the tree unchanged.
func (p *Pipeline) Apply(root *html.Node) {
	if len(p.rules) == 0 {
		return
	}

	// Match all rules against the pristine tree before mutating, then
	// resolve conflicts per node: the last matching rule wins.
	pending := make(map[*html.Node]compiledRule)
	for _, r := range p.rules {
		for _, n := range r.sel.MatchAll(root) {
			pending[n] = r
		}
	}

	// Apply in document order so removal of an ancestor precedes any
	// action on its (now moot) descendants.
	for _, n := range documentOrder(root, pending) {
		apply(n, pending[n])
	}
}

func apply(n *html.Node, r compiledRule) {
	switch r.action {
	case dragparser.ActionRemove:
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
	case dragparser.ActionRename:
		n.Data = r.to
		n.DataAtom = atom.Lookup([]byte(r.to))
	case dragparser.ActionUnwrap:
		unwrap(n)
	case dragparser.ActionStripAttrs:
		n.Attr = nil
	}
}

// unwrap replaces a node with its children.
func unwrap(n *html.Node) {
	parent := n.Parent
	if parent == nil {
		return
	}
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
		parent.InsertBefore(c, n)
	}
	parent.RemoveChild(n)
}

// documentOrder returns the matched nodes in pre-order tree position.
func documentOrder(root *html.Node, matched map[*html.Node]compiledRule) []*html.Node {
	ordered := make([]*html.Node, 0, len(matched))
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if _, ok := matched[n]; ok {
			ordered = append(ordered, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return ordered
}
