// Package parse builds a node tree from raw document bytes. It
// tolerates malformed markup, resolves character encodings, and
// enforces the engine's input size and nesting depth guards. Parsing
// performs no network or file access.
package parse

import (
	"bytes"
	"strings"

	dragparser "github.com/FirinKinuo/drag-parser"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// Parse converts raw document bytes into a tolerant node tree.
//
// Encoding resolution order: declaredEncoding if it names a known
// charset, then in-document hints (BOM, meta tags), then the WHATWG
// fallback. Undecodable byte sequences are replaced, never fatal.
// A mismatch between declaration and content is corrected by falling
// through to sniffing rather than aborting.
func Parse(data []byte, declaredEncoding string, cfg *dragparser.Config) (*html.Node, error) {
	if cfg.MaxInputBytes > 0 && len(data) > cfg.MaxInputBytes {
		return nil, dragparser.Errorf(dragparser.ERESOURCE,
			"input size %d exceeds limit %d", len(data), cfg.MaxInputBytes)
	}

	decoded := decode(data, declaredEncoding)

	root, err := html.Parse(bytes.NewReader(decoded))
	if err != nil {
		if strings.Contains(err.Error(), "depth") {
			return nil, dragparser.Errorf(dragparser.ETOODEEP,
				"markup nesting exceeds parser limit")
		}
		return nil, dragparser.Errorf(dragparser.EUNPARSEABLE,
			"cannot tokenize input: %v", err)
	}

	if cfg.MaxDepth > 0 {
		if d := depth(root); d > cfg.MaxDepth {
			return nil, dragparser.Errorf(dragparser.ETOODEEP,
				"markup nesting %d exceeds limit %d", d, cfg.MaxDepth)
		}
	}

	return root, nil
}

// decode converts document bytes to UTF-8. The declared encoding wins
// when it is a known charset and decodes cleanly; otherwise the
// document is sniffed (BOM, meta hints, WHATWG fallback).
func decode(data []byte, declaredEncoding string) []byte {
	if declaredEncoding != "" {
		if enc, err := htmlindex.Get(declaredEncoding); err == nil {
			if out, ok := decodeWith(enc, data); ok {
				return out
			}
		}
	}

	enc, _, _ := charset.DetermineEncoding(data, "")
	if out, ok := decodeWith(enc, data); ok {
		return out
	}
	return data
}

// decodeWith runs data through the decoder. x/text decoders replace
// invalid sequences with U+FFFD, so downstream stages always see
// valid UTF-8.
func decodeWith(enc encoding.Encoding, data []byte) ([]byte, bool) {
	if enc == nil {
		return nil, false
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return nil, false
	}
	return out, true
}

// depth returns the maximum element nesting depth of the tree,
// computed iteratively so adversarial input cannot blow the stack.
func depth(root *html.Node) int {
	type frame struct {
		n *html.Node
		d int
	}
	max := 0
	stack := []frame{{root, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.d > max {
			max = f.d
		}
		for c := f.n.FirstChild; c != nil; c = c.NextSibling {
			stack = append(stack, frame{c, f.d + 1})
		}
	}
	return max
}
