// Package engine wires the extraction pipeline: parse, score, select,
// normalize, transform, serialize. One extraction request is processed
// by a single worker owning its tree for the request's lifetime; the
// engine itself holds only immutable configuration and is safe for
// concurrent use.
package engine

import (
	"context"

	dragparser "github.com/FirinKinuo/drag-parser"
	"github.com/FirinKinuo/drag-parser/goquery"
	"github.com/FirinKinuo/drag-parser/normalize"
	"github.com/FirinKinuo/drag-parser/parse"
	"github.com/FirinKinuo/drag-parser/render"
	"github.com/FirinKinuo/drag-parser/score"
	"github.com/FirinKinuo/drag-parser/transform"
	"github.com/FirinKinuo/drag-parser/whatlang"
)

// Ensure Engine implements dragparser.Extractor at compile time.
var _ dragparser.Extractor = (*Engine)(nil)

// Engine is the native extraction pipeline.
type Engine struct {
	cfg       *dragparser.Config
	pipeline  *transform.Pipeline
	converter dragparser.Converter
}

// Option configures an Engine.
type Option func(*Engine)

// WithConverter attaches a Markdown converter; extracted documents
// then carry a Markdown rendering of the content alongside the XHTML.
func WithConverter(c dragparser.Converter) Option {
	return func(e *Engine) {
		e.converter = c
	}
}

// New creates an Engine with the given scoring configuration and an
// optional rule set for output shaping. Rule sets are compiled once
// here; invalid rules fail construction with EINVALIDRULE rather than
// surfacing per request.
func New(cfg *dragparser.Config, rules *dragparser.RuleSet, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = dragparser.DefaultConfig()
	}
	pipeline, err := transform.Compile(rules)
	if err != nil {
		return nil, err
	}

	e := &Engine{cfg: cfg, pipeline: pipeline}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Extract runs the full pipeline over one document.
func (e *Engine) Extract(ctx context.Context, doc *dragparser.Document) (*dragparser.ExtractedDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(doc.Raw) == 0 {
		return nil, dragparser.Errorf(dragparser.ENOCONTENT, "empty document")
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	root, err := parse.Parse(doc.Raw, doc.Encoding, e.cfg)
	if err != nil {
		return nil, err
	}

	meta := goquery.ExtractMeta(root)

	records := score.Score(root, e.cfg)
	contentRoot, err := score.Select(root, records, e.cfg)
	if err != nil {
		return nil, err
	}

	// Selection hands the subtree to the normalizer; the score records
	// are invalid from this point on.
	norm := normalize.Normalize(contentRoot, doc.BaseURL)
	e.pipeline.Apply(norm.Root)

	text := render.Flatten(norm.Root)
	if text == "" {
		return nil, dragparser.Errorf(dragparser.ENOCONTENT,
			"selected region is empty after normalization")
	}

	extracted, err := render.Document(norm.Root, render.Metadata{
		SourceURL:   doc.BaseURL,
		Title:       meta.Title,
		Byline:      meta.Byline,
		Description: meta.Description,
		Language:    whatlang.Detect(text),
	}, norm.Links)
	if err != nil {
		return nil, err
	}

	if e.converter != nil {
		md, err := e.converter.Convert(extracted.ContentHTML)
		if err != nil {
			return nil, err
		}
		extracted.Markdown = md
	}

	return extracted, nil
}
