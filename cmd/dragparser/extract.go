package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	dragparser "github.com/FirinKinuo/drag-parser"
	"github.com/FirinKinuo/drag-parser/engine"
	draghttp "github.com/FirinKinuo/drag-parser/http"
	"github.com/FirinKinuo/drag-parser/htmltomarkdown"
	"github.com/FirinKinuo/drag-parser/trafilatura"
	dragzerolog "github.com/FirinKinuo/drag-parser/zerolog"
)

// Run executes the extract command.
func (c *ExtractCmd) Run(deps *Dependencies) error {
	extractor, err := c.buildExtractor(deps)
	if err != nil {
		return err
	}

	doc, err := c.readDocument(deps)
	if err != nil {
		return err
	}

	extracted, err := extractor.Extract(deps.Ctx, doc)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", dragparser.ErrorMessage(err))
		return err
	}

	return c.write(deps.Stdout, extracted)
}

// buildExtractor assembles the extractor selected by the engine and
// rules flags.
func (c *ExtractCmd) buildExtractor(deps *Dependencies) (dragparser.Extractor, error) {
	var extractor dragparser.Extractor

	switch c.Engine {
	case "trafilatura":
		extractor = trafilatura.NewExtractor()
	default:
		rules, err := c.selectRuleSet()
		if err != nil {
			return nil, err
		}
		e, err := engine.New(dragparser.DefaultConfig(), rules,
			engine.WithConverter(htmltomarkdown.NewConverter()))
		if err != nil {
			return nil, err
		}
		extractor = e
	}

	return dragzerolog.NewLoggingExtractor(extractor, deps.Logger), nil
}

// selectRuleSet loads the rule files and picks the one matching the
// profile flag. With no profile set, a single loaded rule set is used
// directly.
func (c *ExtractCmd) selectRuleSet() (*dragparser.RuleSet, error) {
	registry, err := loadRuleSets(c.Rules)
	if err != nil {
		return nil, err
	}

	if c.Profile == "" {
		if names := registry.List(); len(names) == 1 {
			return registry.Get(names[0]), nil
		}
		return nil, nil
	}

	rules := registry.Get(c.Profile)
	if rules == nil {
		return nil, fmt.Errorf("unknown profile %q; loaded profiles: %v", c.Profile, registry.List())
	}
	return rules, nil
}

func (c *ExtractCmd) readDocument(deps *Dependencies) (*dragparser.Document, error) {
	if c.URL != "" {
		fetcher := deps.Fetcher
		if fetcher == nil {
			fetcher = dragzerolog.NewLoggingFetcher(draghttp.NewFetcher(), deps.Logger)
		}
		return fetcher.Fetch(deps.Ctx, c.URL)
	}

	if c.Path == "" {
		return nil, fmt.Errorf("either a file path or --url is required")
	}

	var raw []byte
	var err error
	if c.Path == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(c.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	return &dragparser.Document{
		Raw:      raw,
		Encoding: c.Encoding,
		BaseURL:  c.Base,
	}, nil
}

func (c *ExtractCmd) write(w io.Writer, doc *dragparser.ExtractedDocument) error {
	switch c.Format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case "markdown":
		_, err := fmt.Fprintln(w, doc.Markdown)
		return err
	case "html":
		_, err := fmt.Fprintln(w, doc.ContentHTML)
		return err
	default:
		_, err := fmt.Fprintln(w, dragparser.FormatDocument(doc))
		return err
	}
}

// loadRuleSets parses each YAML file and registers it under its
// declared name.
func loadRuleSets(paths []string) (*dragparser.RuleSetRegistry, error) {
	registry := dragparser.NewRuleSetRegistry()
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read rules %q: %w", path, err)
		}
		rules, err := dragparser.ParseRuleSet(data)
		if err != nil {
			return nil, fmt.Errorf("parse rules %q: %s", path, dragparser.ErrorMessage(err))
		}
		registry.Register(rules)
	}
	return registry, nil
}
