package main

import (
	"context"
	"io"

	dragparser "github.com/FirinKinuo/drag-parser"
	"github.com/rs/zerolog"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx     context.Context
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  zerolog.Logger
	Fetcher dragparser.Fetcher

	// Extractors keyed by transformation profile name. The empty key
	// is the default profile.
	Extractors map[string]dragparser.Extractor
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Extract ExtractCmd `cmd:"" help:"Extract the main content from a document"`
	Serve   ServeCmd   `cmd:"" help:"Run the extraction JSON API server"`
}

// ExtractCmd is the "extract" subcommand.
type ExtractCmd struct {
	Path     string   `arg:"" optional:"" help:"Path to an HTML file, or '-' for stdin"`
	URL      string   `short:"u" help:"Fetch the document from a URL instead of a file"`
	Base     string   `short:"b" help:"Base URL for resolving relative links"`
	Encoding string   `short:"e" help:"Declared character encoding of the input"`
	Rules    []string `short:"r" name:"rules" help:"Transformation rule set YAML file (repeatable)"`
	Profile  string   `short:"p" help:"Transformation profile to apply"`
	Engine   string   `default:"native" enum:"native,trafilatura" help:"Extraction engine"`
	Format   string   `short:"f" default:"text" enum:"text,json,markdown,html" help:"Output format"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr  string   `default:":8000" help:"Listen address"`
	Rules []string `short:"r" name:"rules" help:"Transformation rule set YAML file, registered as a profile (repeatable)"`
	Rate  float64  `default:"1" help:"Per-host fetch rate limit in requests per second"`
}
