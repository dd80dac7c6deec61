// Package zerolog provides logging decorators for the core interfaces.
package zerolog

import (
	"context"
	"time"

	dragparser "github.com/FirinKinuo/drag-parser"
	"github.com/rs/zerolog"
)

// Ensure decorators implement the interfaces at compile time.
var (
	_ dragparser.Extractor = (*LoggingExtractor)(nil)
	_ dragparser.Fetcher   = (*LoggingFetcher)(nil)
)

// LoggingExtractor wraps an Extractor with structured logging of each
// extraction.
type LoggingExtractor struct {
	next   dragparser.Extractor
	logger zerolog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next dragparser.Extractor, logger zerolog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// Extract delegates to the wrapped extractor and logs the outcome.
func (e *LoggingExtractor) Extract(ctx context.Context, doc *dragparser.Document) (*dragparser.ExtractedDocument, error) {
	begin := time.Now()
	extracted, err := e.next.Extract(ctx, doc)
	if err != nil {
		e.logger.Error().
			Err(err).
			Str("code", dragparser.ErrorCode(err)).
			Str("url", doc.BaseURL).
			Dur("duration", time.Since(begin)).
			Msg("extract")
		return nil, err
	}
	e.logger.Info().
		Str("url", doc.BaseURL).
		Str("title", extracted.Title).
		Int("words", extracted.WordCount).
		Int("links", len(extracted.Links)).
		Dur("duration", time.Since(begin)).
		Msg("extract")
	return extracted, nil
}

// LoggingFetcher wraps a Fetcher with structured logging of each fetch.
type LoggingFetcher struct {
	next   dragparser.Fetcher
	logger zerolog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next dragparser.Fetcher, logger zerolog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the outcome.
func (f *LoggingFetcher) Fetch(ctx context.Context, rawURL string) (*dragparser.Document, error) {
	begin := time.Now()
	doc, err := f.next.Fetch(ctx, rawURL)
	if err != nil {
		f.logger.Error().
			Err(err).
			Str("url", rawURL).
			Dur("duration", time.Since(begin)).
			Msg("fetch")
		return nil, err
	}
	f.logger.Info().
		Str("url", rawURL).
		Int("bytes", len(doc.Raw)).
		Dur("duration", time.Since(begin)).
		Msg("fetch")
	return doc, nil
}
