// Package mock provides mock implementations of the core interfaces
// for testing.
package mock

import (
	"context"

	dragparser "github.com/FirinKinuo/drag-parser"
)

// Ensure mocks implement the interfaces at compile time.
var (
	_ dragparser.Extractor = (*Extractor)(nil)
	_ dragparser.Fetcher   = (*Fetcher)(nil)
	_ dragparser.Converter = (*Converter)(nil)
)

// Extractor is a mock implementation of dragparser.Extractor.
type Extractor struct {
	ExtractFn func(ctx context.Context, doc *dragparser.Document) (*dragparser.ExtractedDocument, error)
}

func (m *Extractor) Extract(ctx context.Context, doc *dragparser.Document) (*dragparser.ExtractedDocument, error) {
	return m.ExtractFn(ctx, doc)
}

// Fetcher is a mock implementation of dragparser.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, rawURL string) (*dragparser.Document, error)
}

func (m *Fetcher) Fetch(ctx context.Context, rawURL string) (*dragparser.Document, error) {
	return m.FetchFn(ctx, rawURL)
}

// Converter is a mock implementation of dragparser.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (m *Converter) Convert(html string) (string, error) {
	return m.ConvertFn(html)
}
