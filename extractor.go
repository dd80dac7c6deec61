package dragparser

import "context"

// Extractor turns a raw document into an ExtractedDocument.
type Extractor interface {
	// Extract processes the document and returns the extracted main
	// content plus metadata. Failures are reported as typed errors
	// (see error codes in errors.go); extraction never returns a
	// partially populated document alongside an error.
	Extract(ctx context.Context, doc *Document) (*ExtractedDocument, error)
}

// Fetcher retrieves raw document bytes from URLs so they can be fed to
// an Extractor. Implementations do plain HTTP; nothing in this module
// executes scripts or renders pages.
type Fetcher interface {
	// Fetch retrieves the document at url. The returned Document
	// carries the response bytes, the encoding declared by the
	// transport (if any), and the final URL as base reference.
	Fetch(ctx context.Context, url string) (*Document, error)
}

// Progress reports per-document completion during batch extraction.
type Progress struct {
	Index     int
	Completed int
	Total     int
	Err       error
}

// ProgressFunc is called as batch documents finish.
type ProgressFunc func(Progress)
