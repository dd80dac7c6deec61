package dragparser

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Document represents a raw input document handed to the engine.
// It is immutable after ingestion: the engine never writes to Raw.
type Document struct {
	// Raw holds the document bytes exactly as received.
	Raw []byte

	// Encoding is the declared character encoding, if the caller knows
	// it (e.g., from a Content-Type header). Empty means "sniff".
	Encoding string

	// BaseURL is used to resolve relative references in the document.
	// Empty means relative references are dropped from the link list.
	BaseURL string
}

// Validate returns an error if the document cannot be processed.
func (d *Document) Validate() error {
	if len(d.Raw) == 0 {
		return Errorf(EINVALID, "document content required")
	}
	if d.BaseURL != "" {
		if _, err := url.Parse(d.BaseURL); err != nil {
			return Errorf(EINVALID, "invalid base URL: %v", err)
		}
	}
	return nil
}

// ExtractedDocument is the final output of the engine. It is immutable
// once produced and shares no nodes with the input document tree.
type ExtractedDocument struct {
	ID          string   `json:"id"`
	SourceURL   string   `json:"sourceUrl,omitempty"`
	Title       string   `json:"title,omitempty"`
	Byline      string   `json:"byline,omitempty"`
	Description string   `json:"description,omitempty"`
	ContentHTML string   `json:"contentHtml"`
	Text        string   `json:"text"`
	Markdown    string   `json:"markdown,omitempty"`
	Language    string   `json:"language,omitempty"`
	WordCount   int      `json:"wordCount"`
	Links       []string `json:"links"`
}

// Fingerprint returns a stable identifier for extracted content,
// derived from the source host and title. Two extractions of the same
// page title on the same host collide on purpose so batch callers can
// deduplicate near-identical documents.
func Fingerprint(sourceURL, title string) string {
	host := sourceURL
	if u, err := url.Parse(sourceURL); err == nil && u.Host != "" {
		host = u.Host
	}
	sum := xxhash.Sum64String(host + title)
	return strconv.FormatUint(sum, 16)
}

// FormatDocument renders an extracted document for display or LLM
// context. Uses the title if available, falls back to the source URL.
func FormatDocument(doc *ExtractedDocument) string {
	header := doc.Title
	if header == "" {
		header = doc.SourceURL
	}
	return fmt.Sprintf("## Document: %s\n%s", header, doc.Text)
}
