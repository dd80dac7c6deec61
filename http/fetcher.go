// Package http provides the network-facing pieces around the
// extraction engine: a document fetcher for extract-by-URL requests
// and the JSON API server.
package http

import (
	"context"
	"io"
	"mime"
	"net/http"
	"net/url"
	"time"

	dragparser "github.com/FirinKinuo/drag-parser"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 10 * time.Second

// DefaultMaxFetchBytes caps response bodies so a misbehaving upstream
// cannot exhaust memory.
const DefaultMaxFetchBytes = 10 << 20 // 10 MiB

// Ensure Fetcher implements dragparser.Fetcher at compile time.
var _ dragparser.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves raw documents over plain HTTP. It never executes
// scripts; dynamically rendered pages are out of scope.
type Fetcher struct {
	client   *http.Client
	limiter  *HostLimiter
	timeout  time.Duration
	maxBytes int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithHostLimiter enables per-host rate limiting.
func WithHostLimiter(l *HostLimiter) Option {
	return func(f *Fetcher) {
		f.limiter = l
	}
}

// WithMaxBytes caps the response body size.
// Defaults to DefaultMaxFetchBytes if not specified.
func WithMaxBytes(n int64) Option {
	return func(f *Fetcher) {
		f.maxBytes = n
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:  DefaultFetchTimeout,
		maxBytes: DefaultMaxFetchBytes,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Fetch retrieves the document at rawURL. The returned Document
// carries the response bytes, the charset declared by the transport,
// and the final URL (after redirects) as base reference.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*dragparser.Document, error) {
	u, err := url.Parse(rawURL)
	if err != nil || !u.IsAbs() {
		return nil, dragparser.Errorf(dragparser.EINVALID, "invalid URL %q", rawURL)
	}

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, u.Host); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, dragparser.Errorf(dragparser.EINVALID, "build request: %v", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, dragparser.Errorf(dragparser.EUNAVAILABLE, "fetch %s: %v", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, dragparser.Errorf(dragparser.EUNAVAILABLE, "fetch %s: HTTP %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, dragparser.Errorf(dragparser.EUNAVAILABLE, "read body: %v", err)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, dragparser.Errorf(dragparser.ERESOURCE,
			"response exceeds %d bytes", f.maxBytes)
	}

	return &dragparser.Document{
		Raw:      body,
		Encoding: charsetFromContentType(resp.Header.Get("Content-Type")),
		BaseURL:  resp.Request.URL.String(),
	}, nil
}

// charsetFromContentType extracts the charset parameter from a
// Content-Type header, if present.
func charsetFromContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return params["charset"]
}
