package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	dragparser "github.com/FirinKinuo/drag-parser"
	"github.com/FirinKinuo/drag-parser/http"
	"github.com/FirinKinuo/drag-parser/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoExtractor() *mock.Extractor {
	return &mock.Extractor{
		ExtractFn: func(ctx context.Context, doc *dragparser.Document) (*dragparser.ExtractedDocument, error) {
			return &dragparser.ExtractedDocument{
				ID:        "doc1",
				SourceURL: doc.BaseURL,
				Text:      string(doc.Raw),
				WordCount: len(strings.Fields(string(doc.Raw))),
				Links:     []string{},
			}, nil
		},
	}
}

func decodeDocument(t *testing.T, body io.Reader) dragparser.ExtractedDocument {
	t.Helper()
	var doc dragparser.ExtractedDocument
	require.NoError(t, json.NewDecoder(body).Decode(&doc))
	return doc
}

func decodeError(t *testing.T, body io.Reader) (code, message string) {
	t.Helper()
	var resp struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	return resp.Error.Code, resp.Error.Message
}

func TestServer_Extract(t *testing.T) {
	t.Parallel()

	t.Run("accepts JSON envelope", func(t *testing.T) {
		t.Parallel()

		s := http.NewServer(map[string]dragparser.Extractor{"": echoExtractor()})
		ts := httptest.NewServer(s.Handler())
		defer ts.Close()

		payload := `{"content":"<p>hello world</p>","baseUrl":"https://example.com/a"}`
		resp, err := nethttp.Post(ts.URL+"/api/v1/extract", "application/json", strings.NewReader(payload))
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, nethttp.StatusOK, resp.StatusCode)
		doc := decodeDocument(t, resp.Body)
		assert.Equal(t, "https://example.com/a", doc.SourceURL)
		assert.Equal(t, "<p>hello world</p>", doc.Text)
	})

	t.Run("accepts raw markup body", func(t *testing.T) {
		t.Parallel()

		s := http.NewServer(map[string]dragparser.Extractor{"": echoExtractor()})
		ts := httptest.NewServer(s.Handler())
		defer ts.Close()

		resp, err := nethttp.Post(ts.URL+"/api/v1/extract?base=https://example.com/b",
			"text/html", strings.NewReader("<p>raw</p>"))
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, nethttp.StatusOK, resp.StatusCode)
		doc := decodeDocument(t, resp.Body)
		assert.Equal(t, "https://example.com/b", doc.SourceURL)
		assert.Equal(t, "<p>raw</p>", doc.Text)
	})

	t.Run("routes profile to matching extractor", func(t *testing.T) {
		t.Parallel()

		tagged := &mock.Extractor{
			ExtractFn: func(ctx context.Context, doc *dragparser.Document) (*dragparser.ExtractedDocument, error) {
				return &dragparser.ExtractedDocument{ID: "news", Links: []string{}}, nil
			},
		}
		s := http.NewServer(map[string]dragparser.Extractor{
			"":     echoExtractor(),
			"news": tagged,
		})
		ts := httptest.NewServer(s.Handler())
		defer ts.Close()

		payload := `{"content":"<p>x</p>","profile":"news"}`
		resp, err := nethttp.Post(ts.URL+"/api/v1/extract", "application/json", strings.NewReader(payload))
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, nethttp.StatusOK, resp.StatusCode)
		doc := decodeDocument(t, resp.Body)
		assert.Equal(t, "news", doc.ID)
	})

	t.Run("rejects unknown profile", func(t *testing.T) {
		t.Parallel()

		s := http.NewServer(map[string]dragparser.Extractor{"": echoExtractor()})
		ts := httptest.NewServer(s.Handler())
		defer ts.Close()

		payload := `{"content":"<p>x</p>","profile":"missing"}`
		resp, err := nethttp.Post(ts.URL+"/api/v1/extract", "application/json", strings.NewReader(payload))
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
		code, _ := decodeError(t, resp.Body)
		assert.Equal(t, dragparser.EINVALID, code)
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		t.Parallel()

		s := http.NewServer(map[string]dragparser.Extractor{"": echoExtractor()})
		ts := httptest.NewServer(s.Handler())
		defer ts.Close()

		resp, err := nethttp.Post(ts.URL+"/api/v1/extract", "application/json", strings.NewReader("{not json"))
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
		code, _ := decodeError(t, resp.Body)
		assert.Equal(t, dragparser.EINVALID, code)
	})

	t.Run("rejects oversized body", func(t *testing.T) {
		t.Parallel()

		s := http.NewServer(
			map[string]dragparser.Extractor{"": echoExtractor()},
			http.WithMaxBodyBytes(64),
		)
		ts := httptest.NewServer(s.Handler())
		defer ts.Close()

		resp, err := nethttp.Post(ts.URL+"/api/v1/extract", "text/html",
			bytes.NewReader(bytes.Repeat([]byte("x"), 128)))
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, nethttp.StatusRequestEntityTooLarge, resp.StatusCode)
		code, _ := decodeError(t, resp.Body)
		assert.Equal(t, dragparser.ERESOURCE, code)
	})

	t.Run("maps extraction failures to 422", func(t *testing.T) {
		t.Parallel()

		failing := &mock.Extractor{
			ExtractFn: func(ctx context.Context, doc *dragparser.Document) (*dragparser.ExtractedDocument, error) {
				return nil, dragparser.Errorf(dragparser.ENOCONTENT, "no content region found")
			},
		}
		s := http.NewServer(map[string]dragparser.Extractor{"": failing})
		ts := httptest.NewServer(s.Handler())
		defer ts.Close()

		resp, err := nethttp.Post(ts.URL+"/api/v1/extract", "text/html", strings.NewReader("<p></p>"))
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, nethttp.StatusUnprocessableEntity, resp.StatusCode)
		code, message := decodeError(t, resp.Body)
		assert.Equal(t, dragparser.ENOCONTENT, code)
		assert.Equal(t, "no content region found", message)
	})

	t.Run("hides internal error details", func(t *testing.T) {
		t.Parallel()

		failing := &mock.Extractor{
			ExtractFn: func(ctx context.Context, doc *dragparser.Document) (*dragparser.ExtractedDocument, error) {
				return nil, dragparser.Errorf(dragparser.EINTERNAL, "nil dereference in scorer")
			},
		}
		s := http.NewServer(map[string]dragparser.Extractor{"": failing})
		ts := httptest.NewServer(s.Handler())
		defer ts.Close()

		resp, err := nethttp.Post(ts.URL+"/api/v1/extract", "text/html", strings.NewReader("<p>x</p>"))
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, nethttp.StatusInternalServerError, resp.StatusCode)
		_, message := decodeError(t, resp.Body)
		assert.NotContains(t, message, "nil dereference")
	})
}

func TestServer_ExtractURL(t *testing.T) {
	t.Parallel()

	t.Run("fetches then extracts", func(t *testing.T) {
		t.Parallel()

		fetcher := &mock.Fetcher{
			FetchFn: func(ctx context.Context, rawURL string) (*dragparser.Document, error) {
				return &dragparser.Document{Raw: []byte("<p>fetched</p>"), BaseURL: rawURL}, nil
			},
		}
		s := http.NewServer(
			map[string]dragparser.Extractor{"": echoExtractor()},
			http.WithFetcher(fetcher),
		)
		ts := httptest.NewServer(s.Handler())
		defer ts.Close()

		resp, err := nethttp.Get(ts.URL + "/api/v1/extract?url=https://example.com/page")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, nethttp.StatusOK, resp.StatusCode)
		doc := decodeDocument(t, resp.Body)
		assert.Equal(t, "https://example.com/page", doc.SourceURL)
		assert.Equal(t, "<p>fetched</p>", doc.Text)
	})

	t.Run("requires url parameter", func(t *testing.T) {
		t.Parallel()

		s := http.NewServer(
			map[string]dragparser.Extractor{"": echoExtractor()},
			http.WithFetcher(&mock.Fetcher{}),
		)
		ts := httptest.NewServer(s.Handler())
		defer ts.Close()

		resp, err := nethttp.Get(ts.URL + "/api/v1/extract")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
	})

	t.Run("reports fetch failures as bad gateway", func(t *testing.T) {
		t.Parallel()

		fetcher := &mock.Fetcher{
			FetchFn: func(ctx context.Context, rawURL string) (*dragparser.Document, error) {
				return nil, dragparser.Errorf(dragparser.EUNAVAILABLE, "fetch %s: HTTP 503", rawURL)
			},
		}
		s := http.NewServer(
			map[string]dragparser.Extractor{"": echoExtractor()},
			http.WithFetcher(fetcher),
		)
		ts := httptest.NewServer(s.Handler())
		defer ts.Close()

		resp, err := nethttp.Get(ts.URL + "/api/v1/extract?url=https://example.com")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, nethttp.StatusBadGateway, resp.StatusCode)
		code, _ := decodeError(t, resp.Body)
		assert.Equal(t, dragparser.EUNAVAILABLE, code)
	})

	t.Run("rejects requests when fetching is disabled", func(t *testing.T) {
		t.Parallel()

		s := http.NewServer(map[string]dragparser.Extractor{"": echoExtractor()})
		ts := httptest.NewServer(s.Handler())
		defer ts.Close()

		resp, err := nethttp.Get(ts.URL + "/api/v1/extract?url=https://example.com")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, nethttp.StatusBadGateway, resp.StatusCode)
	})
}

func TestServer_Health(t *testing.T) {
	t.Parallel()

	s := http.NewServer(map[string]dragparser.Extractor{"": echoExtractor()})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := nethttp.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, nethttp.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}
