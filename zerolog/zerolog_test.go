package zerolog_test

import (
	"bytes"
	"context"
	"testing"

	dragparser "github.com/FirinKinuo/drag-parser"
	"github.com/FirinKinuo/drag-parser/mock"
	dragzerolog "github.com/FirinKinuo/drag-parser/zerolog"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("logs success with word count and duration", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := zerolog.New(&buf)
		inner := &mock.Extractor{
			ExtractFn: func(ctx context.Context, doc *dragparser.Document) (*dragparser.ExtractedDocument, error) {
				return &dragparser.ExtractedDocument{Title: "Hello", WordCount: 42}, nil
			},
		}

		e := dragzerolog.NewLoggingExtractor(inner, logger)
		extracted, err := e.Extract(context.Background(), &dragparser.Document{
			Raw:     []byte("<p>x</p>"),
			BaseURL: "https://example.com/a",
		})

		require.NoError(t, err)
		assert.Equal(t, 42, extracted.WordCount)
		output := buf.String()
		assert.Contains(t, output, `"message":"extract"`)
		assert.Contains(t, output, `"url":"https://example.com/a"`)
		assert.Contains(t, output, `"words":42`)
		assert.Contains(t, output, `"duration"`)
	})

	t.Run("logs error with code", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := zerolog.New(&buf)
		inner := &mock.Extractor{
			ExtractFn: func(ctx context.Context, doc *dragparser.Document) (*dragparser.ExtractedDocument, error) {
				return nil, dragparser.Errorf(dragparser.ENOCONTENT, "nothing scored above threshold")
			},
		}

		e := dragzerolog.NewLoggingExtractor(inner, logger)
		_, err := e.Extract(context.Background(), &dragparser.Document{Raw: []byte("<p></p>")})

		require.Error(t, err)
		output := buf.String()
		assert.Contains(t, output, `"level":"error"`)
		assert.Contains(t, output, `"code":"no_content"`)
	})
}

func TestLoggingFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("logs fetch with byte count", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := zerolog.New(&buf)
		inner := &mock.Fetcher{
			FetchFn: func(ctx context.Context, rawURL string) (*dragparser.Document, error) {
				return &dragparser.Document{Raw: []byte("<html>content</html>")}, nil
			},
		}

		f := dragzerolog.NewLoggingFetcher(inner, logger)
		doc, err := f.Fetch(context.Background(), "https://example.com/docs")

		require.NoError(t, err)
		assert.Len(t, doc.Raw, 20)
		output := buf.String()
		assert.Contains(t, output, `"message":"fetch"`)
		assert.Contains(t, output, `"url":"https://example.com/docs"`)
		assert.Contains(t, output, `"bytes":20`)
	})

	t.Run("logs error on failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := zerolog.New(&buf)
		inner := &mock.Fetcher{
			FetchFn: func(ctx context.Context, rawURL string) (*dragparser.Document, error) {
				return nil, dragparser.Errorf(dragparser.EUNAVAILABLE, "fetch %s: HTTP 503", rawURL)
			},
		}

		f := dragzerolog.NewLoggingFetcher(inner, logger)
		_, err := f.Fetch(context.Background(), "https://example.com/docs")

		require.Error(t, err)
		output := buf.String()
		assert.Contains(t, output, `"level":"error"`)
		assert.Contains(t, output, "HTTP 503")
	})
}
