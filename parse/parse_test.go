package parse_test

import (
	"strings"
	"testing"

	dragparser "github.com/FirinKinuo/drag-parser"
	"github.com/FirinKinuo/drag-parser/parse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func TestParse(t *testing.T) {
	t.Parallel()

	cfg := dragparser.DefaultConfig()

	t.Run("parses well-formed markup", func(t *testing.T) {
		t.Parallel()

		root, err := parse.Parse([]byte("<html><body><p>hello</p></body></html>"), "", cfg)

		require.NoError(t, err)
		assert.Contains(t, collectText(root), "hello")
	})

	t.Run("tolerates unclosed tags", func(t *testing.T) {
		t.Parallel()

		root, err := parse.Parse([]byte("<div><p>first<p>second"), "", cfg)

		require.NoError(t, err)
		text := collectText(root)
		assert.Contains(t, text, "first")
		assert.Contains(t, text, "second")
	})

	t.Run("tolerates missing html and body elements", func(t *testing.T) {
		t.Parallel()

		root, err := parse.Parse([]byte("<p>bare fragment</p>"), "", cfg)

		require.NoError(t, err)
		assert.Contains(t, collectText(root), "bare fragment")
	})

	t.Run("parses empty input without error", func(t *testing.T) {
		t.Parallel()

		root, err := parse.Parse([]byte{}, "", cfg)

		require.NoError(t, err)
		require.NotNil(t, root)
	})

	t.Run("replaces invalid byte sequences", func(t *testing.T) {
		t.Parallel()

		root, err := parse.Parse([]byte("<p>a\xff\xfeb</p>"), "utf-8", cfg)

		require.NoError(t, err)
		text := collectText(root)
		assert.Contains(t, text, "a")
		assert.Contains(t, text, "b")
	})

	t.Run("decodes declared legacy encoding", func(t *testing.T) {
		t.Parallel()

		// "привет" in windows-1251
		raw := []byte("<p>\xef\xf0\xe8\xe2\xe5\xf2</p>")

		root, err := parse.Parse(raw, "windows-1251", cfg)

		require.NoError(t, err)
		assert.Contains(t, collectText(root), "привет")
	})

	t.Run("honors in-document meta charset hint", func(t *testing.T) {
		t.Parallel()

		raw := []byte("<html><head><meta charset=\"windows-1251\"></head>" +
			"<body><p>\xef\xf0\xe8\xe2\xe5\xf2</p></body></html>")

		root, err := parse.Parse(raw, "", cfg)

		require.NoError(t, err)
		assert.Contains(t, collectText(root), "привет")
	})

	t.Run("falls through unknown declared encoding to sniffing", func(t *testing.T) {
		t.Parallel()

		root, err := parse.Parse([]byte("<p>ok</p>"), "no-such-charset", cfg)

		require.NoError(t, err)
		assert.Contains(t, collectText(root), "ok")
	})

	t.Run("fails oversized input with resource error", func(t *testing.T) {
		t.Parallel()

		small := *cfg
		small.MaxInputBytes = 16

		_, err := parse.Parse([]byte(strings.Repeat("a", 32)), "", &small)

		require.Error(t, err)
		assert.Equal(t, dragparser.ERESOURCE, dragparser.ErrorCode(err))
	})

	t.Run("fails deeply nested input with depth error", func(t *testing.T) {
		t.Parallel()

		shallow := *cfg
		shallow.MaxDepth = 10
		deep := strings.Repeat("<div>", 20) + "x" + strings.Repeat("</div>", 20)

		_, err := parse.Parse([]byte(deep), "", &shallow)

		require.Error(t, err)
		assert.Equal(t, dragparser.ETOODEEP, dragparser.ErrorCode(err))
	})

	t.Run("accepts nesting at the limit", func(t *testing.T) {
		t.Parallel()

		deep := strings.Repeat("<div>", 50) + "x" + strings.Repeat("</div>", 50)

		_, err := parse.Parse([]byte(deep), "", cfg)

		require.NoError(t, err)
	})
}

// collectText flattens all text nodes of a tree for assertions.
func collectText(root *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return b.String()
}
