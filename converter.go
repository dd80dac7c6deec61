package dragparser

// Converter converts clean content HTML to Markdown.
type Converter interface {
	// Convert transforms HTML content into Markdown.
	// The input should be normalized HTML produced by the engine.
	Convert(html string) (string, error)
}
