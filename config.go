package dragparser

// Lexicon holds the class/id token lists used by the scorer. Tokens
// are matched as substrings of lowercased class and id attribute
// values. A Lexicon is read-only after construction and safe to share
// across concurrent extractions.
type Lexicon struct {
	// Positive tokens signal genuine content containers.
	Positive []string

	// Negative tokens signal boilerplate and navigation.
	Negative []string
}

// Config carries the scoring weights, thresholds and resource limits
// for an extraction run. Build one at startup (usually via
// DefaultConfig) and pass it by reference into every worker; it must
// never be mutated after load.
type Config struct {
	Lexicon Lexicon

	// TagWeights assigns per-element base weights. Paragraph-like
	// elements outweigh generic containers, which outweigh inline
	// elements (weight zero).
	TagWeights map[string]float64

	// PositiveBoost and NegativePenalty adjust a node's score when its
	// class/id tokens match the lexicon.
	PositiveBoost   float64
	NegativePenalty float64

	// ParentShare is the fraction of a node's score propagated to its
	// parent, and half of that again to its grandparent, so a cluster
	// of moderate siblings can outweigh one outlier.
	ParentShare float64

	// MinScore is the minimum viable score for region selection.
	// Candidates below it trigger the whole-document fallback.
	MinScore float64

	// MaxDepth bounds markup nesting. Exceeding it fails the parse
	// with ETOODEEP.
	MaxDepth int

	// MaxInputBytes bounds input size. Exceeding it fails the parse
	// with ERESOURCE.
	MaxInputBytes int
}

// Default limits. Tunable constants, not recoverable from any
// standard: calibrated against the corpora the heuristics were
// developed on.
const (
	DefaultMaxDepth      = 200
	DefaultMaxInputBytes = 10 << 20 // 10 MiB
	DefaultMinScore      = 20.0
)

// DefaultConfig returns the stock scoring configuration.
func DefaultConfig() *Config {
	return &Config{
		Lexicon: Lexicon{
			Positive: []string{
				"article", "body", "content", "entry", "main",
				"page", "post", "story", "text",
			},
			Negative: []string{
				"ad", "advert", "banner", "comment", "footer",
				"header", "menu", "nav", "promo", "related",
				"share", "sidebar", "social", "sponsor", "widget",
			},
		},
		TagWeights: map[string]float64{
			// paragraph-like
			"p": 5, "pre": 4, "blockquote": 4, "td": 3, "li": 1,
			"h1": 2, "h2": 2, "h3": 2, "h4": 1, "h5": 1, "h6": 1,
			// generic containers
			"article": 8, "main": 8, "section": 3, "div": 1,
		},
		PositiveBoost:   25,
		NegativePenalty: 25,
		ParentShare:     0.5,
		MinScore:        DefaultMinScore,
		MaxDepth:        DefaultMaxDepth,
		MaxInputBytes:   DefaultMaxInputBytes,
	}
}
