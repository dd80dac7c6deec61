// Package whatlang detects the language of extracted text using
// trigram analysis via whatlanggo.
package whatlang

import "github.com/RadhiFadlillah/whatlanggo"

// minConfidence is the detection confidence below which no language
// tag is reported. Short or mixed texts detect unreliably; an empty
// tag is more honest than a wrong one.
const minConfidence = 0.5

// Detect returns the ISO 639-1 language tag for the text, or an empty
// string when detection is not confident enough.
func Detect(text string) string {
	if text == "" {
		return ""
	}
	info := whatlanggo.Detect(text)
	if !info.IsReliable() || info.Confidence < minConfidence {
		return ""
	}
	return info.Lang.Iso6391()
}
