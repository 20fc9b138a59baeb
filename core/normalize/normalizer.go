// Package normalize cleans extracted text before it reaches the renderers.
// Spans are composed to Unicode NFC and line endings are folded to "\n",
// so every renderer sees the same canonical text for a block.
package normalize

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// TextNormalizer canonicalizes block text.
type TextNormalizer struct{}

// New creates a TextNormalizer.
func New() *TextNormalizer {
	return &TextNormalizer{}
}

// Normalize returns s in NFC with LF line endings.
func (n *TextNormalizer) Normalize(s string) string {
	if s == "" {
		return s
	}
	return norm.NFC.String(lineEndings.Replace(s))
}
