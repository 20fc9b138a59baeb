// Package chunk splits long text into overlapping windows for prompting.
// Splitting is recursive: text is cut on the coarsest separator present
// (paragraphs, then lines, then sentences, then words, then runes) and the
// pieces are greedily packed back into windows of at most Size runes, each
// window repeating up to Overlap runes from the end of the previous one.
package chunk

import (
	"strings"
	"unicode/utf8"
)

// DefaultSeparators are tried in order, coarsest first.
var DefaultSeparators = []string{"\n\n", "\n", ". ", "! ", "? ", " ", ""}

// Chunker splits text into windows measured in runes.
type Chunker struct {
	Size       int
	Overlap    int
	Separators []string
}

// New creates a Chunker. Defaults to 6000/200 when values are out of range.
func New(size, overlap int) *Chunker {
	if size <= 0 {
		size = 6000
	}
	if overlap < 0 || overlap >= size {
		overlap = min(200, size/2)
	}
	return &Chunker{Size: size, Overlap: overlap, Separators: DefaultSeparators}
}

// Chunk returns text unchanged when it fits in one window, otherwise the
// ordered windows with surrounding whitespace trimmed.
func (c *Chunker) Chunk(text string) []string {
	if runeLen(text) <= c.Size {
		return []string{text}
	}
	return c.split(text, c.Separators)
}

func (c *Chunker) split(text string, separators []string) []string {
	sep := ""
	var rest []string
	for i, s := range separators {
		if s == "" || strings.Contains(text, s) {
			sep = s
			rest = separators[i+1:]
			break
		}
	}

	var out, fitting []string
	for _, piece := range splitKeep(text, sep) {
		if runeLen(piece) <= c.Size {
			fitting = append(fitting, piece)
			continue
		}
		if len(fitting) > 0 {
			out = append(out, c.pack(fitting)...)
			fitting = nil
		}
		if len(rest) == 0 {
			out = append(out, piece)
		} else {
			out = append(out, c.split(piece, rest)...)
		}
	}
	if len(fitting) > 0 {
		out = append(out, c.pack(fitting)...)
	}
	return out
}

// pack greedily joins pieces into windows, carrying an overlap tail forward.
func (c *Chunker) pack(pieces []string) []string {
	var (
		out     []string
		current []string
		total   int
	)
	emit := func() {
		if doc := strings.TrimSpace(strings.Join(current, "")); doc != "" {
			out = append(out, doc)
		}
	}
	for _, p := range pieces {
		n := runeLen(p)
		if total+n > c.Size && len(current) > 0 {
			emit()
			for total > c.Overlap || (total+n > c.Size && total > 0) {
				total -= runeLen(current[0])
				current = current[1:]
			}
		}
		current = append(current, p)
		total += n
	}
	emit()
	return out
}

// splitKeep splits on sep and keeps sep at the start of each following
// piece, so joining the pieces restores text.
func splitKeep(text, sep string) []string {
	if sep == "" {
		pieces := make([]string, 0, len(text))
		for _, r := range text {
			pieces = append(pieces, string(r))
		}
		return pieces
	}
	parts := strings.Split(text, sep)
	pieces := make([]string, 0, len(parts))
	for i, p := range parts {
		if i > 0 {
			p = sep + p
		}
		if p != "" {
			pieces = append(pieces, p)
		}
	}
	return pieces
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
