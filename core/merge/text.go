// Package merge combines per-page outputs into one artifact.
// Every merger checks that all inputs are readable before it writes, and
// writes through a temp file, so a failed merge leaves no output behind.
package merge

import (
	"fmt"
	"os"
	"strings"

	"github.com/jungtin/notion-to-audio/core"
	"github.com/jungtin/notion-to-audio/core/output"
)

// Separator is placed between consecutive text entries.
var Separator = "\n\n" + strings.Repeat("=", 80) + "\n\n"

// TextMerger concatenates text files with Separator between them.
type TextMerger struct{}

// NewTextMerger creates a TextMerger.
func NewTextMerger() *TextMerger {
	return &TextMerger{}
}

// Merge writes the joined contents of paths to outputPath.
func (m *TextMerger) Merge(paths []string, outputPath string) (string, error) {
	contents, err := readAll(paths)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(contents))
	for i, c := range contents {
		parts[i] = string(c)
	}
	if err := output.WriteAtomic(outputPath, []byte(strings.Join(parts, Separator))); err != nil {
		return "", core.MergeError("merge text", err)
	}
	return outputPath, nil
}

func readAll(paths []string) ([][]byte, error) {
	contents := make([][]byte, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, core.MergeError("merge", fmt.Errorf("reading input: %w", err))
		}
		contents = append(contents, data)
	}
	return contents, nil
}

// ForExtension selects the merger for a rendered file extension.
func ForExtension(ext string) (core.Merger, error) {
	switch strings.ToLower(ext) {
	case ".txt", ".md":
		return NewTextMerger(), nil
	case ".pdf":
		return NewPDFMerger(), nil
	case ".json":
		return NewJSONMerger(), nil
	default:
		return nil, core.ConfigurationError("select merger", fmt.Errorf("no merger for %q", ext))
	}
}
