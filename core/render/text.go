// Package render provides the output renderers for a Page.
// Each renderer is deterministic and writes exactly one file per page.
package render

import (
	"context"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/jungtin/notion-to-audio/core"
	"github.com/jungtin/notion-to-audio/core/output"
)

const indentUnit = "    "

// TextRenderer renders a page as indented plain text.
type TextRenderer struct{}

// NewTextRenderer creates a TextRenderer.
func NewTextRenderer() *TextRenderer {
	return &TextRenderer{}
}

// Render writes <stem>.txt into outputDir.
func (r *TextRenderer) Render(_ context.Context, page core.Page, outputDir string) (string, error) {
	path := filepath.Join(outputDir, page.FileStem()+r.Extension())
	if err := output.WriteAtomic(path, []byte(FormatText(page))); err != nil {
		return "", core.RenderError("render text "+page.ID, err)
	}
	return path, nil
}

// Extension returns the file extension for text output.
func (r *TextRenderer) Extension() string {
	return ".txt"
}

// FormatText returns the plain-text form of page.
func FormatText(page core.Page) string {
	var b strings.Builder
	b.WriteString(page.Title)
	b.WriteString("\n")
	b.WriteString(underline(page.Title, "="))
	b.WriteString("\n\n")

	for _, blk := range page.Blocks {
		writeTextBlock(&b, blk)
	}
	return b.String()
}

func writeTextBlock(b *strings.Builder, blk core.Block) {
	ind := strings.Repeat(indentUnit, blk.Depth)

	if blk.Kind.IsHeading() {
		if s := b.String(); s != "" && !strings.HasSuffix(s, "\n\n") {
			b.WriteString("\n")
		}
	}

	switch blk.Kind {
	case core.KindHeading1:
		b.WriteString(blk.Text + "\n" + underline(blk.Text, "-") + "\n")
	case core.KindHeading2:
		b.WriteString(ind + blk.Text + "\n" + ind + underline(blk.Text, "-") + "\n")
	case core.KindHeading3:
		b.WriteString(ind + blk.Text + "\n" + ind + underline(blk.Text, "~") + "\n")
	case core.KindBulleted:
		b.WriteString(ind + "• " + blk.Text + "\n")
	case core.KindNumbered:
		b.WriteString(ind + "* " + blk.Text + "\n")
	case core.KindToggle:
		b.WriteString(ind + "▶ " + blk.Text + "\n")
	case core.KindQuote:
		b.WriteString(ind + "> " + blk.Text + "\n")
	case core.KindToDo:
		b.WriteString(ind + "□ " + blk.Text + "\n")
	case core.KindCode:
		b.WriteString(ind + "```\n")
		for _, line := range strings.Split(blk.Text, "\n") {
			b.WriteString(ind + line + "\n")
		}
		b.WriteString(ind + "```\n")
	default:
		b.WriteString(ind + blk.Text + "\n")
	}

	if !blk.Kind.IsListItem() {
		b.WriteString("\n")
	}
}

// underline repeats ch once per rune of text.
func underline(text, ch string) string {
	return strings.Repeat(ch, utf8.RuneCountInString(text))
}
