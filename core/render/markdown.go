package render

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/jungtin/notion-to-audio/core"
	"github.com/jungtin/notion-to-audio/core/output"
)

// MarkdownRenderer renders a page as CommonMark. List items nest by depth,
// indented to the content column of their parent item; other blocks are
// written flush left so they never turn into code.
type MarkdownRenderer struct{}

// NewMarkdownRenderer creates a MarkdownRenderer.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{}
}

// Render writes <stem>.md into outputDir.
func (r *MarkdownRenderer) Render(_ context.Context, page core.Page, outputDir string) (string, error) {
	path := filepath.Join(outputDir, page.FileStem()+r.Extension())
	if err := output.WriteAtomic(path, []byte(FormatMarkdown(page))); err != nil {
		return "", core.RenderError("render markdown "+page.ID, err)
	}
	return path, nil
}

// Extension returns the file extension for Markdown output.
func (r *MarkdownRenderer) Extension() string {
	return ".md"
}

// FormatMarkdown returns the Markdown form of page.
func FormatMarkdown(page core.Page) string {
	var b strings.Builder
	b.WriteString("# " + page.Title + "\n\n")

	// columns[d] is the content column of the open list item at depth d.
	var columns []int
	for _, blk := range page.Blocks {
		listLike := blk.Kind.IsListItem() || blk.Kind == core.KindToDo || blk.Kind == core.KindToggle
		if !listLike {
			if len(columns) > 0 {
				b.WriteString("\n")
			}
			columns = columns[:0]
		}

		ind := ""
		if listLike {
			col := 0
			if n := min(blk.Depth, len(columns)); n > 0 {
				col = columns[n-1]
			}
			columns = append(columns[:min(blk.Depth, len(columns))], col+len(listMarker(blk.Kind)))
			ind = strings.Repeat(" ", col)
		}
		switch blk.Kind {
		case core.KindHeading1:
			b.WriteString("## " + blk.Text + "\n\n")
		case core.KindHeading2:
			b.WriteString("### " + blk.Text + "\n\n")
		case core.KindHeading3:
			b.WriteString("#### " + blk.Text + "\n\n")
		case core.KindBulleted:
			b.WriteString(ind + "- " + blk.Text + "\n")
		case core.KindNumbered:
			b.WriteString(ind + "1. " + blk.Text + "\n")
		case core.KindToDo:
			b.WriteString(ind + "- [ ] " + blk.Text + "\n")
		case core.KindToggle:
			b.WriteString(ind + "- ▶ " + blk.Text + "\n")
		case core.KindQuote:
			for _, line := range strings.Split(blk.Text, "\n") {
				b.WriteString("> " + line + "\n")
			}
			b.WriteString("\n")
		case core.KindCode:
			b.WriteString("```\n" + blk.Text + "\n```\n\n")
		default:
			b.WriteString(blk.Text + "\n\n")
		}
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

// listMarker is the list marker written before an item's content.
func listMarker(k core.Kind) string {
	if k == core.KindNumbered {
		return "1. "
	}
	return "- "
}
