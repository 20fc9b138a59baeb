package extract

import (
	"context"
	"encoding/json"

	"github.com/jungtin/notion-to-audio/core"
	"github.com/jungtin/notion-to-audio/core/normalize"
)

// Assembler builds a Page from a database row and its extracted blocks.
type Assembler struct {
	extractor *BlockExtractor
}

// NewAssembler creates an Assembler backed by extractor.
func NewAssembler(extractor *BlockExtractor) *Assembler {
	return &Assembler{extractor: extractor}
}

// Assemble resolves the page identity and extracts its content.
// Only extraction failures are returned; a missing title becomes "Untitled".
func (a *Assembler) Assemble(ctx context.Context, desc core.PageDescriptor) (core.Page, error) {
	blocks, err := a.extractor.Extract(ctx, desc.ID)
	if err != nil {
		return core.Page{}, err
	}
	return core.Page{
		ID:     desc.ID,
		Title:  PageTitle(desc),
		Blocks: blocks,
	}, nil
}

// PageTitle reads properties.Name.title[0].plain_text, falling back to
// "Untitled" when any level is missing, empty or malformed. The title is
// normalized like block text.
func PageTitle(desc core.PageDescriptor) string {
	raw, ok := desc.Properties["Name"]
	if !ok {
		return core.TitleOrDefault("")
	}
	var name struct {
		Title []core.Span `json:"title"`
	}
	if err := json.Unmarshal(raw, &name); err != nil || len(name.Title) == 0 {
		return core.TitleOrDefault("")
	}
	return core.TitleOrDefault(normalize.New().Normalize(name.Title[0].PlainText))
}
