// Package extract turns a remote page tree into a flat, ordered list of
// typed and indented blocks, and assembles pages from database rows.
//
// Traversal is depth-first pre-order over an explicit worklist:
//  1. List the root's children and stack them at depth 0
//  2. Pop a block, emit it if its text is non-empty
//  3. If it has children, list them and stack them one level deeper
package extract

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jungtin/notion-to-audio/core"
	"github.com/jungtin/notion-to-audio/core/normalize"
)

// BlockExtractor walks a page through a core.Source.
type BlockExtractor struct {
	source     core.Source
	normalizer *normalize.TextNormalizer
	logger     *slog.Logger
}

// New creates a BlockExtractor reading from source.
func New(source core.Source, logger *slog.Logger) *BlockExtractor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &BlockExtractor{
		source:     source,
		normalizer: normalize.New(),
		logger:     logger,
	}
}

// Extract returns the blocks under rootID in pre-order. Blocks with empty
// text are skipped but their children are still visited. Any listing
// failure aborts the page with an extraction error.
func (e *BlockExtractor) Extract(ctx context.Context, rootID string) ([]core.Block, error) {
	wl := newWorklist()
	wl.markExpanded(rootID)

	children, err := e.source.ListChildren(ctx, rootID)
	if err != nil {
		return nil, core.ExtractionError("extract "+rootID, err)
	}
	wl.pushChildren(children, 0)

	var blocks []core.Block
	for wl.hasNext() {
		if err := ctx.Err(); err != nil {
			return nil, core.ExtractionError("extract "+rootID, err)
		}
		f := wl.pop()

		text := e.normalizer.Normalize(blockText(f.block))
		if text != "" {
			blocks = append(blocks, core.Block{
				Kind:  core.ParseKind(f.block.Type),
				Tag:   f.block.Type,
				Text:  text,
				Depth: f.depth,
			})
		}

		if !f.block.HasChildren {
			continue
		}
		if !wl.markExpanded(f.block.ID) {
			e.logger.Warn("skipping already expanded block", "block_id", f.block.ID)
			continue
		}
		nested, err := e.source.ListChildren(ctx, f.block.ID)
		if err != nil {
			return nil, core.ExtractionError(fmt.Sprintf("extract %s: children of %s", rootID, f.block.ID), err)
		}
		wl.pushChildren(nested, f.depth+1)
	}

	e.logger.Debug("extracted page", "page_id", rootID, "blocks", len(blocks))
	return blocks, nil
}
