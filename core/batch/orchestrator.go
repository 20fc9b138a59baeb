package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jungtin/notion-to-audio/core"
	"github.com/jungtin/notion-to-audio/core/extract"
	"github.com/jungtin/notion-to-audio/core/output"
)

const (
	// SourcesDir holds the per-page files under the output directory.
	SourcesDir = "sources"
	// CombinedStem names the merged artifact.
	CombinedStem = "combined"

	defaultExtractWorkers = 8
	disambiguatorLength   = 8
)

// SourceFactory returns a Source for one task. Each task gets its own.
type SourceFactory func() core.Source

// Options tunes an extraction run.
type Options struct {
	Workers  int
	Numbered bool
}

// Orchestrator exports every page of a database and merges the results.
type Orchestrator struct {
	newSource SourceFactory
	renderer  core.Renderer
	merger    core.Merger
	opts      Options
	logger    *slog.Logger
}

// NewOrchestrator wires the export pipeline.
func NewOrchestrator(newSource SourceFactory, renderer core.Renderer, merger core.Merger, opts Options, logger *slog.Logger) *Orchestrator {
	if opts.Workers <= 0 {
		opts.Workers = defaultExtractWorkers
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Orchestrator{
		newSource: newSource,
		renderer:  renderer,
		merger:    merger,
		opts:      opts,
		logger:    logger,
	}
}

// Run empties outputDir, renders every database page into
// outputDir/sources and merges them into outputDir/combined<ext>.
// Only setup failures are returned; per-page and merge failures are
// recorded in the summary.
func (o *Orchestrator) Run(ctx context.Context, databaseID, outputDir string) (core.Summary, error) {
	summary := core.Summary{Stage: "extract"}

	if err := output.Reset(outputDir); err != nil {
		return summary, fmt.Errorf("cleaning output directory: %w", err)
	}
	sourcesDir := filepath.Join(outputDir, SourcesDir)
	if err := os.MkdirAll(sourcesDir, 0755); err != nil {
		return summary, fmt.Errorf("creating %s: %w", sourcesDir, err)
	}

	descs, err := o.newSource().QueryDatabase(ctx, databaseID)
	if err != nil {
		return summary, core.ExtractionError("list pages", err)
	}
	summary.Total = len(descs)
	if len(descs) == 0 {
		o.logger.Warn("no pages found in database", "database_id", databaseID)
		return summary, nil
	}
	o.logger.Info("exporting pages", "count", len(descs), "workers", o.opts.Workers, "format", o.renderer.Extension())

	suffixes := disambiguators(descs, o.opts.Numbered)
	summary.Items = Run(ctx, len(descs), o.opts.Workers, func(ctx context.Context, i int) core.ItemResult {
		return o.exportPage(ctx, i, descs[i], suffixes[i], sourcesDir)
	})
	summary.Succeeded = Tally(summary.Items)

	paths := summary.Outputs()
	if len(paths) == 0 {
		o.logger.Warn("no pages exported, skipping merge")
		return summary, nil
	}
	combined := filepath.Join(outputDir, CombinedStem+o.renderer.Extension())
	if _, err := o.merger.Merge(paths, combined); err != nil {
		o.logger.Error("merge failed", "error", err)
		summary.MergeErr = err
		return summary, nil
	}
	summary.MergedPath = combined
	o.logger.Info("merged pages", "path", combined, "pages", len(paths))
	return summary, nil
}

func (o *Orchestrator) exportPage(ctx context.Context, i int, desc core.PageDescriptor, suffix, dir string) core.ItemResult {
	title := extract.PageTitle(desc)
	log := o.logger.With("index", i, "page_id", desc.ID, "title", title)
	res := core.ItemResult{Name: title}

	assembler := extract.NewAssembler(extract.New(o.newSource(), log))
	page, err := assembler.Assemble(ctx, desc)
	if err != nil {
		log.Error("page extraction failed", "error", err)
		res.Err = err
		return res
	}
	if o.opts.Numbered {
		page.Ordinal = i + 1
	}
	page.Disambiguator = suffix

	path, err := o.renderer.Render(ctx, page, dir)
	if err != nil {
		log.Error("page render failed", "error", err)
		res.Err = err
		return res
	}
	log.Info("page exported", "path", path, "blocks", len(page.Blocks))
	res.Output = path
	return res
}

// disambiguators returns a file-name suffix for every page whose sanitized
// title collides with another page's. Suffixes start as a short id prefix
// and grow to the full id, then a counter, until the final stem is free.
// Stems compare case-insensitively. Numbered names never collide.
func disambiguators(descs []core.PageDescriptor, numbered bool) []string {
	out := make([]string, len(descs))
	if numbered {
		return out
	}
	counts := make(map[string]int, len(descs))
	stems := make([]string, len(descs))
	for i, d := range descs {
		stems[i] = core.Sanitize(extract.PageTitle(d))
		counts[strings.ToLower(stems[i])]++
	}
	taken := make(map[string]bool, len(descs))
	for _, stem := range stems {
		if counts[strings.ToLower(stem)] == 1 {
			taken[strings.ToLower(stem)] = true
		}
	}
	for i, d := range descs {
		if counts[strings.ToLower(stems[i])] == 1 {
			continue
		}
		for n := 0; ; n++ {
			suffix := suffixCandidate(d.ID, n)
			final := strings.ToLower(core.Page{Title: stems[i], Disambiguator: suffix}.FileStem())
			if !taken[final] {
				taken[final] = true
				out[i] = suffix
				break
			}
		}
	}
	return out
}

// suffixCandidate returns the n-th suffix tried for id: the short id
// prefix, then the full id, then the full id with a counter.
func suffixCandidate(id string, n int) string {
	full := strings.ReplaceAll(id, "-", "")
	switch {
	case n == 0 && len(full) > disambiguatorLength:
		return full[:disambiguatorLength]
	case n <= 1:
		return full
	default:
		return fmt.Sprintf("%s_%d", full, n)
	}
}
