package transcript

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jungtin/notion-to-audio/core"
	"github.com/jungtin/notion-to-audio/core/batch"
	"github.com/jungtin/notion-to-audio/core/output"
)

const defaultWorkers = 2

// ClientFactory returns a model client for one task.
type ClientFactory func() core.Completer

// Stage turns every .txt file of a directory into a transcript file.
type Stage struct {
	newClient ClientFactory
	workers   int
	opts      GeneratorOptions
	logger    *slog.Logger
}

// NewStage creates a Stage. workers bounds concurrent model traffic.
func NewStage(newClient ClientFactory, workers int, opts GeneratorOptions, logger *slog.Logger) *Stage {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Stage{newClient: newClient, workers: workers, opts: opts, logger: logger}
}

// Run writes transcript_<stem>.txt into outputDir for each input file.
// A missing input directory is a setup error; per-file failures are
// recorded in the summary.
func (s *Stage) Run(ctx context.Context, inputDir, outputDir string) (core.Summary, error) {
	summary := core.Summary{Stage: "transcript"}
	files, err := output.ListFiles(inputDir, ".txt")
	if err != nil {
		return summary, err
	}
	summary.Total = len(files)
	if len(files) == 0 {
		s.logger.Warn("no text files found", "dir", inputDir)
		return summary, nil
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return summary, fmt.Errorf("creating %s: %w", outputDir, err)
	}

	s.logger.Info("generating transcripts", "files", len(files), "workers", s.workers)
	summary.Items = batch.Run(ctx, len(files), s.workers, func(ctx context.Context, i int) core.ItemResult {
		return s.processFile(ctx, files[i], outputDir)
	})
	summary.Succeeded = batch.Tally(summary.Items)
	return summary, nil
}

func (s *Stage) processFile(ctx context.Context, path, outputDir string) core.ItemResult {
	res := core.ItemResult{Name: filepath.Base(path)}
	log := s.logger.With("file", res.Name)

	data, err := os.ReadFile(path)
	if err != nil {
		res.Err = fmt.Errorf("reading %s: %w", path, err)
		log.Error("read failed", "error", err)
		return res
	}
	content := string(data)
	if strings.TrimSpace(content) == "" {
		res.Err = fmt.Errorf("no content in %s", path)
		log.Warn("skipping empty file")
		return res
	}

	topic := Topic(content, path)
	log.Info("topic identified", "topic", topic)
	gen := NewGenerator(s.newClient(), s.opts, log)
	text, err := gen.Generate(ctx, content, topic)
	if err != nil {
		res.Err = err
		return res
	}

	target := filepath.Join(outputDir, "transcript_"+output.Stem(path)+".txt")
	if err := output.WriteAtomic(target, []byte(text)); err != nil {
		res.Err = err
		log.Error("write failed", "error", err)
		return res
	}
	log.Info("transcript saved", "path", target)
	res.Output = target
	return res
}
