package audio

import (
	"context"
	"errors"
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

// SynthesizerFactory returns a synthesizer for one task.
type SynthesizerFactory func() core.Synthesizer

// Stage turns every transcript in a directory into one WAV file.
type Stage struct {
	newSynth     SynthesizerFactory
	workers      int
	splitPattern string
	logger       *slog.Logger
}

// NewStage creates a Stage. An empty splitPattern uses DefaultSplitPattern.
func NewStage(newSynth SynthesizerFactory, workers int, splitPattern string, logger *slog.Logger) *Stage {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if splitPattern == "" {
		splitPattern = DefaultSplitPattern
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Stage{newSynth: newSynth, workers: workers, splitPattern: splitPattern, logger: logger}
}

// Run writes <stem>.wav into outputDir for each .txt file in inputDir.
func (s *Stage) Run(ctx context.Context, inputDir, outputDir string) (core.Summary, error) {
	summary := core.Summary{Stage: "audio"}
	files, err := output.ListFiles(inputDir, ".txt")
	if err != nil {
		return summary, err
	}
	summary.Total = len(files)
	if len(files) == 0 {
		s.logger.Warn("no transcript files found", "dir", inputDir)
		return summary, nil
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return summary, fmt.Errorf("creating %s: %w", outputDir, err)
	}

	s.logger.Info("generating audio", "files", len(files), "workers", s.workers)
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
	if strings.TrimSpace(string(data)) == "" {
		res.Err = fmt.Errorf("empty transcript %s", path)
		log.Warn("skipping empty transcript")
		return res
	}

	synth := s.newSynth()
	segments, err := synth.Synthesize(ctx, string(data), s.splitPattern)
	if err != nil {
		res.Err = err
		log.Error("synthesis failed", "error", err)
		return res
	}
	var samples []int
	for i, seg := range segments {
		log.Debug("segment synthesized", "segment", i+1, "graphemes", len(seg.Graphemes), "samples", len(seg.Samples))
		samples = append(samples, seg.Samples...)
	}
	if len(samples) == 0 {
		res.Err = errors.New("synthesizer produced no audio")
		log.Error("no audio produced")
		return res
	}

	target := filepath.Join(outputDir, output.Stem(path)+".wav")
	if err := WriteWAV(target, samples, synth.SampleRate()); err != nil {
		res.Err = err
		log.Error("write failed", "error", err)
		return res
	}
	log.Info("audio saved", "path", target, "segments", len(segments), "seconds", float64(len(samples))/float64(synth.SampleRate()))
	res.Output = target
	return res
}
