package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jungtin/notion-to-audio/core"
	"github.com/jungtin/notion-to-audio/core/audio"
	"github.com/jungtin/notion-to-audio/core/batch"
	"github.com/jungtin/notion-to-audio/core/fetch"
	"github.com/jungtin/notion-to-audio/core/merge"
	"github.com/jungtin/notion-to-audio/core/render"
	"github.com/jungtin/notion-to-audio/core/transcript"
	"github.com/jungtin/notion-to-audio/internal/config"
	"github.com/jungtin/notion-to-audio/internal/logging"
)

// app carries the loaded configuration into each stage runner.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	out    io.Writer
}

// loadApp reads the config and builds the run logger. Flags override
// the logging section of the file.
func loadApp(cmd *cobra.Command) (*app, error) {
	cfg, path, exists, err := config.Load(flagConfig)
	if err != nil {
		return nil, core.ConfigurationError("load config", err)
	}
	if flagLogLevel != "" {
		cfg.Logging.Level = flagLogLevel
	}
	if flagLogFormat != "" {
		cfg.Logging.Format = flagLogFormat
	}
	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, core.ConfigurationError("configure logging", err)
	}
	logger, _ = logging.WithRunID(logger)
	logger.Debug("configuration loaded", "path", path, "file_found", exists)
	return &app{cfg: cfg, logger: logger, out: cmd.OutOrStdout()}, nil
}

// extract exports the database in format and prints the summary.
func (a *app) extract(ctx context.Context, format string, numbered bool) (core.Summary, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "text" {
		format = "txt"
	}
	if !slices.Contains(render.Formats, format) {
		return core.Summary{}, core.ConfigurationError("extract", fmt.Errorf("unknown format %q (want one of %s)", format, strings.Join(render.Formats, ", ")))
	}
	if err := a.cfg.ValidateExtract(); err != nil {
		return core.Summary{}, err
	}
	log := a.logger.With("stage", "extract")

	var fonts *render.FontManager
	if format == "pdf" {
		fonts = render.NewFontManager(a.cfg.Font.CacheDir, a.cfg.Font.URL, a.cfg.Font.SearchDirs, log)
		if _, err := fonts.Ensure(ctx); err != nil {
			log.Warn("fonts unavailable, pdf pages will fail", "error", err)
		}
	}
	renderer, err := render.ForFormat(format, fonts)
	if err != nil {
		return core.Summary{}, err
	}
	merger, err := merge.ForExtension(renderer.Extension())
	if err != nil {
		return core.Summary{}, err
	}

	notionCfg := fetch.Config{
		Token:    a.cfg.Notion.Token,
		BaseURL:  a.cfg.Notion.BaseURL,
		Version:  a.cfg.Notion.Version,
		PageSize: a.cfg.Notion.PageSize,
	}
	newSource := func() core.Source {
		return fetch.New(notionCfg, fetch.WithLogger(log))
	}
	orch := batch.NewOrchestrator(newSource, renderer, merger, batch.Options{
		Workers:  a.cfg.Extract.Workers,
		Numbered: numbered,
	}, log)

	outDir := a.cfg.ExtractDir(format)
	fmt.Fprintf(a.out, "Exporting Notion database to %s...\n", outDir)
	summary, err := orch.Run(ctx, a.cfg.Notion.DatabaseID, outDir)
	if err != nil {
		return summary, err
	}
	printSummary(a.out, summary)
	return summary, nil
}

// transcript rewrites the exported text sources into transcripts.
func (a *app) transcript(ctx context.Context) (core.Summary, error) {
	if err := a.cfg.ValidateTranscript(); err != nil {
		return core.Summary{}, err
	}
	tc := a.cfg.Transcript
	geminiCfg := transcript.GeminiConfig{
		APIKey:         tc.APIKey,
		BaseURL:        tc.BaseURL,
		Model:          tc.Model,
		TimeoutSeconds: tc.TimeoutSeconds,
	}
	newClient := func() core.Completer {
		return transcript.NewGeminiClient(geminiCfg)
	}
	opts := transcript.GeneratorOptions{
		ChunkSize:  tc.ChunkSize,
		Overlap:    tc.ChunkOverlap,
		Attempts:   tc.Attempts,
		RetryDelay: seconds(tc.RetryDelaySeconds),
		ChunkPause: seconds(tc.ChunkPauseSeconds),
	}
	stage := transcript.NewStage(newClient, tc.Workers, opts, a.logger.With("stage", "transcript"))

	inDir := filepath.Join(a.cfg.ExtractDir("txt"), batch.SourcesDir)
	fmt.Fprintf(a.out, "Generating transcripts from %s...\n", inDir)
	summary, err := stage.Run(ctx, inDir, a.cfg.Paths.TranscriptDir)
	if err != nil {
		return summary, err
	}
	printSummary(a.out, summary)
	return summary, nil
}

// audio synthesizes every transcript into a WAV file.
func (a *app) audio(ctx context.Context) (core.Summary, error) {
	if err := a.cfg.ValidateAudio(); err != nil {
		return core.Summary{}, err
	}
	ac := a.cfg.Audio
	speechCfg := audio.SpeechConfig{
		BaseURL:        ac.BaseURL,
		APIKey:         ac.APIKey,
		Model:          ac.Model,
		Voice:          ac.Voice,
		Speed:          ac.Speed,
		SampleRate:     ac.SampleRate,
		TimeoutSeconds: ac.TimeoutSeconds,
	}
	newSynth := func() core.Synthesizer {
		return audio.NewHTTPSynthesizer(speechCfg)
	}
	stage := audio.NewStage(newSynth, ac.Workers, ac.SplitPattern, a.logger.With("stage", "audio"))

	fmt.Fprintf(a.out, "Generating audio from %s...\n", a.cfg.Paths.TranscriptDir)
	summary, err := stage.Run(ctx, a.cfg.Paths.TranscriptDir, a.cfg.Paths.AudioDir)
	if err != nil {
		return summary, err
	}
	printSummary(a.out, summary)
	return summary, nil
}

// full chains extract(txt), transcript and audio. It stops at the first
// stage that fails to start or produces nothing for the next one.
func (a *app) full(ctx context.Context, numbered bool) error {
	steps := []struct {
		name string
		run  func(context.Context) (core.Summary, error)
	}{
		{"Extracting content from Notion", func(ctx context.Context) (core.Summary, error) { return a.extract(ctx, "txt", numbered) }},
		{"Generating transcripts", a.transcript},
		{"Creating audio files", a.audio},
	}
	for i, step := range steps {
		fmt.Fprintf(a.out, "\n[Step %d/%d] %s...\n", i+1, len(steps), step.name)
		summary, err := step.run(ctx)
		if err != nil {
			return fmt.Errorf("step %d/%d: %w", i+1, len(steps), err)
		}
		if summary.Succeeded == 0 {
			return fmt.Errorf("step %d/%d: %s produced no output", i+1, len(steps), summary.Stage)
		}
		fmt.Fprintf(a.out, "✓ %s completed\n", summary.Stage)
	}
	fmt.Fprintln(a.out, "\n✓ Complete workflow finished successfully!")
	return nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
