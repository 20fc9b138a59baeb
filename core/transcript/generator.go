package transcript

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/jungtin/notion-to-audio/core"
	"github.com/jungtin/notion-to-audio/core/chunk"
)

const (
	defaultAttempts   = 3
	defaultRetryDelay = 2 * time.Second
	defaultChunkPause = 1 * time.Second
	defaultChunkSize  = 6000
	defaultOverlap    = 200
)

// GeneratorOptions tunes chunking and retry behaviour. Zero sizes and
// attempts take the defaults; zero durations mean no wait.
type GeneratorOptions struct {
	ChunkSize  int
	Overlap    int
	Attempts   int
	RetryDelay time.Duration
	ChunkPause time.Duration
}

func (o GeneratorOptions) withDefaults() GeneratorOptions {
	if o.ChunkSize <= 0 {
		o.ChunkSize = defaultChunkSize
	}
	if o.Overlap <= 0 {
		o.Overlap = defaultOverlap
	}
	if o.Attempts <= 0 {
		o.Attempts = defaultAttempts
	}
	if o.RetryDelay < 0 {
		o.RetryDelay = defaultRetryDelay
	}
	if o.ChunkPause < 0 {
		o.ChunkPause = defaultChunkPause
	}
	return o
}

// DefaultGeneratorOptions returns the production settings.
func DefaultGeneratorOptions() GeneratorOptions {
	return GeneratorOptions{
		ChunkSize:  defaultChunkSize,
		Overlap:    defaultOverlap,
		Attempts:   defaultAttempts,
		RetryDelay: defaultRetryDelay,
		ChunkPause: defaultChunkPause,
	}
}

// Generator turns source text into a transcript, one prompt per chunk.
type Generator struct {
	client  core.Completer
	chunker *chunk.Chunker
	opts    GeneratorOptions
	sleep   func(context.Context, time.Duration) error
	logger  *slog.Logger
}

// NewGenerator creates a Generator over client.
func NewGenerator(client core.Completer, opts GeneratorOptions, logger *slog.Logger) *Generator {
	opts = opts.withDefaults()
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Generator{
		client:  client,
		chunker: chunk.New(opts.ChunkSize, opts.Overlap),
		opts:    opts,
		sleep:   sleepContext,
		logger:  logger,
	}
}

// Generate rewrites content about topic. Chunks are sent in order with a
// pause between them and the answers joined by a blank line. Any chunk
// that still fails after all attempts fails the whole transcript.
func (g *Generator) Generate(ctx context.Context, content, topic string) (string, error) {
	chunks := g.chunker.Chunk(content)
	if len(chunks) > 1 {
		g.logger.Info("content split into chunks", "topic", topic, "chunks", len(chunks))
	}

	parts := make([]string, 0, len(chunks))
	for i, c := range chunks {
		prompt := BuildPrompt(topic, c, i, len(chunks))
		text, err := g.completeWithRetry(ctx, prompt, topic, i, len(chunks))
		if err != nil {
			return "", err
		}
		parts = append(parts, text)
		if i < len(chunks)-1 {
			if err := g.sleep(ctx, g.opts.ChunkPause); err != nil {
				return "", err
			}
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

// completeWithRetry makes up to Attempts calls with a fixed delay between
// them. The final failure is logged before it is returned.
func (g *Generator) completeWithRetry(ctx context.Context, prompt, topic string, part, total int) (string, error) {
	log := g.logger.With("topic", topic, "part", part+1, "parts", total)
	var lastErr error
	for attempt := 1; attempt <= g.opts.Attempts; attempt++ {
		text, err := g.client.Complete(ctx, prompt)
		if err == nil && strings.TrimSpace(text) == "" {
			err = ErrEmptyResponse
		}
		if err == nil {
			return text, nil
		}
		lastErr = err
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			break
		}
		if attempt < g.opts.Attempts {
			log.Warn("transcript attempt failed, retrying", "attempt", attempt, "delay", g.opts.RetryDelay, "error", err)
			if err := g.sleep(ctx, g.opts.RetryDelay); err != nil {
				lastErr = err
				break
			}
		}
	}
	log.Error("transcript generation failed", "attempts", g.opts.Attempts, "error", lastErr)
	return "", fmt.Errorf("transcript %q part %d/%d: failed after %d attempts: %w", topic, part+1, total, g.opts.Attempts, lastErr)
}

// Topic is the first non-empty line of content, else the file stem with
// underscores turned into spaces.
func Topic(content, path string) string {
	for _, line := range strings.Split(content, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return strings.ReplaceAll(stem, "_", " ")
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
