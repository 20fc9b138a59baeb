package config

import (
	"os"
	"path/filepath"
	"slices"

	"github.com/jungtin/notion-to-audio/core/audio"
	"github.com/jungtin/notion-to-audio/core/render"
)

const (
	defaultOutputDir = "output"
	defaultFormat    = "txt"
)

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Notion: Notion{
			BaseURL:  "https://api.notion.com/v1",
			Version:  "2022-06-28",
			PageSize: 100,
		},
		Paths: Paths{
			OutputDir: defaultOutputDir,
		},
		Extract: Extract{
			Format:  defaultFormat,
			Workers: 8,
		},
		Font: Font{
			URL:        render.DefaultFontURL,
			SearchDirs: slices.Clone(render.DefaultFontSearchDirs),
		},
		Transcript: Transcript{
			BaseURL:           "https://generativelanguage.googleapis.com/v1beta",
			Model:             "gemini-2.0-flash",
			TimeoutSeconds:    120,
			Workers:           2,
			ChunkSize:         6000,
			ChunkOverlap:      200,
			Attempts:          3,
			RetryDelaySeconds: 2,
			ChunkPauseSeconds: 1,
		},
		Audio: Audio{
			BaseURL:        "http://localhost:8880/v1",
			Model:          "kokoro",
			Voice:          "af_heart",
			Speed:          1.0,
			SampleRate:     audio.DefaultSampleRate,
			SplitPattern:   audio.DefaultSplitPattern,
			Workers:        2,
			TimeoutSeconds: 300,
		},
		Logging: Logging{
			Level:  "info",
			Format: "console",
		},
	}
}

func defaultFontCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, "notion-to-audio", "fonts")
	}
	return filepath.Join(defaultOutputDir, ".fonts")
}
