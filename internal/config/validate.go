package config

import (
	"errors"
	"fmt"
	"regexp"
	"slices"

	"github.com/jungtin/notion-to-audio/core"
	"github.com/jungtin/notion-to-audio/core/render"
)

// Validate checks settings that every command relies on. Credentials are
// checked per stage so that, say, audio generation runs without a Notion
// token.
func (c *Config) Validate() error {
	if !slices.Contains(render.Formats, c.Extract.Format) {
		return fmt.Errorf("extract.format %q is not one of %v", c.Extract.Format, render.Formats)
	}
	if c.Extract.Workers <= 0 || c.Transcript.Workers <= 0 || c.Audio.Workers <= 0 {
		return errors.New("workers must be positive in extract, transcript and audio")
	}
	if c.Transcript.ChunkSize <= 0 {
		return errors.New("transcript.chunk_size must be positive")
	}
	if c.Transcript.ChunkOverlap < 0 || c.Transcript.ChunkOverlap >= c.Transcript.ChunkSize {
		return errors.New("transcript.chunk_overlap must be between 0 and chunk_size")
	}
	if c.Transcript.Attempts <= 0 {
		return errors.New("transcript.attempts must be positive")
	}
	if c.Transcript.RetryDelaySeconds < 0 || c.Transcript.ChunkPauseSeconds < 0 {
		return errors.New("transcript delays must not be negative")
	}
	if c.Audio.SampleRate <= 0 {
		return errors.New("audio.sample_rate must be positive")
	}
	if c.Audio.Speed <= 0 {
		return errors.New("audio.speed must be positive")
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q must be console or json", c.Logging.Format)
	}
	return nil
}

// ValidateExtract reports missing Notion credentials.
func (c *Config) ValidateExtract() error {
	if c.Notion.Token == "" {
		return core.ConfigurationError("extract", errors.New("notion token is required; set NOTION_API_KEY or notion.token"))
	}
	if c.Notion.DatabaseID == "" {
		return core.ConfigurationError("extract", errors.New("notion database id is required; set NOTION_DATABASE_ID or notion.database_id"))
	}
	return nil
}

// ValidateTranscript reports a missing model key.
func (c *Config) ValidateTranscript() error {
	if c.Transcript.APIKey == "" {
		return core.ConfigurationError("transcript", errors.New("gemini api key is required; set GEMINI_API_KEY or transcript.api_key"))
	}
	return nil
}

// ValidateAudio checks the speech server and split pattern.
func (c *Config) ValidateAudio() error {
	if c.Audio.BaseURL == "" {
		return core.ConfigurationError("audio", errors.New("speech server url is required; set TTS_BASE_URL or audio.base_url"))
	}
	if _, err := regexp.Compile(c.Audio.SplitPattern); err != nil {
		return core.ConfigurationError("audio", fmt.Errorf("audio.split_pattern: %w", err))
	}
	return nil
}
