// Package config loads the notion-to-audio TOML configuration and applies
// environment overrides for credentials.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// ProjectConfigFile is looked up in the working directory when no path is given.
const ProjectConfigFile = "notion-to-audio.toml"

// Notion contains the API credentials and the database to export.
type Notion struct {
	Token      string `toml:"token"`
	DatabaseID string `toml:"database_id"`
	BaseURL    string `toml:"base_url"`
	Version    string `toml:"version"`
	PageSize   int    `toml:"page_size"`
}

// Paths contains the stage directories.
type Paths struct {
	OutputDir     string `toml:"output_dir"`
	TranscriptDir string `toml:"transcript_dir"`
	AudioDir      string `toml:"audio_dir"`
}

// Extract tunes the export stage.
type Extract struct {
	Format   string `toml:"format"`
	Workers  int    `toml:"workers"`
	Numbered bool   `toml:"numbered"`
}

// Font configures where the PDF fonts come from.
type Font struct {
	URL        string   `toml:"url"`
	CacheDir   string   `toml:"cache_dir"`
	SearchDirs []string `toml:"search_dirs"`
}

// Transcript contains the Gemini connection and retry settings.
type Transcript struct {
	APIKey            string  `toml:"api_key"`
	BaseURL           string  `toml:"base_url"`
	Model             string  `toml:"model"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	Workers           int     `toml:"workers"`
	ChunkSize         int     `toml:"chunk_size"`
	ChunkOverlap      int     `toml:"chunk_overlap"`
	Attempts          int     `toml:"attempts"`
	RetryDelaySeconds float64 `toml:"retry_delay_seconds"`
	ChunkPauseSeconds float64 `toml:"chunk_pause_seconds"`
}

// Audio contains the speech server settings.
type Audio struct {
	BaseURL        string  `toml:"base_url"`
	APIKey         string  `toml:"api_key"`
	Model          string  `toml:"model"`
	Voice          string  `toml:"voice"`
	Speed          float64 `toml:"speed"`
	SampleRate     int     `toml:"sample_rate"`
	SplitPattern   string  `toml:"split_pattern"`
	Workers        int     `toml:"workers"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config is the full application configuration.
type Config struct {
	Notion     Notion     `toml:"notion"`
	Paths      Paths      `toml:"paths"`
	Extract    Extract    `toml:"extract"`
	Font       Font       `toml:"font"`
	Transcript Transcript `toml:"transcript"`
	Audio      Audio      `toml:"audio"`
	Logging    Logging    `toml:"logging"`
}

// Load locates, parses, and validates a configuration file. An explicit
// path must exist; otherwise ./notion-to-audio.toml is used when present
// and defaults apply when it is not. The resolved path and whether a file
// was read are returned alongside the config.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			return "", false, fmt.Errorf("config file %s: %w", expanded, err)
		}
		return expanded, true, nil
	}

	projectPath, err := filepath.Abs(ProjectConfigFile)
	if err != nil {
		return "", false, fmt.Errorf("resolve project config path: %w", err)
	}
	_, err = os.Stat(projectPath)
	switch {
	case err == nil:
		return projectPath, true, nil
	case errors.Is(err, fs.ErrNotExist):
		return projectPath, false, nil
	default:
		return "", false, fmt.Errorf("stat %s: %w", projectPath, err)
	}
}

// applyEnv lets the environment supply secrets and ids over the file.
func (c *Config) applyEnv() {
	c.Notion.Token = envOr("NOTION_API_KEY", c.Notion.Token)
	c.Notion.DatabaseID = envOr("NOTION_DATABASE_ID", c.Notion.DatabaseID)
	c.Transcript.APIKey = envOr("GEMINI_API_KEY", c.Transcript.APIKey)
	c.Audio.BaseURL = envOr("TTS_BASE_URL", c.Audio.BaseURL)
}

// ExtractDir is the output directory for an export in format.
func (c *Config) ExtractDir(format string) string {
	return filepath.Join(c.Paths.OutputDir, strings.ToLower(format))
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
