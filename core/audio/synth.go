// Package audio synthesizes transcripts into speech and writes WAV files.
package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/jungtin/notion-to-audio/core"
)

const (
	DefaultSplitPattern = `\n\n+`
	DefaultSampleRate   = 24000

	defaultTTSBaseURL  = "http://localhost:8880/v1"
	defaultTTSModel    = "kokoro"
	defaultVoice       = "af_heart"
	defaultHTTPTimeout = 5 * time.Minute
)

// SpeechConfig captures the settings of an OpenAI-compatible speech server.
type SpeechConfig struct {
	BaseURL        string
	APIKey         string
	Model          string
	Voice          string
	Speed          float64
	SampleRate     int
	TimeoutSeconds int
}

// HTTPSynthesizer requests raw 16-bit little-endian PCM per segment.
type HTTPSynthesizer struct {
	cfg        SpeechConfig
	httpClient *http.Client
}

// Option customizes the synthesizer.
type Option func(*HTTPSynthesizer)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *HTTPSynthesizer) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// NewHTTPSynthesizer constructs a synthesizer using the supplied configuration.
func NewHTTPSynthesizer(cfg SpeechConfig, opts ...Option) *HTTPSynthesizer {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultTTSBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultTTSModel
	}
	if cfg.Voice == "" {
		cfg.Voice = defaultVoice
	}
	if cfg.Speed <= 0 {
		cfg.Speed = 1.0
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = DefaultSampleRate
	}
	s := &HTTPSynthesizer{cfg: cfg, httpClient: &http.Client{Timeout: timeout}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SampleRate returns the rate of the PCM the server produces.
func (s *HTTPSynthesizer) SampleRate() int {
	return s.cfg.SampleRate
}

// Synthesize speaks every non-blank piece of text split on splitPattern.
func (s *HTTPSynthesizer) Synthesize(ctx context.Context, text, splitPattern string) ([]core.Segment, error) {
	pieces, err := SplitSegments(text, splitPattern)
	if err != nil {
		return nil, err
	}
	segments := make([]core.Segment, 0, len(pieces))
	for i, p := range pieces {
		samples, err := s.speak(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("segment %d/%d: %w", i+1, len(pieces), err)
		}
		segments = append(segments, core.Segment{Graphemes: p, Samples: samples})
	}
	return segments, nil
}

// SplitSegments splits text on pattern and drops blank pieces.
func SplitSegments(text, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = DefaultSplitPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compiling split pattern %q: %w", pattern, err)
	}
	var out []string
	for _, p := range re.Split(text, -1) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out, nil
}

type speechRequest struct {
	Model          string  `json:"model"`
	Input          string  `json:"input"`
	Voice          string  `json:"voice"`
	Speed          float64 `json:"speed"`
	ResponseFormat string  `json:"response_format"`
}

type httpStatusError struct {
	StatusCode int
	Body       string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("speech request: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

func (s *HTTPSynthesizer) speak(ctx context.Context, text string) ([]int, error) {
	endpoint, err := url.JoinPath(s.cfg.BaseURL, "audio", "speech")
	if err != nil {
		return nil, fmt.Errorf("speech request: build url: %w", err)
	}
	encoded, err := json.Marshal(speechRequest{
		Model:          s.cfg.Model,
		Input:          text,
		Voice:          s.cfg.Voice,
		Speed:          s.cfg.Speed,
		ResponseFormat: "pcm",
	})
	if err != nil {
		return nil, fmt.Errorf("speech request: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("speech request: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("speech request: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("speech request: read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &httpStatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return decodePCM16(body)
}

// decodePCM16 converts little-endian signed 16-bit samples to ints.
func decodePCM16(data []byte) ([]int, error) {
	if len(data)%2 != 0 {
		return nil, fmt.Errorf("pcm payload has odd length %d", len(data))
	}
	samples := make([]int, len(data)/2)
	for i := range samples {
		samples[i] = int(int16(binary.LittleEndian.Uint16(data[2*i:])))
	}
	return samples, nil
}
