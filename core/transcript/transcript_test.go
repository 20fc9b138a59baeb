package transcript

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jungtin/notion-to-audio/core"
)

// scriptedCompleter fails a fixed number of times before answering.
type scriptedCompleter struct {
	mu       sync.Mutex
	failures int
	calls    int
	prompts  []string
	answer   func(prompt string) string
}

func (s *scriptedCompleter) Complete(_ context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.prompts = append(s.prompts, prompt)
	if s.calls <= s.failures {
		return "", fmt.Errorf("transient failure %d", s.calls)
	}
	if s.answer != nil {
		return s.answer(prompt), nil
	}
	return "transcript text", nil
}

func TestRetryRecoversAfterTwoFailures(t *testing.T) {
	client := &scriptedCompleter{failures: 2}
	opts := GeneratorOptions{Attempts: 3, RetryDelay: 20 * time.Millisecond}
	gen := NewGenerator(client, opts, nil)

	start := time.Now()
	text, err := gen.Generate(context.Background(), "short content", "Topic")
	elapsed := time.Since(start)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != "transcript text" || client.calls != 3 {
		t.Fatalf("unexpected result %q after %d calls", text, client.calls)
	}
	if elapsed < 2*opts.RetryDelay {
		t.Fatalf("expected at least %v of retry delay, got %v", 2*opts.RetryDelay, elapsed)
	}
}

func TestRetryGivesUpAndLogs(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	client := &scriptedCompleter{failures: 10}
	gen := NewGenerator(client, GeneratorOptions{Attempts: 3}, logger)
	var delays []time.Duration
	gen.sleep = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}

	_, err := gen.Generate(context.Background(), "content", "Topic")
	if err == nil {
		t.Fatal("expected error")
	}
	if client.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", client.calls)
	}
	if len(delays) != 2 {
		t.Fatalf("expected 2 retry sleeps, got %v", delays)
	}
	out := logs.String()
	if !strings.Contains(out, "level=ERROR") || !strings.Contains(out, "transient failure 3") {
		t.Fatalf("final failure not logged:\n%s", out)
	}
	if strings.Count(out, "level=WARN") != 2 {
		t.Fatalf("expected 2 retry warnings:\n%s", out)
	}
}

func TestEmptyAnswerIsRetried(t *testing.T) {
	calls := 0
	client := &scriptedCompleter{answer: func(string) string {
		calls++
		if calls == 1 {
			return "   "
		}
		return "ok"
	}}
	gen := NewGenerator(client, GeneratorOptions{Attempts: 3}, nil)
	text, err := gen.Generate(context.Background(), "content", "Topic")
	if err != nil || text != "ok" {
		t.Fatalf("Generate = %q, %v", text, err)
	}
}

func TestChunkedContentPromptsEachPart(t *testing.T) {
	var paras []string
	for i := 0; i < 30; i++ {
		paras = append(paras, fmt.Sprintf("Paragraph %02d explains a distinct idea in some detail.", i))
	}
	content := strings.Join(paras, "\n\n")
	client := &scriptedCompleter{answer: func(prompt string) string {
		return fmt.Sprintf("answer-%d", strings.Count(prompt, "Paragraph"))
	}}
	gen := NewGenerator(client, GeneratorOptions{ChunkSize: 400, Overlap: 50}, nil)
	var pauses int
	gen.sleep = func(context.Context, time.Duration) error { pauses++; return nil }

	text, err := gen.Generate(context.Background(), content, "Ideas")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	n := len(client.prompts)
	if n < 2 {
		t.Fatalf("expected multiple prompts, got %d", n)
	}
	if pauses != n-1 {
		t.Fatalf("expected %d pauses, got %d", n-1, pauses)
	}
	if !strings.Contains(client.prompts[0], fmt.Sprintf("This is part 1 of %d", n)) {
		t.Fatalf("first prompt lacks part info")
	}
	if !strings.Contains(client.prompts[n-1], "Continue from the previous part") ||
		strings.Contains(client.prompts[n-1], "transitions to the next part") {
		t.Fatalf("last prompt has wrong continuity rules")
	}
	if got := strings.Count(text, "\n\n"); got != n-1 {
		t.Fatalf("expected %d joins, got %d", n-1, got)
	}
}

func TestSinglePromptHasNoPartInfo(t *testing.T) {
	p := BuildPrompt("Go", "body", 0, 1)
	if strings.Contains(p, "This is part") || strings.Contains(p, "previous part") || strings.Contains(p, "next part") {
		t.Fatalf("single prompt carries multi-part rules:\n%s", p)
	}
	if !strings.Contains(p, "about: Go") || !strings.Contains(p, "-----------\nbody\n-----------") {
		t.Fatalf("prompt missing topic or content:\n%s", p)
	}
}

func TestTopic(t *testing.T) {
	if got := Topic("\n\n  Deep Dive  \nrest", "x.txt"); got != "Deep Dive" {
		t.Fatalf("Topic = %q", got)
	}
	if got := Topic("   \n", "/in/My_Great_Notes.txt"); got != "My Great Notes" {
		t.Fatalf("Topic fallback = %q", got)
	}
}

func TestGeminiClientRequestShape(t *testing.T) {
	var gotPath, gotKey, gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		var req generateRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if len(req.Contents) == 1 && len(req.Contents[0].Parts) == 1 {
			gotPrompt = req.Contents[0].Parts[0].Text
		}
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Hello "},{"text":"there"}]},"finishReason":"STOP"}]}`))
	}))
	defer srv.Close()

	c := NewGeminiClient(GeminiConfig{APIKey: "k", BaseURL: srv.URL + "/v1beta", Model: "gemini-test"})
	text, err := c.Complete(context.Background(), "prompt body")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if text != "Hello there" {
		t.Fatalf("text = %q", text)
	}
	if gotPath != "/v1beta/models/gemini-test:generateContent" || gotKey != "k" || gotPrompt != "prompt body" {
		t.Fatalf("unexpected request path=%q key=%q prompt=%q", gotPath, gotKey, gotPrompt)
	}
}

func TestGeminiClientErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "empty") {
			_, _ = w.Write([]byte(`{"candidates":[]}`))
			return
		}
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota"}}`))
	}))
	defer srv.Close()

	c := NewGeminiClient(GeminiConfig{APIKey: "k", BaseURL: srv.URL, Model: "limited"})
	_, err := c.Complete(context.Background(), "p")
	var se *httpStatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 status error, got %v", err)
	}

	c = NewGeminiClient(GeminiConfig{APIKey: "k", BaseURL: srv.URL, Model: "empty"})
	if _, err := c.Complete(context.Background(), "p"); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}

	c = NewGeminiClient(GeminiConfig{BaseURL: srv.URL})
	if _, err := c.Complete(context.Background(), "p"); err == nil {
		t.Fatal("expected missing key error")
	}
}

func TestStageWritesTranscripts(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "transcripts")
	files := map[string]string{
		"B_page.txt": "Beta\n====\n\nbody b",
		"A_page.txt": "Alpha\n=====\n\nbody a",
		"empty.txt":  "  \n",
		"notes.md":   "ignored",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(in, name), []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
	}

	factory := func() core.Completer {
		return &scriptedCompleter{answer: func(prompt string) string {
			line := strings.SplitN(strings.SplitN(prompt, "about: ", 2)[1], "\n", 2)[0]
			return "spoken " + line
		}}
	}
	summary, err := NewStage(factory, 2, GeneratorOptions{}, nil).Run(context.Background(), in, out)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Total != 3 || summary.Succeeded != 2 {
		t.Fatalf("unexpected summary %s", summary)
	}
	if summary.Items[0].Name != "A_page.txt" || summary.Items[2].Name != "empty.txt" || summary.Items[2].OK() {
		t.Fatalf("unexpected items %+v", summary.Items)
	}
	got, err := os.ReadFile(filepath.Join(out, "transcript_A_page.txt"))
	if err != nil {
		t.Fatalf("read transcript: %v", err)
	}
	if string(got) != "spoken Alpha" {
		t.Fatalf("transcript = %q", got)
	}
}

func TestStageMissingInputDir(t *testing.T) {
	_, err := NewStage(func() core.Completer { return &scriptedCompleter{} }, 1, GeneratorOptions{}, nil).
		Run(context.Background(), filepath.Join(t.TempDir(), "nope"), t.TempDir())
	if err == nil {
		t.Fatal("expected setup error")
	}
}
