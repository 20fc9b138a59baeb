package audio

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/go-audio/wav"

	"github.com/jungtin/notion-to-audio/core"
)

// fakeSpeechServer answers each request with one sample per input rune.
type fakeSpeechServer struct {
	*httptest.Server
	mu     sync.Mutex
	inputs []string
}

func newFakeSpeechServer(t *testing.T) *fakeSpeechServer {
	t.Helper()
	f := &fakeSpeechServer{}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/speech" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var req speechRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ResponseFormat != "pcm" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		if strings.Contains(req.Input, "FAIL") {
			http.Error(w, "synthesis exploded", http.StatusInternalServerError)
			return
		}
		f.mu.Lock()
		f.inputs = append(f.inputs, req.Input)
		f.mu.Unlock()
		n := len([]rune(req.Input))
		pcm := make([]byte, 2*n)
		for i := 0; i < n; i++ {
			binary.LittleEndian.PutUint16(pcm[2*i:], uint16(int16(i-n/2)))
		}
		w.Header().Set("Content-Type", "audio/pcm")
		_, _ = w.Write(pcm)
	}))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeSpeechServer) synth() *HTTPSynthesizer {
	return NewHTTPSynthesizer(SpeechConfig{BaseURL: f.URL + "/v1", SampleRate: 8000})
}

func TestSplitSegments(t *testing.T) {
	got, err := SplitSegments("one\n\ntwo\nstill two\n\n\n\n  \n\nthree", "")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"one", "two\nstill two", "three"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SplitSegments = %q, want %q", got, want)
	}
	if _, err := SplitSegments("x", "("); err == nil {
		t.Fatal("expected invalid pattern error")
	}
}

func TestSynthesizeSegments(t *testing.T) {
	srv := newFakeSpeechServer(t)
	segs, err := srv.synth().Synthesize(context.Background(), "abcd\n\nef", DefaultSplitPattern)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if len(segs) != 2 || segs[0].Graphemes != "abcd" || len(segs[0].Samples) != 4 || len(segs[1].Samples) != 2 {
		t.Fatalf("unexpected segments %+v", segs)
	}
	if segs[0].Samples[0] != -2 {
		t.Fatalf("expected signed decoding, got %v", segs[0].Samples)
	}
}

func TestSynthesizeHTTPError(t *testing.T) {
	srv := newFakeSpeechServer(t)
	_, err := srv.synth().Synthesize(context.Background(), "ok\n\nFAIL here", "")
	var se *httpStatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected status error, got %v", err)
	}
	if !strings.Contains(err.Error(), "segment 2/2") {
		t.Fatalf("error lacks segment position: %v", err)
	}
}

func TestDecodePCM16OddLength(t *testing.T) {
	if _, err := decodePCM16([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected odd length error")
	}
}

func TestWriteWAVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	samples := []int{0, 1000, -1000, 32767, -32768, 5}
	if err := WriteWAV(path, samples, 24000); err != nil {
		t.Fatalf("WriteWAV: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		t.Fatal("invalid wav file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dec.SampleRate != 24000 || dec.NumChans != 1 || dec.BitDepth != 16 {
		t.Fatalf("unexpected header rate=%d chans=%d depth=%d", dec.SampleRate, dec.NumChans, dec.BitDepth)
	}
	if !reflect.DeepEqual(buf.Data, samples) {
		t.Fatalf("samples = %v, want %v", buf.Data, samples)
	}
}

func TestStageWritesOneWAVPerTranscript(t *testing.T) {
	srv := newFakeSpeechServer(t)
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "audios")
	files := map[string]string{
		"transcript_B.txt": "bb\n\nbbbb",
		"transcript_A.txt": "aaa",
		"transcript_C.txt": "\n\n",
		"transcript_D.txt": "FAIL",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(in, name), []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
	}

	factory := func() core.Synthesizer { return srv.synth() }
	summary, err := NewStage(factory, 2, "", nil).Run(context.Background(), in, out)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Total != 4 || summary.Succeeded != 2 {
		t.Fatalf("unexpected summary %s", summary)
	}
	names := []string{"transcript_A.txt", "transcript_B.txt", "transcript_C.txt", "transcript_D.txt"}
	for i, item := range summary.Items {
		if item.Name != names[i] {
			t.Fatalf("item %d = %s, want %s", i, item.Name, names[i])
		}
	}
	if summary.Items[2].OK() || summary.Items[3].OK() {
		t.Fatalf("empty and failing transcripts should fail: %+v", summary.Items)
	}

	f, err := os.Open(filepath.Join(out, "transcript_B.wav"))
	if err != nil {
		t.Fatalf("open wav: %v", err)
	}
	defer f.Close()
	buf, err := wav.NewDecoder(f).FullPCMBuffer()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(buf.Data) != 6 {
		t.Fatalf("expected concatenated 6 samples, got %d", len(buf.Data))
	}
	if _, err := os.Stat(filepath.Join(out, "transcript_D.wav")); !os.IsNotExist(err) {
		t.Fatalf("failed transcript left output: %v", err)
	}
}

func TestStageMissingInputDir(t *testing.T) {
	factory := func() core.Synthesizer { return NewHTTPSynthesizer(SpeechConfig{}) }
	if _, err := NewStage(factory, 1, "", nil).Run(context.Background(), filepath.Join(t.TempDir(), "none"), t.TempDir()); err == nil {
		t.Fatal("expected setup error")
	}
}
