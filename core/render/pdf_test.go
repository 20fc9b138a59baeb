package render

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	lpdf "github.com/ledongthuc/pdf"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/jungtin/notion-to-audio/core"
)

// fontArchive packs regular and bold under the DejaVu file names, laid
// out like the upstream release tarball.
func fontArchive(t *testing.T, regular, bold []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	files := map[string][]byte{
		"dejavu-fonts-ttf-2.37/ttf/DejaVuSans.ttf":      regular,
		"dejavu-fonts-ttf-2.37/ttf/DejaVuSans-Bold.ttf": bold,
		"dejavu-fonts-ttf-2.37/ttf/DejaVuSerif.ttf":     []byte("serif"),
	}
	for name, body := range files {
		hdr := &tar.Header{Name: name, Mode: 0644, Size: int64(len(body)), Typeflag: tar.TypeReg}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write(body); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestFontManagerDownloadsOnce(t *testing.T) {
	archive := fontArchive(t, []byte("regular"), []byte("bold"))
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write(archive)
	}))
	defer srv.Close()

	cache := t.TempDir()
	m := NewFontManager(cache, srv.URL+"/fonts.tar.gz", nil, nil)
	fs, err := m.Ensure(context.Background())
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if filepath.Dir(fs.Regular) != cache || filepath.Base(fs.Bold) != BoldFontFile {
		t.Fatalf("unexpected font set %+v", fs)
	}
	got, _ := os.ReadFile(fs.Regular)
	if string(got) != "regular" {
		t.Fatalf("regular face content %q", got)
	}
	if _, err := os.Stat(filepath.Join(cache, "DejaVuSerif.ttf")); !os.IsNotExist(err) {
		t.Fatalf("unrelated faces should not be extracted")
	}

	// A fresh manager over the same cache must not download again.
	if _, err := NewFontManager(cache, srv.URL, nil, nil).Ensure(context.Background()); err != nil {
		t.Fatalf("second Ensure: %v", err)
	}
	if hits != 1 {
		t.Fatalf("expected 1 download, got %d", hits)
	}
}

func TestFontManagerUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	m := NewFontManager(t.TempDir(), url, nil, nil)
	if _, err := m.Ensure(context.Background()); !errors.Is(err, core.ErrRender) {
		t.Fatalf("expected ErrRender, got %v", err)
	}
}

func TestPDFRenderFailsWithoutFonts(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	out := t.TempDir()
	r := NewPDFRenderer(NewFontManager(t.TempDir(), srv.URL, nil, nil))
	_, err := r.Render(context.Background(), core.Page{ID: "p", Title: "No fonts"}, out)
	if !errors.Is(err, core.ErrRender) {
		t.Fatalf("expected ErrRender, got %v", err)
	}
	entries, _ := os.ReadDir(out)
	if len(entries) != 0 {
		t.Fatalf("expected no output file, found %d", len(entries))
	}
}

func TestPDFRenderStopsWhenCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := t.TempDir()
	r := NewPDFRenderer(NewFontManager(t.TempDir(), srv.URL, nil, nil))
	_, err := r.Render(ctx, core.Page{ID: "p", Title: "Cancelled"}, out)
	if !errors.Is(err, core.ErrRender) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancelled render error, got %v", err)
	}
	entries, _ := os.ReadDir(out)
	if len(entries) != 0 {
		t.Fatalf("expected no output file, found %d", len(entries))
	}
}

func TestPDFRenderWithDownloadedFonts(t *testing.T) {
	archive := fontArchive(t, goregular.TTF, gobold.TTF)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(archive)
	}))
	defer srv.Close()

	m := NewFontManager(t.TempDir(), srv.URL+"/fonts.tar.gz", nil, nil)
	page := core.Page{
		ID:    "p1",
		Title: "Notes café",
		Blocks: []core.Block{
			{Kind: core.KindHeading1, Tag: "heading_1", Text: "Chapter", Depth: 0},
			{Kind: core.KindParagraph, Tag: "paragraph", Text: "Xin chào", Depth: 0},
			{Kind: core.KindBulleted, Tag: "bulleted_list_item", Text: "deep", Depth: 14},
			{Kind: core.KindOther, Tag: "callout", Text: "note", Depth: 1},
		},
	}
	path, err := NewPDFRenderer(m).Render(context.Background(), page, t.TempDir())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if filepath.Base(path) != "Notes_café.pdf" {
		t.Fatalf("unexpected output name %s", path)
	}
	f, reader, err := lpdf.Open(path)
	if err != nil {
		t.Fatalf("open rendered pdf: %v", err)
	}
	defer f.Close()
	if reader.NumPage() != 1 {
		t.Fatalf("expected 1 page, got %d", reader.NumPage())
	}
}

func TestKindLabel(t *testing.T) {
	cases := map[string]string{
		"quote":              "Quote",
		"bulleted_list_item": "Bulleted List Item",
		"to_do":              "To Do",
	}
	for tag, want := range cases {
		if got := KindLabel(tag); got != want {
			t.Errorf("KindLabel(%q) = %q, want %q", tag, got, want)
		}
	}
	blk := core.Block{Kind: core.KindQuote, Tag: "quote", Text: "hi"}
	if got := pdfBlockText(blk); got != "Quote: hi" {
		t.Fatalf("pdfBlockText = %q", got)
	}
}
