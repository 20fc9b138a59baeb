package render

import (
	"archive/tar"
	"bufio"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/jungtin/notion-to-audio/core"
	"github.com/jungtin/notion-to-audio/core/output"
)

const (
	RegularFontFile = "DejaVuSans.ttf"
	BoldFontFile    = "DejaVuSans-Bold.ttf"

	DefaultFontURL = "https://downloads.sourceforge.net/project/dejavu/dejavu/2.37/dejavu-fonts-ttf-2.37.tar.bz2"

	fontDownloadTimeout = 2 * time.Minute
	fontLockRetry       = 200 * time.Millisecond
)

// DefaultFontSearchDirs are checked for an installed DejaVu before downloading.
var DefaultFontSearchDirs = []string{
	"/usr/share/fonts/truetype/dejavu",
	"/usr/share/fonts/TTF",
	"/usr/share/fonts/dejavu",
	"/usr/local/share/fonts",
}

// FontSet holds absolute paths of the regular and bold faces.
type FontSet struct {
	Regular string
	Bold    string
}

// FontManager makes the DejaVuSans faces available on local disk. The
// archive is downloaded and unpacked at most once into CacheDir; a file
// lock keeps concurrent workers and processes from racing on it.
type FontManager struct {
	CacheDir   string
	URL        string
	SearchDirs []string

	client *http.Client
	logger *slog.Logger

	mu    sync.Mutex
	ready *FontSet
}

// NewFontManager creates a FontManager caching into cacheDir.
func NewFontManager(cacheDir, url string, searchDirs []string, logger *slog.Logger) *FontManager {
	if url == "" {
		url = DefaultFontURL
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &FontManager{
		CacheDir:   cacheDir,
		URL:        url,
		SearchDirs: searchDirs,
		client:     &http.Client{Timeout: fontDownloadTimeout},
		logger:     logger,
	}
}

// Ensure returns the font paths, downloading the archive if needed.
func (m *FontManager) Ensure(ctx context.Context) (FontSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ready != nil {
		return *m.ready, nil
	}

	dirs := append([]string{m.CacheDir}, m.SearchDirs...)
	if fs, ok := findFonts(dirs); ok {
		m.ready = &fs
		return fs, nil
	}

	fs, err := m.download(ctx)
	if err != nil {
		return FontSet{}, core.RenderError("ensure fonts", err)
	}
	m.ready = &fs
	return fs, nil
}

func (m *FontManager) download(ctx context.Context) (FontSet, error) {
	if err := os.MkdirAll(m.CacheDir, 0755); err != nil {
		return FontSet{}, fmt.Errorf("creating font cache: %w", err)
	}
	lock := flock.New(filepath.Join(m.CacheDir, ".fonts.lock"))
	ok, err := lock.TryLockContext(ctx, fontLockRetry)
	if err != nil {
		return FontSet{}, fmt.Errorf("acquiring font lock: %w", err)
	}
	if !ok {
		return FontSet{}, errors.New("font lock not acquired")
	}
	defer func() { _ = lock.Unlock() }()

	// Another process may have finished while we waited.
	if fs, ok := findFonts([]string{m.CacheDir}); ok {
		return fs, nil
	}

	m.logger.Info("downloading fonts", "url", m.URL, "dir", m.CacheDir)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.URL, nil)
	if err != nil {
		return FontSet{}, fmt.Errorf("creating request: %w", err)
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return FontSet{}, fmt.Errorf("fetching %s: %w", m.URL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return FontSet{}, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, m.URL)
	}

	if err := extractFonts(resp.Body, m.CacheDir); err != nil {
		return FontSet{}, err
	}
	fs, ok := findFonts([]string{m.CacheDir})
	if !ok {
		return FontSet{}, fmt.Errorf("archive from %s does not contain %s and %s", m.URL, RegularFontFile, BoldFontFile)
	}
	return fs, nil
}

// extractFonts unpacks the two DejaVu faces from a tar.bz2 or tar.gz stream.
func extractFonts(r io.Reader, dir string) error {
	br := bufio.NewReader(r)
	magic, err := br.Peek(3)
	if err != nil {
		return fmt.Errorf("reading archive header: %w", err)
	}

	var stream io.Reader
	switch {
	case bytes.HasPrefix(magic, []byte("BZh")):
		stream = bzip2.NewReader(br)
	case magic[0] == 0x1f && magic[1] == 0x8b:
		gz, err := gzip.NewReader(br)
		if err != nil {
			return fmt.Errorf("opening gzip stream: %w", err)
		}
		defer gz.Close()
		stream = gz
	default:
		return errors.New("unsupported font archive format")
	}

	wanted := map[string]bool{RegularFontFile: true, BoldFontFile: true}
	tr := tar.NewReader(stream)
	for len(wanted) > 0 {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading archive: %w", err)
		}
		name := filepath.Base(hdr.Name)
		if hdr.Typeflag != tar.TypeReg || !wanted[name] {
			continue
		}
		err = output.WriteAtomicFunc(filepath.Join(dir, name), func(f *os.File) error {
			_, err := io.Copy(f, tr)
			return err
		})
		if err != nil {
			return err
		}
		delete(wanted, name)
	}
	return nil
}

func findFonts(dirs []string) (FontSet, bool) {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		fs := FontSet{
			Regular: filepath.Join(dir, RegularFontFile),
			Bold:    filepath.Join(dir, BoldFontFile),
		}
		if fileExists(fs.Regular) && fileExists(fs.Bold) {
			if abs, err := filepath.Abs(fs.Regular); err == nil {
				fs.Regular = abs
			}
			if abs, err := filepath.Abs(fs.Bold); err == nil {
				fs.Bold = abs
			}
			return fs, true
		}
	}
	return FontSet{}, false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
