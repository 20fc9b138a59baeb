package merge

import (
	"fmt"
	"os"

	"github.com/jung-kurt/gofpdf"
	"github.com/jung-kurt/gofpdf/contrib/gofpdi"
	lpdf "github.com/ledongthuc/pdf"

	"github.com/jungtin/notion-to-audio/core"
	"github.com/jungtin/notion-to-audio/core/output"
)

// A4 in millimetres; every page the renderer produces has this size.
const (
	a4Width  = 210.0
	a4Height = 297.0
)

// PDFMerger imports every page of every input, in order, into one document.
type PDFMerger struct{}

// NewPDFMerger creates a PDFMerger.
func NewPDFMerger() *PDFMerger {
	return &PDFMerger{}
}

// Merge writes the concatenated pages of paths to outputPath.
func (m *PDFMerger) Merge(paths []string, outputPath string) (out string, err error) {
	// The importer and parser panic on malformed input.
	defer func() {
		if r := recover(); r != nil {
			out = ""
			err = core.MergeError("merge pdf", fmt.Errorf("importing pages: %v", r))
		}
	}()

	counts := make([]int, len(paths))
	for i, p := range paths {
		n, err := PageCount(p)
		if err != nil {
			return "", core.MergeError("merge pdf", err)
		}
		counts[i] = n
	}

	doc := gofpdf.New("P", "mm", "A4", "")
	imp := gofpdi.NewImporter()
	for i, p := range paths {
		for page := 1; page <= counts[i]; page++ {
			tpl := imp.ImportPage(doc, p, page, "/MediaBox")
			doc.AddPage()
			imp.UseImportedTemplate(doc, tpl, 0, 0, a4Width, a4Height)
		}
	}
	if err := doc.Error(); err != nil {
		return "", core.MergeError("merge pdf", err)
	}

	err = output.WriteAtomicFunc(outputPath, func(f *os.File) error {
		return doc.Output(f)
	})
	if err != nil {
		return "", core.MergeError("merge pdf", err)
	}
	return outputPath, nil
}

// PageCount returns the number of pages in the PDF at path.
func PageCount(path string) (int, error) {
	f, reader, err := lpdf.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return reader.NumPage(), nil
}
