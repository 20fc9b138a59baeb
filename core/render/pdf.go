package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jungtin/notion-to-audio/core"
	"github.com/jungtin/notion-to-audio/core/output"
)

const (
	pdfFontFamily  = "DejaVuSans"
	pdfMargin      = 15.0
	pdfIndentStep  = 7.0
	pdfMaxIndent   = 9
	pdfBodySize    = 10.0
	pdfLineHeight  = 5.0
	pdfTitleSize   = 20.0
	pdfFooterSize  = 8.0
	pdfBlockSpacer = 2.0
)

// headingSizes maps heading kinds to bold font sizes.
var headingSizes = map[core.Kind]float64{
	core.KindHeading1: 16,
	core.KindHeading2: 14,
	core.KindHeading3: 12,
}

// PDFRenderer renders a page as an A4 PDF using the DejaVuSans faces.
type PDFRenderer struct {
	fonts *FontManager
}

// NewPDFRenderer creates a PDFRenderer that loads faces through fonts.
func NewPDFRenderer(fonts *FontManager) *PDFRenderer {
	return &PDFRenderer{fonts: fonts}
}

// Render writes <stem>.pdf into outputDir. If the fonts cannot be
// obtained, or ctx ends while they download, no file is written.
func (r *PDFRenderer) Render(ctx context.Context, page core.Page, outputDir string) (string, error) {
	op := "render pdf " + page.ID
	fs, err := r.fonts.Ensure(ctx)
	if err != nil {
		return "", core.RenderError(op, err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(page.Title, true)
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin+5)
	pdf.AddUTF8Font(pdfFontFamily, "", fs.Regular)
	pdf.AddUTF8Font(pdfFontFamily, "B", fs.Bold)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-pdfMargin)
		pdf.SetFont(pdfFontFamily, "", pdfFooterSize)
		pdf.CellFormat(0, 10, strconv.Itoa(pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont(pdfFontFamily, "B", pdfTitleSize)
	pdf.MultiCell(0, pdfTitleSize*0.5, page.Title, "", "L", false)
	pdf.Ln(4)

	for _, blk := range page.Blocks {
		renderPDFBlock(pdf, blk)
	}

	if err := pdf.Error(); err != nil {
		return "", core.RenderError(op, err)
	}

	path := filepath.Join(outputDir, page.FileStem()+r.Extension())
	err = output.WriteAtomicFunc(path, func(f *os.File) error {
		return pdf.Output(f)
	})
	if err != nil {
		return "", core.RenderError(op, err)
	}
	return path, nil
}

// Extension returns the file extension for PDF output.
func (r *PDFRenderer) Extension() string {
	return ".pdf"
}

func renderPDFBlock(pdf *gofpdf.Fpdf, blk core.Block) {
	if size, ok := headingSizes[blk.Kind]; ok {
		pdf.SetLeftMargin(pdfMargin)
		pdf.SetX(pdfMargin)
		pdf.Ln(pdfBlockSpacer)
		pdf.SetFont(pdfFontFamily, "B", size)
		pdf.MultiCell(0, size*0.5, blk.Text, "", "L", false)
		pdf.Ln(pdfBlockSpacer)
		return
	}

	left := pdfMargin + pdfIndentStep*float64(min(blk.Depth, pdfMaxIndent))
	pdf.SetLeftMargin(left)
	pdf.SetX(left)
	pdf.SetFont(pdfFontFamily, "", pdfBodySize)
	pdf.MultiCell(0, pdfLineHeight, pdfBlockText(blk), "", "L", false)
	pdf.Ln(pdfBlockSpacer)
	pdf.SetLeftMargin(pdfMargin)
	pdf.SetX(pdfMargin)
}

// pdfBlockText prefixes everything but headings and paragraphs with a
// readable label of the source type, e.g. "Bulleted List Item: ...".
func pdfBlockText(blk core.Block) string {
	if blk.Kind.IsHeading() || blk.Kind == core.KindParagraph {
		return blk.Text
	}
	return fmt.Sprintf("%s: %s", KindLabel(blk.Tag), blk.Text)
}

// KindLabel turns a type tag such as "to_do" into "To Do".
// A Caser keeps state, so one is built per call.
func KindLabel(tag string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(tag, "_", " "))
}
