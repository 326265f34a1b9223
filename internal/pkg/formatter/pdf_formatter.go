package formatter

import (
	"bytes"
	"fmt"
	"os"

	"github.com/fscqa/fsc-qa/internal/entity"
	"github.com/jung-kurt/gofpdf"
)

const (
	pdfContentType   = "application/pdf"
	pdfFileExtension = ".pdf"

	// pdfFontName is the internal name used by gofpdf
	// for the UTF-8 capable font.
	pdfFontName = "NotoSansTC"

	// In Docker runtime fonts are copied next to the binary.
	pdfFontRuntimePath = "ttf/NotoSansTC-Regular.ttf"
)

type PDFFormatter struct {
	fontPath string
}

func NewPDFFormatter(fontPath string) *PDFFormatter {
	return &PDFFormatter{fontPath: fontPath}
}

// resolveFontPath returns the configured font, then the runtime layout one.
// Empty means no font with CJK glyphs is available.
func resolveFontPath(configured string) string {
	for _, path := range []string{configured, pdfFontRuntimePath} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Format fails with ErrUnsupportedFormat when no CJK font resolves. The core
// fonts only cover cp1252.
func (pf *PDFFormatter) Format(result *entity.QueryResult) ([]byte, error) {
	fontPath := resolveFontPath(pf.fontPath)
	if fontPath == "" {
		return nil, fmt.Errorf("%w: pdf needs a CJK font", entity.ErrUnsupportedFormat)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(baseTitle, true)
	// Register regular and bold styles under the same family name
	pdf.AddUTF8Font(pdfFontName, "", fontPath)
	pdf.AddUTF8Font(pdfFontName, "B", fontPath)
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("load pdf font %s: %w", fontPath, err)
	}
	pdf.AddPage()

	heading := func(text string, size float64) {
		pdf.SetFont(pdfFontName, "B", size)
		pdf.Cell(0, 10, text)
		pdf.Ln(size * 0.7)
	}
	body := func(text string) {
		pdf.SetFont(pdfFontName, "", 11)
		_, lineHeight := pdf.GetFontSize()
		pdf.MultiCell(0, lineHeight*1.5, text, "", "", false)
		pdf.Ln(2)
	}

	heading(baseTitle, 20)
	body(fmt.Sprintf("%s：%s", questionLabel, result.Question))
	body(fmt.Sprintf("%s：%s", scopeLabel, scopeText(result)))
	body(fmt.Sprintf("%s：%s", latencyLabel, latencyText(result)))

	heading(answerLabel, 14)
	body(result.Answer)

	heading(fmt.Sprintf("%s (%d)", sourcesLabel, len(result.Citations)), 14)
	if !result.HasCitations() {
		body(noSourcesText)
	}
	for i, c := range result.Citations {
		line := fmt.Sprintf("%d. %s", i+1, c.Title)
		if sim := similarityText(c); sim != "" {
			line += " (" + sim + ")"
		}
		body(line)
		if c.Snippet != "" {
			body(c.Snippet)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (pf *PDFFormatter) ContentType() string {
	return pdfContentType
}

func (pf *PDFFormatter) FileExtension() string {
	return pdfFileExtension
}
