package formatter

import (
	"fmt"
	"strings"

	"github.com/fscqa/fsc-qa/internal/entity"
)

const (
	baseTitle     = "金管會智能問答"
	questionLabel = "問題"
	scopeLabel    = "查詢範圍"
	latencyLabel  = "回應時間"
	answerLabel   = "回答"
	sourcesLabel  = "參考來源"
	noSourcesText = "本次回答沒有引用任何文件。"
	dateLayout    = "2006-01-02 15:04"
)

type Formatter interface {
	Format(result *entity.QueryResult) ([]byte, error)
	ContentType() string
	FileExtension() string
}

type Factory struct {
	pdfFontPath  string
	docxLicensed bool
}

// NewFactory registers Markdown always, PDF only when a UTF-8 font with CJK
// glyphs resolves and DOCX only when a unioffice license is loaded.
func NewFactory(pdfFontPath string) *Factory {
	return &Factory{
		pdfFontPath:  resolveFontPath(pdfFontPath),
		docxLicensed: docxLicensed(),
	}
}

// Formats lists the formats Create accepts, in display order.
func (f *Factory) Formats() []entity.ExportFormat {
	formats := []entity.ExportFormat{entity.FormatMarkdown}
	if f.pdfFontPath != "" {
		formats = append(formats, entity.FormatPDF)
	}
	if f.docxLicensed {
		formats = append(formats, entity.FormatDOCX)
	}
	return formats
}

func (f *Factory) Create(format entity.ExportFormat) (Formatter, error) {
	switch format {
	case entity.FormatMarkdown:
		return NewMarkdownFormatter(), nil
	case entity.FormatDOCX:
		if f.docxLicensed {
			return NewDOCXFormatter(), nil
		}
		return nil, fmt.Errorf("%w: docx needs a unioffice license", entity.ErrUnsupportedFormat)
	case entity.FormatPDF:
		if f.pdfFontPath != "" {
			return NewPDFFormatter(f.pdfFontPath), nil
		}
		return nil, fmt.Errorf("%w: pdf needs a CJK font", entity.ErrUnsupportedFormat)
	default:
		return nil, fmt.Errorf("%w: %s", entity.ErrUnsupportedFormat, format)
	}
}

func scopeText(result *entity.QueryResult) string {
	if len(result.Scope) > 0 {
		return strings.Join(result.Scope, "、")
	}
	return strings.Join(result.Corpora, "、")
}

func latencyText(result *entity.QueryResult) string {
	return fmt.Sprintf("%.2f 秒", result.Latency.Seconds())
}

// similarityText is empty for citations without a real relevance score.
func similarityText(c entity.Citation) string {
	if c.Score >= 1 {
		return ""
	}
	return fmt.Sprintf("相似度: %.2f%%", c.Score*100)
}
