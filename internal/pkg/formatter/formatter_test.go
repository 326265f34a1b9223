package formatter

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/fscqa/fsc-qa/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *entity.QueryResult {
	return &entity.QueryResult{
		ID:       "7d7f5b8e-2a7c-4c39-9a43-0c1e5f4f2e10",
		Question: "請問XX銀行遭罰案件",
		Corpora:  []string{entity.CorpusEnforcementCases},
		Scope:    []string{"⚖️ 裁罰案件"},
		Answer:   "XX銀行因內控缺失遭罰鍰新臺幣600萬元。",
		Citations: []entity.Citation{
			{Title: "裁處書-1130101.txt", Snippet: "內部控制缺失\n罰鍰600萬元", Score: 0.87},
			{Title: "裁處書-1120505.txt", Score: 1},
		},
		Latency:   2350 * time.Millisecond,
		CreatedAt: time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC),
	}
}

func TestFactory_DefaultsToMarkdownOnly(t *testing.T) {
	f := NewFactory("/nonexistent/font.ttf")

	assert.Equal(t, []entity.ExportFormat{entity.FormatMarkdown}, f.Formats())

	fm, err := f.Create(entity.FormatMarkdown)
	require.NoError(t, err)
	assert.Equal(t, ".md", fm.FileExtension())

	for _, format := range []entity.ExportFormat{entity.FormatPDF, entity.FormatDOCX, "html"} {
		_, err := f.Create(format)
		assert.ErrorIs(t, err, entity.ErrUnsupportedFormat, format)
	}
}

func TestFactory_RegistersRenderableFormats(t *testing.T) {
	f := &Factory{pdfFontPath: "NotoSansTC-Regular.ttf", docxLicensed: true}

	assert.Equal(t, []entity.ExportFormat{entity.FormatMarkdown, entity.FormatPDF, entity.FormatDOCX}, f.Formats())

	for format, ext := range map[entity.ExportFormat]string{
		entity.FormatPDF:  ".pdf",
		entity.FormatDOCX: ".docx",
	} {
		fm, err := f.Create(format)
		require.NoError(t, err)
		assert.Equal(t, ext, fm.FileExtension())
	}
}

func TestMarkdownFormatter_Format(t *testing.T) {
	out, err := NewMarkdownFormatter().Format(sampleResult())
	require.NoError(t, err)

	md := string(out)
	assert.Contains(t, md, "# 金管會智能問答")
	assert.Contains(t, md, "**問題：** 請問XX銀行遭罰案件")
	assert.Contains(t, md, "**查詢範圍：** ⚖️ 裁罰案件")
	assert.Contains(t, md, "2.35 秒")
	assert.Contains(t, md, "## 參考來源 (2)")
	assert.Contains(t, md, "1. **裁處書-1130101.txt** (相似度: 87.00%)")
	assert.Contains(t, md, "   > 內部控制缺失\n   > 罰鍰600萬元")
	assert.Contains(t, md, "2. **裁處書-1120505.txt**\n")
	assert.NotContains(t, md, "相似度: 100.00%")
}

func TestMarkdownFormatter_NoCitations(t *testing.T) {
	result := sampleResult()
	result.Citations = nil

	out, err := NewMarkdownFormatter().Format(result)
	require.NoError(t, err)
	assert.Contains(t, string(out), noSourcesText)
}

func TestPDFFormatter_RefusesCJKWithoutFont(t *testing.T) {
	out, err := NewPDFFormatter("").Format(sampleResult())
	assert.ErrorIs(t, err, entity.ErrUnsupportedFormat)
	assert.Empty(t, out)

	assert.Empty(t, resolveFontPath("/nonexistent/font.ttf"))
}

func TestPDFFormatter_WithFont(t *testing.T) {
	fontPath := os.Getenv("EXPORT_PDF_FONT_PATH")
	if resolveFontPath(fontPath) == "" {
		t.Skip("EXPORT_PDF_FONT_PATH does not point to a CJK font")
	}

	out, err := NewPDFFormatter(fontPath).Format(sampleResult())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestDOCXFormatter_RequiresLicense(t *testing.T) {
	if docxLicensed() {
		t.Skip("a unioffice license is loaded")
	}

	out, err := NewDOCXFormatter().Format(sampleResult())
	assert.ErrorIs(t, err, entity.ErrUnsupportedFormat)
	assert.Empty(t, out)
}

func TestDOCXFormatter_WithLicense(t *testing.T) {
	key := os.Getenv("EXPORT_UNIOFFICE_LICENSE_KEY")
	if key == "" {
		t.Skip("EXPORT_UNIOFFICE_LICENSE_KEY is not set")
	}
	require.NoError(t, SetDOCXLicense(key))

	assert.Contains(t, NewFactory("").Formats(), entity.FormatDOCX)

	out, err := NewDOCXFormatter().Format(sampleResult())
	require.NoError(t, err)
	// A .docx is a zip archive.
	assert.True(t, bytes.HasPrefix(out, []byte("PK")))
}

func TestSetDOCXLicense_EmptyKeyIsNoop(t *testing.T) {
	assert.NoError(t, SetDOCXLicense(""))
}
