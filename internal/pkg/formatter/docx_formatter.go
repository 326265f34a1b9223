package formatter

import (
	"bytes"
	"fmt"

	"github.com/fscqa/fsc-qa/internal/entity"
	"github.com/unidoc/unioffice/common/license"
	"github.com/unidoc/unioffice/document"
)

const (
	docxContentType   = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	docxFileExtension = ".docx"
)

type DOCXFormatter struct{}

func NewDOCXFormatter() *DOCXFormatter {
	return &DOCXFormatter{}
}

// SetDOCXLicense loads a unioffice metered key. unioffice refuses to save
// documents without one.
func SetDOCXLicense(key string) error {
	if key == "" {
		return nil
	}
	if err := license.SetMeteredKey(key); err != nil {
		return fmt.Errorf("set unioffice license: %w", err)
	}
	return nil
}

func docxLicensed() bool {
	key := license.GetLicenseKey()
	return key != nil && key.IsLicensed()
}

func (df *DOCXFormatter) Format(result *entity.QueryResult) ([]byte, error) {
	if !docxLicensed() {
		return nil, fmt.Errorf("%w: docx needs a unioffice license", entity.ErrUnsupportedFormat)
	}

	doc := document.New()
	defer doc.Close()

	addHeading := func(style, text string) {
		par := doc.AddParagraph()
		par.SetStyle(style)
		par.AddRun().AddText(text)
	}
	addLabeled := func(label, value string) {
		par := doc.AddParagraph()
		labelRun := par.AddRun()
		labelRun.Properties().SetBold(true)
		labelRun.AddText(label + "：")
		par.AddRun().AddText(value)
	}

	addHeading("Title", baseTitle)
	addLabeled(questionLabel, result.Question)
	addLabeled(scopeLabel, scopeText(result))
	addLabeled(latencyLabel, latencyText(result))

	addHeading("Heading1", answerLabel)
	doc.AddParagraph().AddRun().AddText(result.Answer)

	addHeading("Heading1", fmt.Sprintf("%s (%d)", sourcesLabel, len(result.Citations)))
	if !result.HasCitations() {
		doc.AddParagraph().AddRun().AddText(noSourcesText)
	}
	for i, c := range result.Citations {
		par := doc.AddParagraph()
		titleRun := par.AddRun()
		titleRun.Properties().SetBold(true)
		titleRun.AddText(fmt.Sprintf("%d. %s", i+1, c.Title))
		if sim := similarityText(c); sim != "" {
			par.AddRun().AddText(" (" + sim + ")")
		}
		if c.Snippet != "" {
			snippet := doc.AddParagraph().AddRun()
			snippet.Properties().SetItalic(true)
			snippet.AddText(c.Snippet)
		}
	}

	var buf bytes.Buffer
	if err := doc.Save(&buf); err != nil {
		return nil, fmt.Errorf("render docx: %w", err)
	}
	return buf.Bytes(), nil
}

func (df *DOCXFormatter) ContentType() string {
	return docxContentType
}

func (df *DOCXFormatter) FileExtension() string {
	return docxFileExtension
}
