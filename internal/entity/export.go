package entity

type ExportFormat string

const (
	FormatMarkdown ExportFormat = "markdown"
	FormatPDF      ExportFormat = "pdf"
	FormatDOCX     ExportFormat = "docx"
)

// ExportFile is a rendered result ready to be downloaded.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}
