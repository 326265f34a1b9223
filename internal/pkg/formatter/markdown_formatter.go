package formatter

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/fscqa/fsc-qa/internal/entity"
)

const (
	markdownContentType   = "text/markdown; charset=utf-8"
	markdownFileExtension = ".md"
)

type MarkdownFormatter struct{}

func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

func (mf *MarkdownFormatter) Format(result *entity.QueryResult) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n\n", baseTitle)
	fmt.Fprintf(&buf, "**%s：** %s\n\n", questionLabel, result.Question)
	fmt.Fprintf(&buf, "**%s：** %s\n\n", scopeLabel, scopeText(result))
	fmt.Fprintf(&buf, "**%s：** %s\n\n", latencyLabel, latencyText(result))
	if !result.CreatedAt.IsZero() {
		fmt.Fprintf(&buf, "_%s_\n\n", result.CreatedAt.Format(dateLayout))
	}

	fmt.Fprintf(&buf, "## %s\n\n%s\n\n", answerLabel, strings.TrimSpace(result.Answer))

	fmt.Fprintf(&buf, "## %s (%d)\n\n", sourcesLabel, len(result.Citations))
	if !result.HasCitations() {
		fmt.Fprintf(&buf, "%s\n", noSourcesText)
		return buf.Bytes(), nil
	}

	for i, c := range result.Citations {
		fmt.Fprintf(&buf, "%d. **%s**", i+1, c.Title)
		if sim := similarityText(c); sim != "" {
			fmt.Fprintf(&buf, " (%s)", sim)
		}
		buf.WriteString("\n")
		if c.Snippet != "" {
			for _, line := range strings.Split(c.Snippet, "\n") {
				fmt.Fprintf(&buf, "   > %s\n", line)
			}
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

func (mf *MarkdownFormatter) ContentType() string {
	return markdownContentType
}

func (mf *MarkdownFormatter) FileExtension() string {
	return markdownFileExtension
}
