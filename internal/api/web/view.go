package web

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"slices"
	"strings"

	"github.com/fscqa/fsc-qa/internal/entity"
	"github.com/fscqa/fsc-qa/internal/pkg/messages"
	"github.com/fscqa/fsc-qa/internal/pkg/textutil"
	"github.com/yuin/goldmark"
)

const (
	scopeRunes        = 20
	citationTitleRune = 60
	citationSnipRunes = 300
)

type pageView struct {
	Title          string
	Corpora        []corpusOption
	Selected       []corpusOption
	TotalDocuments string
	NoCorpus       bool
	Question       string
	Placeholder    string
	Examples       []exampleView
	Result         *resultView
	Error          string
	Disclaimer     string
}

type corpusOption struct {
	Key         string
	Label       string
	Description string
	Documents   string
	Checked     bool
}

type exampleView struct {
	Index int
	Text  string
}

type resultView struct {
	ID          string
	Banner      string
	Latency     string
	SourceCount int
	Scope       string
	Answer      template.HTML
	Retried     string
	Citations   []citationView
	NoSources   string
	Exports     []exportLink
}

type exportLink struct {
	Label string
	URL   string
}

var exportLabels = map[entity.ExportFormat]string{
	entity.FormatMarkdown: "Markdown",
	entity.FormatPDF:      "PDF",
	entity.FormatDOCX:     "Word",
}

type citationView struct {
	Index      int
	Title      string
	Snippet    string
	Similarity string
}

func buildPage(catalog entity.Catalog, examples []string, formats []entity.ExportFormat, state sessionState, md goldmark.Markdown) (*pageView, error) {
	page := &pageView{
		Title:       messages.AppTitle,
		Question:    state.Question,
		Placeholder: messages.QuestionHint,
		Error:       state.Error,
		Disclaimer:  messages.Disclaimer,
	}

	var selected []entity.Corpus
	for _, c := range catalog {
		opt := corpusOption{
			Key:         c.Key,
			Label:       c.Label(),
			Description: c.Description,
			Documents:   formatCount(c.Documents),
			Checked:     slices.Contains(state.Corpora, c.Key),
		}
		page.Corpora = append(page.Corpora, opt)
		if opt.Checked {
			page.Selected = append(page.Selected, opt)
			selected = append(selected, c)
		}
	}
	page.NoCorpus = len(selected) == 0
	page.TotalDocuments = formatCount(entity.TotalDocuments(selected))

	if strings.TrimSpace(state.Question) == "" {
		for i, q := range examples {
			page.Examples = append(page.Examples, exampleView{Index: i, Text: q})
		}
	}

	if state.Result != nil {
		rv, err := buildResult(catalog, state.Result, formats, md)
		if err != nil {
			return nil, err
		}
		page.Result = rv
	}

	return page, nil
}

func buildResult(catalog entity.Catalog, result *entity.QueryResult, formats []entity.ExportFormat, md goldmark.Markdown) (*resultView, error) {
	var answer bytes.Buffer
	if err := md.Convert([]byte(result.Answer), &answer); err != nil {
		return nil, fmt.Errorf("render answer: %w", err)
	}

	rv := &resultView{
		ID:          result.ID,
		Banner:      messages.QueryDone,
		Latency:     fmt.Sprintf("%.2f 秒", result.Latency.Seconds()),
		SourceCount: len(result.Citations),
		Scope:       scopeText(catalog, result.Corpora),
		// goldmark escapes raw HTML unless WithUnsafe is set.
		Answer: template.HTML(answer.String()),
	}
	if result.Retried {
		rv.Retried = messages.RetriedNote
	}

	for i, c := range result.Citations {
		cv := citationView{
			Index:   i + 1,
			Title:   textutil.Ellipsize(c.Title, citationTitleRune),
			Snippet: textutil.Ellipsize(c.Snippet, citationSnipRunes),
		}
		if c.Score < 1 {
			cv.Similarity = fmt.Sprintf("相似度: %.2f%%", c.Score*100)
		}
		rv.Citations = append(rv.Citations, cv)
	}
	if len(rv.Citations) == 0 {
		rv.NoSources = messages.NoSources
	}

	for _, f := range formats {
		label, ok := exportLabels[f]
		if !ok {
			continue
		}
		rv.Exports = append(rv.Exports, exportLink{
			Label: label,
			URL:   fmt.Sprintf("/api/v1/results/%s/export?format=%s", url.PathEscape(result.ID), f),
		})
	}

	return rv, nil
}

func scopeText(catalog entity.Catalog, keys []string) string {
	names := make([]string, 0, len(keys))
	for _, key := range keys {
		if c, ok := catalog.Get(key); ok {
			names = append(names, c.DisplayName)
		} else {
			names = append(names, key)
		}
	}
	return textutil.Truncate(strings.Join(names, ", "), scopeRunes)
}

// formatCount renders n with thousands separators.
func formatCount(n int) string {
	s := fmt.Sprintf("%d", n)
	if n < 0 || len(s) <= 3 {
		return s
	}
	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
