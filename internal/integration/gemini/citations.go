package gemini

import (
	"strings"

	"github.com/fscqa/fsc-qa/internal/entity"
	"github.com/fscqa/fsc-qa/internal/pkg/textutil"
)

const (
	maxSnippetRunes      = 500
	unknownDocumentTitle = "未知文件"
	defaultScore         = 1.0
)

// extractCitations lists one citation per retrieved-context grounding chunk, in
// the provider's order. No deduplication.
func extractCitations(meta *entity.GeminiGroundingMetadata) []entity.Citation {
	if meta == nil || len(meta.GroundingChunks) == 0 {
		return nil
	}

	scores := chunkScores(meta.GroundingSupports)

	citations := make([]entity.Citation, 0, len(meta.GroundingChunks))
	for i, chunk := range meta.GroundingChunks {
		rc := chunk.RetrievedContext
		if rc == nil {
			continue
		}

		score := defaultScore
		if s, ok := scores[i]; ok {
			score = s
		}

		citations = append(citations, entity.Citation{
			Title:   citationTitle(rc),
			Snippet: textutil.Truncate(strings.TrimSpace(rc.Text), maxSnippetRunes),
			Score:   score,
			Store:   rc.FileSearchStore,
		})
	}

	return citations
}

// citationTitle prefers the document title, then the last URI segment.
func citationTitle(rc *entity.GeminiRetrievedContext) string {
	if title := strings.TrimSpace(rc.Title); title != "" {
		return title
	}

	uri := strings.TrimRight(strings.TrimSpace(rc.URI), "/")
	if uri != "" {
		if idx := strings.LastIndex(uri, "/"); idx >= 0 {
			uri = uri[idx+1:]
		}
		if uri != "" {
			return uri
		}
	}

	return unknownDocumentTitle
}

// chunkScores keeps the highest support confidence seen for each chunk index.
func chunkScores(supports []entity.GeminiGroundingSupport) map[int]float64 {
	scores := make(map[int]float64)
	for _, support := range supports {
		for j, idx := range support.GroundingChunkIndices {
			if j >= len(support.ConfidenceScores) {
				break
			}
			score := support.ConfidenceScores[j]
			if current, ok := scores[idx]; !ok || score > current {
				scores[idx] = score
			}
		}
	}
	return scores
}
