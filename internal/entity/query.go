package entity

import "time"

// QueryRequest is a question scoped to a set of corpora.
type QueryRequest struct {
	Question string   `json:"question"`
	Corpora  []string `json:"corpora"`
}

// Citation is one source document the provider grounded the answer on.
type Citation struct {
	Title   string  `json:"title"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score"`
	Store   string  `json:"store,omitempty"`
}

// QueryResult is what the relay hands back to every front-end.
type QueryResult struct {
	ID        string        `json:"id"`
	Question  string        `json:"question"`
	Corpora   []string      `json:"corpora"`
	Scope     []string      `json:"scope"`
	Answer    string        `json:"answer"`
	Citations []Citation    `json:"citations"`
	Latency   time.Duration `json:"-"`
	LatencyMS int64         `json:"latency_ms"`
	Retried   bool          `json:"retried,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// HasCitations reports whether the provider cited at least one document.
func (r *QueryResult) HasCitations() bool {
	return len(r.Citations) > 0
}

// FileSearchQuery is the provider-neutral description of one generate call.
type FileSearchQuery struct {
	Question          string
	SystemInstruction string
	StoreNames        []string
}

// FileSearchAnswer is the provider-neutral outcome of one generate call.
type FileSearchAnswer struct {
	Text      string
	Citations []Citation
}
