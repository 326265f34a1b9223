package entity

import "time"

// ErrorResponse is the JSON body of every non-2xx API response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// CatalogResponse lists the corpora and example questions.
type CatalogResponse struct {
	Corpora  []Corpus `json:"corpora"`
	Examples []string `json:"examples,omitempty"`
}

// ExamplesResponse lists the example questions.
type ExamplesResponse struct {
	Examples []string `json:"examples"`
}

// QueryLogEntry is one audit record as returned by the API.
type QueryLogEntry struct {
	ID            string    `json:"id"`
	Question      string    `json:"question"`
	Corpora       []string  `json:"corpora"`
	AnswerChars   int       `json:"answer_chars"`
	CitationCount int       `json:"citation_count"`
	LatencyMS     int64     `json:"latency_ms"`
	Status        string    `json:"status"`
	Error         string    `json:"error,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// QueryLogResponse lists recent audit records, newest first.
type QueryLogResponse struct {
	Queries []QueryLogEntry `json:"queries"`
}
