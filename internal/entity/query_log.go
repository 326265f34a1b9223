package entity

import "time"

type QueryStatus string

const (
	QueryStatusAnswered QueryStatus = "answered"
	QueryStatusFailed   QueryStatus = "failed"
)

// QueryLogRecord is an audit row written after every provider round trip.
type QueryLogRecord struct {
	ID            string
	Question      string
	Corpora       []string
	AnswerChars   int
	CitationCount int
	Latency       time.Duration
	Status        QueryStatus
	Error         string
	CreatedAt     time.Time
}
