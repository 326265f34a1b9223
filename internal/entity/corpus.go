package entity

import (
	"fmt"
	"strings"
)

// Corpus keys of the pre-indexed FSC document collections.
const (
	CorpusEnforcementCases          = "enforcement-cases"
	CorpusRegulatoryInterpretations = "regulatory-interpretations"
	CorpusAnnouncements             = "announcements"
)

// Corpus is one File Search store the relay can scope a question to.
type Corpus struct {
	Key         string `json:"key"`
	StoreName   string `json:"store_name"`
	DisplayName string `json:"display_name"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
	Documents   int    `json:"documents"`
	// Guideline is appended to the system instruction when the corpus is selected.
	Guideline string `json:"guideline,omitempty"`
}

// Label is the checkbox / button caption, e.g. "⚖️ 裁罰案件".
func (c Corpus) Label() string {
	if c.Icon == "" {
		return c.DisplayName
	}
	return c.Icon + " " + c.DisplayName
}

// Catalog is the ordered list of corpora known to the relay.
type Catalog []Corpus

// Get returns the corpus with the given key.
func (c Catalog) Get(key string) (Corpus, bool) {
	for _, corpus := range c {
		if corpus.Key == key {
			return corpus, true
		}
	}
	return Corpus{}, false
}

// Keys lists corpus keys in catalog order.
func (c Catalog) Keys() []string {
	keys := make([]string, 0, len(c))
	for _, corpus := range c {
		keys = append(keys, corpus.Key)
	}
	return keys
}

// Resolve turns a user selection into catalog entries. Duplicates collapse,
// the result follows catalog order, and blank keys are ignored.
func (c Catalog) Resolve(keys []string) ([]Corpus, error) {
	wanted := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if _, ok := c.Get(key); !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownCorpus, key)
		}
		wanted[key] = struct{}{}
	}

	if len(wanted) == 0 {
		return nil, ErrNoCorpusSelected
	}

	selected := make([]Corpus, 0, len(wanted))
	for _, corpus := range c {
		if _, ok := wanted[corpus.Key]; ok {
			selected = append(selected, corpus)
		}
	}
	return selected, nil
}

// TotalDocuments sums the document counts of the given corpora.
func TotalDocuments(corpora []Corpus) int {
	total := 0
	for _, corpus := range corpora {
		total += corpus.Documents
	}
	return total
}
