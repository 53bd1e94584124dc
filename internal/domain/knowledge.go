package domain

import (
	"fmt"
	"time"
)

// KnowledgeEntry is one vectorized response template owned by the
// knowledge index. Entries are immutable once written; a re-ingestion
// supersedes them with a higher partition version rather than mutating
// them in place.
type KnowledgeEntry struct {
	EntryID      string
	Category     string
	StatusKey    StatusKey
	SourceText   string
	ResponseText string
	Embedding    []float32
	Version      int64
	CreatedAt    time.Time
}

// ScoredEntry pairs a knowledge entry with its similarity score against
// a query vector. Scores are cosine similarity in [-1, 1].
type ScoredEntry struct {
	Entry KnowledgeEntry
	Score float64
}

// IngestionRowFailure records one knowledge-base row that could not be
// embedded or written during a batch. Row failures never abort the
// batch; they are collected into the report.
type IngestionRowFailure struct {
	RowIndex int    `json:"row_index"`
	EntryID  string `json:"entry_id,omitempty"`
	Reason   string `json:"reason"`
}

// IngestionReport summarizes one ingestion run for a category.
type IngestionReport struct {
	RunID     string                `json:"run_id"`
	Category  string                `json:"category"`
	Inserted  int                   `json:"inserted"`
	Updated   int                   `json:"updated"`
	Failed    int                   `json:"failed"`
	Failures  []IngestionRowFailure `json:"failures,omitempty"`
	StartedAt time.Time             `json:"started_at"`
}

// ValidateKnowledgeEntry validates a KnowledgeEntry instance.
func ValidateKnowledgeEntry(e *KnowledgeEntry) error {
	if e == nil {
		return fmt.Errorf("knowledge entry cannot be nil")
	}

	if e.EntryID == "" {
		return fmt.Errorf("knowledge entry EntryID is required")
	}

	if e.Category == "" {
		return fmt.Errorf("knowledge entry Category is required")
	}

	if e.StatusKey == "" {
		return fmt.Errorf("knowledge entry StatusKey is required")
	}

	if len(e.Embedding) == 0 {
		return fmt.Errorf("knowledge entry Embedding is required")
	}

	if e.Version <= 0 {
		return fmt.Errorf("knowledge entry Version must be greater than 0")
	}

	return nil
}
