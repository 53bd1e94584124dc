package domain

// ConfidenceTier is the discrete classification of a similarity score
// against the configured thresholds.
type ConfidenceTier string

const (
	// ConfidenceHigh means the top match cleared the high threshold and
	// the response can be used directly.
	ConfidenceHigh ConfidenceTier = "high"
	// ConfidenceMedium means the response is plausible but should be
	// confirmed by an operator before use.
	ConfidenceMedium ConfidenceTier = "medium"
	// ConfidenceLow means a match existed but scored below the medium
	// threshold; the sentinel response is returned instead.
	ConfidenceLow ConfidenceTier = "low"
	// ConfidenceNone means the scoped partition held no knowledge at
	// all. Distinct from a low-scoring match.
	ConfidenceNone ConfidenceTier = "none"
)

// ResolutionResult is the terminal output of one resolution request.
// It is produced fresh per query and never persisted by the core.
type ResolutionResult struct {
	TicketID       string         `json:"ticket_id"`
	StatusKey      StatusKey      `json:"status_key"`
	MatchedEntryID string         `json:"matched_entry_id,omitempty"`
	ResponseText   string         `json:"response"`
	Score          float64        `json:"score"`
	ConfidenceTier ConfidenceTier `json:"confidence_tier"`
}

// Matched reports whether the result carries a knowledge-entry response
// rather than the sentinel.
func (r *ResolutionResult) Matched() bool {
	return r.ConfidenceTier == ConfidenceHigh || r.ConfidenceTier == ConfidenceMedium
}
