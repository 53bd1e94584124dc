package resolver

import (
	"fmt"
	"time"

	"github.com/resolvd-ai/resolvd/internal/domain"
)

// Options is the explicit configuration of the resolver's confidence
// policy and external-call behavior. Thresholds are inclusive lower
// bounds: a score exactly equal to HighThreshold classifies High, and
// exactly MediumThreshold classifies Medium.
type Options struct {
	HighThreshold   float64
	MediumThreshold float64
	TopK            int
	// DefaultStatusKey is searched when ticket metadata cannot be
	// resolved, so a match is still attempted against general
	// knowledge.
	DefaultStatusKey domain.StatusKey
	// SentinelResponse is returned for Low/None outcomes instead of a
	// knowledge-entry response.
	SentinelResponse string
	// CallTimeout bounds each external call (embedding, search).
	// Zero means no per-call deadline beyond the request context.
	CallTimeout time.Duration
}

// DefaultSentinelResponse matches the canned "no confident answer"
// reply operators expect.
const DefaultSentinelResponse = "No relevant response found."

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		HighThreshold:    0.80,
		MediumThreshold:  0.60,
		TopK:             5,
		DefaultStatusKey: "general",
		SentinelResponse: DefaultSentinelResponse,
		CallTimeout:      10 * time.Second,
	}
}

// Validate checks the options for internal consistency.
func (o Options) Validate() error {
	if o.TopK <= 0 {
		return fmt.Errorf("%w: top_k must be positive", domain.ErrInvalidThresholds)
	}
	if o.HighThreshold < o.MediumThreshold {
		return fmt.Errorf("%w: high threshold %.3f below medium threshold %.3f",
			domain.ErrInvalidThresholds, o.HighThreshold, o.MediumThreshold)
	}
	if o.HighThreshold > 1 || o.MediumThreshold < -1 {
		return fmt.Errorf("%w: thresholds must lie in [-1, 1]", domain.ErrInvalidThresholds)
	}
	if o.DefaultStatusKey == "" {
		return fmt.Errorf("%w: default status key is required", domain.ErrMissingRequiredField)
	}
	return nil
}
