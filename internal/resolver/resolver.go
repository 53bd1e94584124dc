// Package resolver orchestrates metadata resolution, query embedding
// and scoped similarity search into a single resolution request.
package resolver

import (
	"context"
	"errors"
	"log"

	"github.com/resolvd-ai/resolvd/internal/domain"
	"github.com/resolvd-ai/resolvd/internal/embedding"
	"github.com/resolvd-ai/resolvd/internal/index"
	"github.com/resolvd-ai/resolvd/internal/retry"
	"github.com/resolvd-ai/resolvd/internal/telemetry"
)

// MetadataResolver maps a ticket ID to its status key. Unresolvable
// tickets degrade to domain.StatusUnresolved, never an error.
type MetadataResolver interface {
	Resolve(ctx context.Context, ticketID string) domain.StatusKey
}

// KnowledgeSearcher is the slice of the knowledge index the resolver
// needs: scoped similarity search.
type KnowledgeSearcher interface {
	Search(ctx context.Context, key index.PartitionKey, vector []float32, topK int) ([]domain.ScoredEntry, error)
}

// Resolver answers one query at a time: resolve status key, embed the
// query, search the scoped partition, apply the confidence policy.
// A request either runs to a ResolutionResult or fails with a
// RESOLUTION_FAILED domain error after the retry budget is spent, so
// callers can always tell "no good answer" apart from "could not
// attempt an answer". Resolvers are safe for concurrent use.
type Resolver struct {
	metadata MetadataResolver
	embedder embedding.Client
	searcher KnowledgeSearcher
	opts     Options
	policy   retry.Policy
}

// NewResolver creates a Resolver with the default retry policy.
func NewResolver(metadata MetadataResolver, embedder embedding.Client, searcher KnowledgeSearcher, opts Options) (*Resolver, error) {
	return NewResolverWithPolicy(metadata, embedder, searcher, opts, retry.DefaultPolicy())
}

// NewResolverWithPolicy creates a Resolver with an explicit retry
// policy for external calls.
func NewResolverWithPolicy(metadata MetadataResolver, embedder embedding.Client, searcher KnowledgeSearcher, opts Options, policy retry.Policy) (*Resolver, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Resolver{
		metadata: metadata,
		embedder: embedder,
		searcher: searcher,
		opts:     opts,
		policy:   policy,
	}, nil
}

// GetResponse is the public query entry point.
func (r *Resolver) GetResponse(ctx context.Context, ticketID, categoryName, queryText string) (*domain.ResolutionResult, error) {
	ticket := domain.NewTicket(ticketID, categoryName, queryText)
	if err := domain.ValidateTicket(ticket); err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartSpan(ctx, "Resolver.GetResponse", telemetry.SpanAttributes{
		TicketID:  ticket.ID,
		Category:  ticket.CategoryName,
		Operation: "resolve",
	})
	defer span.End()

	statusKey := r.metadata.Resolve(ctx, ticket.ID)
	if statusKey == domain.StatusUnresolved {
		log.Printf("ticket %s metadata unresolved, falling back to status key %q", ticket.ID, r.opts.DefaultStatusKey)
		statusKey = r.opts.DefaultStatusKey
	}

	var vector []float32
	err := r.policy.DoTimed(ctx, r.opts.CallTimeout, func(ctx context.Context) error {
		var embedErr error
		vector, embedErr = r.embedder.Embed(ctx, ticket.EffectiveQueryText())
		return embedErr
	})
	if err != nil {
		span.SetError(err)
		return nil, r.failed(ticket.ID, "embedding", err)
	}

	key := index.PartitionKey{Category: ticket.CategoryName, StatusKey: statusKey}
	var hits []domain.ScoredEntry
	err = r.policy.DoTimed(ctx, r.opts.CallTimeout, func(ctx context.Context) error {
		var searchErr error
		hits, searchErr = r.searcher.Search(ctx, key, vector, r.opts.TopK)
		return searchErr
	})
	if err != nil {
		span.SetError(err)
		return nil, r.failed(ticket.ID, "search", err)
	}

	return r.decide(ticket.ID, statusKey, hits), nil
}

// decide applies the confidence-tier policy to the ranked hits.
func (r *Resolver) decide(ticketID string, statusKey domain.StatusKey, hits []domain.ScoredEntry) *domain.ResolutionResult {
	result := &domain.ResolutionResult{
		TicketID:  ticketID,
		StatusKey: statusKey,
	}

	if len(hits) == 0 {
		result.ConfidenceTier = domain.ConfidenceNone
		result.ResponseText = r.opts.SentinelResponse
		return result
	}

	top := hits[0]
	result.Score = top.Score

	switch {
	case top.Score >= r.opts.HighThreshold:
		result.ConfidenceTier = domain.ConfidenceHigh
		result.MatchedEntryID = top.Entry.EntryID
		result.ResponseText = top.Entry.ResponseText
	case top.Score >= r.opts.MediumThreshold:
		result.ConfidenceTier = domain.ConfidenceMedium
		result.MatchedEntryID = top.Entry.EntryID
		result.ResponseText = top.Entry.ResponseText
	default:
		result.ConfidenceTier = domain.ConfidenceLow
		result.ResponseText = r.opts.SentinelResponse
	}
	return result
}

// failed classifies an exhausted-retry fault. Caller cancellation is
// surfaced as-is; everything else becomes RESOLUTION_FAILED with the
// cause attached.
func (r *Resolver) failed(ticketID, stage string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	log.Printf("resolution failed for ticket %s at %s: %v", ticketID, stage, err)
	return domain.NewDomainErrorWithCause(domain.ErrCodeResolutionFailed, "resolution could not be attempted", err)
}
