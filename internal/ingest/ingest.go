// Package ingest builds and refreshes knowledge-index partitions from a
// knowledge-base source.
package ingest

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/resolvd-ai/resolvd/internal/domain"
	"github.com/resolvd-ai/resolvd/internal/embedding"
	"github.com/resolvd-ai/resolvd/internal/index"
	"github.com/resolvd-ai/resolvd/internal/retry"
	"github.com/resolvd-ai/resolvd/internal/telemetry"
)

// Pipeline embeds knowledge rows and publishes them into the index.
// Each (category, status key) partition is rebuilt as a staged version
// and committed with the index's atomic swap, so concurrent searches
// never observe a half-rebuilt partition. One failed row never aborts
// the batch; failures are collected into the report.
type Pipeline struct {
	index    *index.KnowledgeIndex
	embedder embedding.Client
	policy   retry.Policy
	timeout  time.Duration
}

// NewPipeline creates a Pipeline with the default retry policy and no
// per-call timeout.
func NewPipeline(idx *index.KnowledgeIndex, embedder embedding.Client) *Pipeline {
	return NewPipelineWithPolicy(idx, embedder, retry.DefaultPolicy(), 0)
}

// NewPipelineWithPolicy creates a Pipeline with an explicit retry
// policy and per-embedding timeout.
func NewPipelineWithPolicy(idx *index.KnowledgeIndex, embedder embedding.Client, policy retry.Policy, timeout time.Duration) *Pipeline {
	return &Pipeline{
		index:    idx,
		embedder: embedder,
		policy:   policy,
		timeout:  timeout,
	}
}

// EntryID derives the stable, content-addressed identifier for a
// knowledge row. Re-ingesting an unchanged row yields the same ID (and
// a deterministic embedder yields the same vector), which makes
// ingestion idempotent.
func EntryID(category string, statusKey domain.StatusKey, sourceText string) string {
	name := category + "\x00" + string(statusKey) + "\x00" + sourceText
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}

// IngestFromSource pulls the category's rows from the source and
// ingests them.
func (p *Pipeline) IngestFromSource(ctx context.Context, source Source, category string) (*domain.IngestionReport, error) {
	rows, err := source.Rows(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("failed to load knowledge rows for %s: %w", category, err)
	}
	return p.Ingest(ctx, category, rows)
}

// Ingest embeds every row and rebuilds the touched partitions. The
// returned report carries inserted/updated/failed counts; the error
// return is reserved for infrastructure faults on the index itself.
func (p *Pipeline) Ingest(ctx context.Context, category string, rows []Row) (*domain.IngestionReport, error) {
	ctx, span := telemetry.StartSpan(ctx, "Pipeline.Ingest", telemetry.SpanAttributes{
		Category:  category,
		Operation: "ingest",
	})
	defer span.End()

	report := &domain.IngestionReport{
		RunID:     uuid.NewString(),
		Category:  category,
		StartedAt: time.Now().UTC(),
	}

	byStatus := make(map[domain.StatusKey][]indexedRow)
	order := make([]domain.StatusKey, 0)
	for i, row := range rows {
		if row.StatusKey == "" {
			report.Failed++
			report.Failures = append(report.Failures, domain.IngestionRowFailure{
				RowIndex: i,
				Reason:   "missing status_key",
			})
			continue
		}
		if _, ok := byStatus[row.StatusKey]; !ok {
			order = append(order, row.StatusKey)
		}
		byStatus[row.StatusKey] = append(byStatus[row.StatusKey], indexedRow{index: i, row: row})
	}

	for _, statusKey := range order {
		if err := p.rebuildPartition(ctx, category, statusKey, byStatus[statusKey], report); err != nil {
			span.SetError(err)
			return report, err
		}
	}

	log.Printf("ingestion %s for category %q: %d inserted, %d updated, %d failed",
		report.RunID, category, report.Inserted, report.Updated, report.Failed)
	return report, nil
}

type indexedRow struct {
	index int
	row   Row
}

func (p *Pipeline) rebuildPartition(ctx context.Context, category string, statusKey domain.StatusKey, rows []indexedRow, report *domain.IngestionReport) error {
	key := index.PartitionKey{Category: category, StatusKey: statusKey}

	rebuild, err := p.index.Rebuild(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to begin rebuild of %s: %w", p.index.PartitionName(key), err)
	}

	staged := 0
	for _, ir := range rows {
		entryID := EntryID(category, statusKey, ir.row.SourceText)

		existed, err := p.index.Contains(ctx, key, entryID)
		if err != nil {
			// Treat as new; insert/update counts are informational.
			existed = false
		}

		var vec []float32
		err = p.policy.DoTimed(ctx, p.timeout, func(ctx context.Context) error {
			var embedErr error
			vec, embedErr = p.embedder.Embed(ctx, ir.row.SourceText)
			return embedErr
		})
		if err != nil {
			report.Failed++
			report.Failures = append(report.Failures, domain.IngestionRowFailure{
				RowIndex: ir.index,
				EntryID:  entryID,
				Reason:   fmt.Sprintf("embedding failed: %v", err),
			})
			continue
		}

		entry := domain.KnowledgeEntry{
			EntryID:      entryID,
			Category:     category,
			StatusKey:    statusKey,
			SourceText:   ir.row.SourceText,
			ResponseText: ir.row.ResponseText,
			Embedding:    vec,
			CreatedAt:    report.StartedAt,
		}
		if err := rebuild.Upsert(ctx, entry); err != nil {
			report.Failed++
			report.Failures = append(report.Failures, domain.IngestionRowFailure{
				RowIndex: ir.index,
				EntryID:  entryID,
				Reason:   fmt.Sprintf("upsert failed: %v", err),
			})
			continue
		}

		staged++
		if existed {
			report.Updated++
		} else {
			report.Inserted++
		}
	}

	// A rebuild where every row failed would publish an empty partition
	// over existing knowledge; keep the old version in that case.
	if staged == 0 && len(rows) > 0 {
		if abortErr := rebuild.Abort(ctx); abortErr != nil {
			log.Printf("failed to abort empty rebuild of %s: %v", p.index.PartitionName(key), abortErr)
		}
		return nil
	}

	if err := rebuild.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit rebuild of %s: %w", p.index.PartitionName(key), err)
	}
	return nil
}
