package index

import (
	"context"

	"github.com/resolvd-ai/resolvd/internal/domain"
)

// VectorStore is the capability interface the knowledge index requires
// from a concrete vector database. Partitions are versioned: writes go
// to an explicit version, and only the active version is visible to
// Search and Contains. Activating a version is the atomic swap that
// publishes a rebuild.
type VectorStore interface {
	// ActiveVersion returns the currently searchable version of the
	// partition, or 0 when the partition does not exist.
	ActiveVersion(ctx context.Context, partition string) (int64, error)

	// Upsert inserts or replaces entries by entry ID within the given
	// partition version. Writing to a non-active version is invisible
	// to readers until that version is activated.
	Upsert(ctx context.Context, partition string, version int64, entries []domain.KnowledgeEntry) error

	// Activate atomically makes the given version the searchable one
	// and releases storage held by older versions.
	Activate(ctx context.Context, partition string, version int64) error

	// Discard drops a staged, never-activated version.
	Discard(ctx context.Context, partition string, version int64) error

	// Contains reports whether the active version of the partition
	// holds an entry with the given ID.
	Contains(ctx context.Context, partition, entryID string) (bool, error)

	// Search returns up to topK entries from the active version ranked
	// by descending cosine similarity, ties broken by lexicographically
	// smaller entry ID. A missing or empty partition yields an empty
	// result, not an error.
	Search(ctx context.Context, partition string, vector []float32, topK int) ([]domain.ScoredEntry, error)
}
