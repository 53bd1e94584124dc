package index

import (
	"context"
	"fmt"

	"github.com/resolvd-ai/resolvd/internal/domain"
	"github.com/resolvd-ai/resolvd/internal/embedding"
)

// KnowledgeIndex is the versioned collection of vectorized knowledge
// entries, partitioned by (category, status key). It owns partition
// naming and the unit-vector checks; the concrete storage is behind
// the VectorStore interface so an in-memory store can stand in for the
// database during tests.
type KnowledgeIndex struct {
	store     VectorStore
	overrides map[string]string
}

// NewKnowledgeIndex creates a KnowledgeIndex over the given store.
// overrides may be nil; see PartitionName.
func NewKnowledgeIndex(store VectorStore, overrides map[string]string) *KnowledgeIndex {
	return &KnowledgeIndex{
		store:     store,
		overrides: overrides,
	}
}

// PartitionName returns the store-level name this index uses for the key.
func (i *KnowledgeIndex) PartitionName(key PartitionKey) string {
	return PartitionName(key, i.overrides)
}

// Upsert inserts or replaces a single entry in the live partition. Bulk
// refreshes go through Rebuild instead, so concurrent searches never
// observe a half-written partition.
func (i *KnowledgeIndex) Upsert(ctx context.Context, key PartitionKey, entry domain.KnowledgeEntry) error {
	partition := i.PartitionName(key)

	version, err := i.store.ActiveVersion(ctx, partition)
	if err != nil {
		return fmt.Errorf("failed to read active version for %s: %w", partition, err)
	}

	fresh := version == 0
	if fresh {
		version = 1
	}

	entry.Version = version
	if err := domain.ValidateKnowledgeEntry(&entry); err != nil {
		return err
	}
	if !embedding.IsUnit(entry.Embedding) {
		return domain.ErrInvalidEmbedding
	}

	if err := i.store.Upsert(ctx, partition, version, []domain.KnowledgeEntry{entry}); err != nil {
		return fmt.Errorf("failed to upsert into %s: %w", partition, err)
	}

	if fresh {
		if err := i.store.Activate(ctx, partition, version); err != nil {
			return fmt.Errorf("failed to activate %s: %w", partition, err)
		}
	}
	return nil
}

// Contains reports whether the live partition holds the entry ID.
func (i *KnowledgeIndex) Contains(ctx context.Context, key PartitionKey, entryID string) (bool, error) {
	return i.store.Contains(ctx, i.PartitionName(key), entryID)
}

// Search returns up to topK entries ranked by descending cosine
// similarity to the query vector. An absent or empty partition yields
// an empty slice: "no knowledge available" is a normal outcome, not an
// error. The query vector must be unit length.
func (i *KnowledgeIndex) Search(ctx context.Context, key PartitionKey, vector []float32, topK int) ([]domain.ScoredEntry, error) {
	if !embedding.IsUnit(vector) {
		return nil, domain.ErrInvalidEmbedding
	}
	if topK <= 0 {
		return []domain.ScoredEntry{}, nil
	}
	return i.store.Search(ctx, i.PartitionName(key), vector, topK)
}

// Rebuild starts a staged replacement of the partition. Entries written
// through the returned handle are invisible to concurrent searches until
// Commit performs the atomic swap.
func (i *KnowledgeIndex) Rebuild(ctx context.Context, key PartitionKey) (*Rebuild, error) {
	partition := i.PartitionName(key)

	active, err := i.store.ActiveVersion(ctx, partition)
	if err != nil {
		return nil, fmt.Errorf("failed to read active version for %s: %w", partition, err)
	}

	return &Rebuild{
		store:     i.store,
		partition: partition,
		version:   active + 1,
	}, nil
}

// Rebuild is an in-flight staged build of one partition version.
type Rebuild struct {
	store     VectorStore
	partition string
	version   int64
	done      bool
}

// Version is the partition version this rebuild will publish.
func (r *Rebuild) Version() int64 {
	return r.version
}

// Upsert stages an entry into the rebuild.
func (r *Rebuild) Upsert(ctx context.Context, entry domain.KnowledgeEntry) error {
	if r.done {
		return domain.NewDomainError(domain.ErrCodeInvalidOperation, "rebuild already finished")
	}

	entry.Version = r.version
	if err := domain.ValidateKnowledgeEntry(&entry); err != nil {
		return err
	}
	if !embedding.IsUnit(entry.Embedding) {
		return domain.ErrInvalidEmbedding
	}

	return r.store.Upsert(ctx, r.partition, r.version, []domain.KnowledgeEntry{entry})
}

// Commit atomically swaps the staged version in as the searchable one.
func (r *Rebuild) Commit(ctx context.Context) error {
	if r.done {
		return domain.NewDomainError(domain.ErrCodeInvalidOperation, "rebuild already finished")
	}
	r.done = true
	return r.store.Activate(ctx, r.partition, r.version)
}

// Abort drops the staged version without publishing it.
func (r *Rebuild) Abort(ctx context.Context) error {
	if r.done {
		return nil
	}
	r.done = true
	return r.store.Discard(ctx, r.partition, r.version)
}
