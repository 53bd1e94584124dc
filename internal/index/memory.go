package index

import (
	"context"
	"sort"
	"sync"

	"github.com/resolvd-ai/resolvd/internal/domain"
	"github.com/resolvd-ai/resolvd/internal/embedding"
)

// MemoryStore is an in-memory VectorStore. It backs local operation and
// tests, and is the reference implementation of the versioned-partition
// semantics the Postgres store provides.
//
// Staged versions live beside the active one in the same map; Activate
// flips the active pointer under the write lock, so a concurrent reader
// sees either the fully-old or fully-new content, never a mix.
type MemoryStore struct {
	mu         sync.RWMutex
	partitions map[string]*memPartition
}

type memPartition struct {
	active   int64
	versions map[int64]map[string]domain.KnowledgeEntry
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		partitions: make(map[string]*memPartition),
	}
}

// ActiveVersion returns the searchable version of the partition, or 0
// when the partition does not exist.
func (s *MemoryStore) ActiveVersion(_ context.Context, partition string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.partitions[partition]
	if !ok {
		return 0, nil
	}
	return p.active, nil
}

// Upsert inserts or replaces entries within the given partition version.
func (s *MemoryStore) Upsert(_ context.Context, partition string, version int64, entries []domain.KnowledgeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.partitions[partition]
	if !ok {
		p = &memPartition{versions: make(map[int64]map[string]domain.KnowledgeEntry)}
		s.partitions[partition] = p
	}

	entriesByID, ok := p.versions[version]
	if !ok {
		entriesByID = make(map[string]domain.KnowledgeEntry, len(entries))
		p.versions[version] = entriesByID
	}

	for _, e := range entries {
		entriesByID[e.EntryID] = e
	}
	return nil
}

// Activate flips the partition's active version and drops older ones.
func (s *MemoryStore) Activate(_ context.Context, partition string, version int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.partitions[partition]
	if !ok {
		p = &memPartition{versions: make(map[int64]map[string]domain.KnowledgeEntry)}
		s.partitions[partition] = p
	}
	if _, ok := p.versions[version]; !ok {
		// Activating a version nothing was written to publishes an
		// empty partition, which is a legal rebuild outcome.
		p.versions[version] = make(map[string]domain.KnowledgeEntry)
	}

	p.active = version
	for v := range p.versions {
		if v != version {
			delete(p.versions, v)
		}
	}
	return nil
}

// Discard drops a staged version.
func (s *MemoryStore) Discard(_ context.Context, partition string, version int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.partitions[partition]
	if !ok || version == p.active {
		return nil
	}
	delete(p.versions, version)
	return nil
}

// Contains reports whether the active version holds the entry ID.
func (s *MemoryStore) Contains(_ context.Context, partition, entryID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.partitions[partition]
	if !ok {
		return false, nil
	}
	_, ok = p.versions[p.active][entryID]
	return ok, nil
}

// Search ranks the active version's entries by descending dot product
// with the query vector, ties broken by smaller entry ID.
func (s *MemoryStore) Search(_ context.Context, partition string, vector []float32, topK int) ([]domain.ScoredEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.partitions[partition]
	if !ok {
		return []domain.ScoredEntry{}, nil
	}

	entriesByID := p.versions[p.active]
	scored := make([]domain.ScoredEntry, 0, len(entriesByID))
	for _, e := range entriesByID {
		if len(e.Embedding) != len(vector) {
			continue
		}
		scored = append(scored, domain.ScoredEntry{
			Entry: e,
			Score: embedding.Dot(vector, e.Embedding),
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Entry.EntryID < scored[j].Entry.EntryID
	})

	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored, nil
}
