package index

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resolvd-ai/resolvd/internal/domain"
)

func newTestIndex() *KnowledgeIndex {
	return NewKnowledgeIndex(NewMemoryStore(), nil)
}

func testKey() PartitionKey {
	return PartitionKey{Category: "Predisbursal_Loan_Query", StatusKey: "paid_not_reflected"}
}

func TestKnowledgeIndex_UpsertAndSearch(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex()
	key := testKey()

	require.NoError(t, idx.Upsert(ctx, key, memEntry("e1", []float32{1, 0, 0})))

	results, err := idx.Search(ctx, key, []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "e1", results[0].Entry.EntryID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
}

func TestKnowledgeIndex_UpsertRejectsNonUnitEmbedding(t *testing.T) {
	idx := newTestIndex()

	err := idx.Upsert(context.Background(), testKey(), memEntry("e1", []float32{1, 1, 0}))
	assert.ErrorIs(t, err, domain.ErrInvalidEmbedding)
}

func TestKnowledgeIndex_SearchRejectsNonUnitQuery(t *testing.T) {
	idx := newTestIndex()

	_, err := idx.Search(context.Background(), testKey(), []float32{2, 0}, 5)
	assert.ErrorIs(t, err, domain.ErrInvalidEmbedding)
}

func TestKnowledgeIndex_SearchNonPositiveTopK(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex()
	require.NoError(t, idx.Upsert(ctx, testKey(), memEntry("e1", []float32{1, 0, 0})))

	results, err := idx.Search(ctx, testKey(), []float32{1, 0, 0}, 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestKnowledgeIndex_SearchEmptyPartition(t *testing.T) {
	idx := newTestIndex()

	results, err := idx.Search(context.Background(), testKey(), []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestKnowledgeIndex_ScopedPartitions(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex()

	paid := PartitionKey{Category: "loans", StatusKey: "paid_not_reflected"}
	blocked := PartitionKey{Category: "loans", StatusKey: "account_blocked"}

	require.NoError(t, idx.Upsert(ctx, paid, memEntry("paid-entry", []float32{1, 0})))
	require.NoError(t, idx.Upsert(ctx, blocked, memEntry("blocked-entry", []float32{1, 0})))

	// The same query against different status keys stays scoped.
	results, err := idx.Search(ctx, paid, []float32{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "paid-entry", results[0].Entry.EntryID)

	results, err = idx.Search(ctx, blocked, []float32{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "blocked-entry", results[0].Entry.EntryID)
}

func TestRebuild_CommitSwapsContent(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex()
	key := testKey()

	require.NoError(t, idx.Upsert(ctx, key, memEntry("old", []float32{1, 0})))

	rebuild, err := idx.Rebuild(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(2), rebuild.Version())

	require.NoError(t, rebuild.Upsert(ctx, memEntry("new", []float32{0, 1})))

	// Staged content is invisible before commit.
	results, err := idx.Search(ctx, key, []float32{0, 1}, 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "old", results[0].Entry.EntryID)

	require.NoError(t, rebuild.Commit(ctx))

	results, err = idx.Search(ctx, key, []float32{0, 1}, 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "new", results[0].Entry.EntryID)
}

func TestRebuild_AbortKeepsOldContent(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex()
	key := testKey()

	require.NoError(t, idx.Upsert(ctx, key, memEntry("old", []float32{1, 0})))

	rebuild, err := idx.Rebuild(ctx, key)
	require.NoError(t, err)
	require.NoError(t, rebuild.Upsert(ctx, memEntry("new", []float32{0, 1})))
	require.NoError(t, rebuild.Abort(ctx))

	results, err := idx.Search(ctx, key, []float32{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "old", results[0].Entry.EntryID)
}

func TestRebuild_FinishedHandleRejectsWrites(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex()

	rebuild, err := idx.Rebuild(ctx, testKey())
	require.NoError(t, err)
	require.NoError(t, rebuild.Commit(ctx))

	err = rebuild.Upsert(ctx, memEntry("late", []float32{1, 0}))
	require.Error(t, err)

	var derr *domain.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domain.ErrCodeInvalidOperation, derr.Code)

	err = rebuild.Commit(ctx)
	require.Error(t, err)

	// Abort after commit is a no-op.
	assert.NoError(t, rebuild.Abort(ctx))
}

func TestKnowledgeIndex_PartitionNameUsesOverrides(t *testing.T) {
	idx := NewKnowledgeIndex(NewMemoryStore(), map[string]string{
		"predisbursal_loan_query": "pdq",
	})

	assert.Equal(t, "pdq__paid_not_reflected", idx.PartitionName(testKey()))
}
