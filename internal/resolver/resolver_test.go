package resolver

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/resolvd-ai/resolvd/internal/domain"
	"github.com/resolvd-ai/resolvd/internal/embedding"
	"github.com/resolvd-ai/resolvd/internal/index"
	"github.com/resolvd-ai/resolvd/internal/ingest"
	"github.com/resolvd-ai/resolvd/internal/metadata"
	"github.com/resolvd-ai/resolvd/internal/retry"
)

// MockMetadataResolver is a mock implementation of MetadataResolver
type MockMetadataResolver struct {
	mock.Mock
}

func (m *MockMetadataResolver) Resolve(ctx context.Context, ticketID string) domain.StatusKey {
	args := m.Called(ctx, ticketID)
	return args.Get(0).(domain.StatusKey)
}

// MockSearcher is a mock implementation of KnowledgeSearcher
type MockSearcher struct {
	mock.Mock
}

func (m *MockSearcher) Search(ctx context.Context, key index.PartitionKey, vector []float32, topK int) ([]domain.ScoredEntry, error) {
	args := m.Called(ctx, key, vector, topK)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ScoredEntry), args.Error(1)
}

// MockEmbedder is a mock implementation of embedding.Client
type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

func (m *MockEmbedder) Dimensions() int {
	args := m.Called()
	return args.Int(0)
}

func fixedStatus(key domain.StatusKey) *MockMetadataResolver {
	m := new(MockMetadataResolver)
	m.On("Resolve", mock.Anything, mock.Anything).Return(key)
	return m
}

func scored(id, response string, score float64) domain.ScoredEntry {
	return domain.ScoredEntry{
		Entry: domain.KnowledgeEntry{
			EntryID:      id,
			Category:     "loans",
			StatusKey:    "paid_not_reflected",
			ResponseText: response,
			Embedding:    []float32{1, 0},
			Version:      1,
		},
		Score: score,
	}
}

func unitVec() []float32 {
	return []float32{1, 0}
}

func newTestResolver(t *testing.T, meta MetadataResolver, embedder embedding.Client, searcher KnowledgeSearcher) *Resolver {
	t.Helper()
	r, err := NewResolverWithPolicy(meta, embedder, searcher, DefaultOptions(), retry.Policy{MaxAttempts: 1})
	require.NoError(t, err)
	return r
}

func TestResolver_GetResponse_HighConfidence(t *testing.T) {
	embedder := new(MockEmbedder)
	embedder.On("Embed", mock.Anything, "payment not showing").Return(unitVec(), nil)

	searcher := new(MockSearcher)
	expectedKey := index.PartitionKey{Category: "loans", StatusKey: "paid_not_reflected"}
	searcher.On("Search", mock.Anything, expectedKey, unitVec(), 5).
		Return([]domain.ScoredEntry{scored("e1", "Payments take 48 hours.", 0.93)}, nil)

	r := newTestResolver(t, fixedStatus("paid_not_reflected"), embedder, searcher)
	result, err := r.GetResponse(context.Background(), "3633261", "loans", "payment not showing")

	require.NoError(t, err)
	assert.Equal(t, "3633261", result.TicketID)
	assert.Equal(t, domain.StatusKey("paid_not_reflected"), result.StatusKey)
	assert.Equal(t, domain.ConfidenceHigh, result.ConfidenceTier)
	assert.Equal(t, "e1", result.MatchedEntryID)
	assert.Equal(t, "Payments take 48 hours.", result.ResponseText)
	assert.InDelta(t, 0.93, result.Score, 1e-9)
	assert.True(t, result.Matched())
}

func TestResolver_GetResponse_ThresholdBoundariesInclusive(t *testing.T) {
	tests := []struct {
		name    string
		score   float64
		tier    domain.ConfidenceTier
		matched bool
	}{
		{"exactly high", 0.80, domain.ConfidenceHigh, true},
		{"just below high", 0.799, domain.ConfidenceMedium, true},
		{"exactly medium", 0.60, domain.ConfidenceMedium, true},
		{"just below medium", 0.599, domain.ConfidenceLow, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			embedder := new(MockEmbedder)
			embedder.On("Embed", mock.Anything, mock.Anything).Return(unitVec(), nil)

			searcher := new(MockSearcher)
			searcher.On("Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
				Return([]domain.ScoredEntry{scored("e1", "answer", tt.score)}, nil)

			r := newTestResolver(t, fixedStatus("paid_not_reflected"), embedder, searcher)
			result, err := r.GetResponse(context.Background(), "t1", "loans", "q")

			require.NoError(t, err)
			assert.Equal(t, tt.tier, result.ConfidenceTier)
			assert.Equal(t, tt.matched, result.Matched())
			if tt.matched {
				assert.Equal(t, "answer", result.ResponseText)
			} else {
				assert.Equal(t, DefaultSentinelResponse, result.ResponseText)
			}
		})
	}
}

func TestResolver_GetResponse_EmptyPartitionIsNone(t *testing.T) {
	embedder := new(MockEmbedder)
	embedder.On("Embed", mock.Anything, mock.Anything).Return(unitVec(), nil)

	searcher := new(MockSearcher)
	searcher.On("Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.ScoredEntry{}, nil)

	r := newTestResolver(t, fixedStatus("paid_not_reflected"), embedder, searcher)
	result, err := r.GetResponse(context.Background(), "t1", "loans", "q")

	require.NoError(t, err)
	assert.Equal(t, domain.ConfidenceNone, result.ConfidenceTier)
	assert.Equal(t, DefaultSentinelResponse, result.ResponseText)
	assert.Empty(t, result.MatchedEntryID)
	assert.Zero(t, result.Score)
	assert.False(t, result.Matched())
}

func TestResolver_GetResponse_UnresolvedFallsBackToDefaultKey(t *testing.T) {
	embedder := new(MockEmbedder)
	embedder.On("Embed", mock.Anything, mock.Anything).Return(unitVec(), nil)

	searcher := new(MockSearcher)
	defaultKey := index.PartitionKey{Category: "loans", StatusKey: "general"}
	searcher.On("Search", mock.Anything, defaultKey, mock.Anything, mock.Anything).
		Return([]domain.ScoredEntry{}, nil)

	r := newTestResolver(t, fixedStatus(domain.StatusUnresolved), embedder, searcher)
	result, err := r.GetResponse(context.Background(), "unknown-ticket", "loans", "q")

	require.NoError(t, err)
	assert.Equal(t, domain.StatusKey("general"), result.StatusKey)
	searcher.AssertExpectations(t)
}

func TestResolver_GetResponse_EmptyQueryUsesCategoryText(t *testing.T) {
	embedder := new(MockEmbedder)
	embedder.On("Embed", mock.Anything, "loans").Return(unitVec(), nil)

	searcher := new(MockSearcher)
	searcher.On("Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.ScoredEntry{}, nil)

	r := newTestResolver(t, fixedStatus("paid_not_reflected"), embedder, searcher)
	_, err := r.GetResponse(context.Background(), "t1", "loans", "   ")

	require.NoError(t, err)
	embedder.AssertExpectations(t)
}

func TestResolver_GetResponse_ValidatesTicket(t *testing.T) {
	r := newTestResolver(t, fixedStatus("x"), new(MockEmbedder), new(MockSearcher))

	_, err := r.GetResponse(context.Background(), "", "loans", "q")
	assert.Error(t, err)

	_, err = r.GetResponse(context.Background(), "t1", "  ", "q")
	assert.Error(t, err)
}

func TestResolver_GetResponse_EmbeddingFailure(t *testing.T) {
	embedder := new(MockEmbedder)
	embedder.On("Embed", mock.Anything, mock.Anything).Return(nil, errors.New("model down"))

	r := newTestResolver(t, fixedStatus("paid_not_reflected"), embedder, new(MockSearcher))
	_, err := r.GetResponse(context.Background(), "t1", "loans", "q")

	require.Error(t, err)
	var derr *domain.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domain.ErrCodeResolutionFailed, derr.Code)
}

func TestResolver_GetResponse_SearchFailure(t *testing.T) {
	embedder := new(MockEmbedder)
	embedder.On("Embed", mock.Anything, mock.Anything).Return(unitVec(), nil)

	searcher := new(MockSearcher)
	searcher.On("Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, domain.ErrIndexUnavailable)

	r := newTestResolver(t, fixedStatus("paid_not_reflected"), embedder, searcher)
	_, err := r.GetResponse(context.Background(), "t1", "loans", "q")

	require.Error(t, err)
	var derr *domain.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domain.ErrCodeResolutionFailed, derr.Code)
}

func TestResolver_GetResponse_CanceledContextSurfaces(t *testing.T) {
	embedder := new(MockEmbedder)
	embedder.On("Embed", mock.Anything, mock.Anything).Return(nil, context.Canceled)

	r := newTestResolver(t, fixedStatus("paid_not_reflected"), embedder, new(MockSearcher))
	_, err := r.GetResponse(context.Background(), "t1", "loans", "q")

	assert.ErrorIs(t, err, context.Canceled)

	var derr *domain.DomainError
	assert.False(t, errors.As(err, &derr))
}

func TestNewResolver_InvalidOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.HighThreshold = 0.4 // below medium

	_, err := NewResolver(fixedStatus("x"), new(MockEmbedder), new(MockSearcher), opts)
	assert.ErrorIs(t, err, domain.ErrInvalidThresholds)
}

// End-to-end against real components: ingest the knowledge base with a
// deterministic embedder, resolve a ticket whose metadata maps to
// paid_not_reflected, and expect the stored response at high
// confidence because the stored source text matches the query.
func TestResolver_GetResponse_RoundTrip(t *testing.T) {
	ctx := context.Background()
	idx := index.NewKnowledgeIndex(index.NewMemoryStore(), nil)
	embedder := embedding.NewHashClient(128)

	pipeline := ingest.NewPipeline(idx, embedder)
	_, err := pipeline.Ingest(ctx, "Predisbursal_Loan_Query", []ingest.Row{
		{
			StatusKey:    "paid_not_reflected",
			SourceText:   "I paid my loan amount but it's not showing",
			ResponseText: "Payments can take up to 48 hours to reflect. Please share your transaction reference.",
		},
		{
			StatusKey:    "paid_not_reflected",
			SourceText:   "completely different problem about cards",
			ResponseText: "Wrong answer.",
		},
	})
	require.NoError(t, err)

	mapping, err := metadata.NewMapping("status", map[string]string{
		"PAID_NOT_REFLECTED": "paid_not_reflected",
	})
	require.NoError(t, err)
	source, err := metadata.ReadCSVSource(
		strings.NewReader("ticket_id,status\n3633261,PAID_NOT_REFLECTED\n"), "ticket_id")
	require.NoError(t, err)

	r, err := NewResolver(metadata.NewResolver(source, mapping), embedder, idx, DefaultOptions())
	require.NoError(t, err)

	result, err := r.GetResponse(ctx, "3633261", "Predisbursal_Loan_Query", "I paid my loan amount but it's not showing")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusKey("paid_not_reflected"), result.StatusKey)
	assert.Equal(t, domain.ConfidenceHigh, result.ConfidenceTier)
	assert.Equal(t, "Payments can take up to 48 hours to reflect. Please share your transaction reference.", result.ResponseText)
	assert.InDelta(t, 1.0, result.Score, 1e-6)
}
