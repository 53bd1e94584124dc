package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockEmbeddingAPI is a mock implementation of EmbeddingAPI
type MockEmbeddingAPI struct {
	mock.Mock
}

func (m *MockEmbeddingAPI) CreateEmbeddings(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

func TestOpenAIClient_Embed_Normalizes(t *testing.T) {
	api := new(MockEmbeddingAPI)
	api.On("CreateEmbeddings", mock.Anything, "hello world").Return([]float32{3, 4, 0, 0}, nil)

	client := &OpenAIClient{api: api, dimensions: 4}
	vec, err := client.Embed(context.Background(), "hello world")

	require.NoError(t, err)
	assert.True(t, IsUnit(vec))
	assert.InDelta(t, 0.6, vec[0], 1e-6)
	api.AssertExpectations(t)
}

func TestOpenAIClient_Embed_BlankSkipsAPI(t *testing.T) {
	api := new(MockEmbeddingAPI)

	client := &OpenAIClient{api: api, dimensions: 4}
	vec, err := client.Embed(context.Background(), "   ")

	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0, 0, 0}, vec)
	api.AssertNotCalled(t, "CreateEmbeddings", mock.Anything, mock.Anything)
}

func TestOpenAIClient_Embed_APIError(t *testing.T) {
	api := new(MockEmbeddingAPI)
	api.On("CreateEmbeddings", mock.Anything, "boom").Return(nil, errors.New("rate limited"))

	client := &OpenAIClient{api: api, dimensions: 4}
	_, err := client.Embed(context.Background(), "boom")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create embedding")
}

func TestOpenAIClient_Embed_WrongDimensions(t *testing.T) {
	api := new(MockEmbeddingAPI)
	api.On("CreateEmbeddings", mock.Anything, "short").Return([]float32{1, 2}, nil)

	client := &OpenAIClient{api: api, dimensions: 4}
	_, err := client.Embed(context.Background(), "short")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWrongDimensions)
}

func TestOpenAIClient_Embed_ZeroVector(t *testing.T) {
	api := new(MockEmbeddingAPI)
	api.On("CreateEmbeddings", mock.Anything, "null").Return([]float32{0, 0, 0, 0}, nil)

	client := &OpenAIClient{api: api, dimensions: 4}
	_, err := client.Embed(context.Background(), "null")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "zero vector")
}

func TestNewOpenAIClientWithConfig_Defaults(t *testing.T) {
	client := NewOpenAIClientWithConfig(OpenAIConfig{APIKey: "sk-test"})
	assert.Equal(t, DefaultDimensions, client.Dimensions())

	client = NewOpenAIClientWithConfig(OpenAIConfig{APIKey: "sk-test", Dimensions: 256})
	assert.Equal(t, 256, client.Dimensions())
}

func TestNewOpenAIClientFromEnv_NoKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := NewOpenAIClientFromEnv()
	assert.ErrorIs(t, err, ErrNoAPIKey)
}
