package embedding

import (
	"context"
	"errors"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultModel is the OpenAI model used for generating embeddings
	DefaultModel = openai.AdaEmbeddingV2
	// DefaultDimensions is the expected dimension of embeddings from ada-002
	DefaultDimensions = 1536
)

var (
	// ErrWrongDimensions is returned when the model returns an embedding
	// of an unexpected dimension
	ErrWrongDimensions = errors.New("embedding has wrong dimensions")
	// ErrNoAPIKey is returned when the OpenAI API key is not set
	ErrNoAPIKey = errors.New("OPENAI_API_KEY environment variable not set")
)

// EmbeddingAPI defines the interface for the raw embedding call
type EmbeddingAPI interface {
	CreateEmbeddings(ctx context.Context, text string) ([]float32, error)
}

// OpenAIClient generates embeddings through the OpenAI API. Vectors are
// L2-normalized before they are returned so the unit-length invariant
// holds regardless of what the model produces.
type OpenAIClient struct {
	api        EmbeddingAPI
	dimensions int
}

type OpenAIAdapter struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

func NewOpenAIAdapter(apiKey string, model openai.EmbeddingModel) *OpenAIAdapter {
	if model == "" {
		model = DefaultModel
	}
	return &OpenAIAdapter{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// CreateEmbeddings calls the OpenAI API to create embeddings
func (a *OpenAIAdapter) CreateEmbeddings(ctx context.Context, text string) ([]float32, error) {
	resp, err := a.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: a.model,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding data returned")
	}

	return resp.Data[0].Embedding, nil
}

type OpenAIConfig struct {
	APIKey     string
	Model      openai.EmbeddingModel
	Dimensions int
}

// NewOpenAIClient creates a new OpenAI embedding client using defaults.
func NewOpenAIClient(apiKey string) *OpenAIClient {
	return NewOpenAIClientWithConfig(OpenAIConfig{APIKey: apiKey})
}

// NewOpenAIClientWithConfig creates a new OpenAI embedding client with
// explicit configuration.
func NewOpenAIClientWithConfig(cfg OpenAIConfig) *OpenAIClient {
	dimensions := cfg.Dimensions
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &OpenAIClient{
		api:        NewOpenAIAdapter(cfg.APIKey, cfg.Model),
		dimensions: dimensions,
	}
}

// NewOpenAIClientFromEnv creates a client using the OPENAI_API_KEY
// environment variable
func NewOpenAIClientFromEnv() (*OpenAIClient, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	return NewOpenAIClient(apiKey), nil
}

// Embed generates a unit-normalized embedding for the given text.
// Empty or whitespace-only input embeds to the fixed zero-information
// vector without a remote call, so a ticket with a subject but no body
// is still embeddable.
func (c *OpenAIClient) Embed(ctx context.Context, text string) ([]float32, error) {
	if isBlank(text) {
		return emptyTextVector(c.dimensions), nil
	}

	vec, err := c.api.CreateEmbeddings(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}

	if len(vec) != c.dimensions {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrWrongDimensions, c.dimensions, len(vec))
	}

	vec = Normalize(vec)
	if !IsUnit(vec) {
		return nil, fmt.Errorf("model returned a zero vector for text of length %d", len(text))
	}

	return vec, nil
}

// Dimensions returns the embedding dimension of this client.
func (c *OpenAIClient) Dimensions() int {
	return c.dimensions
}
