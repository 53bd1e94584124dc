package embedding

import (
	"context"
	"hash/fnv"
	"strings"
	"unicode"
)

// HashClient is a deterministic, fully local embedder. It hashes word
// tokens into a fixed number of buckets and L2-normalizes the counts,
// which gives a crude bag-of-words similarity with no external model.
// It exists for offline operation and for tests that need reproducible
// vectors without network access; the remote client is the production
// path.
type HashClient struct {
	dimensions int
}

// NewHashClient creates a hash embedder with the given dimension.
func NewHashClient(dimensions int) *HashClient {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &HashClient{dimensions: dimensions}
}

// Embed hashes the text's tokens into a unit vector. Identical text
// always produces a bit-identical vector.
func (c *HashClient) Embed(_ context.Context, text string) ([]float32, error) {
	if isBlank(text) {
		return emptyTextVector(c.dimensions), nil
	}

	vec := make([]float32, c.dimensions)
	for _, token := range tokenize(text) {
		h := fnv.New32a()
		h.Write([]byte(token))
		vec[int(h.Sum32())%c.dimensions]++
	}

	vec = Normalize(vec)
	if !IsUnit(vec) {
		// Tokenizer found nothing hashable; treat as zero-information.
		return emptyTextVector(c.dimensions), nil
	}
	return vec, nil
}

// Dimensions returns the embedding dimension of this client.
func (c *HashClient) Dimensions() int {
	return c.dimensions
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
