package embedding

import (
	"context"
	"math"
	"strings"
)

// Client defines the interface for converting text into fixed-dimension
// unit-normalized vectors. Implementations must be deterministic: the
// same text embeds to the same vector, which makes ingestion idempotent
// and search reproducible.
type Client interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// NormTolerance is the permitted deviation from unit length when
// checking embeddings before a similarity computation.
const NormTolerance = 1e-6

// Normalize scales the vector to unit L2 length in place and returns
// it. A zero vector is returned unchanged; callers treat that as an
// invalid embedding.
func Normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vec
	}
	norm := math.Sqrt(sum)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec
}

// Norm returns the L2 norm of the vector.
func Norm(vec []float32) float64 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}

// IsUnit reports whether the vector is unit length within NormTolerance.
// Cosine similarity via dot product is only valid on unit vectors, so
// both index and resolver check this before searching.
func IsUnit(vec []float32) bool {
	if len(vec) == 0 {
		return false
	}
	return math.Abs(Norm(vec)-1.0) <= NormTolerance
}

// Dot returns the dot product of two equal-length vectors. On unit
// vectors this equals cosine similarity.
func Dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// emptyTextVector is the deterministic zero-information representation
// used for empty or whitespace-only input: the first standard basis
// vector. It is unit length, so downstream similarity math stays valid,
// and it carries no semantic signal of its own.
func emptyTextVector(dims int) []float32 {
	vec := make([]float32, dims)
	vec[0] = 1
	return vec
}

func isBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}
