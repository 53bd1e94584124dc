package embedding

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	vec := Normalize([]float32{3, 4})

	assert.InDelta(t, 0.6, vec[0], 1e-6)
	assert.InDelta(t, 0.8, vec[1], 1e-6)
	assert.True(t, IsUnit(vec))
}

func TestNormalize_ZeroVector(t *testing.T) {
	vec := Normalize([]float32{0, 0, 0})

	assert.Equal(t, []float32{0, 0, 0}, vec)
	assert.False(t, IsUnit(vec))
}

func TestIsUnit(t *testing.T) {
	assert.True(t, IsUnit([]float32{1, 0, 0}))
	assert.True(t, IsUnit([]float32{0.6, 0.8}))
	assert.False(t, IsUnit([]float32{1, 1}))
	assert.False(t, IsUnit([]float32{}))
	assert.False(t, IsUnit(nil))
}

func TestDot_UnitVectorsCosine(t *testing.T) {
	a := Normalize([]float32{1, 1, 0, 0})
	b := Normalize([]float32{1, 1, 0, 0})
	c := Normalize([]float32{0, 0, 1, 1})

	assert.InDelta(t, 1.0, Dot(a, b), 1e-6)
	assert.InDelta(t, 0.0, Dot(a, c), 1e-6)
}

func TestHashClient_Deterministic(t *testing.T) {
	client := NewHashClient(64)
	ctx := context.Background()

	first, err := client.Embed(ctx, "I paid my loan amount but it's not showing")
	require.NoError(t, err)
	second, err := client.Embed(ctx, "I paid my loan amount but it's not showing")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
	assert.True(t, IsUnit(first))
}

func TestHashClient_EmptyText(t *testing.T) {
	client := NewHashClient(8)
	ctx := context.Background()

	empty, err := client.Embed(ctx, "")
	require.NoError(t, err)
	whitespace, err := client.Embed(ctx, "   \t\n")
	require.NoError(t, err)

	// Blank input maps to the fixed basis vector, never a zero vector.
	assert.Equal(t, empty, whitespace)
	assert.InDelta(t, 1.0, float64(empty[0]), 1e-9)
	assert.True(t, IsUnit(empty))
}

func TestHashClient_DifferentTextDiffers(t *testing.T) {
	client := NewHashClient(128)
	ctx := context.Background()

	a, err := client.Embed(ctx, "loan payment not reflected")
	require.NoError(t, err)
	b, err := client.Embed(ctx, "card blocked after travel")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Less(t, Dot(a, b), 1.0-NormTolerance)
}

func TestHashClient_Dimensions(t *testing.T) {
	assert.Equal(t, 32, NewHashClient(32).Dimensions())
	assert.Equal(t, DefaultDimensions, NewHashClient(0).Dimensions())
}

func TestNorm(t *testing.T) {
	assert.InDelta(t, 5.0, Norm([]float32{3, 4}), 1e-9)
	assert.InDelta(t, 0.0, Norm(nil), 1e-9)
}

func TestEmptyTextVector_IsUnit(t *testing.T) {
	vec := emptyTextVector(16)

	assert.Len(t, vec, 16)
	assert.True(t, IsUnit(vec))
	assert.InDelta(t, 1.0, math.Abs(float64(vec[0])), 1e-9)
}
