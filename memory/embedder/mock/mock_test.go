package mock_test

import (
	"context"
	"math"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/memalpha/memalpha-go/memory/embedder/mock"
)

func cosine(a, b []float32) float64 {
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}

func TestDeterministic(t *testing.T) {
	ctx := context.Background()
	provider := mock.New()

	a, err := provider.Embed(ctx, "the quick brown fox")
	gt.NoError(t, err)
	b, err := provider.Embed(ctx, "the quick brown fox")
	gt.NoError(t, err)
	gt.Equal(t, a, b)
	gt.A(t, a).Length(mock.DefaultDimension)
}

func TestNormalized(t *testing.T) {
	ctx := context.Background()
	provider := mock.New()

	vec, err := provider.Embed(ctx, "some arbitrary text")
	gt.NoError(t, err)

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	gt.True(t, math.Abs(math.Sqrt(norm)-1) < 1e-3)
}

func TestTokenOverlapSimilarity(t *testing.T) {
	ctx := context.Background()
	provider := mock.New()

	base, err := provider.Embed(ctx, "deployment pipeline configuration")
	gt.NoError(t, err)
	near, err := provider.Embed(ctx, "deployment pipeline troubleshooting")
	gt.NoError(t, err)
	far, err := provider.Embed(ctx, "grocery shopping reminder")
	gt.NoError(t, err)

	gt.True(t, cosine(base, near) > cosine(base, far))
}

func TestCustomDimension(t *testing.T) {
	ctx := context.Background()
	provider := mock.NewWithDimension(16)
	gt.Equal(t, provider.Dimension(), 16)

	vec, err := provider.Embed(ctx, "short vectors")
	gt.NoError(t, err)
	gt.A(t, vec).Length(16)
}

func TestIdentity(t *testing.T) {
	provider := mock.New()
	gt.Equal(t, provider.Name(), "mock")
	gt.Equal(t, provider.Model(), "bag-of-words")
}
