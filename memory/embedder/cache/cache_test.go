package cache_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/memalpha/memalpha-go/memory"
	"github.com/memalpha/memalpha-go/memory/embedder/cache"
	"github.com/memalpha/memalpha-go/memory/embedder/mock"
)

// counting wraps a provider and counts Embed calls.
type counting struct {
	memory.Provider
	calls int
}

func (c *counting) Embed(ctx context.Context, text string) ([]float32, error) {
	c.calls++
	return c.Provider.Embed(ctx, text)
}

func TestCacheHit(t *testing.T) {
	ctx := context.Background()
	inner := &counting{Provider: mock.New()}
	provider, err := cache.New(inner, 128)
	gt.NoError(t, err)

	first, err := provider.Embed(ctx, "cache this text")
	gt.NoError(t, err)
	gt.Equal(t, inner.calls, 1)
	provider.Wait()

	second, err := provider.Embed(ctx, "cache this text")
	gt.NoError(t, err)
	gt.Equal(t, inner.calls, 1)
	gt.Equal(t, first, second)

	_, err = provider.Embed(ctx, "a different text")
	gt.NoError(t, err)
	gt.Equal(t, inner.calls, 2)
}

func TestCachedVectorIsIsolated(t *testing.T) {
	ctx := context.Background()
	provider, err := cache.New(mock.New(), 0)
	gt.NoError(t, err)

	first, err := provider.Embed(ctx, "mutation check")
	gt.NoError(t, err)
	provider.Wait()
	first[0] = 42

	second, err := provider.Embed(ctx, "mutation check")
	gt.NoError(t, err)
	gt.True(t, second[0] != 42)
}

func TestIdentityPassthrough(t *testing.T) {
	provider, err := cache.New(mock.New(), 0)
	gt.NoError(t, err)
	gt.Equal(t, provider.Name(), "mock")
	gt.Equal(t, provider.Model(), "bag-of-words")
	gt.Equal(t, provider.Dimension(), mock.DefaultDimension)
}
