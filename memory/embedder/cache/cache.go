// Package cache wraps an embedding provider with a ristretto read-through
// cache. Embedding the same text twice is common (repeated queries,
// metadata-only updates re-running through callers), and both the local
// model and the remote API are orders of magnitude slower than a cache hit.
package cache

import (
	"context"

	"github.com/dgraph-io/ristretto"
	"github.com/m-mizutani/goerr/v2"

	"github.com/memalpha/memalpha-go/memory"
)

// DefaultMaxEntries bounds the number of cached embeddings.
const DefaultMaxEntries = 4096

// Provider is a caching decorator around another embedding provider.
// Identity (name, model, dimension) passes through unchanged, so cached
// and uncached providers address the same collections.
type Provider struct {
	inner memory.Provider
	cache *ristretto.Cache
}

// New wraps inner with a cache of at most maxEntries embeddings.
// maxEntries <= 0 selects DefaultMaxEntries.
func New(inner memory.Provider, maxEntries int64) (*Provider, error) {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create embedding cache")
	}
	return &Provider{inner: inner, cache: cache}, nil
}

func (p *Provider) Name() string   { return p.inner.Name() }
func (p *Provider) Model() string  { return p.inner.Model() }
func (p *Provider) Dimension() int { return p.inner.Dimension() }

// Embed returns a cached vector when available, otherwise delegates to the
// wrapped provider. Errors are never cached.
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	key := p.inner.Model() + "\x00" + text
	if cached, ok := p.cache.Get(key); ok {
		if vec, ok := cached.([]float32); ok {
			return clone(vec), nil
		}
	}

	vec, err := p.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	p.cache.Set(key, clone(vec), 1)
	return vec, nil
}

// Wait flushes pending cache writes. Tests use this to observe hits
// deterministically.
func (p *Provider) Wait() {
	p.cache.Wait()
}

func clone(vec []float32) []float32 {
	out := make([]float32, len(vec))
	copy(out, vec)
	return out
}
