// Package mock provides a deterministic embedding provider for tests.
// No model files or network access required.
package mock

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

// DefaultDimension matches all-MiniLM-L6-v2 so mock vectors are
// interchangeable with the local provider's in tests.
const DefaultDimension = 384

// Provider generates bag-of-words embeddings: each token hashes to a fixed
// pseudo-random unit direction and the text embeds as the normalized sum.
// Texts sharing tokens therefore score high cosine similarity, which is
// enough structure for ranking tests.
type Provider struct {
	dimension int
}

// New creates a mock provider with the default dimension.
func New() *Provider {
	return &Provider{dimension: DefaultDimension}
}

// NewWithDimension creates a mock provider producing vectors of the given size.
func NewWithDimension(dim int) *Provider {
	return &Provider{dimension: dim}
}

func (p *Provider) Name() string   { return "mock" }
func (p *Provider) Model() string  { return "bag-of-words" }
func (p *Provider) Dimension() int { return p.dimension }

// Embed returns a deterministic normalized embedding of the text.
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	embedding := make([]float32, p.dimension)
	for _, token := range tokenize(text) {
		seed := hashToken(token)
		for i := 0; i < p.dimension; i++ {
			// LCG stream seeded by the token hash.
			seed = seed*6364136223846793005 + 1442695040888963407
			embedding[i] += float32(int64(seed)) / float32(math.MaxInt64)
		}
	}
	return normalize(embedding), nil
}

func tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

func hashToken(token string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(token))
	return h.Sum64()
}

// normalize converts the embedding to a unit vector.
func normalize(vec []float32) []float32 {
	var norm float32
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return vec
	}
	norm = float32(math.Sqrt(float64(norm)))
	for i, v := range vec {
		vec[i] = v / norm
	}
	return vec
}
