// Package openai provides the remote embedding provider backed by the
// OpenAI embeddings API (or any compatible endpoint via base URL override).
package openai

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/memalpha/memalpha-go/memory"
)

const (
	// DefaultBaseURL is the standard OpenAI API endpoint.
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultModel is used when no model is configured.
	DefaultModel = "text-embedding-3-small"

	defaultDimension = 1536
)

// modelDimensions maps known embedding models to their vector sizes.
// Unknown models fall back to 1536.
var modelDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// Config configures the remote provider. Values are read once at
// construction and not revalidated per call.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Provider calls the OpenAI embeddings API. The HTTP client is built
// lazily on first use. Transport failures surface as provider errors with
// no retry beyond what the client does by default.
type Provider struct {
	cfg Config

	once   sync.Once
	client openai.Client
}

// New creates a remote provider. A missing API key is rejected here, before
// any network traffic.
func New(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, goerr.New("OpenAI API key is required",
			goerr.T(memory.TagValidation))
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	return &Provider{cfg: cfg}, nil
}

func (p *Provider) Name() string  { return "openai" }
func (p *Provider) Model() string { return p.cfg.Model }

// Dimension returns the vector size for the configured model without
// calling the API.
func (p *Provider) Dimension() int {
	if dim, ok := modelDimensions[p.cfg.Model]; ok {
		return dim
	}
	return defaultDimension
}

// Embed requests an embedding for a single text.
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	p.once.Do(func() {
		p.client = openai.NewClient(
			option.WithAPIKey(p.cfg.APIKey),
			option.WithBaseURL(p.cfg.BaseURL),
		)
	})

	resp, err := p.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(p.cfg.Model),
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: []string{text}},
	})
	if err != nil {
		return nil, goerr.Wrap(err, "OpenAI embedding request failed",
			goerr.T(memory.TagProvider), goerr.V("model", p.cfg.Model))
	}
	if len(resp.Data) == 0 {
		return nil, goerr.New("OpenAI embedding response is empty",
			goerr.T(memory.TagProvider), goerr.V("model", p.cfg.Model))
	}

	raw := resp.Data[0].Embedding
	vec := make([]float32, len(raw))
	for i, v := range raw {
		vec[i] = float32(v)
	}
	return vec, nil
}
