// Package local provides the local embedding provider backed by an ONNX
// sentence-embedding model (all-MiniLM-L6-v2 by default).
//
// The ONNX runtime binding requires the onnxruntime shared library, so the
// real inference path is behind the "onnx" build tag; without it, the first
// Embed call returns a provider error. Name, Model, and Dimension work in
// either build.
package local

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/memalpha/memalpha-go/memory"
)

// DefaultDimension is the embedding size of all-MiniLM-L6-v2.
const DefaultDimension = 384

// Config configures the local provider. All paths are read once, on first
// embedding, not at construction.
type Config struct {
	// ModelPath is the path to the ONNX model file.
	ModelPath string

	// TokenizerPath is the path to the HuggingFace tokenizer.json.
	TokenizerPath string

	// LibraryPath is the path to the onnxruntime shared library.
	LibraryPath string

	// ModelName identifies the model in record and collection metadata.
	// Defaults to "all-MiniLM-L6-v2".
	ModelName string

	// Dimension is the embedding vector size. Defaults to 384.
	Dimension int
}

// Provider is the local embedding provider. The underlying model is loaded
// lazily on first use and shared process-wide: concurrent first callers are
// serialized by a sync.Once, and the loaded session is read-only afterward.
// The first provider to load fixes the model for the process.
type Provider struct {
	cfg Config
}

var (
	sharedOnce sync.Once
	shared     *runtime
	sharedErr  error
)

// New creates a local provider. No model loading happens here.
func New(cfg Config) *Provider {
	if cfg.ModelName == "" {
		cfg.ModelName = "all-MiniLM-L6-v2"
	}
	if cfg.Dimension == 0 {
		cfg.Dimension = DefaultDimension
	}
	return &Provider{cfg: cfg}
}

func (p *Provider) Name() string   { return "local" }
func (p *Provider) Model() string  { return p.cfg.ModelName }
func (p *Provider) Dimension() int { return p.cfg.Dimension }

// Embed converts text to an embedding vector, loading the model on first use.
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	sharedOnce.Do(func() {
		shared, sharedErr = newRuntime(p.cfg)
	})
	if sharedErr != nil {
		return nil, goerr.Wrap(sharedErr, "failed to load local embedding model",
			goerr.T(memory.TagProvider), goerr.V("model", p.cfg.ModelName))
	}
	vec, err := shared.embed(ctx, text)
	if err != nil {
		return nil, goerr.Wrap(err, "local embedding failed",
			goerr.T(memory.TagProvider), goerr.V("model", p.cfg.ModelName))
	}
	return vec, nil
}
