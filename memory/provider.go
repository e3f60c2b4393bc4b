package memory

import "context"

// Provider converts text to fixed-dimension embedding vectors.
// Implementations: local ONNX model, OpenAI API, mock (testing), and a
// ristretto-cached wrapper around any of them.
//
// Construction is expected to be lazy: the underlying model or client is
// initialized on first Embed, not when the provider object is created.
// Name, Model, and Dimension must answer without loading anything.
type Provider interface {
	// Name is the provider tag used in collection keys (e.g. "local", "openai").
	Name() string

	// Model is the concrete embedding model identifier.
	Model() string

	// Dimension is the fixed size of vectors this provider produces.
	Dimension() int

	// Embed converts a single text to its embedding vector.
	Embed(ctx context.Context, text string) ([]float32, error)
}
