//go:build !onnx

package local

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
)

// runtime is a stub for builds without the onnx tag. newRuntime always
// fails, so embed is never reached.
type runtime struct{}

func newRuntime(cfg Config) (*runtime, error) {
	return nil, goerr.New("local embeddings require a binary built with -tags onnx")
}

func (r *runtime) embed(ctx context.Context, text string) ([]float32, error) {
	return nil, goerr.New("local embeddings require a binary built with -tags onnx")
}
