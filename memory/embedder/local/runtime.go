//go:build onnx

package local

import (
	"context"
	"math"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	ort "github.com/yalue/onnxruntime_go"
)

// maxSeqLen is the standard sequence length for MiniLM models.
const maxSeqLen = 128

// runtime holds the loaded ONNX session and tokenizer. It is created at
// most once per process and is read-only after construction apart from the
// session, which onnxruntime requires serialized access to.
type runtime struct {
	session   *ort.DynamicAdvancedSession
	tokenizer *wordPieceTokenizer
	dimension int
	mu        sync.Mutex
}

func newRuntime(cfg Config) (*runtime, error) {
	if cfg.ModelPath == "" {
		return nil, goerr.New("model path is required")
	}
	if cfg.TokenizerPath == "" {
		return nil, goerr.New("tokenizer path is required")
	}

	if cfg.LibraryPath != "" {
		ort.SetSharedLibraryPath(cfg.LibraryPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, goerr.Wrap(err, "failed to initialize onnxruntime")
	}

	tokenizer, err := loadTokenizer(cfg.TokenizerPath)
	if err != nil {
		return nil, err
	}

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"last_hidden_state"},
		nil,
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create onnx session",
			goerr.V("model", cfg.ModelPath))
	}

	return &runtime{
		session:   session,
		tokenizer: tokenizer,
		dimension: cfg.Dimension,
	}, nil
}

func (r *runtime) embed(ctx context.Context, text string) ([]float32, error) {
	tokens := r.tokenizer.tokenize(text)

	inputIDs := make([]int64, maxSeqLen)
	attentionMask := make([]int64, maxSeqLen)
	tokenTypeIDs := make([]int64, maxSeqLen)

	inputIDs[0] = tokenCLS
	attentionMask[0] = 1

	// Truncate to leave room for [CLS] and [SEP].
	if len(tokens) > maxSeqLen-2 {
		tokens = tokens[:maxSeqLen-2]
	}
	for i, id := range tokens {
		inputIDs[i+1] = id
		attentionMask[i+1] = 1
	}
	inputIDs[len(tokens)+1] = tokenSEP
	attentionMask[len(tokens)+1] = 1

	shape := ort.NewShape(1, int64(maxSeqLen))
	inputTensor, err := ort.NewTensor(shape, inputIDs)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create input_ids tensor")
	}
	defer inputTensor.Destroy()

	maskTensor, err := ort.NewTensor(shape, attentionMask)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create attention_mask tensor")
	}
	defer maskTensor.Destroy()

	typeTensor, err := ort.NewTensor(shape, tokenTypeIDs)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create token_type_ids tensor")
	}
	defer typeTensor.Destroy()

	outputs := []ort.Value{nil}
	r.mu.Lock()
	err = r.session.Run([]ort.Value{inputTensor, maskTensor, typeTensor}, outputs)
	r.mu.Unlock()
	if err != nil {
		return nil, goerr.Wrap(err, "onnx inference failed")
	}
	defer func() {
		for _, out := range outputs {
			if out != nil {
				out.Destroy()
			}
		}
	}()

	if len(outputs) == 0 || outputs[0] == nil {
		return nil, goerr.New("no output tensor returned")
	}
	outTensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, goerr.New("unexpected output tensor type")
	}

	return r.pool(outTensor, attentionMask)
}

// pool reduces the model output to a single normalized vector. The export
// may return either pooled [1, dim] output or raw hidden states
// [1, seq, dim] requiring attention-masked mean pooling.
func (r *runtime) pool(t *ort.Tensor[float32], attentionMask []int64) ([]float32, error) {
	data := t.GetData()
	shape := t.GetShape()

	embedding := make([]float32, r.dimension)
	switch len(shape) {
	case 2:
		if len(data) < r.dimension {
			return nil, goerr.New("output dimension mismatch",
				goerr.V("got", len(data)), goerr.V("want", r.dimension))
		}
		copy(embedding, data[:r.dimension])
	case 3:
		seqLen := int(shape[1])
		hidden := int(shape[2])
		if hidden != r.dimension {
			return nil, goerr.New("hidden size mismatch",
				goerr.V("got", hidden), goerr.V("want", r.dimension))
		}
		var attended float32
		for i := 0; i < seqLen; i++ {
			if attentionMask[i] == 0 {
				continue
			}
			attended++
			offset := i * hidden
			for j := 0; j < hidden; j++ {
				embedding[j] += data[offset+j]
			}
		}
		if attended == 0 {
			return nil, goerr.New("no attended tokens in sequence")
		}
		for j := range embedding {
			embedding[j] /= attended
		}
	default:
		return nil, goerr.New("unexpected output shape", goerr.V("shape", shape))
	}

	return normalize(embedding), nil
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
