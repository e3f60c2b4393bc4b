package local

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// BERT special token IDs used by all-MiniLM-L6-v2.
const (
	tokenUNK = 100
	tokenCLS = 101
	tokenSEP = 102
)

// wordPieceTokenizer implements BERT-style WordPiece tokenization from a
// HuggingFace tokenizer.json vocabulary.
type wordPieceTokenizer struct {
	vocab map[string]int
}

func loadTokenizer(path string) (*wordPieceTokenizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read tokenizer file", goerr.V("path", path))
	}

	var parsed struct {
		Model struct {
			Vocab map[string]int `json:"vocab"`
		} `json:"model"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, goerr.Wrap(err, "failed to parse tokenizer file", goerr.V("path", path))
	}
	if len(parsed.Model.Vocab) == 0 {
		return nil, goerr.New("tokenizer vocabulary is empty", goerr.V("path", path))
	}

	return &wordPieceTokenizer{vocab: parsed.Model.Vocab}, nil
}

func newTokenizer(vocab map[string]int) *wordPieceTokenizer {
	return &wordPieceTokenizer{vocab: vocab}
}

// tokenize converts text to token IDs. The model is uncased, so input is
// lowercased first.
func (t *wordPieceTokenizer) tokenize(text string) []int64 {
	var ids []int64
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?;:\"'()")
		if word == "" {
			continue
		}
		if id, ok := t.vocab[word]; ok {
			ids = append(ids, int64(id))
			continue
		}
		for _, piece := range t.split(word) {
			if id, ok := t.vocab[piece]; ok {
				ids = append(ids, int64(id))
			} else {
				ids = append(ids, tokenUNK)
			}
		}
	}
	return ids
}

// split performs greedy longest-prefix WordPiece splitting, marking
// continuations with the "##" prefix.
func (t *wordPieceTokenizer) split(word string) []string {
	var pieces []string
	start := 0
	for start < len(word) {
		end := len(word)
		found := false
		for end > start {
			piece := word[start:end]
			if start > 0 {
				piece = "##" + piece
			}
			if _, ok := t.vocab[piece]; ok {
				pieces = append(pieces, piece)
				start = end
				found = true
				break
			}
			end--
		}
		if !found {
			pieces = append(pieces, "[UNK]")
			start++
		}
	}
	return pieces
}
