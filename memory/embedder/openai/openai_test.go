package openai_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/memalpha/memalpha-go/memory"
	"github.com/memalpha/memalpha-go/memory/embedder/openai"
)

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := openai.New(openai.Config{})
	gt.Error(t, err)
	gt.True(t, memory.IsValidation(err))
}

func TestDefaults(t *testing.T) {
	provider, err := openai.New(openai.Config{APIKey: "sk-test"})
	gt.NoError(t, err)
	gt.Equal(t, provider.Name(), "openai")
	gt.Equal(t, provider.Model(), openai.DefaultModel)
	gt.Equal(t, provider.Dimension(), 1536)
}

func TestModelDimensions(t *testing.T) {
	cases := map[string]int{
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
		"some-unknown-model":     1536,
	}
	for model, want := range cases {
		provider, err := openai.New(openai.Config{APIKey: "sk-test", Model: model})
		gt.NoError(t, err)
		gt.Equal(t, provider.Dimension(), want)
	}
}
