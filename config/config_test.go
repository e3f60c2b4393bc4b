package config_test

import (
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/memalpha/memalpha-go/config"
	"github.com/memalpha/memalpha-go/memory"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	gt.NoError(t, err)
	gt.Equal(t, cfg.Embedding.Provider, config.ProviderLocal)
	gt.Equal(t, cfg.Log.Level, "info")
	gt.S(t, cfg.DataPath).NotEqual("")
	gt.Equal(t, cfg.ChromaPath(), filepath.Join(cfg.DataPath, "chroma"))
	gt.Equal(t, cfg.ScratchpadPath(), filepath.Join(cfg.DataPath, "scratchpads"))
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("MEMALPHA_DATA_PATH", "/tmp/memalpha-test")
	t.Setenv("MEMALPHA_EMBEDDING_PROVIDER", "openai")
	t.Setenv("MEMALPHA_OPENAI_API_KEY", "sk-test")
	t.Setenv("MEMALPHA_OPENAI_BASE_URL", "https://example.com/v1")
	t.Setenv("MEMALPHA_OPENAI_MODEL", "text-embedding-3-large")
	t.Setenv("MEMALPHA_LOG_LEVEL", "debug")

	cfg, err := config.Load()
	gt.NoError(t, err)
	gt.Equal(t, cfg.DataPath, "/tmp/memalpha-test")
	gt.Equal(t, cfg.Embedding.Provider, "openai")
	gt.Equal(t, cfg.Embedding.OpenAI.APIKey, "sk-test")
	gt.Equal(t, cfg.Embedding.OpenAI.BaseURL, "https://example.com/v1")
	gt.Equal(t, cfg.Embedding.OpenAI.Model, "text-embedding-3-large")
	gt.Equal(t, cfg.Log.Level, "debug")
}

func TestNewProviderOpenAI(t *testing.T) {
	cfg := &config.Config{
		Embedding: config.EmbeddingConfig{
			Provider: config.ProviderOpenAI,
			OpenAI:   config.OpenAIConfig{APIKey: "sk-test", Model: "text-embedding-3-large"},
		},
	}
	provider, err := cfg.NewProvider()
	gt.NoError(t, err)
	gt.Equal(t, provider.Name(), "openai")
	gt.Equal(t, provider.Model(), "text-embedding-3-large")
	gt.Equal(t, provider.Dimension(), 3072)
}

func TestNewProviderOpenAIWithoutKey(t *testing.T) {
	cfg := &config.Config{
		Embedding: config.EmbeddingConfig{Provider: config.ProviderOpenAI},
	}
	_, err := cfg.NewProvider()
	gt.Error(t, err)
	gt.True(t, memory.IsValidation(err))
}

func TestNewProviderUnknown(t *testing.T) {
	cfg := &config.Config{
		Embedding: config.EmbeddingConfig{Provider: "cohere"},
	}
	_, err := cfg.NewProvider()
	gt.Error(t, err)
	gt.True(t, memory.IsValidation(err))
}

func TestNewProviderLocal(t *testing.T) {
	cfg := &config.Config{
		Embedding: config.EmbeddingConfig{Provider: config.ProviderLocal},
	}
	provider, err := cfg.NewProvider()
	gt.NoError(t, err)
	gt.Equal(t, provider.Name(), "local")
	gt.Equal(t, provider.Model(), "all-MiniLM-L6-v2")
	gt.Equal(t, provider.Dimension(), 384)
}
