// Package config loads runtime configuration from a .env file and
// MEMALPHA_* environment variables, environment winning.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/m-mizutani/goerr/v2"

	"github.com/memalpha/memalpha-go/memory"
	"github.com/memalpha/memalpha-go/memory/embedder/cache"
	"github.com/memalpha/memalpha-go/memory/embedder/local"
	"github.com/memalpha/memalpha-go/memory/embedder/openai"
)

// EnvPrefix is the prefix shared by all environment variables.
const EnvPrefix = "MEMALPHA_"

// Provider names accepted by ProviderLocal selection.
const (
	ProviderLocal  = "local"
	ProviderOpenAI = "openai"
)

type Config struct {
	DataPath  string
	Embedding EmbeddingConfig
	Log       LogConfig
}

type EmbeddingConfig struct {
	Provider  string
	CacheSize int64
	Local     LocalConfig
	OpenAI    OpenAIConfig
}

type LocalConfig struct {
	ModelPath     string
	TokenizerPath string
	LibraryPath   string
}

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type LogConfig struct {
	Level string
}

// ChromaPath is the directory holding the vector database.
func (c *Config) ChromaPath() string {
	return filepath.Join(c.DataPath, "chroma")
}

// ScratchpadPath is the directory holding scratchpad files.
func (c *Config) ScratchpadPath() string {
	return filepath.Join(c.DataPath, "scratchpads")
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Missing .env is fine.
	_ = k.Load(file.Provider(".env"), dotenv.ParserEnv(EnvPrefix, ".", envKey))

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, goerr.Wrap(err, "failed to load environment variables")
	}

	cfg := &Config{
		DataPath: k.String("data.path"),
		Embedding: EmbeddingConfig{
			Provider:  k.String("embedding.provider"),
			CacheSize: int64(k.Int("embedding.cache.size")),
			Local: LocalConfig{
				ModelPath:     k.String("local.model.path"),
				TokenizerPath: k.String("local.tokenizer.path"),
				LibraryPath:   k.String("local.library.path"),
			},
			OpenAI: OpenAIConfig{
				APIKey:  k.String("openai.api.key"),
				BaseURL: k.String("openai.base.url"),
				Model:   k.String("openai.model"),
			},
		},
		Log: LogConfig{
			Level: k.String("log.level"),
		},
	}

	if cfg.DataPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, goerr.Wrap(err, "failed to resolve home directory")
		}
		cfg.DataPath = filepath.Join(home, ".local", "share", "memalpha")
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = ProviderLocal
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	return cfg, nil
}

// NewProvider builds the embedding provider the configuration selects,
// wrapped in a read-through cache.
func (c *Config) NewProvider() (memory.Provider, error) {
	var inner memory.Provider
	switch c.Embedding.Provider {
	case ProviderLocal:
		inner = local.New(local.Config{
			ModelPath:     c.Embedding.Local.ModelPath,
			TokenizerPath: c.Embedding.Local.TokenizerPath,
			LibraryPath:   c.Embedding.Local.LibraryPath,
		})
	case ProviderOpenAI:
		p, err := openai.New(openai.Config{
			APIKey:  c.Embedding.OpenAI.APIKey,
			BaseURL: c.Embedding.OpenAI.BaseURL,
			Model:   c.Embedding.OpenAI.Model,
		})
		if err != nil {
			return nil, err
		}
		inner = p
	default:
		return nil, goerr.New("unknown embedding provider",
			goerr.T(memory.TagValidation),
			goerr.V("provider", c.Embedding.Provider),
			goerr.V("valid", []string{ProviderLocal, ProviderOpenAI}))
	}
	return cache.New(inner, c.Embedding.CacheSize)
}

// envKey maps MEMALPHA_OPENAI_API_KEY onto "openai.api.key".
func envKey(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(s, EnvPrefix), "_", "."))
}
