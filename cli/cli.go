// Package cli implements the memalpha command line interface.
package cli

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/memalpha/memalpha-go/config"
	"github.com/memalpha/memalpha-go/logging"
	"github.com/memalpha/memalpha-go/memory"
	"github.com/memalpha/memalpha-go/memory/store/chromem"
	"github.com/memalpha/memalpha-go/scratchpad"
)

// Run executes the CLI and returns the process exit code.
func Run(ctx context.Context, argv []string) int {
	cmd := &cli.Command{
		Name:  "memalpha",
		Usage: "Agent memory with semantic search",
		Commands: []*cli.Command{
			serveCommand(),
			storeCommand(),
			searchCommand(),
			listCommand(),
		},
	}

	if err := cmd.Run(ctx, argv); err != nil {
		logging.Default().Error("command failed", "error", err)
		return 1
	}
	return 0
}

// overrides holds flag values that take precedence over .env and
// environment configuration when set.
type overrides struct {
	dataPath string
	provider string
	logLevel string
}

func globalFlags(o *overrides) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "data-path",
			Usage:       "Base directory for persisted data",
			Sources:     cli.EnvVars("MEMALPHA_DATA_PATH"),
			Destination: &o.dataPath,
		},
		&cli.StringFlag{
			Name:        "provider",
			Usage:       "Embedding provider (local or openai)",
			Sources:     cli.EnvVars("MEMALPHA_EMBEDDING_PROVIDER"),
			Destination: &o.provider,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Sources:     cli.EnvVars("MEMALPHA_LOG_LEVEL"),
			Destination: &o.logLevel,
		},
	}
}

// setup loads configuration, applies flag overrides, configures logging,
// and opens the stores.
func setup(ctx context.Context, o *overrides) (context.Context, *memory.Store, *scratchpad.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return ctx, nil, nil, err
	}
	if o.dataPath != "" {
		cfg.DataPath = o.dataPath
	}
	if o.provider != "" {
		cfg.Embedding.Provider = o.provider
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}

	logger := logging.New(cfg.Log.Level, os.Stderr)
	logging.SetDefault(logger)
	ctx = logging.With(ctx, logger)

	provider, err := cfg.NewProvider()
	if err != nil {
		return ctx, nil, nil, err
	}

	backend, err := chromem.NewPersistent(cfg.ChromaPath())
	if err != nil {
		return ctx, nil, nil, err
	}

	pads, err := scratchpad.New(cfg.ScratchpadPath())
	if err != nil {
		return ctx, nil, nil, err
	}

	logger.Debug("stores initialized",
		"data_path", cfg.DataPath,
		"provider", provider.Name(),
		"model", provider.Model())

	return ctx, memory.NewStore(backend, provider), pads, nil
}
