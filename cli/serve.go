package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/memalpha/memalpha-go/server"
)

func serveCommand() *cli.Command {
	var o overrides

	return &cli.Command{
		Name:  "serve",
		Usage: "Run the MCP server on stdio",
		Flags: globalFlags(&o),
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, memories, pads, err := setup(ctx, &o)
			if err != nil {
				return err
			}
			return server.New(memories, pads).Run(ctx)
		},
	}
}
