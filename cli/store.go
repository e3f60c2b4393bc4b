package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/memalpha/memalpha-go/memory"
)

func storeCommand() *cli.Command {
	var (
		o            overrides
		projectID    string
		agentID      string
		metadataJSON string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "project",
			Aliases:     []string{"p"},
			Usage:       "Project identifier",
			Required:    true,
			Destination: &projectID,
		},
		&cli.StringFlag{
			Name:        "agent",
			Aliases:     []string{"a"},
			Usage:       "Agent identifier",
			Required:    true,
			Destination: &agentID,
		},
		&cli.StringFlag{
			Name:        "metadata",
			Aliases:     []string{"m"},
			Usage:       "Custom metadata as a JSON object",
			Destination: &metadataJSON,
		},
	}
	flags = append(flags, globalFlags(&o)...)

	return &cli.Command{
		Name:      "store",
		Usage:     "Store a memory",
		ArgsUsage: "<content>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return goerr.New("exactly one content argument is required")
			}

			var md memory.Metadata
			if metadataJSON != "" {
				var err error
				md, err = memory.MetadataFromJSON([]byte(metadataJSON))
				if err != nil {
					return err
				}
			}

			ctx, memories, _, err := setup(ctx, &o)
			if err != nil {
				return err
			}

			scope := memory.Scope{ProjectID: projectID, AgentID: agentID}
			rec, err := memories.Store(ctx, scope, c.Args().First(), md)
			if err != nil {
				return err
			}

			fmt.Printf("Stored memory %s\n", rec.ID)
			return nil
		},
	}
}
