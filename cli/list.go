package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/memalpha/memalpha-go/memory"
)

func listCommand() *cli.Command {
	var (
		o         overrides
		projectID string
		agentID   string
		limit     int64
		offset    int64
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
		&cli.IntFlag{
			Name:        "limit",
			Aliases:     []string{"l"},
			Usage:       "Maximum number of results",
			Value:       memory.DefaultListLimit,
			Destination: &limit,
		},
		&cli.IntFlag{
			Name:        "offset",
			Usage:       "Pagination offset",
			Destination: &offset,
		},
	}
	flags = append(flags, globalFlags(&o)...)

	return &cli.Command{
		Name:  "list",
		Usage: "List memories in creation order",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, memories, _, err := setup(ctx, &o)
			if err != nil {
				return err
			}

			scope := memory.Scope{ProjectID: projectID, AgentID: agentID}
			summaries, total, err := memories.List(ctx, scope, int(limit), int(offset))
			if err != nil {
				return err
			}

			if total == 0 {
				fmt.Println("No memories found.")
				return nil
			}
			fmt.Printf("Showing %d of %d memories:\n", len(summaries), total)
			for _, sum := range summaries {
				fmt.Printf("- %s (created %s)\n", sum.ID, sum.CreatedAt.Format(time.RFC3339))
			}
			return nil
		},
	}
}
