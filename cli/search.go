package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/memalpha/memalpha-go/memory"
)

func searchCommand() *cli.Command {
	var (
		o          overrides
		projectID  string
		agentID    string
		limit      int64
		filterJSON string
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
			Value:       memory.DefaultSearchLimit,
			Destination: &limit,
		},
		&cli.StringFlag{
			Name:        "filter",
			Aliases:     []string{"f"},
			Usage:       "Metadata filter as a JSON array of {field, operator, value} clauses",
			Destination: &filterJSON,
		},
	}
	flags = append(flags, globalFlags(&o)...)

	return &cli.Command{
		Name:      "search",
		Usage:     "Search memories by semantic similarity",
		ArgsUsage: "<query>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return goerr.New("exactly one query argument is required")
			}

			filter, err := memory.ParseFilter([]byte(filterJSON))
			if err != nil {
				return err
			}

			ctx, memories, _, err := setup(ctx, &o)
			if err != nil {
				return err
			}

			scope := memory.Scope{ProjectID: projectID, AgentID: agentID}
			results, err := memories.Search(ctx, scope, c.Args().First(), int(limit), filter)
			if err != nil {
				return err
			}

			if len(results) == 0 {
				fmt.Println("No memories found.")
				return nil
			}
			for i, result := range results {
				fmt.Printf("%d. [%.3f] %s\n   %s\n", i+1, result.Score, result.Record.ID, result.Record.Content)
			}
			return nil
		},
	}
}
