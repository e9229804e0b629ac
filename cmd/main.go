package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"

	"omnisearch/internal/actions"
)

func main() {
	app := &cli.App{
		Name:  "omni",
		Usage: "Omni Search is a terminal client for semantic song search with inline previews.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a YAML config file",
				EnvVars: []string{"OMNI_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "api-url",
				Usage: "base URL of the search service (default http://localhost:8000)",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "log requests and state changes to stderr",
			},
		},
		Action: func(c *cli.Context) error {
			if !isatty.IsTerminal(os.Stdout.Fd()) {
				return cli.ShowAppHelp(c)
			}
			return actions.Interactive(c)
		},
		Commands: []*cli.Command{
			{
				Name:   "tui",
				Usage:  "Search interactively with previews",
				Action: actions.Interactive,
			},
			{
				Name:      "search",
				Usage:     "Run one search and print the ranked results",
				ArgsUsage: "QUERY...",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "number of results (1-50)",
						Value:   10,
					},
					&cli.BoolFlag{
						Name:  "wait",
						Usage: "wait for the search service to come online",
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "overall deadline, including --wait",
						Value: 3 * time.Minute,
					},
					&cli.BoolFlag{
						Name:  "previews",
						Usage: "look up preview URLs for every result",
					},
					&cli.StringFlag{
						Name:  "csv",
						Usage: "also export the results to this CSV file",
					},
				},
				Action: actions.Search,
			},
			{
				Name:   "health",
				Usage:  "Check whether the search service is online",
				Action: actions.Health,
			},
			{
				Name:  "preview",
				Usage: "Play the preview of one song",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Required: true},
					&cli.StringFlag{Name: "artist", Aliases: []string{"a"}},
				},
				Action: actions.Preview,
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Println(err)
		stop()
		os.Exit(1)
	}
}
