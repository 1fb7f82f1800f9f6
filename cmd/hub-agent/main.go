package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"sellerhub-agent/cmd/hub-agent/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.Command{
		Name:  "hub-agent",
		Usage: "submit seller spreadsheets to the job engine and track them to completion",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to YAML config file",
				Value: "config.yaml",
			},
			&cli.BoolFlag{
				Name:  "dev",
				Usage: "development mode (console logs, no sampling)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the agent: accept uploads over HTTP and monitor jobs",
				Action: commands.ServeAction,
			},
			{
				Name:  "submit",
				Usage: "submit one spreadsheet and wait for the result",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Usage:    "path to the .xlsx/.xls file",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "type",
						Usage:    "job type: gtin-verification | price-stock-update | offer-publication | offer-deletion",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "user",
						Usage: "user name (defaults to the active session's)",
					},
					&cli.StringFlag{
						Name:  "seller",
						Usage: "seller id (defaults to the active session's)",
					},
				},
				Action: commands.SubmitAction,
			},
			{
				Name:  "session",
				Usage: "manage persisted auth sessions",
				Commands: []*cli.Command{
					{
						Name:  "set",
						Usage: "store a session token",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:     "token",
								Usage:    "bearer token",
								Required: true,
							},
							&cli.StringFlag{
								Name:  "user",
								Usage: "user name the token belongs to",
							},
							&cli.StringFlag{
								Name:  "seller",
								Usage: "seller id the token belongs to",
							},
							&cli.BoolFlag{
								Name:  "secondary",
								Usage: "store as the impersonated (secondary) session",
							},
						},
						Action: commands.SessionSetAction,
					},
					{
						Name:  "clear",
						Usage: "remove a stored session",
						Flags: []cli.Flag{
							&cli.BoolFlag{
								Name:  "secondary",
								Usage: "clear the impersonated (secondary) session",
							},
						},
						Action: commands.SessionClearAction,
					},
					{
						Name:   "show",
						Usage:  "print the stored sessions",
						Action: commands.SessionShowAction,
					},
				},
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
