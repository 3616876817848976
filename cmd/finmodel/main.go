// finmodel builds a revenue projection from a natural-language query without
// running the HTTP server.
//
// Usage:
//
//	finmodel project --query "18 month forecast with 3 salespeople" [--chart] [--out model.xlsx]
//	finmodel drivers
//	finmodel providers
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"strategic_finance/pkg/app"
	"strategic_finance/pkg/core/config"
	"strategic_finance/pkg/core/export"
	"strategic_finance/pkg/core/logger"
)

var version = "dev"

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:      "finmodel",
		Usage:     "Two-segment SaaS revenue projections from plain-English queries",
		Version:   version,
		Writer:    out,
		ErrWriter: os.Stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config.yaml",
				EnvVars: []string{"FINANCE_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "provider",
				Usage: "LLM provider to use for this run (openai, gemini, offline)",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Log at debug level to stderr",
			},
		},
		Commands: []*cli.Command{
			projectCommand(),
			driversCommand(),
			providersCommand(),
		},
	}
}

func projectCommand() *cli.Command {
	return &cli.Command{
		Name:  "project",
		Usage: "Resolve assumptions for a query and print the projection",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "query",
				Aliases:  []string{"q"},
				Usage:    "Planning question, e.g. \"12 month forecast with 2 salespeople\"",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "chart",
				Usage: "Plot total monthly revenue",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the raw response as JSON instead of the summary",
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Write the model as an .xlsx workbook",
			},
			&cli.StringFlag{
				Name:  "report",
				Usage: "Write the model as an HTML report",
			},
		},
		Action: runProject,
	}
}

func driversCommand() *cli.Command {
	return &cli.Command{
		Name:  "drivers",
		Usage: "List the revenue drivers from the knowledge base",
		Action: func(c *cli.Context) error {
			return withApp(c, func(a *app.App) error {
				fmt.Fprint(c.App.Writer, renderDrivers(a.Service.AvailableRevenueDrivers()))
				return nil
			})
		},
	}
}

func providersCommand() *cli.Command {
	return &cli.Command{
		Name:  "providers",
		Usage: "Show the configured LLM providers",
		Action: func(c *cli.Context) error {
			return withApp(c, func(a *app.App) error {
				fmt.Fprint(c.App.Writer, renderProviders(a.Agents.GetActiveProvider(), a.Agents.Available()))
				return nil
			})
		},
	}
}

func runProject(c *cli.Context) error {
	return withApp(c, func(a *app.App) error {
		ctx := c.Context
		resp, err := a.Service.ProcessQuery(ctx, c.String("query"))
		if err != nil {
			return err
		}

		if c.Bool("json") {
			enc := json.NewEncoder(c.App.Writer)
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		}

		fmt.Fprint(c.App.Writer, renderSummary(resp))
		if c.Bool("chart") {
			fmt.Fprintln(c.App.Writer, renderChart(resp.MonthlyProjections))
		}

		if path := c.String("out"); path != "" || c.String("report") != "" {
			model, err := a.Service.GetModel(ctx, resp.ModelID)
			if err != nil {
				return err
			}
			if path != "" {
				data, err := export.Workbook(model)
				if err != nil {
					return err
				}
				if err := os.WriteFile(path, data, 0o644); err != nil {
					return fmt.Errorf("write workbook: %w", err)
				}
				fmt.Fprintln(c.App.Writer, noteStyle.Render("workbook written to "+path))
			}
			if path := c.String("report"); path != "" {
				html, err := export.Report(model)
				if err != nil {
					return err
				}
				if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
					return fmt.Errorf("write report: %w", err)
				}
				fmt.Fprintln(c.App.Writer, noteStyle.Render("report written to "+path))
			}
		}
		return nil
	})
}

// withApp builds an in-process service graph for one command.
func withApp(c *cli.Context, fn func(a *app.App) error) error {
	settings, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	level := "warn"
	if c.Bool("verbose") {
		level = "debug"
	}
	log := logger.NewZapAdapter(logger.New(level, "console"))
	defer log.Sync()

	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := app.Build(ctx, settings, log, app.Options{
		ForceMemoryCache: true,
		DisableArchive:   true,
		DisableWatch:     true,
	})
	if err != nil {
		return err
	}
	defer a.Close()

	if p := c.String("provider"); p != "" {
		if err := a.Agents.SetGlobalProvider(p); err != nil {
			return err
		}
	}
	return fn(a)
}
