package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	convertcmd "github.com/BunLabs/MeasurementConverter/internal/convert"
	dbcmd "github.com/BunLabs/MeasurementConverter/internal/db"
	watchcmd "github.com/BunLabs/MeasurementConverter/internal/watch"
)

func main() {
	app := &cli.App{
		Name:  "measurement-converter",
		Usage: "rewrite imperial measurements in HTML as metric, keeping the original text in tooltips",
		Commands: []*cli.Command{
			{
				Name:   "convert",
				Usage:  "convert measurements in fetched URLs, a local file, or stdin",
				Action: convertcmd.ConvertAction,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "urls",
						Usage: "comma-separated list of URLs to fetch and convert",
					},
					&cli.StringFlag{
						Name:  "file",
						Usage: "local HTML file to convert (writes result to stdout)",
					},
					&cli.StringFlag{
						Name:  "config",
						Value: "config.yaml",
						Usage: "YAML config file with default urls/workers/output_dir",
					},
					&cli.StringFlag{
						Name:  "output-dir",
						Value: "converted",
						Usage: "directory for converted documents and the batch summary",
					},
					&cli.IntFlag{
						Name:  "workers",
						Value: 4,
						Usage: "number of concurrent fetch workers",
					},
					&cli.StringFlag{
						Name:  "max-age",
						Value: "24h",
						Usage: "reuse cached page HTML younger than this",
					},
					&cli.BoolFlag{
						Name:  "force-fetch",
						Usage: "ignore the page cache",
					},
					&cli.BoolFlag{
						Name:  "quiet",
						Usage: "log errors only",
					},
				},
			},
			{
				Name:   "watch",
				Usage:  "convert an initial document, then keep converting HTML fragments streamed on stdin",
				Action: watchcmd.WatchAction,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "file",
						Usage: "initial HTML document (defaults to an empty page)",
					},
					&cli.StringFlag{
						Name:  "selector",
						Value: "body",
						Usage: "element the streamed fragments are appended to",
					},
					&cli.BoolFlag{
						Name:  "quiet",
						Usage: "log errors only",
					},
				},
			},
			{
				Name:   "runs",
				Usage:  "list recorded conversion runs",
				Action: dbcmd.RunsAction,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Value: 20,
						Usage: "maximum number of runs to list",
					},
					&cli.StringFlag{
						Name:  "format",
						Value: "table",
						Usage: "output format: table or yaml",
					},
				},
			},
			{
				Name:      "run",
				Usage:     "show one run with its per-unit breakdown",
				ArgsUsage: "[run-id]",
				Action:    dbcmd.RunAction,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "format",
						Value: "table",
						Usage: "output format: table or yaml",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
