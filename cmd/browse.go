package cmd

import (
	"io"

	"inkfeed/tui"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func browseCmd() *cli.Command {
	return &cli.Command{
		Name:  "browse",
		Usage: "Browse the feed in an interactive terminal UI",
		Description: `Opens the feed in a full screen terminal UI.

		Posts are fetched once when the UI starts. Press "t" to pick one of the
		recommended tags, "a" to show all posts again, "/" to search titles and
		"l" to reset and fetch the posts again. External posts open in the
		system browser, posts from internal sources open in a detail pane.

		Logs are written to the configured log file, or dropped when none is set.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "route",
				Aliases: []string{"r"},
				Value:   "#",
				Usage:   `Route to start on, e.g. "#/tag/go"`,
				EnvVars: []string{"INKFEED_ROUTE"},
			},
			&cli.StringFlag{
				Name:    "metrics-addr",
				Usage:   "Serve client metrics on this address while browsing, e.g. :9090",
				EnvVars: []string{"INKFEED_METRICS_ADDR"},
			},
		},
		Action: func(ctx *cli.Context) error {
			cfg := appConfig(ctx)

			// The UI owns the terminal
			if cfg.Log.File == "" {
				log.SetOutput(io.Discard)
			}

			if addr := ctx.String("metrics-addr"); addr != "" {
				app := metricsApp()
				defer app.Shutdown()
				go func() {
					if err := app.Listen(addr); err != nil {
						log.WithFields(log.Fields{
							"addr":  addr,
							"error": err,
						}).Error("Metrics server stopped")
					}
				}()
			}

			return tui.Run(tui.RunOpts{
				Controller: newController(cfg),
				Hash:       ctx.String("route"),
				Timeout:    cfg.TimeoutDuration(),
			})
		},
	}
}

// metricsApp exposes the process metrics for scraping
func metricsApp() *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	return app
}
