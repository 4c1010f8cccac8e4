package cmd

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"inkfeed/config"
	"inkfeed/content"
	"inkfeed/feeds"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

const configKey = "config"

func RootApp() *cli.App {
	return &cli.App{
		Name:  "inkfeed",
		Usage: "A small blog aggregator for the terminal",
		Description: `Reads posts from a content API and shows them as a feed of cards
		with tag recommendations, tag routes and title search.

		inkfeed fetches the post collection once per session. Tags are ranked
		by how often they are used and the seven most common are recommended.
		Routes use the fragment syntax of the web front end, e.g. "#/tag/go".

		The stub commands run a local content API backed by SQLite so the feed
		can be used without the hosted backend.

		Flags can generally be set via environment variables, e.g.:

		--config => INKFEED_CONFIG=~/.config/inkfeed/config.toml
		--api-url => INKFEED_API_URL=http://localhost:5000/api
		`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the TOML configuration file",
				EnvVars: []string{"INKFEED_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "api-url",
				Usage:   "Base URL of the content API, overrides api.base_url",
				EnvVars: []string{"INKFEED_API_URL"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level: debug, info, warn or error",
				EnvVars: []string{"INKFEED_LOG_LEVEL"},
			},
		},
		Before: func(ctx *cli.Context) error {
			cfg, err := config.Load(ctx.String("config"))
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if url := ctx.String("api-url"); url != "" {
				cfg.API.BaseURL = url
			}
			if level := ctx.String("log-level"); level != "" {
				cfg.Log.Level = level
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}
			ctx.App.Metadata[configKey] = cfg
			return setupLogging(cfg.Log, os.Stderr)
		},
		Metadata: map[string]interface{}{},
		Commands: []*cli.Command{
			browseCmd(),
			feedCmd(),
			tagsCmd(),
			postCmd(),
			configCmd(),
			stubCmd(),
		},
		Action: func(ctx *cli.Context) error {
			// Show help if no command is specified
			return ctx.App.Run([]string{"", "help"})
		},
	}
}

// appConfig returns the configuration loaded before any command runs
func appConfig(ctx *cli.Context) *config.Config {
	if cfg, ok := ctx.App.Metadata[configKey].(*config.Config); ok {
		return cfg
	}
	cfg, _ := config.Defaults()
	return cfg
}

// setupLogging configures logrus from the log section. Logs go to the
// configured file when set and to out otherwise.
func setupLogging(cfg config.LogConfig, out io.Writer) error {
	level := log.InfoLevel
	if cfg.Level != "" {
		parsed, err := log.ParseLevel(cfg.Level)
		if err != nil {
			return fmt.Errorf("invalid log level: %w", err)
		}
		level = parsed
	}
	log.SetLevel(level)

	if strings.EqualFold(cfg.Format, "json") {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		out = f
	}
	log.SetOutput(out)
	return nil
}

// transport is shared by the content client and the stub importer
var transport = http.DefaultTransport.(*http.Transport).Clone()

func newClient(cfg *config.Config) *content.Client {
	return content.NewClient(cfg.API.BaseURL,
		content.WithHTTPClient(&http.Client{Transport: transport}),
		content.WithTimeout(cfg.TimeoutDuration()),
		content.WithUserAgent(cfg.API.UserAgent),
	)
}

func controllerOptions(cfg *config.Config) feeds.Options {
	return feeds.Options{
		TopTags: cfg.Feed.TopTags,
		Render: feeds.RenderOptions{
			InternalSources: cfg.Feed.InternalSources,
			WordsPerMinute:  cfg.Feed.WordsPerMinute,
			SnippetLength:   cfg.Feed.SnippetLength,
		},
	}
}

func newController(cfg *config.Config) *feeds.Controller {
	return feeds.NewController(newClient(cfg), controllerOptions(cfg))
}
