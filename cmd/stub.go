package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"inkfeed/config"
	"inkfeed/db"
	"inkfeed/ingest"
	"inkfeed/server"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func databaseFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "database",
		Aliases: []string{"d"},
		Usage:   "SQLite database file location, defaults to stub.database",
		EnvVars: []string{"INKFEED_DATABASE"},
	}
}

func databasePath(ctx *cli.Context) string {
	if path := ctx.String("database"); path != "" {
		return path
	}
	return appConfig(ctx).DatabasePath()
}

func stubCmd() *cli.Command {
	return &cli.Command{
		Name:  "stub",
		Usage: "Run a local content API for development",
		Description: `A stand-in for the hosted content API backed by SQLite.

		Posts are imported from the RSS/Atom feeds and JSON fixture files listed
		under [[stub.sources]] in the configuration and served on
		GET /api/content and GET /api/content/<id>.`,
		Subcommands: []*cli.Command{
			stubMigrateCmd(),
			stubImportCmd(),
			stubServeCmd(),
			stubTidyCmd(),
		},
	}
}

func stubMigrateCmd() *cli.Command {
	return &cli.Command{
		Name:        "migrate",
		Usage:       "Run database migrations",
		Description: `Runs database migrations on the configured database. Will create the database if it does not exist.`,
		Flags:       []cli.Flag{databaseFlag()},
		Action: func(ctx *cli.Context) error {
			database := databasePath(ctx)
			fmt.Println("Database configured: ", database)
			return db.Migrate(database)
		},
	}
}

func stubImportCmd() *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import posts from the configured sources",
		Description: `Loads every enabled source concurrently and replaces the stored posts
		with the result. Sources that fail are skipped. Posts with a title seen
		before are dropped and the rest are stored newest first.`,
		Flags: []cli.Flag{databaseFlag()},
		Action: func(ctx *cli.Context) error {
			n, err := importPosts(ctx.Context, appConfig(ctx), databasePath(ctx), sourceDir(ctx))
			if err != nil {
				return err
			}
			fmt.Printf("Imported %d posts\n", n)
			return nil
		},
	}
}

func stubTidyCmd() *cli.Command {
	return &cli.Command{
		Name:  "tidy",
		Usage: "Tidy up the database",
		Description: `Tidy up the database by removing posts that are old.

		Removes posts published before the retention period (stub.retention).
		Posts without a date are kept.`,
		Flags: []cli.Flag{
			databaseFlag(),
			&cli.StringFlag{
				Name:  "retention",
				Usage: `Override stub.retention, e.g. "30d" or "72h"`,
			},
		},
		Action: func(ctx *cli.Context) error {
			cfg := appConfig(ctx)
			if r := ctx.String("retention"); r != "" {
				cfg.Stub.Retention = r
				if err := config.Validate(cfg); err != nil {
					return err
				}
			}
			database := databasePath(ctx)
			fmt.Println("Database configured: ", database)

			removed, err := db.Tidy(ctx.Context, database, cfg.RetentionDuration())
			if err != nil {
				return err
			}
			fmt.Printf("Removed %d posts\n", removed)
			return nil
		},
	}
}

func stubServeCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the content API",
		Description: `Starts the content API stub on the configured address.

		With --import the sources are imported before serving, and with
		--refresh they are imported again and the database tidied on that
		interval. --fail-status makes every API request fail with the given
		status, to try out how the client handles an unavailable backend.`,
		Flags: []cli.Flag{
			databaseFlag(),
			&cli.StringFlag{
				Name:    "listen",
				Aliases: []string{"l"},
				Usage:   "Address to listen on, defaults to stub.listen",
				EnvVars: []string{"INKFEED_LISTEN"},
			},
			&cli.BoolFlag{
				Name:  "import",
				Usage: "Import the sources before serving",
			},
			&cli.DurationFlag{
				Name:  "refresh",
				Usage: "Import the sources again on this interval, 0 disables",
			},
			&cli.IntFlag{
				Name:  "fail-status",
				Usage: "Fail every API request with this HTTP status",
			},
		},
		Action: func(ctx *cli.Context) error {
			cfg := appConfig(ctx)
			database := databasePath(ctx)

			if err := db.Migrate(database); err != nil {
				return err
			}
			if ctx.Bool("import") {
				if _, err := importPosts(ctx.Context, cfg, database, sourceDir(ctx)); err != nil {
					return err
				}
			}

			reader, err := db.NewReader(database)
			if err != nil {
				return err
			}
			defer reader.Close()

			failStatus := cfg.Stub.FailStatus
			if ctx.IsSet("fail-status") {
				failStatus = ctx.Int("fail-status")
			}
			listen := ctx.String("listen")
			if listen == "" {
				listen = cfg.Stub.Listen
			}

			app := server.Server(&server.ServerConfig{
				Reader:       reader,
				AllowOrigins: cfg.Stub.AllowOrigins,
				FailStatus:   failStatus,
			})

			// Graceful shutdown
			runCtx, stop := signal.NotifyContext(ctx.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			if interval := ctx.Duration("refresh"); interval > 0 {
				go refreshLoop(runCtx, cfg, database, sourceDir(ctx), interval)
			}

			go func() {
				<-runCtx.Done()
				fmt.Println("Gracefully shutting down...")
				if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
					log.WithFields(log.Fields{
						"error": err,
					}).Error("Error shutting down server")
				}
			}()

			log.WithFields(log.Fields{
				"listen":   listen,
				"database": database,
			}).Info("Starting content API stub")

			return app.Listen(listen)
		},
	}
}

// refreshLoop imports and tidies on every tick until ctx is done
func refreshLoop(ctx context.Context, cfg *config.Config, database, baseDir string, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := importPosts(ctx, cfg, database, baseDir); err != nil {
				log.WithFields(log.Fields{
					"error": err,
				}).Error("Error refreshing posts")
				continue
			}
			if _, err := db.Tidy(ctx, database, cfg.RetentionDuration()); err != nil {
				log.WithFields(log.Fields{
					"error": err,
				}).Error("Error tidying database")
			}
		}
	}
}

// sourceDir is where relative fixture paths are resolved: next to the
// configuration file when one was given
func sourceDir(ctx *cli.Context) string {
	if path := ctx.String("config"); path != "" {
		return filepath.Dir(path)
	}
	return ""
}

func importPosts(ctx context.Context, cfg *config.Config, database, baseDir string) (int, error) {
	collector := ingest.NewCollector(ingest.Options{
		BaseDir:    baseDir,
		HTTPClient: &http.Client{Transport: transport, Timeout: cfg.TimeoutDuration()},
		UserAgent:  cfg.API.UserAgent,
	})

	posts, err := collector.Collect(ctx, cfg.EnabledSources())
	if err != nil {
		return 0, fmt.Errorf("collecting posts: %w", err)
	}

	if err := db.Migrate(database); err != nil {
		return 0, err
	}
	writer, err := db.NewWriter(database)
	if err != nil {
		return 0, err
	}
	defer writer.Close()

	return writer.ReplacePosts(ctx, posts)
}
