package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"inkfeed/content"
	"inkfeed/feeds"
	"inkfeed/models"

	"github.com/urfave/cli/v2"
)

func postCmd() *cli.Command {
	return &cli.Command{
		Name:      "post",
		Usage:     "Print a single post",
		ArgsUsage: "<id>",
		Description: `Fetches one post from the content API by its id and prints it as a
		card followed by its full text, or as JSON with --json.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the post as returned by the API",
			},
		},
		Action: func(ctx *cli.Context) error {
			id := ctx.Args().First()
			if id == "" {
				return cli.Exit("a post id is required", 2)
			}

			cfg := appConfig(ctx)
			post, err := newClient(cfg).FetchPost(ctx.Context, id)
			if errors.Is(err, content.ErrNotFound) {
				return cli.Exit(fmt.Sprintf("post %q not found", id), 1)
			}
			if err != nil {
				return cli.Exit(feeds.FailureMessage, 1)
			}

			if ctx.Bool("json") {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(post)
			}

			card := newController(cfg).Card(*post)
			view := models.View{Status: models.ViewReady, Cards: []models.Card{card}}
			if err := feeds.WriteText(os.Stdout, view); err != nil {
				return err
			}
			_, err = fmt.Fprintln(os.Stdout, feeds.PlainText(post.Content))
			return err
		},
	}
}
