package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"inkfeed/feeds"
	"inkfeed/models"

	"github.com/urfave/cli/v2"
)

func tagsCmd() *cli.Command {
	return &cli.Command{
		Name:  "tags",
		Usage: "Print the recommended tags",
		Description: `Fetches the posts and prints the most used tags with their counts,
		most used first. Tags used equally often keep the order in which they
		first appear in the feed.`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Number of tags to print, defaults to feed.top_tags",
			},
		},
		Action: func(ctx *cli.Context) error {
			cfg := appConfig(ctx)
			opts := controllerOptions(cfg)
			if n := ctx.Int("limit"); n > 0 {
				opts.TopTags = n
			}

			ctrl := feeds.NewController(newClient(cfg), opts)
			_, view := ctrl.Navigate(ctx.Context, feeds.State{}, "#")
			if view.Status == models.ViewFailed {
				return cli.Exit(view.Message, 1)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			for _, tc := range view.Tags {
				fmt.Fprintf(w, "%s\t%d\t%s\n", tc.Tag, tc.Count, feeds.TagHash(tc.Tag))
			}
			return w.Flush()
		},
	}
}
