package cmd

import (
	"fmt"
	"io"
	"os"

	"inkfeed/feeds"
	"inkfeed/models"

	"github.com/cqroot/prompt"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"
)

const (
	formatAuto = "auto"
	formatText = "text"
	formatHTML = "html"
)

func feedCmd() *cli.Command {
	return &cli.Command{
		Name:  "feed",
		Usage: "Print the feed for a route",
		Description: `Fetches the posts and prints the cards for a route and search term.

		The output is plain text on a terminal and HTML markup otherwise, unless
		--format is given. With --pick a recommended tag is chosen interactively
		before printing.

		Exits with status 1 when the posts could not be loaded.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "route",
				Aliases: []string{"r"},
				Value:   "#",
				Usage:   `Route to show, e.g. "#/tag/go"`,
				EnvVars: []string{"INKFEED_ROUTE"},
			},
			&cli.StringFlag{
				Name:    "search",
				Aliases: []string{"s"},
				Usage:   "Only show posts whose title contains this text",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   formatAuto,
				Usage:   "Output format: auto, text or html",
			},
			&cli.BoolFlag{
				Name:  "pick",
				Usage: "Choose a recommended tag before printing",
			},
		},
		Action: func(ctx *cli.Context) error {
			format, err := outputFormat(ctx.String("format"), os.Stdout)
			if err != nil {
				return err
			}

			ctrl := newController(appConfig(ctx))
			st, view := ctrl.Navigate(ctx.Context, feeds.State{}, ctx.String("route"))

			if ctx.Bool("pick") && view.Status == models.ViewReady {
				hash, err := pickTag(view.Tags)
				if err != nil {
					return err
				}
				st, view = ctrl.Navigate(ctx.Context, st, hash)
			}

			if search := ctx.String("search"); search != "" {
				st, view = ctrl.Search(st, search)
			}

			if err := writeView(os.Stdout, format, view); err != nil {
				return err
			}
			if view.Status == models.ViewFailed {
				return cli.Exit("", 1)
			}
			return nil
		},
	}
}

func outputFormat(format string, out *os.File) (string, error) {
	switch format {
	case formatText, formatHTML:
		return format, nil
	case formatAuto, "":
		if term.IsTerminal(int(out.Fd())) {
			return formatText, nil
		}
		return formatHTML, nil
	}
	return "", fmt.Errorf("unknown format %q (valid: auto, text, html)", format)
}

func writeView(w io.Writer, format string, view models.View) error {
	if format == formatText {
		return feeds.WriteText(w, view)
	}

	if len(view.Tags) > 0 {
		tags, err := feeds.RenderTagsHTML(view.Tags)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "<nav class=\"tag-list\">%s</nav>\n", tags); err != nil {
			return err
		}
	}
	return feeds.WriteHTML(w, view)
}

// pickTag asks for one of the recommended tags and returns its route
func pickTag(tags []models.TagCount) (string, error) {
	const all = "All posts"
	choices := append([]string{all}, lo.Map(tags, func(t models.TagCount, _ int) string {
		return t.Tag
	})...)

	choice, err := prompt.New().Ask("Tag:").Choose(choices)
	if err != nil {
		return "", err
	}
	if choice == all {
		return "#", nil
	}
	return feeds.TagHash(choice), nil
}
