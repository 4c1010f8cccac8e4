package cmd

import (
	"fmt"
	"os"

	"inkfeed/config"

	"github.com/BurntSushi/toml"
	"github.com/urfave/cli/v2"
)

func configCmd() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Inspect or create the configuration file",
		Subcommands: []*cli.Command{
			{
				Name:      "init",
				Usage:     "Write the default configuration",
				ArgsUsage: "[path]",
				Description: `Writes the default configuration to path, or to the default
				location when no path is given. Existing files are not overwritten.`,
				Action: func(ctx *cli.Context) error {
					path := ctx.Args().First()
					if path == "" {
						path = config.DefaultConfigPath()
					}
					if err := config.WriteDefaults(path); err != nil {
						return err
					}
					fmt.Println("Wrote configuration to", path)
					return nil
				},
			},
			{
				Name:  "show",
				Usage: "Print the effective configuration",
				Action: func(ctx *cli.Context) error {
					return toml.NewEncoder(os.Stdout).Encode(appConfig(ctx))
				},
			},
			{
				Name:  "path",
				Usage: "Print the default configuration path",
				Action: func(ctx *cli.Context) error {
					fmt.Println(config.DefaultConfigPath())
					return nil
				},
			},
		},
	}
}
