package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"smartplaylist/internal/actions"
)

func main() {
	app := &cli.App{
		Name:  "smartplaylist",
		Usage: "smartplaylist is a CLI tool to build Spotify playlists from artist, album, chart and similarity directives.",
		Commands: []*cli.Command{
			{
				Name:      "generate",
				Aliases:   []string{"gen"},
				Usage:     "Resolve playlist directives into Spotify track URIs",
				ArgsUsage: " ",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "read directives from `FILE` (\"-\" for stdin)"},
					&cli.StringFlag{Name: "group", Aliases: []string{"g"}, Usage: "group tracks by album, artist or entry"},
					&cli.StringFlag{Name: "order", Aliases: []string{"s"}, Usage: "order tracks by popularity or lastfm"},
					&cli.BoolFlag{Name: "unique", Value: true, Usage: "remove duplicate tracks"},
					&cli.StringFlag{Name: "lastfm-user", Usage: "use the play counts of this Last.fm `USER`"},
					&cli.StringFlag{Name: "format", Value: actions.FormatURIs, Usage: "output format: uris or csv"},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "write the playlist to `FILE` instead of stdout"},
					&cli.BoolFlag{Name: "skip-failures", Usage: "drop entries that fail to resolve instead of aborting"},
					&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "no spinner and no track trace"},
					&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log at debug level"},
					&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "load configuration from `FILE`", EnvVars: []string{"SMARTPLAYLIST_CONFIG"}},
				},
				Action: actions.GeneratePlaylist,
			},
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
