// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// configFlag is shared by every command that reads config.toml.
func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// ruleFlags define the smart playlist rule set, ordering, limit, and
// track source shared by preview, create, and tui.
func ruleFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:    "rule",
			Aliases: []string{"r"},
			Usage:   "Matching rule as field:operator:value (e.g. artist:contains:nirvana), repeatable",
		},
		&cli.StringFlag{
			Name:  "order-by",
			Usage: "Order field: artist, album, song, release date, library add date, duration, popularity",
		},
		&cli.BoolFlag{
			Name:  "descending",
			Usage: "Sort in descending order",
		},
		&cli.IntFlag{
			Name:  "limit-count",
			Usage: "Cap the playlist at N tracks",
		},
		&cli.IntFlag{
			Name:  "limit-minutes",
			Usage: "Cap the playlist's total duration at N minutes",
		},
		&cli.StringFlag{
			Name:  "source",
			Usage: "Track source: saved or top",
			Value: "saved",
		},
		&cli.StringFlag{
			Name:  "time-range",
			Usage: "Time range for the top source: short_term, medium_term, long_term",
		},
	}
}

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
		},
	}
}

// setupCommand handles setup operations for the local database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
		},
	}
}

// authCommand handles Spotify OAuth2 authorization.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "auth",
		Usage:  "Authenticate with Spotify using OAuth2",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Auth,
	}
}

// previewCommand evaluates rules without creating anything.
func previewCommand(r *Runner) *cli.Command {
	flags := []cli.Flag{configFlag()}
	flags = append(flags, ruleFlags()...)
	flags = append(flags, outputFlags()...)
	flags = append(flags, &cli.StringFlag{
		Name:    "export",
		Aliases: []string{"o"},
		Usage:   "Export the preview to {path}_tracks.csv",
	})

	return &cli.Command{
		Name:    "preview",
		Aliases: []string{"p"},
		Usage:   "Preview which tracks a rule set matches",
		Flags:   flags,
		Action:  r.Preview,
	}
}

// createCommand generates a playlist on the remote catalog.
func createCommand(r *Runner) *cli.Command {
	flags := []cli.Flag{
		configFlag(),
		&cli.StringFlag{
			Name:     "name",
			Aliases:  []string{"n"},
			Usage:    "Playlist name",
			Required: true,
		},
		&cli.StringFlag{
			Name:    "description",
			Aliases: []string{"d"},
			Usage:   "Playlist description",
		},
		&cli.BoolFlag{
			Name:  "public",
			Usage: "Make the playlist public",
		},
		&cli.BoolFlag{
			Name:  "collaborative",
			Usage: "Make the playlist collaborative (ignored when public)",
		},
	}
	flags = append(flags, ruleFlags()...)
	flags = append(flags, outputFlags()...)

	return &cli.Command{
		Name:    "create",
		Aliases: []string{"gen"},
		Usage:   "Generate a smart playlist from rules",
		Flags:   flags,
		Action:  r.Create,
	}
}

// playlistCommand handles remote playlist operations.
func playlistCommand(r *Runner) *cli.Command {
	idFlag := &cli.StringFlag{
		Name:     "id",
		Usage:    "Playlist ID",
		Required: true,
	}

	return &cli.Command{
		Name:    "playlist",
		Aliases: []string{"pl"},
		Usage:   "Inspect and manage playlists",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List the user's playlists",
				Flags: append([]cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of playlists to return",
						Value: 50,
					},
				}, outputFlags()...),
				Action: r.PlaylistList,
			},
			{
				Name:   "show",
				Usage:  "Show a playlist with its tracks",
				Flags:  append([]cli.Flag{idFlag}, outputFlags()...),
				Action: r.PlaylistShow,
			},
			{
				Name:   "delete",
				Usage:  "Remove a playlist from the library",
				Flags:  []cli.Flag{idFlag},
				Action: r.PlaylistDelete,
			},
			{
				Name:   "restore",
				Usage:  "Re-add a previously deleted playlist",
				Flags:  []cli.Flag{idFlag},
				Action: r.PlaylistRestore,
			},
			{
				Name:  "export",
				Usage: "Export a playlist's tracks to CSV",
				Flags: []cli.Flag{
					idFlag,
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Base path for the export files",
					},
				},
				Action: r.PlaylistExport,
			},
			{
				Name:  "export-all",
				Usage: "Export every playlist in the library",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory (default: jamm_export_{epoch})",
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Export format: csv or json",
						Value: "csv",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent export workers",
						Value: 5,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Catalog requests per second",
					},
					&cli.StringSliceFlag{
						Name:  "id",
						Usage: "Restrict the export to specific playlist IDs, repeatable",
					},
				},
				Action: r.PlaylistExportAll,
			},
		},
	}
}

// historyCommand lists past generation runs from the local database.
func historyCommand(r *Runner) *cli.Command {
	flags := []cli.Flag{
		configFlag(),
		&cli.IntFlag{
			Name:  "limit",
			Usage: "Maximum number of runs to show",
			Value: 20,
		},
	}
	flags = append(flags, outputFlags()...)

	return &cli.Command{
		Name:    "history",
		Aliases: []string{"hist"},
		Usage:   "Show past generation runs",
		Flags:   flags,
		Action:  r.History,
	}
}

// profileCommand shows the authenticated user's library overview.
func profileCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "profile",
		Usage:  "Show the authenticated user's profile and library overview",
		Flags:  outputFlags(),
		Action: r.Profile,
	}
}

// serveCommand runs the HTTP API.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the smart playlist HTTP API",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host to bind (overrides config)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Port to bind (overrides config)",
			},
		},
		Action: r.Serve,
	}
}

// tuiCommand launches the interactive terminal UI.
func tuiCommand(r *Runner) *cli.Command {
	flags := []cli.Flag{
		configFlag(),
		&cli.StringFlag{
			Name:    "name",
			Aliases: []string{"n"},
			Usage:   "Playlist name to use if the preview is confirmed",
		},
		&cli.StringFlag{
			Name:    "description",
			Aliases: []string{"d"},
			Usage:   "Playlist description",
		},
		&cli.BoolFlag{
			Name:  "public",
			Usage: "Make the playlist public",
		},
	}
	flags = append(flags, ruleFlags()...)

	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"ui"},
		Usage:   "Preview and create a playlist interactively",
		Flags:   flags,
		Action:  r.TUI,
	}
}
