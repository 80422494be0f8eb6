// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

func dryRunFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:  "dry-run",
		Usage: "Preview changes without writing anything",
	}
}

// copyCommand copies one source playlist onto the user's channel.
func copyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "copy",
		Usage: "Copy a playlist to your channel",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "source",
				Aliases:  []string{"s"},
				Usage:    "Source playlist ID",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "title",
				Usage: "Title for the copy (defaults to the source title)",
			},
			dryRunFlag(),
		},
		Action: r.Copy,
	}
}

// mergeCommand merges several source playlists into one.
func mergeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "merge",
		Usage: "Merge multiple playlists into one",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:     "source",
				Aliases:  []string{"s"},
				Usage:    "Source playlist ID (repeatable, at least two)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "title",
				Usage:    "Title for the merged playlist",
				Required: true,
			},
			dryRunFlag(),
		},
		Action: r.Merge,
	}
}

// splitCommand splits a playlist into fixed-size parts.
func splitCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "split",
		Usage: "Split a playlist into fixed-size parts",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "source",
				Aliases:  []string{"s"},
				Usage:    "Source playlist ID",
				Required: true,
			},
			&cli.IntFlag{
				Name:     "chunk-size",
				Usage:    "Maximum videos per part",
				Required: true,
			},
			dryRunFlag(),
		},
		Action: r.Split,
	}
}

// syncCommand runs the journal-driven batch channel sync.
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Sync a source channel's playlists onto your channel",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "channel",
				Usage: "Source channel ID",
			},
			&cli.BoolFlag{
				Name:  "resume",
				Usage: "Resume the interrupted batch from its journal",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent extraction workers",
				Value: 4,
			},
		},
		Action: r.Sync,
	}
}

// applyCommand reconciles a YAML playlist spec.
func applyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "apply",
		Usage:     "Apply a YAML playlist spec to your channel",
		Arguments: []cli.Argument{&cli.StringArg{Name: "path"}},
		Flags:     []cli.Flag{dryRunFlag()},
		Action:    r.Apply,
	}
}

// matchCommand prints the dedup report without writing anything.
func matchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "match",
		Usage: "Report which source playlists already exist on your channel",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "channel",
				Usage: "Source channel ID",
			},
			&cli.StringSliceFlag{
				Name:    "source",
				Aliases: []string{"s"},
				Usage:   "Source playlist ID (repeatable, alternative to --channel)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Match,
	}
}

// batchCommand inspects and manages the persisted batch journal.
func batchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "batch",
		Usage: "Inspect and manage the batch journal",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run a journaled channel sync (same as `ytpl sync`)",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "channel",
						Usage:    "Source channel ID",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent extraction workers",
						Value: 4,
					},
				},
				Action: r.Sync,
			},
			{
				Name:   "resume",
				Usage:  "Resume the interrupted batch from its journal",
				Action: r.BatchResume,
			},
			{
				Name:   "status",
				Usage:  "Show the persisted journal state",
				Action: r.BatchStatus,
			},
			{
				Name:   "clear",
				Usage:  "Discard the persisted journal",
				Action: r.BatchClear,
			},
		},
	}
}

// quotaCommand prices planned work and reports project rotation state.
func quotaCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "quota",
		Usage: "Quota estimates and project rotation state",
		Commands: []*cli.Command{
			{
				Name:  "estimate",
				Usage: "Estimate the quota cost of syncing a channel",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "channel",
						Usage:    "Source channel ID",
						Required: true,
					},
				},
				Action: r.QuotaEstimate,
			},
			{
				Name:   "status",
				Usage:  "Show per-project quota usage",
				Action: r.QuotaStatus,
			},
		},
	}
}

// cacheCommand manages the local extraction cache.
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Manage the local playlist cache",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List cached playlists",
				Action: r.CacheList,
			},
			{
				Name:  "export",
				Usage: "Export a cached playlist",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Playlist ID to export",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Export format: csv, markdown, text, json",
						Value: "text",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (csv and markdown only)",
					},
				},
				Action: r.CacheExport,
			},
			{
				Name:  "clear",
				Usage: "Drop all cached playlists",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "id",
						Usage: "Only drop this playlist",
					},
				},
				Action: r.CacheClear,
			},
		},
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Authorize with the provider using the browser OAuth flow",
				Flags:  []cli.Flag{configFlag()},
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Check current authentication state",
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Remove the stored token",
				Action: r.AuthLogout,
			},
		},
	}
}

// setupCommand handles setup operations for config, database, and extractor headers.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Create a config file from the embedded template",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize the cache database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
			{
				Name:  "extractor",
				Usage: "Configure extractor browser headers from a cURL command",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "curl-file",
						Usage: "Path to .sh file containing a cURL command (Copy as cURL)",
					},
					&cli.StringFlag{
						Name:  "output",
						Usage: "Where to store the headers file (default: ~/.ytpl/headers.sh)",
					},
				},
				Action: r.SetupExtractor,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive playlist sync.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for playlist sync",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "channel",
				Usage:    "Source channel ID",
				Required: true,
			},
		},
		Action: r.TUI,
	}
}
