// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func jsonFlag() cli.Flag   { return &cli.BoolFlag{Name: "json", Usage: "Output raw JSON"} }
func prettyFlag() cli.Flag { return &cli.BoolFlag{Name: "pretty", Usage: "Pretty-print output", Value: true} }
func idArg() cli.Argument  { return &cli.StringArg{Name: "id"} }

func lookupFlags(required bool) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Track title", Required: required},
		&cli.StringFlag{Name: "artist", Aliases: []string{"a"}, Usage: "Artist name"},
		&cli.StringFlag{Name: "album", Usage: "Album name"},
	}
}

// setupCommand handles setup operations for the database and configuration file.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Write the default configuration file",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "print", Usage: "Print the effective configuration instead of writing a file"},
				},
				Action: r.SetupConfig,
			},
		},
	}
}

// libraryCommand manages the local track library
func libraryCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "library",
		Aliases: []string{"lib"},
		Usage:   "Manage library tracks",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add an audio file to the library",
				Arguments: []cli.Argument{&cli.StringArg{Name: "path"}},
				Flags: append(lookupFlags(false),
					&cli.FloatFlag{Name: "duration", Aliases: []string{"d"}, Usage: "Duration in seconds (read from the file when omitted)"},
				),
				Action: r.LibraryAdd,
			},
			{
				Name:   "list",
				Usage:  "List library tracks",
				Flags:  []cli.Flag{jsonFlag(), prettyFlag()},
				Action: r.LibraryList,
			},
			{
				Name:      "show",
				Usage:     "Show one track with its lyrics",
				Arguments: []cli.Argument{idArg()},
				Flags:     []cli.Flag{jsonFlag(), prettyFlag()},
				Action:    r.LibraryShow,
			},
			{
				Name:  "missing",
				Usage: "List ids of tracks lacking lyrics",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "all", Usage: "Include tracks with synced lyrics or marked instrumental"},
				},
				Action: r.LibraryMissing,
			},
			{
				Name:  "export",
				Usage: "Export a library report as CSV, Markdown or text",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "csv, md or txt (taken from the output extension when omitted)"},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "File to write (stdout when omitted)"},
					&cli.StringFlag{Name: "title", Usage: "Report title", Value: "Library"},
				},
				Action: r.LibraryExport,
			},
		},
	}
}

// lyricsCommand handles lyrics resolution, LRCLIB lookups and publishing
func lyricsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "lyrics",
		Usage: "Download, edit and publish lyrics",
		Commands: []*cli.Command{
			{
				Name:      "download",
				Usage:     "Download lyrics for a track from LRCLIB",
				Arguments: []cli.Argument{idArg()},
				Action:    r.LyricsDownload,
			},
			{
				Name:  "download-all",
				Usage: "Download lyrics for every track lacking them",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "workers", Usage: "Concurrent downloads", Value: 2},
					&cli.BoolFlag{Name: "all", Usage: "Include tracks with synced lyrics or marked instrumental"},
				},
				Action: r.LyricsDownloadAll,
			},
			{
				Name:  "retrieve",
				Usage: "Fetch the LRCLIB record for a recording",
				Flags: append(lookupFlags(true),
					&cli.FloatFlag{Name: "duration", Aliases: []string{"d"}, Usage: "Duration in seconds", Required: true},
					jsonFlag(), prettyFlag(),
				),
				Action: r.LyricsRetrieve,
			},
			{
				Name:   "search",
				Usage:  "Search LRCLIB",
				Flags:  append(lookupFlags(true), jsonFlag(), prettyFlag()),
				Action: r.LyricsSearch,
			},
			{
				Name:      "apply",
				Usage:     "Apply an LRCLIB record (JSON) to a track",
				Arguments: []cli.Argument{idArg()},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "Record file, - for stdin", Value: "-"},
				},
				Action: r.LyricsApply,
			},
			{
				Name:      "save",
				Usage:     "Save edited lyrics; both empty clears the track",
				Arguments: []cli.Argument{idArg()},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "plain", Usage: "Plain lyrics file"},
					&cli.StringFlag{Name: "synced", Usage: "Synced (LRC) lyrics file"},
				},
				Action: r.LyricsSave,
			},
			{
				Name:      "publish",
				Usage:     "Publish a track's lyrics to LRCLIB",
				Arguments: []cli.Argument{idArg()},
				Flags:     []cli.Flag{jsonFlag()},
				Action:    r.LyricsPublish,
			},
		},
	}
}

// playCommand plays a track in the now playing view
func playCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "play",
		Usage:     "Play a track with the now playing view",
		Arguments: []cli.Argument{idArg()},
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "events-addr", Usage: "Also serve player events over websocket at this address"},
			&cli.StringFlag{Name: "log-file", Usage: "Log destination while the view is open", Value: "./tmp/libget-play.log"},
		},
		Action: r.Play,
	}
}

// serveCommand runs the player headless behind the event hub and command endpoints
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve player commands and events for UI clients",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "Listen address (defaults to server.host:server.port)"},
		},
		Action: r.Serve,
	}
}
