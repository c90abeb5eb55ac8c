// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// serveCommand runs the HTTP service
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve /login, /callback and /health",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "host",
				Usage: "Override server.host",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Override server.port",
			},
		},
		Action: r.Serve,
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
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Write a configuration file from the built-in template",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing file",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent database migration",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupRollback,
			},
		},
	}
}

// usersCommand handles stored user inspection
func usersCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "Inspect users created by the login flow",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List stored users",
				Flags: []cli.Flag{
					configFlag(),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of users to return (0 for all)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print JSON output",
					},
					&cli.StringFlag{
						Name:  "csv",
						Usage: "Write users to a CSV file at this path",
					},
				},
				Action: r.UsersList,
			},
			{
				Name:  "get",
				Usage: "Show the user for a Spotify account",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "spotify-id",
					},
				},
				Action: r.UsersGet,
			},
		},
	}
}

// loginURLCommand prints the provider authorization URL
func loginURLCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "login-url",
		Usage: "Print the Spotify authorization URL the /login endpoint redirects to",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the URL in the default browser",
			},
		},
		Action: r.LoginURL,
	}
}
