package main

import (
	"context"

	"github.com/desertthunder/spotauth/internal/server"
	"github.com/desertthunder/spotauth/internal/services"
	"github.com/urfave/cli/v3"
)

// Serve runs the login service until ctx is cancelled.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	if cmd.IsSet("host") {
		config.Server.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		config.Server.Port = cmd.Int("port")
	}

	if err := config.Validate(); err != nil {
		return err
	}

	db, users, err := r.openUsers(config)
	if err != nil {
		return err
	}
	defer db.Close()

	client := r.httpClient
	if config.Server.ProviderTimeout > 0 {
		timed := *client
		timed.Timeout = config.Server.ProviderTimeout
		client = &timed
	}
	client = services.NewHTTPClient(client, config.Server.ProviderRateLimit)

	provider, err := services.NewSpotifyService(config.Credentials.Spotify, client)
	if err != nil {
		return err
	}

	auth, err := server.NewAuthHandler(provider, users, config.Frontend.URL, r.logger)
	if err != nil {
		return err
	}

	router := server.NewAppRouter(auth, server.NewHealthHandler(db, r.logger), r.logger)
	srv := server.NewServer(config.Server.Addr(), router, config.Server.ShutdownTimeout, r.logger)

	r.logger.Info("login service configured",
		"redirect_uri", config.Credentials.Spotify.RedirectURI,
		"frontend", config.Frontend.URL,
		"database", config.Database.Path,
	)

	return srv.ListenAndServe(ctx)
}
