package main

import (
	"context"

	"github.com/desertthunder/spotauth/internal/services"
	"github.com/desertthunder/spotauth/internal/shared"
	"github.com/urfave/cli/v3"
)

// LoginURL prints the authorization URL /login redirects to, which helps diagnose redirect URI mismatches.
func (r *Runner) LoginURL(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	provider, err := services.NewSpotifyService(config.Credentials.Spotify, r.httpClient)
	if err != nil {
		return err
	}

	authURL := provider.AuthURL()
	if err := r.writePlain("%s\n", authURL); err != nil {
		return err
	}

	if cmd.Bool("open") {
		if err := shared.OpenBrowser(authURL); err != nil {
			r.logger.Warn("failed to open browser", "error", err)
		}
	}

	return nil
}
