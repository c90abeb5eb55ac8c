package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/spotauth/internal/formatter"
	"github.com/desertthunder/spotauth/internal/models"
	"github.com/desertthunder/spotauth/internal/shared"
	"github.com/urfave/cli/v3"
)

// UsersList prints stored users as a table, JSON, or writes them to a CSV file.
func (r *Runner) UsersList(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	db, repo, err := r.openUsers(config)
	if err != nil {
		return err
	}
	defer db.Close()

	users, err := repo.List(ctx, map[string]any{"limit": cmd.Int("limit")})
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrStoreOperationFailed, err)
	}

	r.logger.Debug("listed users", "count", len(users))

	if path := cmd.String("csv"); path != "" {
		written, err := formatter.WriteCSVExport(users, path)
		if err != nil {
			return err
		}
		return r.writePlain("✓ Exported %d users to %s\n", len(users), written)
	}

	if cmd.Bool("json") {
		views := make([]models.UserView, 0, len(users))
		for _, u := range users {
			views = append(views, u.View())
		}
		return r.writeJSON(views, cmd.Bool("pretty"))
	}

	if len(users) == 0 {
		return r.writePlain("No users found\n")
	}
	return r.writePlain("%s\n", formatter.UsersToTable(users))
}

// UsersGet prints the user created for a Spotify account.
func (r *Runner) UsersGet(ctx context.Context, cmd *cli.Command) error {
	spotifyID := cmd.StringArg("spotify-id")
	if spotifyID == "" {
		return fmt.Errorf("%w: spotify-id", shared.ErrMissingArgument)
	}

	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	db, repo, err := r.openUsers(config)
	if err != nil {
		return err
	}
	defer db.Close()

	user, err := repo.FindBySpotifyID(ctx, spotifyID)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrStoreOperationFailed, err)
	}
	if user == nil {
		return fmt.Errorf("%w: no user for spotify id %s", shared.ErrNotFound, spotifyID)
	}

	if cmd.Bool("json") {
		return r.writeJSON(user.View(), true)
	}

	_, err = r.output.Write(formatter.UserToText(user))
	return err
}
