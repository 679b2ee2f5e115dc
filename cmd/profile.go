package main

import (
	"context"

	"github.com/jamm-labs/jamm/internal/shared"
	"github.com/urfave/cli/v3"
)

// Profile shows the authenticated user's profile and a library overview.
func (r *Runner) Profile(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensureCatalog(); err != nil {
		return err
	}

	r.logger.Info("fetching user data")

	data, err := r.catalog.UserData(ctx)
	if err != nil {
		return r.describeCatalogError(err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(data, cmd.Bool("pretty"))
	}

	r.writePlainHeader(data.User.DisplayName)
	r.writePlain("ID: %s\n", data.User.ID)
	if data.User.Email != "" {
		r.writePlain("Email: %s\n", data.User.Email)
	}
	if data.User.Country != "" {
		r.writePlain("Country: %s\n", data.User.Country)
	}
	r.writePlain("Plan: %s\n", data.User.Product)
	r.writePlain("Followers: %d\n\n", data.User.FollowersCount)

	r.writePlain("Library:\n")
	r.writePlain("  Saved tracks: %d\n", data.TotalTracks)
	r.writePlain("  Playlists: %d\n", data.TotalPlaylists)
	r.writePlain("  Followed artists: %d\n", data.TotalArtists)
	r.writePlain("  Saved albums: %d\n", data.TotalAlbums)

	if len(data.TopArtists) > 0 {
		r.writePlain("\nTop artists (all time):\n")
		for _, a := range data.TopArtists {
			r.writePlain("  %s\n", a.Name)
		}
	}

	if len(data.Tracks) > 0 {
		r.writePlain("\nRecently saved:\n")
		for _, t := range data.Tracks {
			r.writePlain("  %s by %s [%s]\n", t.Title, shared.JoinArtists(t.Artists), shared.FormatDuration(t.DurationMS))
		}
	}

	return nil
}
