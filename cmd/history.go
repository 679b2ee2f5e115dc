package main

import (
	"context"
	"fmt"

	"github.com/jamm-labs/jamm/internal/repositories"
	"github.com/jamm-labs/jamm/internal/shared"
	"github.com/urfave/cli/v3"
)

// History lists past generation runs from the local database.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	limit := cmd.Int("limit")

	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	runs, err := repositories.NewRunRepository(db).List(limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(runs, cmd.Bool("pretty"))
	}

	if len(runs) == 0 {
		r.writePlain("No generation runs recorded yet.\n")
		return nil
	}

	r.writePlain("Showing %d runs:\n\n", len(runs))
	for i, run := range runs {
		kind := "created"
		if run.PreviewOnly {
			kind = "preview"
		}
		name := run.PlaylistName
		if name == "" {
			name = "(unnamed)"
		}
		r.writePlain("%d. %s %s - %s\n", i+1, run.CreatedAt.Format("2006-01-02 15:04"), kind, name)
		r.writePlain("   Rules: %s\n", run.RuleSummary)
		r.writePlain("   Tracks: %d (%s)\n", run.TrackCount, shared.FormatDuration(run.DurationMS))
		if run.PlaylistID != "" {
			r.writePlain("   Playlist ID: %s\n", run.PlaylistID)
		}
		r.writePlain("\n")
	}

	return nil
}
