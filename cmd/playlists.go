package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jamm-labs/jamm/internal/formatter"
	"github.com/jamm-labs/jamm/internal/models"
	"github.com/jamm-labs/jamm/internal/shared"
	"github.com/jamm-labs/jamm/internal/tasks"
	"github.com/urfave/cli/v3"
)

// ensureCatalog guards commands that talk to the remote catalog.
func (r *Runner) ensureCatalog() error {
	if r.catalog == nil {
		return fmt.Errorf("%w: Spotify catalog not initialized, run 'jamm auth'", shared.ErrServiceUnavailable)
	}
	return nil
}

// PlaylistList lists the user's playlists.
func (r *Runner) PlaylistList(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensureCatalog(); err != nil {
		return err
	}

	limit := cmd.Int("limit")
	r.logger.Infof("listing playlists with limit %v", limit)

	page, err := r.catalog.Playlists(ctx, limit, 0)
	if err != nil {
		return r.describeCatalogError(err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(page.Items, cmd.Bool("pretty"))
	}

	r.writePlain("Found %d playlists (%d total):\n\n", len(page.Items), page.Total)
	for i, p := range page.Items {
		r.writePlain("%d. %s\n", i+1, p.Name)
		if p.Description != "" {
			r.writePlain("   Description: %s\n", p.Description)
		}
		r.writePlain("   ID: %s\n", p.ID)
		r.writePlain("   Tracks: %d\n", p.TrackCount)
		r.writePlain("   Visibility: %s\n", shared.VisibilityString(p.Public))
		r.writePlain("\n")
	}

	return nil
}

// PlaylistShow fetches a playlist with full metadata.
func (r *Runner) PlaylistShow(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensureCatalog(); err != nil {
		return err
	}

	playlistID := cmd.String("id")
	r.logger.Infof("fetching playlist %v", playlistID)

	detail, err := r.catalog.Playlist(ctx, playlistID)
	if err != nil {
		return r.describeCatalogError(err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(detail, cmd.Bool("pretty"))
	}

	r.writePlainHeader(detail.Name)
	if detail.Description != "" {
		r.writePlain("Description: %s\n", detail.Description)
	}
	r.writePlain("ID: %s\n", detail.ID)
	r.writePlain("Tracks: %d\n", detail.TrackCount)
	r.writePlain("Followers: %d\n", detail.FollowersCount)
	r.writePlain("Visibility: %s\n", shared.VisibilityString(detail.Public))
	if detail.Collaborative {
		r.writePlain("Collaborative: yes\n")
	}

	return nil
}

// PlaylistDelete removes a playlist from the user's library.
func (r *Runner) PlaylistDelete(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensureCatalog(); err != nil {
		return err
	}

	playlistID := cmd.String("id")
	r.logger.Infof("deleting playlist %v", playlistID)

	if err := r.catalog.DeletePlaylist(ctx, playlistID); err != nil {
		return r.describeCatalogError(err)
	}

	r.writePlain("✓ Playlist %s removed from library\n", playlistID)
	r.writePlain("Use 'jamm playlist restore --id %s' to undo\n", playlistID)
	return nil
}

// PlaylistRestore re-adds a previously deleted playlist.
func (r *Runner) PlaylistRestore(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensureCatalog(); err != nil {
		return err
	}

	playlistID := cmd.String("id")
	r.logger.Infof("restoring playlist %v", playlistID)

	if err := r.catalog.RestorePlaylist(ctx, playlistID); err != nil {
		return r.describeCatalogError(err)
	}

	r.writePlain("✓ Playlist %s restored\n", playlistID)
	return nil
}

// PlaylistExport writes a playlist's metadata and track list to disk.
func (r *Runner) PlaylistExport(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensureCatalog(); err != nil {
		return err
	}

	playlistID := cmd.String("id")
	r.logger.Infof("exporting playlist %v", playlistID)

	detail, err := r.catalog.Playlist(ctx, playlistID)
	if err != nil {
		return r.describeCatalogError(err)
	}

	var tracks []models.Track
	for offset := 0; ; {
		page, err := r.catalog.PlaylistTracks(ctx, playlistID, r.config.Smart.PageSize, offset)
		if err != nil {
			return r.describeCatalogError(err)
		}
		tracks = append(tracks, page.Items...)
		offset += len(page.Items)
		if len(page.Items) == 0 || offset >= page.Total {
			break
		}
	}

	base := cmd.String("output")
	if base == "" {
		base = fmt.Sprintf("jamm_%s", detail.ID)
	}

	files, err := formatter.WriteCSVExport(&detail.Playlist, tracks, base)
	if err != nil {
		return fmt.Errorf("failed to export playlist: %w", err)
	}

	r.writePlain("✓ Playlist %q exported\n", detail.Name)
	for _, f := range files {
		r.writePlain("  %s\n", f)
	}
	return nil
}

// PlaylistExportAll exports many playlists through the bulk export
// worker pool, streaming progress to the terminal.
func (r *Runner) PlaylistExportAll(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensureCatalog(); err != nil {
		return err
	}

	rateLimit := cmd.Float("rate")
	if rateLimit <= 0 {
		rateLimit = r.config.Smart.RateLimit
	}

	opts := tasks.ExportOpts{
		Format:     cmd.String("format"),
		OutputDir:  cmd.String("output"),
		NumWorkers: cmd.Int("workers"),
		RateLimit:  rateLimit,
	}

	prog := make(chan tasks.ProgressUpdate, 64)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range prog {
			r.writePlain("%s\n", update.Message)
		}
	}()

	exporter := tasks.NewExporter(r.catalog, r.logger, r.config.Smart.PageSize)
	result, err := exporter.BulkExport(ctx, prog, cmd.StringSlice("id"), opts)
	close(prog)
	<-done

	if err != nil {
		return r.describeCatalogError(err)
	}

	r.writePlain("\n✓ Exported %d of %d playlists to %s\n", result.SuccessfulExports, result.TotalPlaylists, result.OutputDirectory)
	if result.FailedExports > 0 {
		r.writePlain("⚠ %d playlists failed; see %s\n", result.FailedExports, result.ManifestPath)
	}
	return nil
}

// describeCatalogError attaches a usage hint to authentication failures.
func (r *Runner) describeCatalogError(err error) error {
	if errors.Is(err, shared.ErrNotAuthenticated) || errors.Is(err, shared.ErrTokenExpired) {
		return fmt.Errorf("%w: run 'jamm auth' to authorize", err)
	}
	return err
}
