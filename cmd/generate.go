package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/jamm-labs/jamm/internal/formatter"
	"github.com/jamm-labs/jamm/internal/models"
	"github.com/jamm-labs/jamm/internal/repositories"
	"github.com/jamm-labs/jamm/internal/services"
	"github.com/jamm-labs/jamm/internal/shared"
	"github.com/jamm-labs/jamm/internal/smart"
	"github.com/urfave/cli/v3"
)

const minuteMS = 60_000

// requestFromFlags resolves the rule, order, and limit flags into a
// generation request. Unlike the HTTP form parser, unknown fields or
// operators are flag errors rather than fail-closed rules: an
// interactive user should hear about a typo instead of getting an
// empty playlist.
func requestFromFlags(cmd *cli.Command) (smart.Request, error) {
	req := smart.Request{
		Name:          cmd.String("name"),
		Description:   cmd.String("description"),
		Public:        cmd.Bool("public"),
		Collaborative: cmd.Bool("collaborative"),
		Order:         smart.DisabledOrder(),
		Limit:         smart.DisabledLimit(),
	}

	for _, raw := range cmd.StringSlice("rule") {
		parts := strings.SplitN(raw, ":", 3)
		if len(parts) != 3 {
			return req, fmt.Errorf("%w: rule %q must be field:operator:value", shared.ErrInvalidFlag, raw)
		}
		field := smart.ParseRuleField(parts[0])
		if field == smart.FieldUnknown {
			return req, fmt.Errorf("%w: unknown rule field %q", shared.ErrInvalidFlag, parts[0])
		}
		operator := smart.ParseRuleOperator(parts[1])
		if operator == smart.OpUnknown {
			return req, fmt.Errorf("%w: unknown rule operator %q", shared.ErrInvalidFlag, parts[1])
		}
		req.Rules = append(req.Rules, smart.Rule{Field: field, Operator: operator, Operand: parts[2]})
	}

	if orderBy := cmd.String("order-by"); orderBy != "" {
		field := smart.ParseOrderField(orderBy)
		if field == smart.OrderByNone {
			return req, fmt.Errorf("%w: unknown order field %q", shared.ErrInvalidFlag, orderBy)
		}
		direction := smart.Ascending
		if cmd.Bool("descending") {
			direction = smart.Descending
		}
		req.Order = smart.NewOrderSpec(field, direction)
	}

	count := cmd.Int("limit-count")
	minutes := cmd.Int("limit-minutes")
	switch {
	case count > 0 && minutes > 0:
		return req, fmt.Errorf("%w: limit-count and limit-minutes are mutually exclusive", shared.ErrInvalidFlag)
	case count > 0:
		req.Limit = smart.NewLimitSpec(smart.LimitByCount, count)
	case minutes > 0:
		req.Limit = smart.NewLimitSpec(smart.LimitByDuration, minutes*minuteMS)
	}

	return req, nil
}

// trackSource resolves the --source flag into a retrieval source.
func (r *Runner) trackSource(cmd *cli.Command) (smart.TrackSource, error) {
	switch cmd.String("source") {
	case "", "saved":
		return &services.SavedTracksSource{Catalog: r.catalog}, nil
	case "top":
		return &services.TopTracksSource{Catalog: r.catalog, TimeRange: cmd.String("time-range")}, nil
	default:
		return nil, fmt.Errorf("%w: source must be saved or top", shared.ErrInvalidFlag)
	}
}

func (r *Runner) newGenerator(source smart.TrackSource) *smart.Generator {
	return smart.NewGenerator(smart.GeneratorOpts{
		Source:       source,
		Writer:       r.catalog,
		Enricher:     smart.NewEnricher(r.httpClient, r.config.Smart.ProbeWorkers, r.logger),
		Logger:       r.logger,
		PageSize:     r.config.Smart.PageSize,
		Workers:      r.config.Smart.ProbeWorkers,
		PreviewLimit: r.config.Smart.PreviewLimit,
	})
}

func (r *Runner) artOptions() formatter.Options {
	return formatter.Options{
		MinArtPixels:   r.config.Smart.MinArtPixels,
		DefaultArtPath: r.config.Smart.DefaultArtPath,
	}
}

// recordRun persists a history entry when the database is reachable,
// logging failures instead of surfacing them.
func (r *Runner) recordRun(run *models.Run) {
	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		r.logger.Warn("run history unavailable", "error", err)
		return
	}
	defer db.Close()

	if err := repositories.NewRunRepository(db).Create(run); err != nil {
		r.logger.Warn("failed to record run", "error", err)
	}
}

// Preview evaluates the rule set against the track source and prints
// the matching tracks without creating anything.
func (r *Runner) Preview(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensureCatalog(); err != nil {
		return err
	}

	req, err := requestFromFlags(cmd)
	if err != nil {
		return err
	}

	source, err := r.trackSource(cmd)
	if err != nil {
		return err
	}

	r.logger.Infof("previewing rule set: %v", smart.SummarizeRules(req.Rules))

	tracks, err := r.newGenerator(source).Preview(ctx, req, nil)
	if err != nil {
		return r.describeCatalogError(err)
	}

	r.recordRun(&models.Run{
		PlaylistName: req.Name,
		RuleSummary:  smart.SummarizeRules(req.Rules),
		TrackCount:   len(tracks),
		DurationMS:   totalDuration(tracks),
		PreviewOnly:  true,
	})

	if base := cmd.String("export"); base != "" {
		files, err := formatter.WriteCSVExport(nil, tracks, base)
		if err != nil {
			return fmt.Errorf("failed to export preview: %w", err)
		}
		for _, f := range files {
			r.writePlain("✓ Wrote %s\n", f)
		}
		return nil
	}

	if cmd.Bool("json") {
		return r.writeJSON(tracks, cmd.Bool("pretty"))
	}

	if len(tracks) == 0 {
		r.writePlain("No tracks matched.\n")
		return nil
	}

	r.writePlain("Matched %d tracks:\n\n", len(tracks))
	for i, row := range formatter.BuildPreview(tracks, r.artOptions()) {
		r.writePlain("%d. %s [%s]\n", i+1, row.Title, row.Duration)
		r.writePlain("   %s - %s\n", row.Artists, row.Album)
	}
	r.writePlain("\nTotal duration: %s\n", shared.FormatDuration(totalDuration(tracks)))

	return nil
}

// Create runs the full generation and creates the playlist on the
// remote catalog.
func (r *Runner) Create(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensureCatalog(); err != nil {
		return err
	}

	req, err := requestFromFlags(cmd)
	if err != nil {
		return err
	}

	source, err := r.trackSource(cmd)
	if err != nil {
		return err
	}

	r.logger.Infof("generating playlist %q from rule set: %v", req.Name, smart.SummarizeRules(req.Rules))

	result, err := r.newGenerator(source).Generate(ctx, req, nil)
	if err != nil {
		return r.describeCatalogError(err)
	}

	run := &models.Run{
		PlaylistName: req.Name,
		RuleSummary:  smart.SummarizeRules(req.Rules),
		TrackCount:   len(result.Tracks),
		DurationMS:   result.TotalDurationMS,
		PreviewOnly:  result.Playlist == nil,
	}
	if result.Playlist != nil {
		run.PlaylistID = result.Playlist.ID
	}
	r.recordRun(run)

	if cmd.Bool("json") {
		return r.writeJSON(result, cmd.Bool("pretty"))
	}

	if result.Playlist == nil {
		r.writePlain("No tracks matched; no playlist was created.\n")
		return nil
	}

	r.writePlain("✓ Created playlist %q\n", result.Playlist.Name)
	r.writePlain("  ID: %s\n", result.Playlist.ID)
	r.writePlain("  Tracks: %d (of %d matched)\n", len(result.Tracks), result.MatchedCount)
	r.writePlain("  Duration: %s\n", shared.FormatDuration(result.TotalDurationMS))
	r.writePlain("  Visibility: %s\n", shared.VisibilityString(result.Playlist.Public))

	return nil
}

func totalDuration(tracks []models.Track) int {
	total := 0
	for _, t := range tracks {
		total += t.DurationMS
	}
	return total
}
