package smart

import (
	"context"
	"fmt"
	"net/url"

	"github.com/charmbracelet/log"
	"github.com/jamm-labs/jamm/internal/models"
	"github.com/jamm-labs/jamm/internal/shared"
)

// Request carries the user's playlist definition: metadata plus the rule
// set, ordering, and limit resolved from untyped form input. All fields
// are immutable once parsed and consumed by a single generation call.
type Request struct {
	Name          string
	Description   string
	Public        bool
	Collaborative bool
	Rules         []Rule
	Order         OrderSpec
	Limit         LimitSpec
}

// ParseRequest resolves raw form values into a Request. Malformed order
// or limit input degrades to the disabled variant; malformed rules fail
// closed at evaluation. Parsing never returns an error.
func ParseRequest(form url.Values) Request {
	return Request{
		Name:          form.Get("playlistName"),
		Description:   form.Get("playlistDescription"),
		Public:        formBool(form.Get("playlistIsPublic")),
		Collaborative: formBool(form.Get("playlistIsCollaborative")),
		Rules:         ParseRules(form),
		Order: ParseOrderSpec(
			formBool(form.Get("playlistOrderEnabled")),
			form.Get("playlistOrderField"),
			form.Get("playlistOrderDirection"),
		),
		Limit: ParseLimitSpec(
			formBool(form.Get("playlistLimitEnabled")),
			form.Get("playlistLimitType"),
			form.Get("playlistLimitValue"),
		),
	}
}

// formBool interprets checkbox-style form values.
func formBool(v string) bool {
	switch v {
	case "", "false", "0", "off":
		return false
	default:
		return true
	}
}

// NewPlaylist describes a playlist to create on the remote catalog.
type NewPlaylist struct {
	Name          string
	Description   string
	Public        bool
	Collaborative bool
}

// PlaylistWriter creates playlists on the remote catalog. Implemented by
// the Spotify client; the generator only depends on this surface.
type PlaylistWriter interface {
	CurrentUserID(ctx context.Context) (string, error)
	CreatePlaylist(ctx context.Context, userID string, playlist NewPlaylist) (*models.Playlist, error)
	AddTracks(ctx context.Context, playlistID string, uris []string) error
}

// GenerateResult contains the outcome of a full generation run.
type GenerateResult struct {
	Playlist        *models.Playlist // Created playlist, nil when nothing matched
	Tracks          []models.Track   // Final ordered, limited, enriched track list
	MatchedCount    int              // Matched tracks before the limit applied
	TotalDurationMS int              // Cumulative duration of the final list
}

// GeneratorOpts configures a Generator.
type GeneratorOpts struct {
	Source       TrackSource
	Writer       PlaylistWriter
	Enricher     *Enricher
	Logger       *log.Logger
	PageSize     int
	Workers      int
	PreviewLimit int
}

// Generator orchestrates one smart playlist generation:
// retrieve → filter → order → limit → enrich → (create) → done.
//
// All intermediate state (candidate pool, ordered indices, specs) is
// owned by the single call and discarded when it returns; a Generator
// itself is safe for concurrent use.
type Generator struct {
	source       TrackSource
	writer       PlaylistWriter
	enricher     *Enricher
	logger       *log.Logger
	pageSize     int
	workers      int
	previewLimit int
}

const defaultPreviewLimit = 25

// NewGenerator creates a Generator with the provided collaborators.
func NewGenerator(opts GeneratorOpts) *Generator {
	if opts.PreviewLimit <= 0 {
		opts.PreviewLimit = defaultPreviewLimit
	}
	return &Generator{
		source:       opts.Source,
		writer:       opts.Writer,
		enricher:     opts.Enricher,
		logger:       opts.Logger,
		pageSize:     opts.PageSize,
		workers:      opts.Workers,
		previewLimit: opts.PreviewLimit,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (g *Generator) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// Preview evaluates the request and returns a capped sample of the final
// track list, enriched for display. An empty sample is a valid result,
// distinguishable from a retrieval failure.
func (g *Generator) Preview(ctx context.Context, req Request, progress chan<- ProgressUpdate) ([]models.Track, error) {
	tracks, _, err := g.assemble(ctx, req, progress)
	if err != nil {
		return nil, err
	}

	if len(tracks) > g.previewLimit {
		tracks = tracks[:g.previewLimit]
	}

	g.sendProgress(progress, enrichUpdate(len(tracks)))
	if g.enricher != nil {
		g.enricher.EnrichTracks(ctx, tracks)
	}

	g.sendProgress(progress, doneUpdate(req.Name, len(tracks)))
	return tracks, nil
}

// Generate evaluates the request, creates the playlist on the remote
// catalog, and adds the final track list to it. When no tracks match,
// no playlist is created and the result carries an empty list.
func (g *Generator) Generate(ctx context.Context, req Request, progress chan<- ProgressUpdate) (*GenerateResult, error) {
	if g.writer == nil {
		return nil, fmt.Errorf("%w: playlist writer not initialized", shared.ErrServiceUnavailable)
	}

	tracks, matched, err := g.assemble(ctx, req, progress)
	if err != nil {
		return nil, err
	}

	result := &GenerateResult{
		Tracks:       tracks,
		MatchedCount: matched,
	}
	for _, t := range tracks {
		result.TotalDurationMS += t.DurationMS
	}

	if len(tracks) == 0 {
		g.sendProgress(progress, doneUpdate(req.Name, 0))
		return result, nil
	}

	g.sendProgress(progress, enrichUpdate(len(tracks)))
	if g.enricher != nil {
		g.enricher.EnrichTracks(ctx, tracks)
	}

	g.sendProgress(progress, createUpdate(req.Name))

	userID, err := g.writer.CurrentUserID(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to resolve user: %v", shared.ErrAPIRequest, err)
	}

	playlist, err := g.writer.CreatePlaylist(ctx, userID, NewPlaylist{
		Name:          req.Name,
		Description:   req.Description,
		Public:        req.Public,
		Collaborative: req.Collaborative,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create playlist: %v", shared.ErrAPIRequest, err)
	}

	uris := make([]string, 0, len(tracks))
	for _, t := range tracks {
		if t.URI != "" {
			uris = append(uris, t.URI)
		}
	}

	if err := g.writer.AddTracks(ctx, playlist.ID, uris); err != nil {
		return nil, fmt.Errorf("%w: failed to add tracks: %v", shared.ErrAPIRequest, err)
	}

	playlist.TrackCount = len(uris)
	result.Playlist = playlist
	g.sendProgress(progress, doneUpdate(playlist.Name, len(tracks)))
	return result, nil
}

// assemble runs retrieve, filter, order, and limit, returning the final
// track list plus the matched count before truncation.
func (g *Generator) assemble(ctx context.Context, req Request, progress chan<- ProgressUpdate) ([]models.Track, int, error) {
	if g.source == nil {
		return nil, 0, fmt.Errorf("%w: track source not initialized", shared.ErrServiceUnavailable)
	}

	pipeline := &Pipeline{
		Source:   g.source,
		PageSize: g.pageSize,
		Workers:  g.workers,
		Logger:   g.logger,
	}

	// Matched tracks accumulate into a request-scoped pool; the ordered
	// sequence holds indices into it. Folding happens in retrieval order
	// so ordering and tie-breaks are reproducible.
	var pool []models.Track
	var plain []int
	seq := NewSortedIndexSeq(req.Order.Comparator())
	retrieved := 0
	matchedDuration := 0

	fold := func(tracks []models.Track) bool {
		retrieved += len(tracks)
		for _, track := range tracks {
			if !MatchesAll(track, req.Rules) {
				continue
			}

			pool = append(pool, track)
			idx := len(pool) - 1
			if req.Order.Enabled() {
				seq.Insert(pool, idx)
			} else {
				plain = append(plain, idx)
			}
			matchedDuration += track.DurationMS

			if req.Limit.Satisfied(len(pool), matchedDuration) {
				return false
			}
		}
		g.sendProgress(progress, retrieveUpdate(retrieved, len(pool)))
		return true
	}

	var err error
	if req.Limit.Enabled() {
		// An enabled limit can be satisfied mid-stream; page
		// sequentially so no unneeded remote calls are made.
		err = pipeline.Stream(ctx, fold)
	} else {
		err = pipeline.StreamAll(ctx, fold)
	}
	if err != nil {
		return nil, 0, err
	}

	ordered := plain
	if req.Order.Enabled() {
		ordered = seq.Indices()
	}

	matched := len(ordered)
	ordered = req.Limit.Apply(pool, ordered)
	g.sendProgress(progress, limitUpdate(len(ordered), matched))

	tracks := make([]models.Track, 0, len(ordered))
	for _, poolIdx := range ordered {
		tracks = append(tracks, pool[poolIdx])
	}

	return tracks, matched, nil
}
