package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jamm-labs/jamm/internal/formatter"
	"github.com/jamm-labs/jamm/internal/models"
	"github.com/jamm-labs/jamm/internal/services"
	"github.com/jamm-labs/jamm/internal/shared"
	"golang.org/x/time/rate"
)

// Exporter runs bulk playlist exports against a remote catalog.
type Exporter struct {
	catalog  services.Catalog
	logger   *log.Logger
	pageSize int
}

// NewExporter creates an Exporter. pageSize bounds the track pages
// fetched per request; zero or negative falls back to 50.
func NewExporter(catalog services.Catalog, logger *log.Logger, pageSize int) *Exporter {
	if pageSize <= 0 {
		pageSize = 50
	}
	return &Exporter{catalog: catalog, logger: logger, pageSize: pageSize}
}

// ExportOpts contains configuration for bulk playlist exports.
type ExportOpts struct {
	Format     string  // Export format: csv or json (default: csv)
	OutputDir  string  // Base output directory (default: jamm_export_{epoch})
	NumWorkers int     // Concurrent writers (default: 5, max: 10)
	RateLimit  float64 // Requests per second (default: 5)
}

// PlaylistExportResult records the outcome of exporting one playlist.
type PlaylistExportResult struct {
	PlaylistID   string
	PlaylistName string
	Success      bool
	Files        []string
	Error        error
}

// BulkExportResult aggregates a bulk export run.
type BulkExportResult struct {
	TotalPlaylists    int
	SuccessfulExports int
	FailedExports     int
	OutputDirectory   string
	ManifestPath      string
	Results           []PlaylistExportResult
}

// exportJob carries one fully fetched playlist to a writer worker.
type exportJob struct {
	detail *models.PlaylistDetail
	tracks []models.Track
}

// BulkExport exports playlists concurrently with rate limiting and
// progress tracking. When ids is empty the whole library is exported.
//
// Fetching is serialized behind a rate limiter while file writing runs
// in a bounded worker pool. A playlist that fails to fetch or write is
// reported in the result rather than aborting the run.
func (e *Exporter) BulkExport(ctx context.Context, prog chan<- ProgressUpdate, ids []string, opts ExportOpts) (*BulkExportResult, error) {
	if e.catalog == nil {
		return nil, fmt.Errorf("%w: catalog not initialized", shared.ErrServiceUnavailable)
	}

	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("jamm_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}
	if opts.Format == "" {
		opts.Format = "csv"
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	if len(ids) == 0 {
		var err error
		if ids, err = e.allPlaylistIDs(ctx, limiter); err != nil {
			return nil, err
		}
	}
	e.sendProgress(prog, fetchPlaylistsUpdate(len(ids)))

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		TotalPlaylists:  len(ids),
		OutputDirectory: opts.OutputDir,
		Results:         make([]PlaylistExportResult, 0, len(ids)),
	}

	jobs := make(chan exportJob, len(ids))
	results := make(chan PlaylistExportResult, len(ids))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	go func() {
		defer close(jobs)
		for i, playlistID := range ids {
			select {
			case <-ctx.Done():
				return
			default:
			}

			job, err := e.fetchPlaylist(ctx, limiter, playlistID)
			if err != nil {
				results <- PlaylistExportResult{
					PlaylistID:   playlistID,
					PlaylistName: fmt.Sprintf("Unknown (%s)", playlistID),
					Error:        fmt.Errorf("failed to fetch playlist: %w", err),
				}
				continue
			}

			e.sendProgress(prog, exportingPlaylistUpdate(i+1, len(ids), job.detail.Name))
			jobs <- job
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			e.sendProgress(prog, exportCompletedUpdate(completed, len(ids), res.PlaylistName, len(res.Files)))
		} else {
			result.FailedExports++
			e.sendProgress(prog, exportFailedUpdate(completed, len(ids), res.PlaylistName, res.Error))
		}
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := writeManifest(result, opts.Format, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// allPlaylistIDs pages through the library and collects every playlist ID.
func (e *Exporter) allPlaylistIDs(ctx context.Context, limiter *rate.Limiter) ([]string, error) {
	var ids []string
	for offset := 0; ; {
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}
		page, err := e.catalog.Playlists(ctx, e.pageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("failed to list playlists: %w", err)
		}
		for _, p := range page.Items {
			ids = append(ids, p.ID)
		}
		offset += len(page.Items)
		if len(page.Items) == 0 || offset >= page.Total {
			return ids, nil
		}
	}
}

// fetchPlaylist retrieves one playlist's metadata and full track list.
func (e *Exporter) fetchPlaylist(ctx context.Context, limiter *rate.Limiter, playlistID string) (exportJob, error) {
	if err := limiter.Wait(ctx); err != nil {
		return exportJob{}, err
	}
	detail, err := e.catalog.Playlist(ctx, playlistID)
	if err != nil {
		return exportJob{}, err
	}
	if detail == nil {
		return exportJob{}, shared.ErrPlaylistNotFound
	}

	var tracks []models.Track
	for offset := 0; ; {
		if err := limiter.Wait(ctx); err != nil {
			return exportJob{}, err
		}
		page, err := e.catalog.PlaylistTracks(ctx, playlistID, e.pageSize, offset)
		if err != nil {
			return exportJob{}, err
		}
		tracks = append(tracks, page.Items...)
		offset += len(page.Items)
		if len(page.Items) == 0 || offset >= page.Total {
			break
		}
	}

	return exportJob{detail: detail, tracks: tracks}, nil
}

// exportWorker is a worker goroutine that writes playlists from the jobs channel.
func (e *Exporter) exportWorker(ctx context.Context, wg *sync.WaitGroup, jobs <-chan exportJob, results chan<- PlaylistExportResult, opts ExportOpts) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		results <- e.exportSinglePlaylist(job, opts)
	}
}

// exportSinglePlaylist writes one playlist in the requested format.
func (e *Exporter) exportSinglePlaylist(j exportJob, opts ExportOpts) PlaylistExportResult {
	result := PlaylistExportResult{
		PlaylistID:   j.detail.ID,
		PlaylistName: j.detail.Name,
		Files:        []string{},
	}

	switch opts.Format {
	case "json":
		jsonPath := filepath.Join(opts.OutputDir, fmt.Sprintf("%s.json", j.detail.ID))
		payload := struct {
			Playlist models.PlaylistDetail `json:"playlist"`
			Tracks   []models.Track        `json:"tracks"`
		}{Playlist: *j.detail, Tracks: j.tracks}

		data, err := shared.MarshalJSON(payload, true)
		if err != nil {
			result.Error = fmt.Errorf("JSON marshal failed: %w", err)
			return result
		}
		if err := os.WriteFile(jsonPath, data, 0644); err != nil {
			result.Error = fmt.Errorf("JSON write failed: %w", err)
			return result
		}
		result.Files = []string{jsonPath}
		result.Success = true

	default:
		base := filepath.Join(opts.OutputDir, j.detail.ID)
		files, err := formatter.WriteCSVExport(&j.detail.Playlist, j.tracks, base)
		if err != nil {
			result.Error = fmt.Errorf("CSV export failed: %w", err)
			return result
		}
		result.Files = files
		result.Success = true
	}

	return result
}

// sendProgress sends a progress update through the channel without blocking.
func (e *Exporter) sendProgress(prog chan<- ProgressUpdate, update ProgressUpdate) {
	if prog == nil {
		return
	}
	select {
	case prog <- update:
	default:
	}
}

// manifestEntry is the JSON view of one playlist's outcome.
type manifestEntry struct {
	PlaylistID   string   `json:"playlist_id"`
	PlaylistName string   `json:"playlist_name"`
	Success      bool     `json:"success"`
	Files        []string `json:"files,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// writeManifest summarizes a bulk export run to a JSON file.
func writeManifest(result *BulkExportResult, format, path string) error {
	manifest := struct {
		ExportedAt      string          `json:"exported_at"`
		Format          string          `json:"format"`
		TotalPlaylists  int             `json:"total_playlists"`
		Successful      int             `json:"successful"`
		Failed          int             `json:"failed"`
		OutputDirectory string          `json:"output_directory"`
		Playlists       []manifestEntry `json:"playlists"`
	}{
		ExportedAt:      time.Now().UTC().Format(time.RFC3339),
		Format:          format,
		TotalPlaylists:  result.TotalPlaylists,
		Successful:      result.SuccessfulExports,
		Failed:          result.FailedExports,
		OutputDirectory: result.OutputDirectory,
	}

	for _, r := range result.Results {
		entry := manifestEntry{
			PlaylistID:   r.PlaylistID,
			PlaylistName: r.PlaylistName,
			Success:      r.Success,
			Files:        r.Files,
		}
		if r.Error != nil {
			entry.Error = r.Error.Error()
		}
		manifest.Playlists = append(manifest.Playlists, entry)
	}

	data, err := shared.MarshalJSON(manifest, true)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
