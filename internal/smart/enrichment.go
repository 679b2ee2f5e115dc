package smart

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/jamm-labs/jamm/internal/models"
)

// DimensionProber resolves the pixel dimensions of a remote image.
type DimensionProber func(ctx context.Context, url string) (width, height int, err error)

// ProbeImageDimensions fetches an image over HTTP and decodes only its
// header to learn its dimensions without reading the full payload.
func ProbeImageDimensions(ctx context.Context, client *http.Client, url string) (int, int, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, 0, fmt.Errorf("image fetch error: status %d", resp.StatusCode)
	}

	config, _, err := image.DecodeConfig(resp.Body)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode image header: %w", err)
	}

	return config.Width, config.Height, nil
}

// Enricher fills in missing image dimensions across a track pool.
//
// Enrichment is best-effort: a failed probe is logged as a warning and the
// image keeps its URL with unknown dimensions, since display has a
// fallback image anyway. It never fails the overall request.
type Enricher struct {
	probe   DimensionProber
	workers int
	logger  *log.Logger
}

// NewEnricher creates an Enricher probing over the given HTTP client.
func NewEnricher(client *http.Client, workers int, logger *log.Logger) *Enricher {
	return NewEnricherWithProber(func(ctx context.Context, url string) (int, int, error) {
		return ProbeImageDimensions(ctx, client, url)
	}, workers, logger)
}

// NewEnricherWithProber creates an Enricher with a custom prober.
func NewEnricherWithProber(probe DimensionProber, workers int, logger *log.Logger) *Enricher {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Enricher{probe: probe, workers: workers, logger: logger}
}

// EnrichTracks populates missing dimensions for every image attached to
// the given tracks, in place.
func (e *Enricher) EnrichTracks(ctx context.Context, tracks []models.Track) {
	var pending []*models.Image
	for ti := range tracks {
		for ii := range tracks[ti].Images {
			img := &tracks[ti].Images[ii]
			if img.URL != "" && !img.HasDimensions() {
				pending = append(pending, img)
			}
		}
	}
	e.enrich(ctx, pending)
}

// EnrichImages populates missing dimensions for a standalone image list,
// in place. Already-populated dimensions are never overwritten, so
// enrichment is idempotent.
func (e *Enricher) EnrichImages(ctx context.Context, images []models.Image) {
	var pending []*models.Image
	for i := range images {
		img := &images[i]
		if img.URL != "" && !img.HasDimensions() {
			pending = append(pending, img)
		}
	}
	e.enrich(ctx, pending)
}

// enrich probes pending images concurrently. Each worker writes only to
// its own image, so in-place mutation is race-free and the outcome does
// not depend on probe completion order.
func (e *Enricher) enrich(ctx context.Context, pending []*models.Image) {
	if len(pending) == 0 || e.probe == nil {
		return
	}

	jobs := make(chan *models.Image, len(pending))

	var wg sync.WaitGroup
	for i := 0; i < e.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for img := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}

				width, height, err := e.probe(ctx, img.URL)
				if err != nil {
					if e.logger != nil {
						e.logger.Warn("failed to probe image dimensions", "url", img.URL, "error", err)
					}
					continue
				}

				img.Width = width
				img.Height = height
			}
		}()
	}

	for _, img := range pending {
		jobs <- img
	}
	close(jobs)

	wg.Wait()
}
