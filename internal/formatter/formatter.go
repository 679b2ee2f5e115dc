// package formatter shapes generated track lists for display and export (preview rows, CSV)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/jamm-labs/jamm/internal/models"
	"github.com/jamm-labs/jamm/internal/shared"
)

// PreviewRow is the display shape of one previewed track.
type PreviewRow struct {
	Title    string `json:"title"`
	Artists  string `json:"artists"` // Joined ", "
	Album    string `json:"album"`
	Duration string `json:"duration"` // m:ss
	ArtURL   string `json:"art_url"`
}

// Options controls album art selection for preview rows.
type Options struct {
	MinArtPixels   int    // Minimum pixels per side for a usable image
	DefaultArtPath string // Fallback when no image qualifies
}

// BestImage picks the smallest image whose width and height both meet
// the minimum, so previews load the lightest acceptable art. Images
// with unknown dimensions never qualify. Falls back to the default path.
func BestImage(images []models.Image, opts Options) string {
	best := ""
	bestArea := 0

	for _, img := range images {
		if !img.HasDimensions() || img.URL == "" {
			continue
		}
		if img.Width < opts.MinArtPixels || img.Height < opts.MinArtPixels {
			continue
		}

		area := img.Width * img.Height
		if best == "" || area < bestArea {
			best = img.URL
			bestArea = area
		}
	}

	if best == "" {
		return opts.DefaultArtPath
	}
	return best
}

// BuildPreview shapes tracks into display rows.
func BuildPreview(tracks []models.Track, opts Options) []PreviewRow {
	rows := make([]PreviewRow, 0, len(tracks))
	for _, track := range tracks {
		rows = append(rows, PreviewRow{
			Title:    track.Title,
			Artists:  shared.JoinArtists(track.Artists),
			Album:    track.Album,
			Duration: shared.FormatDuration(track.DurationMS),
			ArtURL:   BestImage(track.Images, opts),
		})
	}
	return rows
}

// ExportToCSV converts a track list to CSV with columns: ID, Title, Artists, Album, Release Date, Duration (ms), Popularity
func ExportToCSV(tracks []models.Track) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artists", "Album", "Release Date", "Duration (ms)", "Popularity"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range tracks {
		record := []string{
			track.ID,
			track.Title,
			shared.JoinArtists(track.Artists),
			track.Album,
			track.ReleaseDate,
			strconv.Itoa(track.DurationMS),
			strconv.Itoa(track.Popularity),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// WriteCSVExport writes a generated track list to {base}_tracks.csv with
// accompanying {base}_metadata.json when a playlist was created.
func WriteCSVExport(playlist *models.Playlist, tracks []models.Track, baseFilepath string) ([]string, error) {
	if baseFilepath == "" && playlist != nil {
		baseFilepath = playlist.ID
	}
	if baseFilepath == "" {
		baseFilepath = "preview"
	}

	csvData, err := ExportToCSV(tracks)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	tracksFile := baseFilepath + "_tracks.csv"
	if err := os.WriteFile(tracksFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	files := []string{tracksFile}

	if playlist != nil {
		metadataJSON, err := shared.MarshalJSON(playlist, true)
		if err != nil {
			return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
		}

		metadataFile := baseFilepath + "_metadata.json"
		if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
			return nil, fmt.Errorf("failed to write metadata file: %w", err)
		}
		files = append(files, metadataFile)
	}

	return files, nil
}
