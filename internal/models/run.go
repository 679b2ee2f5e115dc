package models

import "time"

// Run records a single smart playlist generation for the history log.
//
// The remote catalog remains the system of record for playlists; a Run is
// an audit entry, not a copy of the playlist.
type Run struct {
	ID           string    `json:"id"`
	PlaylistID   string    `json:"playlist_id,omitempty"` // Empty for preview-only runs
	PlaylistName string    `json:"playlist_name"`
	RuleSummary  string    `json:"rule_summary"`
	TrackCount   int       `json:"track_count"`
	DurationMS   int       `json:"duration_ms"`
	PreviewOnly  bool      `json:"preview_only"`
	CreatedAt    time.Time `json:"created_at"`
}
