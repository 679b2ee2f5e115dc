// package models defines the data model for the smart playlist service
package models

import (
	"strconv"
	"time"
)

// Image represents an image resource attached to a track, album, or playlist.
//
// Width and Height are zero until known; enrichment fills them in for
// images that only carry a URL.
type Image struct {
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// HasDimensions reports whether both dimensions are populated.
func (i Image) HasDimensions() bool {
	return i.Width > 0 && i.Height > 0
}

// Track represents a candidate track retrieved from the remote catalog.
//
// Tracks are immutable once fetched; only the Enrichment pass may fill in
// missing image dimensions.
type Track struct {
	ID          string    `json:"id"`
	URI         string    `json:"uri"`
	Title       string    `json:"title"`
	Artists     []string  `json:"artists"`
	Album       string    `json:"album"`
	ReleaseDate string    `json:"release_date"` // YYYY, YYYY-MM, or YYYY-MM-DD
	DurationMS  int       `json:"duration_ms"`
	Popularity  int       `json:"popularity"`
	AddedAt     time.Time `json:"added_at"` // When the track entered the user's library
	Images      []Image   `json:"images,omitempty"`
}

// ReleaseYear extracts the year component of the release date.
// Returns 0 when the date is absent or malformed.
func (t Track) ReleaseYear() int {
	if len(t.ReleaseDate) < 4 {
		return 0
	}
	year, err := strconv.Atoi(t.ReleaseDate[:4])
	if err != nil {
		return 0
	}
	return year
}

// PrimaryArtist returns the first artist name, or "" for an empty list.
func (t Track) PrimaryArtist() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0]
}

// Playlist represents playlist metadata from the remote catalog.
type Playlist struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	TrackCount  int     `json:"track_count"`
	Public      bool    `json:"public"`
	URI         string  `json:"uri,omitempty"`
	Images      []Image `json:"images,omitempty"`
}

// PlaylistDetail represents a single playlist with full display metadata.
type PlaylistDetail struct {
	Playlist
	Collaborative  bool `json:"collaborative"`
	FollowersCount int  `json:"followers_count"`
	Deleted        bool `json:"deleted"`
}

// Artist represents an artist from the remote catalog.
type Artist struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Genres         []string `json:"genres,omitempty"`
	Popularity     int      `json:"popularity"`
	FollowersCount int      `json:"followers_count"`
	URI            string   `json:"uri,omitempty"`
	Images         []Image  `json:"images,omitempty"`
}

// Album represents an album from the remote catalog.
type Album struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Artists     []string `json:"artists"`
	ReleaseDate string   `json:"release_date"`
	TotalTracks int      `json:"total_tracks"`
	URI         string   `json:"uri,omitempty"`
	Images      []Image  `json:"images,omitempty"`
}
