// package services defines interface Catalog for the remote music catalog
package services

import (
	"context"

	"github.com/jamm-labs/jamm/internal/models"
	"github.com/jamm-labs/jamm/internal/smart"
	"golang.org/x/oauth2"
)

// Catalog defines the remote catalog surface the application depends on.
// Implemented by [SpotifyService]; handlers and commands program against
// this interface so tests can substitute an in-memory catalog.
type Catalog interface {
	// CurrentUserID resolves the authenticated user's ID.
	CurrentUserID(ctx context.Context) (string, error)

	// UserProfile retrieves the authenticated user's profile.
	UserProfile(ctx context.Context) (*User, error)

	// SavedTracks retrieves one offset-addressed page of the user's
	// saved tracks.
	SavedTracks(ctx context.Context, limit, offset int) (*smart.Page[models.Track], error)

	// Playlists retrieves one offset-addressed page of the user's playlists.
	Playlists(ctx context.Context, limit, offset int) (*smart.Page[models.Playlist], error)

	// PlaylistTracks retrieves one offset-addressed page of a
	// playlist's tracks.
	PlaylistTracks(ctx context.Context, playlistID string, limit, offset int) (*smart.Page[models.Track], error)

	// SavedAlbums retrieves one offset-addressed page of the user's
	// saved albums.
	SavedAlbums(ctx context.Context, limit, offset int) (*smart.Page[models.Album], error)

	// FollowedArtists retrieves one cursor-addressed page of the artists
	// the user follows. Pass the previous page's Next as after; "" starts
	// from the beginning.
	FollowedArtists(ctx context.Context, limit int, after string) (*smart.Page[models.Artist], error)

	// TopTracks retrieves the user's most-listened tracks over a time
	// range (short_term, medium_term, or long_term).
	TopTracks(ctx context.Context, timeRange string, limit, offset int) (*smart.Page[models.Track], error)

	// TopArtists retrieves the user's most-listened artists over a time range.
	TopArtists(ctx context.Context, timeRange string, limit, offset int) (*smart.Page[models.Artist], error)

	// Playlist retrieves a playlist's full display metadata.
	Playlist(ctx context.Context, playlistID string) (*models.PlaylistDetail, error)

	// CreatePlaylist creates a playlist owned by the given user.
	CreatePlaylist(ctx context.Context, userID string, playlist smart.NewPlaylist) (*models.Playlist, error)

	// DeletePlaylist removes the playlist from the user's library.
	DeletePlaylist(ctx context.Context, playlistID string) error

	// RestorePlaylist re-adds a previously deleted playlist to the
	// user's library.
	RestorePlaylist(ctx context.Context, playlistID string) error

	// AddTracks appends tracks to a playlist by URI.
	AddTracks(ctx context.Context, playlistID string, uris []string) error

	// UserData aggregates a sample of the user's library with totals.
	UserData(ctx context.Context) (*UserData, error)
}

// OAuthService is the authorization surface of a catalog that
// authenticates through OAuth2. Satisfied by [SpotifyService] and used
// by the auth command to run the browser flow.
type OAuthService interface {
	Authenticate(ctx context.Context, credentials map[string]string) error
	GetAuthURL(state string) string
	GetOAuthConfig() *oauth2.Config
}

// User represents the authenticated user's profile.
type User struct {
	ID             string         `json:"id"`
	DisplayName    string         `json:"display_name"`
	Email          string         `json:"email"`
	Country        string         `json:"country"`
	Product        string         `json:"product"` // premium, free, etc.
	FollowersCount int            `json:"followers_count"`
	Images         []models.Image `json:"images,omitempty"`
}

// UserData aggregates a sample of the user's library for display.
// Each slice holds at most a single page; the totals cover the whole
// collection.
type UserData struct {
	User           *User             `json:"user"`
	Playlists      []models.Playlist `json:"playlists"`
	Artists        []models.Artist   `json:"artists"`
	TopArtists     []models.Artist   `json:"top_artists"`
	Albums         []models.Album    `json:"albums"`
	Tracks         []models.Track    `json:"tracks"`
	TotalPlaylists int               `json:"total_playlists"`
	TotalArtists   int               `json:"total_artists"`
	TotalAlbums    int               `json:"total_albums"`
	TotalTracks    int               `json:"total_tracks"`
}
