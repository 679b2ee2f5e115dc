// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/jamm-labs/jamm/internal/models"
	"github.com/jamm-labs/jamm/internal/services"
	"github.com/jamm-labs/jamm/internal/smart"
)

// MockCatalog is a test double for [services.Catalog] backed by
// in-memory fixtures. Zero-value fields yield empty pages; Err, when
// set, fails every operation.
type MockCatalog struct {
	UserID         string
	Profile        *services.User
	Tracks         []models.Track
	PlaylistItems  []models.Playlist
	Artists        []models.Artist
	TopArtistItems []models.Artist
	Albums         []models.Album
	Detail         *models.PlaylistDetail
	Created        *models.Playlist
	Added          []string
	Deleted        []string
	Restored       []string
	Err            error
}

func page[T any](items []T, limit, offset int) *smart.Page[T] {
	total := len(items)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return &smart.Page[T]{Items: items[offset:end], Total: total, Limit: limit, Offset: offset}
}

func (m *MockCatalog) CurrentUserID(ctx context.Context) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return m.UserID, nil
}

func (m *MockCatalog) UserProfile(ctx context.Context) (*services.User, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Profile, nil
}

func (m *MockCatalog) SavedTracks(ctx context.Context, limit, offset int) (*smart.Page[models.Track], error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return page(m.Tracks, limit, offset), nil
}

func (m *MockCatalog) PlaylistTracks(ctx context.Context, playlistID string, limit, offset int) (*smart.Page[models.Track], error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return page(m.Tracks, limit, offset), nil
}

func (m *MockCatalog) Playlists(ctx context.Context, limit, offset int) (*smart.Page[models.Playlist], error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return page(m.PlaylistItems, limit, offset), nil
}

func (m *MockCatalog) SavedAlbums(ctx context.Context, limit, offset int) (*smart.Page[models.Album], error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return page(m.Albums, limit, offset), nil
}

func (m *MockCatalog) FollowedArtists(ctx context.Context, limit int, after string) (*smart.Page[models.Artist], error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return page(m.Artists, limit, 0), nil
}

func (m *MockCatalog) TopTracks(ctx context.Context, timeRange string, limit, offset int) (*smart.Page[models.Track], error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return page(m.Tracks, limit, offset), nil
}

func (m *MockCatalog) TopArtists(ctx context.Context, timeRange string, limit, offset int) (*smart.Page[models.Artist], error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return page(m.TopArtistItems, limit, offset), nil
}

func (m *MockCatalog) Playlist(ctx context.Context, playlistID string) (*models.PlaylistDetail, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Detail, nil
}

func (m *MockCatalog) CreatePlaylist(ctx context.Context, userID string, playlist smart.NewPlaylist) (*models.Playlist, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.Created = &models.Playlist{
		ID:          "mock-playlist",
		Name:        playlist.Name,
		Description: playlist.Description,
		Public:      playlist.Public,
	}
	return m.Created, nil
}

func (m *MockCatalog) DeletePlaylist(ctx context.Context, playlistID string) error {
	if m.Err != nil {
		return m.Err
	}
	m.Deleted = append(m.Deleted, playlistID)
	return nil
}

func (m *MockCatalog) RestorePlaylist(ctx context.Context, playlistID string) error {
	if m.Err != nil {
		return m.Err
	}
	m.Restored = append(m.Restored, playlistID)
	return nil
}

func (m *MockCatalog) AddTracks(ctx context.Context, playlistID string, uris []string) error {
	if m.Err != nil {
		return m.Err
	}
	m.Added = append(m.Added, uris...)
	return nil
}

func (m *MockCatalog) UserData(ctx context.Context) (*services.UserData, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return &services.UserData{
		User:           m.Profile,
		Playlists:      m.PlaylistItems,
		Artists:        m.Artists,
		TopArtists:     m.TopArtistItems,
		Albums:         m.Albums,
		Tracks:         m.Tracks,
		TotalPlaylists: len(m.PlaylistItems),
		TotalArtists:   len(m.Artists),
		TotalAlbums:    len(m.Albums),
		TotalTracks:    len(m.Tracks),
	}, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
