// Spotify API implementation of [Catalog]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jamm-labs/jamm/internal/models"
	"github.com/jamm-labs/jamm/internal/shared"
	"github.com/jamm-labs/jamm/internal/smart"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// Appended to every playlist the generator creates.
	playlistSignature = "Playlist created with JAMM!"

	addTracksChunkSize = 100
	maxPageLimit       = 50
	userDataSampleSize = 10
)

type followers struct {
	Total int `json:"total"`
}

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string         `json:"id"`
	DisplayName string         `json:"display_name"`
	Email       string         `json:"email"`
	Country     string         `json:"country"`
	Product     string         `json:"product"`
	Followers   followers      `json:"followers"`
	Images      []SpotifyImage `json:"images"`
}

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
	Explicit   bool            `json:"explicit"`
	Popularity int             `json:"popularity"`
	URI        string          `json:"uri"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Genres     []string       `json:"genres"`
	Popularity int            `json:"popularity"`
	Followers  followers      `json:"followers"`
	Images     []SpotifyImage `json:"images"`
	URI        string         `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Artists     []SpotifyArtist `json:"artists"`
	ReleaseDate string          `json:"release_date"`
	TotalTracks int             `json:"total_tracks"`
	Images      []SpotifyImage  `json:"images"`
	URI         string          `json:"uri"`
}

type owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// SpotifySavedTrack represents a track saved in the user's library.
type SpotifySavedTrack struct {
	AddedAt string       `json:"added_at"`
	Track   SpotifyTrack `json:"track"`
}

// SpotifySavedAlbum represents an album saved in the user's library.
type SpotifySavedAlbum struct {
	AddedAt string       `json:"added_at"`
	Album   SpotifyAlbum `json:"album"`
}

type playlistTracksRef struct {
	Total int `json:"total"`
}

// SpotifyPlaylist represents a Spotify playlist.
type SpotifyPlaylist struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Description   string            `json:"description"`
	Owner         owner             `json:"owner"`
	Public        bool              `json:"public"`
	Collaborative bool              `json:"collaborative"`
	Followers     followers         `json:"followers"`
	Tracks        playlistTracksRef `json:"tracks"`
	Images        []SpotifyImage    `json:"images"`
	URI           string            `json:"uri"`
}

// spotifyPage is the offset-addressed paging envelope shared by most
// Spotify collection endpoints.
type spotifyPage[T any] struct {
	Items    []T     `json:"items"`
	Total    int     `json:"total"`
	Limit    int     `json:"limit"`
	Offset   int     `json:"offset"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
}

// followedArtistsPage is the cursor-addressed envelope used only by the
// followed-artists endpoint.
type followedArtistsPage struct {
	Artists struct {
		Items   []SpotifyArtist `json:"items"`
		Total   int             `json:"total"`
		Limit   int             `json:"limit"`
		Next    *string         `json:"next"`
		Cursors struct {
			After string `json:"after"`
		} `json:"cursors"`
	} `json:"artists"`
}

// SpotifyService implements [Catalog] against the Spotify Web API.
// Uses [oauth2] for authentication and a [rate.Limiter] to pace
// outbound requests.
type SpotifyService struct {
	config     *oauth2.Config
	token      *oauth2.Token
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
}

// NewSpotifyService creates a Spotify catalog client with the given
// OAuth2 credentials. requestsPerSecond bounds the outbound request
// rate; zero or negative disables limiting.
func NewSpotifyService(cfg shared.SpotifyConfig, requestsPerSecond float64) (*SpotifyService, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("%w: client_id", shared.ErrMissingCredentials)
	}
	if cfg.ClientSecret == "" {
		return nil, fmt.Errorf("%w: client_secret", shared.ErrMissingCredentials)
	}

	redirectURI := cfg.RedirectURI
	if redirectURI == "" {
		redirectURI = "http://localhost:3000/callback"
	}

	config := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"user-read-private",
			"user-read-email",
			"user-library-read",
			"user-follow-read",
			"user-top-read",
			"playlist-read-private",
			"playlist-read-collaborative",
			"playlist-modify-public",
			"playlist-modify-private",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	var limiter *rate.Limiter
	if requestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}

	return &SpotifyService{
		config:     config,
		httpClient: http.DefaultClient,
		limiter:    limiter,
		baseURL:    spotifyBaseURL,
	}, nil
}

// Authenticate authorizes the client. Expects either an "access_token"
// or an "auth_code" in credentials; an auth code is exchanged for a
// token with automatic refresh.
func (s *SpotifyService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if accessToken, ok := credentials["access_token"]; ok && accessToken != "" {
		token := &oauth2.Token{
			AccessToken:  accessToken,
			RefreshToken: credentials["refresh_token"],
		}
		if expiry, err := time.Parse(time.RFC3339, credentials["expiry"]); err == nil {
			token.Expiry = expiry
		}
		s.token = token
		s.httpClient = s.config.Client(ctx, s.token)
		return nil
	}

	if authCode, ok := credentials["auth_code"]; ok && authCode != "" {
		token, err := s.config.Exchange(ctx, authCode)
		if err != nil {
			return fmt.Errorf("%w: failed to exchange auth code: %v", shared.ErrAuthFailed, err)
		}
		s.token = token
		s.httpClient = s.config.Client(ctx, s.token)
		return nil
	}

	return fmt.Errorf("%w: access_token or auth_code", shared.ErrMissingCredentials)
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// GetOAuthConfig exposes the OAuth2 config for the callback handler.
func (s *SpotifyService) GetOAuthConfig() *oauth2.Config {
	return s.config
}

// doRequest performs an authenticated, rate-limited HTTP request to the
// Spotify API. body is JSON-encoded when non-nil; result is decoded from
// the response body when non-nil.
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, body any, result any) error {
	if s.token == nil {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter interrupted: %w", err)
		}
	}

	var reqBody *bytes.Buffer
	if body != nil {
		reqBody = &bytes.Buffer{}
		if err := json.NewEncoder(reqBody).Encode(body); err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	apiURL := s.baseURL + endpoint

	var req *http.Request
	var err error
	if reqBody != nil {
		req, err = http.NewRequestWithContext(ctx, method, apiURL, reqBody)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, apiURL, nil)
	}
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.token.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, endpoint)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d on %s %s", shared.ErrAPIRequest, resp.StatusCode, method, endpoint)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > maxPageLimit {
		return maxPageLimit
	}
	return limit
}

func validateTimeRange(timeRange string) string {
	switch timeRange {
	case "short_term", "medium_term", "long_term":
		return timeRange
	default:
		return "long_term"
	}
}

// Response mapping

func imagesFrom(images []SpotifyImage) []models.Image {
	if len(images) == 0 {
		return nil
	}
	out := make([]models.Image, 0, len(images))
	for _, img := range images {
		out = append(out, models.Image{URL: img.URL, Width: img.Width, Height: img.Height})
	}
	return out
}

func artistNames(artists []SpotifyArtist) []string {
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		names = append(names, a.Name)
	}
	return names
}

func trackFrom(st SpotifyTrack, addedAt string) models.Track {
	added, _ := time.Parse(time.RFC3339, addedAt)
	return models.Track{
		ID:          st.ID,
		URI:         st.URI,
		Title:       st.Name,
		Artists:     artistNames(st.Artists),
		Album:       st.Album.Name,
		ReleaseDate: st.Album.ReleaseDate,
		DurationMS:  st.DurationMS,
		Popularity:  st.Popularity,
		AddedAt:     added,
		Images:      imagesFrom(st.Album.Images),
	}
}

func artistFrom(sa SpotifyArtist) models.Artist {
	return models.Artist{
		ID:             sa.ID,
		Name:           sa.Name,
		Genres:         sa.Genres,
		Popularity:     sa.Popularity,
		FollowersCount: sa.Followers.Total,
		URI:            sa.URI,
		Images:         imagesFrom(sa.Images),
	}
}

func albumFrom(sa SpotifyAlbum) models.Album {
	return models.Album{
		ID:          sa.ID,
		Name:        sa.Name,
		Artists:     artistNames(sa.Artists),
		ReleaseDate: sa.ReleaseDate,
		TotalTracks: sa.TotalTracks,
		URI:         sa.URI,
		Images:      imagesFrom(sa.Images),
	}
}

func playlistFrom(sp SpotifyPlaylist) models.Playlist {
	return models.Playlist{
		ID:          sp.ID,
		Name:        sp.Name,
		Description: sp.Description,
		TrackCount:  sp.Tracks.Total,
		Public:      sp.Public,
		URI:         sp.URI,
		Images:      imagesFrom(sp.Images),
	}
}

// Catalog implementation

// CurrentUserID resolves the authenticated user's ID.
func (s *SpotifyService) CurrentUserID(ctx context.Context) (string, error) {
	user, err := s.UserProfile(ctx)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

// UserProfile retrieves the current authenticated user's profile.
func (s *SpotifyService) UserProfile(ctx context.Context) (*User, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &User{
		ID:             user.ID,
		DisplayName:    user.DisplayName,
		Email:          user.Email,
		Country:        user.Country,
		Product:        user.Product,
		FollowersCount: user.Followers.Total,
		Images:         imagesFrom(user.Images),
	}, nil
}

// SavedTracks retrieves one page of the user's saved tracks.
func (s *SpotifyService) SavedTracks(ctx context.Context, limit, offset int) (*smart.Page[models.Track], error) {
	endpoint := fmt.Sprintf("/me/tracks?limit=%d&offset=%d", clampLimit(limit), offset)

	var response spotifyPage[SpotifySavedTrack]
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	page := &smart.Page[models.Track]{
		Total:  response.Total,
		Limit:  response.Limit,
		Offset: response.Offset,
	}
	for _, item := range response.Items {
		page.Items = append(page.Items, trackFrom(item.Track, item.AddedAt))
	}
	return page, nil
}

// PlaylistTracks retrieves one page of a playlist's tracks.
func (s *SpotifyService) PlaylistTracks(ctx context.Context, playlistID string, limit, offset int) (*smart.Page[models.Track], error) {
	endpoint := fmt.Sprintf("/playlists/%s/tracks?limit=%d&offset=%d", playlistID, clampLimit(limit), offset)

	var response spotifyPage[SpotifySavedTrack]
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	page := &smart.Page[models.Track]{
		Total:  response.Total,
		Limit:  response.Limit,
		Offset: response.Offset,
	}
	for _, item := range response.Items {
		page.Items = append(page.Items, trackFrom(item.Track, item.AddedAt))
	}
	return page, nil
}

// Playlists retrieves one page of the user's playlists.
func (s *SpotifyService) Playlists(ctx context.Context, limit, offset int) (*smart.Page[models.Playlist], error) {
	endpoint := fmt.Sprintf("/me/playlists?limit=%d&offset=%d", clampLimit(limit), offset)

	var response spotifyPage[SpotifyPlaylist]
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	page := &smart.Page[models.Playlist]{
		Total:  response.Total,
		Limit:  response.Limit,
		Offset: response.Offset,
	}
	for _, item := range response.Items {
		page.Items = append(page.Items, playlistFrom(item))
	}
	return page, nil
}

// SavedAlbums retrieves one page of the user's saved albums.
func (s *SpotifyService) SavedAlbums(ctx context.Context, limit, offset int) (*smart.Page[models.Album], error) {
	endpoint := fmt.Sprintf("/me/albums?limit=%d&offset=%d", clampLimit(limit), offset)

	var response spotifyPage[SpotifySavedAlbum]
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	page := &smart.Page[models.Album]{
		Total:  response.Total,
		Limit:  response.Limit,
		Offset: response.Offset,
	}
	for _, item := range response.Items {
		page.Items = append(page.Items, albumFrom(item.Album))
	}
	return page, nil
}

// FollowedArtists retrieves one cursor-addressed page of followed
// artists. Next carries the cursor for the following page and is empty
// on the last one.
func (s *SpotifyService) FollowedArtists(ctx context.Context, limit int, after string) (*smart.Page[models.Artist], error) {
	endpoint := fmt.Sprintf("/me/following?type=artist&limit=%d", clampLimit(limit))
	if after != "" {
		endpoint += "&after=" + url.QueryEscape(after)
	}

	var response followedArtistsPage
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	page := &smart.Page[models.Artist]{
		Total: response.Artists.Total,
		Limit: response.Artists.Limit,
	}
	if response.Artists.Next != nil {
		page.Next = response.Artists.Cursors.After
	}
	for _, item := range response.Artists.Items {
		page.Items = append(page.Items, artistFrom(item))
	}
	return page, nil
}

// TopTracks retrieves the user's most-listened tracks over a time range.
func (s *SpotifyService) TopTracks(ctx context.Context, timeRange string, limit, offset int) (*smart.Page[models.Track], error) {
	endpoint := fmt.Sprintf("/me/top/tracks?time_range=%s&limit=%d&offset=%d",
		validateTimeRange(timeRange), clampLimit(limit), offset)

	var response spotifyPage[SpotifyTrack]
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	page := &smart.Page[models.Track]{
		Total:  response.Total,
		Limit:  response.Limit,
		Offset: response.Offset,
	}
	for _, item := range response.Items {
		page.Items = append(page.Items, trackFrom(item, ""))
	}
	return page, nil
}

// TopArtists retrieves the user's most-listened artists over a time range.
func (s *SpotifyService) TopArtists(ctx context.Context, timeRange string, limit, offset int) (*smart.Page[models.Artist], error) {
	endpoint := fmt.Sprintf("/me/top/artists?time_range=%s&limit=%d&offset=%d",
		validateTimeRange(timeRange), clampLimit(limit), offset)

	var response spotifyPage[SpotifyArtist]
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	page := &smart.Page[models.Artist]{
		Total:  response.Total,
		Limit:  response.Limit,
		Offset: response.Offset,
	}
	for _, item := range response.Items {
		page.Items = append(page.Items, artistFrom(item))
	}
	return page, nil
}

// Playlist retrieves a playlist's full display metadata.
func (s *SpotifyService) Playlist(ctx context.Context, playlistID string) (*models.PlaylistDetail, error) {
	endpoint := fmt.Sprintf("/playlists/%s", url.PathEscape(playlistID))

	var sp SpotifyPlaylist
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &sp); err != nil {
		return nil, err
	}

	return &models.PlaylistDetail{
		Playlist:       playlistFrom(sp),
		Collaborative:  sp.Collaborative,
		FollowersCount: sp.Followers.Total,
	}, nil
}

// CreatePlaylist creates a playlist owned by the given user. The
// description is signed so created playlists are recognizable, and a
// public playlist is never collaborative.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, userID string, playlist smart.NewPlaylist) (*models.Playlist, error) {
	description := playlistSignature
	if d := strings.TrimSpace(playlist.Description); d != "" {
		description = playlistSignature + " " + d
	}

	collaborative := playlist.Collaborative
	if playlist.Public {
		collaborative = false
	}

	body := map[string]any{
		"name":          playlist.Name,
		"description":   description,
		"public":        playlist.Public,
		"collaborative": collaborative,
	}

	endpoint := fmt.Sprintf("/users/%s/playlists", url.PathEscape(userID))

	var created SpotifyPlaylist
	if err := s.doRequest(ctx, http.MethodPost, endpoint, body, &created); err != nil {
		return nil, err
	}

	result := playlistFrom(created)
	return &result, nil
}

// DeletePlaylist removes the playlist from the user's library. Spotify
// has no hard delete; unfollowing hides the playlist and is reversible.
func (s *SpotifyService) DeletePlaylist(ctx context.Context, playlistID string) error {
	endpoint := fmt.Sprintf("/playlists/%s/followers", url.PathEscape(playlistID))
	return s.doRequest(ctx, http.MethodDelete, endpoint, nil, nil)
}

// RestorePlaylist re-follows a previously deleted playlist.
func (s *SpotifyService) RestorePlaylist(ctx context.Context, playlistID string) error {
	endpoint := fmt.Sprintf("/playlists/%s/followers", url.PathEscape(playlistID))
	return s.doRequest(ctx, http.MethodPut, endpoint, map[string]any{"public": false}, nil)
}

// AddTracks appends tracks to a playlist by URI, chunked to the API's
// per-request maximum.
func (s *SpotifyService) AddTracks(ctx context.Context, playlistID string, uris []string) error {
	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))

	for start := 0; start < len(uris); start += addTracksChunkSize {
		end := start + addTracksChunkSize
		if end > len(uris) {
			end = len(uris)
		}

		body := map[string]any{"uris": uris[start:end]}
		if err := s.doRequest(ctx, http.MethodPost, endpoint, body, nil); err != nil {
			return fmt.Errorf("failed to add tracks %d-%d: %w", start, end, err)
		}
	}

	return nil
}

// UserData aggregates a sample of the user's library with totals.
// Fetches are sequential; the rate limiter paces them anyway.
func (s *SpotifyService) UserData(ctx context.Context) (*UserData, error) {
	user, err := s.UserProfile(ctx)
	if err != nil {
		return nil, err
	}

	playlists, err := s.Playlists(ctx, userDataSampleSize, 0)
	if err != nil {
		return nil, err
	}

	artists, err := s.FollowedArtists(ctx, userDataSampleSize, "")
	if err != nil {
		return nil, err
	}

	topArtists, err := s.TopArtists(ctx, "long_term", userDataSampleSize, 0)
	if err != nil {
		return nil, err
	}

	albums, err := s.SavedAlbums(ctx, userDataSampleSize, 0)
	if err != nil {
		return nil, err
	}

	tracks, err := s.SavedTracks(ctx, userDataSampleSize, 0)
	if err != nil {
		return nil, err
	}

	return &UserData{
		User:           user,
		Playlists:      playlists.Items,
		Artists:        artists.Items,
		TopArtists:     topArtists.Items,
		Albums:         albums.Items,
		Tracks:         tracks.Items,
		TotalPlaylists: playlists.Total,
		TotalArtists:   artists.Total,
		TotalAlbums:    albums.Total,
		TotalTracks:    tracks.Total,
	}, nil
}
